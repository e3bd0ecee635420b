package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAbortWithStatus(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{"500 internal", 500, "internal server error"},
		{"400 bad request", 400, "bad request"},
		{"404 not found", 404, "not found"},
		{"408 request timeout", 408, "request timeout"},
		{"429 rate limited", 429, "too many requests"},
		{"unmapped", 418, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/test", nil)

			abortWithStatus(c, tt.code)

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			if !c.IsAborted() {
				t.Fatal("expected context to be aborted")
			}

			var resp pkg.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("json decode error: %v", err)
			}
			if resp.IsSuccess {
				t.Fatal("resp.IsSuccess = true, want false")
			}
			if resp.Code != tt.code {
				t.Fatalf("resp.Code = %d, want %d", resp.Code, tt.code)
			}
			if resp.Message != tt.message {
				t.Fatalf("resp.Message = %q, want %q", resp.Message, tt.message)
			}
			if resp.Result != nil {
				t.Fatalf("resp.Result = %#v, want nil", resp.Result)
			}
		})
	}
}
