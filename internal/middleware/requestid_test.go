package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/petadmin/internal/pkg"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// requestIDEcho answers with the ID as seen by each consumer, separated
// by spaces: gin context, logger attrs, upstream forwarding.
func requestIDEcho(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, "%s %s %s",
			GetRequestID(c),
			findAttrValue(logger.FromContext(c.Request.Context()), "request_id"),
			pkg.RequestIDFrom(c.Request.Context()),
		)
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func fetchIDs(t *testing.T, mw gin.HandlerFunc, inbound string) (header string, seen []string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	if inbound != "" {
		req.Header.Set(HeaderXRequestID, inbound)
	}
	w := httptest.NewRecorder()
	requestIDEcho(mw).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	return w.Header().Get(HeaderXRequestID), strings.Split(w.Body.String(), " ")
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	header, seen := fetchIDs(t, RequestID(), "")

	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("X-Request-ID %q is not a UUID: %v", header, err)
	}
	for i, s := range seen {
		if s != header {
			t.Errorf("consumer %d saw %q, want %q", i, s, header)
		}
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	first, _ := fetchIDs(t, RequestID(), "")
	second, _ := fetchIDs(t, RequestID(), "")
	if first == second {
		t.Errorf("two requests shared ID %q", first)
	}
}

func TestRequestID_Inbound(t *testing.T) {
	longest := strings.Repeat("a", 64)
	tests := []struct {
		name    string
		trust   bool
		inbound string
		reused  bool
	}{
		{"untrusted is replaced", false, "console-7f3a", false},
		{"trusted is reused", true, "console-7f3a", true},
		{"64 chars is reused", true, longest, true},
		{"65 chars is replaced", true, longest + "a", false},
		{"bad charset is replaced", true, "id with spaces", false},
		{"header injection is replaced", true, "abc\r\nX-Evil: 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, seen := fetchIDs(t, RequestIDWithConfig(RequestIDConfig{TrustUpstream: tt.trust}), tt.inbound)
			if got := header == tt.inbound; got != tt.reused {
				t.Fatalf("header = %q, reused = %v, want %v", header, got, tt.reused)
			}
			if !tt.reused {
				if _, err := uuid.Parse(header); err != nil {
					t.Errorf("replacement %q is not a UUID", header)
				}
			}
			if seen[2] != header {
				t.Errorf("upstream forwarding saw %q, want %q", seen[2], header)
			}
		})
	}
}

func TestGetRequestID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if id := GetRequestID(c); id != "" {
		t.Errorf("GetRequestID = %q, want empty", id)
	}
	c.Set(requestIDContextKey, 42)
	if id := GetRequestID(c); id != "" {
		t.Errorf("non-string value must read as empty, got %q", id)
	}
}
