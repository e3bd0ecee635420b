package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/petadmin/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve runs handler on a throwaway route and returns the recorder.
func serve(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.Any("/api/admin/members/:id/status", handler)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodGet, "/api/admin/members/4/status", nil)
	} else {
		req = httptest.NewRequest(http.MethodPatch, "/api/admin/members/4/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func envelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("body is not JSON: %q", w.Body.String())
	}
	return m
}

func TestSuccess(t *testing.T) {
	tests := []struct {
		name   string
		result any
		want   string
	}{
		{"object", gin.H{"status": "DEACTIVATED"}, `{"status":"DEACTIVATED"}`},
		{"null", nil, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(func(c *gin.Context) { Success(c, tt.result) }, "")
			want := `{"isSuccess":true,"code":200,"message":"success","result":` + tt.want + `}`
			if w.Code != http.StatusOK || w.Body.String() != want {
				t.Errorf("got %d %s\nwant 200 %s", w.Code, w.Body.String(), want)
			}
		})
	}
}

func TestList_PageShape(t *testing.T) {
	page := domain.PageResult[domain.Member]{
		Items:      []domain.Member{{ID: 1, Nickname: "Alice"}, {ID: 2, Nickname: "Bob"}},
		TotalItems: 2,
		TotalPages: 1,
		PageSize:   20,
	}
	w := serve(func(c *gin.Context) { List(c, page) }, "")

	var resp struct {
		IsSuccess bool `json:"isSuccess"`
		Result    struct {
			Content       []domain.Member `json:"content"`
			TotalElements int64           `json:"totalElements"`
			TotalPages    int             `json:"totalPages"`
			Size          int             `json:"size"`
		} `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.IsSuccess || len(resp.Result.Content) != 2 || resp.Result.TotalElements != 2 || resp.Result.Size != 20 {
		t.Errorf("unexpected page: %s", w.Body.String())
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", domain.NewAppError(domain.CodeNotFound, "member not found", nil), http.StatusNotFound, "member not found"},
		{"conflict", domain.NewAppError(domain.CodeConflict, "post already deleted", nil), http.StatusConflict, "post already deleted"},
		{"validation", domain.NewAppError(domain.CodeValidation, "cannot deactivate yourself", nil), http.StatusBadRequest, "cannot deactivate yourself"},
		{"empty message uses code name", &domain.AppError{Code: domain.CodeForbidden}, http.StatusForbidden, "forbidden"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"plain error is hidden", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "internal error"},
		{"upstream http", domain.NewHTTPError(http.StatusForbidden, "Forbidden"), http.StatusForbidden, "Forbidden"},
		{"upstream rejected", domain.NewRejectedError(http.StatusOK, "cannot delete admin"), http.StatusOK, "cannot delete admin"},
		{"wrapped upstream", fmt.Errorf("delete: %w", domain.NewHTTPError(http.StatusConflict, "")), http.StatusConflict, "Conflict"},
		{"network", domain.NewNetworkError(errors.New("refused")), http.StatusBadGateway, "bad gateway"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var recorded []*gin.Error
			w := serve(func(c *gin.Context) {
				Error(c, tt.err)
				recorded = c.Errors
			}, "")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := envelope(t, w)
			if body["isSuccess"] != false || body["code"] != float64(tt.wantStatus) || body["message"] != tt.wantMsg {
				t.Errorf("envelope = %v", body)
			}
			if v, ok := body["result"]; !ok || v != nil {
				t.Errorf("result should be null, got %v", v)
			}
			if len(recorded) != 1 || !errors.Is(recorded[0].Err, tt.err) {
				t.Errorf("gin errors = %v", recorded)
			}
		})
	}
}

type statusInput struct {
	Status string `json:"status" binding:"required,oneof=ACTIVATED DEACTIVATED"`
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantOK    bool
		wantField string
		wantRule  string
	}{
		{"valid", `{"status":"DEACTIVATED"}`, true, "", ""},
		{"missing", `{}`, false, "status", "required"},
		{"unknown status", `{"status":"BANNED"}`, false, "status", "oneof=ACTIVATED DEACTIVATED"},
		{"broken json", `{"status`, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in statusInput
			var ok bool
			w := serve(func(c *gin.Context) { ok = BindAndValidate(c, &in) }, tt.body)

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				if w.Body.Len() != 0 || in.Status != "DEACTIVATED" {
					t.Errorf("body %q, status %q", w.Body.String(), in.Status)
				}
				return
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			var resp ValidationErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.IsSuccess || resp.Code != http.StatusBadRequest {
				t.Errorf("envelope = %+v", resp)
			}
			if tt.wantField != "" && resp.Errors[tt.wantField] != tt.wantRule {
				t.Errorf("errors = %v, want %s=%q", resp.Errors, tt.wantField, tt.wantRule)
			}
		})
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidationError(t *testing.T) {
	err := validator.New().Struct(loginInput{Email: "admin@example.com", Password: "short"})

	w := serve(func(c *gin.Context) { ValidationError(c, err) }, "")
	var resp ValidationErrorResponse
	if jerr := json.Unmarshal(w.Body.Bytes(), &resp); jerr != nil {
		t.Fatal(jerr)
	}
	if resp.Message != "validation error" || len(resp.Errors) != 1 || resp.Errors["password"] != "min=8" {
		t.Errorf("resp = %+v", resp)
	}

	w = serve(func(c *gin.Context) { ValidationError(c, errors.New("bad json")) }, "")
	if body := envelope(t, w); w.Code != http.StatusBadRequest || body["message"] != "bad json" {
		t.Errorf("got %d %v", w.Code, body)
	}
}

func TestPreflight(t *testing.T) {
	r := gin.New()
	r.OPTIONS("/api/admin/members", Preflight)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/admin/members", nil))

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}
