package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Name() string                { return "stub" }
func (s stubChecker) Check(context.Context) error { return s.err }

// pingModule registers GET /ping and its preflight on whatever group it gets.
type pingModule struct{}

func (pingModule) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/ping", func(c *gin.Context) { pkg.Success(c, "pong") })
	g.OPTIONS("/ping", pkg.Preflight)
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- Health check tests ---

func TestHealthHandler_OK(t *testing.T) {
	r := gin.New()
	r.GET("/health", healthHandler(stubChecker{}))

	w := get(r, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if body["mode"] != "stub" {
		t.Errorf("expected mode 'stub', got %v", body["mode"])
	}
	components, ok := body["components"].(map[string]any)
	if !ok {
		t.Fatalf("expected components map, got %T", body["components"])
	}
	if components["datasource"] != "ok" {
		t.Errorf("expected datasource 'ok', got %v", components["datasource"])
	}
}

func TestHealthHandler_Degraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", healthHandler(stubChecker{err: errors.New("connection refused")}))

	w := get(r, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	if body["status"] != "degraded" {
		t.Errorf("expected status 'degraded', got %v", body["status"])
	}
	components := body["components"].(map[string]any)
	if components["datasource"] != "error" {
		t.Errorf("expected datasource 'error', got %v", components["datasource"])
	}
}

// --- RegisterRoutes tests ---

func TestRegisterRoutes_Validation(t *testing.T) {
	tests := []struct {
		name string
		r    *gin.Engine
		deps *RouteDeps
	}{
		{"nil router", nil, &RouteDeps{Public: []Module{pingModule{}}, Health: stubChecker{}}},
		{"nil deps", gin.New(), nil},
		{"no modules", gin.New(), &RouteDeps{Health: stubChecker{}}},
		{"nil health", gin.New(), &RouteDeps{Public: []Module{pingModule{}}}},
		{"nil public module", gin.New(), &RouteDeps{Public: []Module{nil}, Health: stubChecker{}}},
		{"nil admin module", gin.New(), &RouteDeps{Admin: []Module{nil}, Health: stubChecker{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RegisterRoutes(tt.r, tt.deps); err == nil {
				t.Fatal("RegisterRoutes() error = nil, want error")
			}
		})
	}
}

func TestRegisterRoutes_Groups(t *testing.T) {
	r := gin.New()
	err := RegisterRoutes(r, &RouteDeps{
		Public: []Module{pingModule{}},
		Admin:  []Module{pingModule{}},
		Health: stubChecker{},
	})
	if err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}

	for _, path := range []string{"/api/ping", "/api/admin/ping", "/health"} {
		if w := get(r, path); w.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, w.Code)
		}
	}
}

func TestRegisterRoutes_RequireAuthHeader(t *testing.T) {
	r := gin.New()
	err := RegisterRoutes(r, &RouteDeps{
		Public:            []Module{pingModule{}},
		Admin:             []Module{pingModule{}},
		Health:            stubChecker{},
		RequireAuthHeader: true,
	})
	if err != nil {
		t.Fatalf("RegisterRoutes() error = %v", err)
	}

	if w := get(r, "/api/admin/ping"); w.Code != http.StatusUnauthorized {
		t.Errorf("admin without header: status = %d, want 401", w.Code)
	}
	if w := get(r, "/api/admin/ping", "Authorization", "Bearer t"); w.Code != http.StatusOK {
		t.Errorf("admin with header: status = %d, want 200", w.Code)
	}
	if w := get(r, "/api/ping"); w.Code != http.StatusOK {
		t.Errorf("public route must not require a header: status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight must pass without a header: status = %d, want 204", w.Code)
	}
}

func TestNoRoute_JSONEnvelope(t *testing.T) {
	r := gin.New()
	if err := RegisterRoutes(r, &RouteDeps{Public: []Module{pingModule{}}, Health: stubChecker{}}); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/api/nope", "/somewhere"} {
		w := get(r, path)
		if w.Code != http.StatusNotFound {
			t.Fatalf("GET %s: status = %d, want 404", path, w.Code)
		}
		var resp pkg.Response
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("GET %s: json decode error: %v", path, err)
		}
		if resp.IsSuccess || resp.Code != http.StatusNotFound || resp.Message != "not found" {
			t.Errorf("GET %s: resp = %+v", path, resp)
		}
	}
}
