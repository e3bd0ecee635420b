package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/middleware"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// healthTimeout bounds the data source check behind /health.
const healthTimeout = 3 * time.Second

// Checker reports whether the backend behind the API is usable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	// Public modules register on /api.
	Public []Module
	// Admin modules register on /api/admin.
	Admin []Module
	// Health backs GET /health.
	Health Checker
	// RequireAuthHeader rejects /api/admin requests without an
	// Authorization header.
	RequireAuthHeader bool
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Public)+len(deps.Admin) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Health == nil {
		return errors.New("health checker is nil")
	}

	r.GET("/health", healthHandler(deps.Health))
	r.OPTIONS("/health", pkg.Preflight)

	api := r.Group("/api")
	for i, m := range deps.Public {
		if m == nil {
			return fmt.Errorf("public module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	admin := api.Group("/admin")
	if deps.RequireAuthHeader {
		admin.Use(middleware.RequireAuthHeader())
	}
	for i, m := range deps.Admin {
		if m == nil {
			return fmt.Errorf("admin module at index %d is nil", i)
		}
		m.RegisterRoutes(admin)
	}

	r.NoRoute(func(c *gin.Context) { abortWithStatus(c, http.StatusNotFound) })

	return nil
}

// healthHandler returns a handler that checks the data source and reports status.
func healthHandler(src Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		dsStatus := "ok"
		status := "ok"
		code := http.StatusOK
		if err := src.Check(ctx); err != nil {
			dsStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"mode":   src.Name(),
			"components": gin.H{
				"datasource": dsStatus,
			},
		})
	}
}
