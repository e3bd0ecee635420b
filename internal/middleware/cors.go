package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig configures CORS. Empty lists are sent as empty headers.
type CORSConfig struct {
	// AllowOrigins is the origin allowlist. ["*"] allows any origin.
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds, sent verbatim.
	MaxAge string
}

// DefaultCORSConfig allows any origin without credentials.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", HeaderXRequestID},
		MaxAge:       "86400",
	}
}

// CORS is CORSWithConfig(DefaultCORSConfig()).
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig sets the Access-Control-* headers before the handler runs,
// so error and 401 responses carry them too. A wildcard without credentials
// answers "*" even when the request sent no Origin. Otherwise only an
// allowlisted Origin is echoed back, and the response varies on Origin.
// Preflights are left to the per-route OPTIONS handlers.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	anyOrigin := slices.Contains(cfg.AllowOrigins, "*")
	wildcard := anyOrigin && !cfg.AllowCredentials

	fixed := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(cfg.AllowMethods, ", "),
		"Access-Control-Allow-Headers":  strings.Join(cfg.AllowHeaders, ", "),
		"Access-Control-Expose-Headers": HeaderXRequestID,
	}
	if cfg.MaxAge != "" {
		fixed["Access-Control-Max-Age"] = cfg.MaxAge
	}
	if cfg.AllowCredentials {
		fixed["Access-Control-Allow-Credentials"] = "true"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if !wildcard {
			h.Add("Vary", "Origin")
		}

		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && (anyOrigin || slices.Contains(cfg.AllowOrigins, origin)):
			h.Set("Access-Control-Allow-Origin", origin)
		default:
			c.Next()
			return
		}
		for k, v := range fixed {
			h.Set(k, v)
		}
		c.Next()
	}
}
