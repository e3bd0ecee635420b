package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// HeaderXRequestID is read from trusted callers and always echoed back.
const HeaderXRequestID = pkg.RequestIDHeader

const requestIDContextKey = "request_id"

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls request-id reuse.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed inbound X-Request-ID, e.g. the one
	// the admin console sends with every command.
	TrustUpstream bool
}

// RequestID assigns a fresh UUID to every request.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig assigns a request ID and makes it visible to every
// later stage: the gin context, the X-Request-ID response header, the
// logger's context attributes, and outbound upstream calls.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if cfg.TrustUpstream {
			if in := c.GetHeader(HeaderXRequestID); requestIDPattern.MatchString(in) {
				id = in
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDContextKey, id)
		c.Header(HeaderXRequestID, id)

		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id))
		c.Request = c.Request.WithContext(pkg.WithRequestID(ctx, id))

		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	id, _ := c.Get(requestIDContextKey)
	s, _ := id.(string)
	return s
}
