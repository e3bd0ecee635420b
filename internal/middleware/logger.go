package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/domain"
)

// Logger logs one record per request with method, path, route, status,
// latency and client IP. Errors attached with c.Error are added, and the
// upstream failure kind when one of them is a FetchError.
//
// 5xx is logged at error, 4xx at warn. Successful preflights and health
// checks go to debug; everything else is info. The Context methods let the
// logger's context middleware attach request_id.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if route := c.FullPath(); route != "" {
			attrs = append(attrs, slog.String("route", route))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
			if kind, ok := upstreamKind(c.Errors); ok {
				attrs = append(attrs, slog.String("upstream", kind))
			}
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case c.Request.Method == http.MethodOptions, c.Request.URL.Path == "/health":
			level = slog.LevelDebug
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}

func upstreamKind(errs []*gin.Error) (string, bool) {
	for _, e := range errs {
		var fe *domain.FetchError
		if errors.As(e.Err, &fe) {
			return fe.Kind.String(), true
		}
	}
	return "", false
}
