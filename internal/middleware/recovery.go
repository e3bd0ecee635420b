package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// Recovery turns handler panics into the JSON error envelope
//
//	{"isSuccess": false, "code": 500, "message": "internal server error", "result": null}
//
// and logs the value with its stack. A panic caused by the client going
// away is logged at warn and answered with nothing. http.ErrAbortHandler is
// re-raised for net/http.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			ctx := c.Request.Context()
			attrs := []slog.Attr{
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
			}
			if err, ok := rec.(error); ok && connectionLost(err) {
				logger.LogAttrs(ctx, slog.LevelWarn, "client connection lost", attrs...)
				c.Abort()
				return
			}

			attrs = append(attrs, slog.String("stack", string(debug.Stack())))
			logger.LogAttrs(ctx, slog.LevelError, "panic recovered", attrs...)
			c.AbortWithStatusJSON(http.StatusInternalServerError, pkg.Response{
				IsSuccess: false,
				Code:      http.StatusInternalServerError,
				Message:   "internal server error",
			})
		}()
		c.Next()
	}
}

func connectionLost(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
