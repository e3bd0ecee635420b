package app

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// abortWithStatus ends the request with the JSON envelope for a bare status.
func abortWithStatus(c *gin.Context, code int) {
	c.AbortWithStatusJSON(code, pkg.Response{
		IsSuccess: false,
		Code:      code,
		Message:   defaultStatusText(code),
		Result:    nil,
	})
}

// defaultStatusText returns a short lower-case label for common error codes.
func defaultStatusText(code int) string {
	switch code {
	case 400:
		return "bad request"
	case 401:
		return "unauthorized"
	case 404:
		return "not found"
	case 405:
		return "method not allowed"
	case 408:
		return "request timeout"
	case 429:
		return "too many requests"
	case 500:
		return "internal server error"
	case 503:
		return "service unavailable"
	default:
		return "error"
	}
}
