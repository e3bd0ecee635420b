package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

const authorizationHeader = "Authorization"

// RequireAuthHeader rejects requests without an Authorization header with
// 401 before any handler runs. Preflight requests pass through so browsers
// can still discover the CORS policy. The header's value is not verified
// here; the data source does that.
func RequireAuthHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if strings.TrimSpace(c.GetHeader(authorizationHeader)) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{
				IsSuccess: false,
				Code:      http.StatusUnauthorized,
				Message:   "authorization header required",
			})
			return
		}
		c.Next()
	}
}

// BearerToken returns the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively. A header without a scheme is taken
// as the raw token; an empty or missing header yields "".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if h == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok {
		return h
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
