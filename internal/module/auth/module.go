package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// AuthModule registers the login route.
type AuthModule struct {
	handler *AuthHandler
	guards  []gin.HandlerFunc
}

// NewModule creates a new AuthModule. guards run before the login handler,
// e.g. a stricter rate limit. Panics if h is nil.
func NewModule(h *AuthHandler, guards ...gin.HandlerFunc) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h, guards: guards}
}

// RegisterRoutes registers /auth routes on the /api group.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/login", append(append([]gin.HandlerFunc{}, m.guards...), m.handler.Login)...)
	auth.OPTIONS("/login", pkg.Preflight)
}
