package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// AuthHandler handles administrator login.
type AuthHandler struct {
	src datasource.AuthSource
}

// NewHandler creates a new AuthHandler backed by src.
func NewHandler(src datasource.AuthSource) *AuthHandler {
	return &AuthHandler{src: src}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	res, err := h.src.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, res)
}
