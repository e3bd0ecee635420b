package member

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// MemberModule registers member administration routes.
type MemberModule struct {
	handler *MemberHandler
}

// NewModule creates a new MemberModule. Panics if h is nil.
func NewModule(h *MemberHandler) *MemberModule {
	if h == nil {
		panic("member.NewModule: handler must not be nil")
	}
	return &MemberModule{handler: h}
}

// RegisterRoutes registers /members routes on the admin group.
func (m *MemberModule) RegisterRoutes(admin *gin.RouterGroup) {
	members := admin.Group("/members")
	members.GET("", m.handler.List)
	members.GET("/:id", m.handler.Get)
	members.PATCH("/:id/status", m.handler.SetStatus)
	members.DELETE("/:id", m.handler.Delete)

	members.OPTIONS("", pkg.Preflight)
	members.OPTIONS("/:id", pkg.Preflight)
	members.OPTIONS("/:id/status", pkg.Preflight)
}
