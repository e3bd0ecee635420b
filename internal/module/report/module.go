package report

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// ReportModule registers report routes.
type ReportModule struct {
	handler *ReportHandler
}

// NewModule creates a new ReportModule. Panics if h is nil.
func NewModule(h *ReportHandler) *ReportModule {
	if h == nil {
		panic("report.NewModule: handler must not be nil")
	}
	return &ReportModule{handler: h}
}

// RegisterRoutes registers /reports routes on the admin group.
func (m *ReportModule) RegisterRoutes(admin *gin.RouterGroup) {
	reports := admin.Group("/reports")
	reports.GET("", m.handler.List)
	reports.PATCH("/:type/:id/ignore", m.handler.Ignore)
	reports.DELETE("/:type/:id/delete", m.handler.Delete)

	reports.OPTIONS("", pkg.Preflight)
	reports.OPTIONS("/:type/:id/ignore", pkg.Preflight)
	reports.OPTIONS("/:type/:id/delete", pkg.Preflight)
}
