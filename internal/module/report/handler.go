package report

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/middleware"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// ReportHandler handles report resolution.
type ReportHandler struct {
	src datasource.ReportSource
}

// NewHandler creates a new ReportHandler backed by src.
func NewHandler(src datasource.ReportSource) *ReportHandler {
	return &ReportHandler{src: src}
}

// List handles GET /reports.
func (h *ReportHandler) List(c *gin.Context) {
	page, err := h.src.ListReports(c.Request.Context(), middleware.BearerToken(c), pkg.ParsePageQuery(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Ignore handles PATCH /reports/:type/:id/ignore.
func (h *ReportHandler) Ignore(c *gin.Context) {
	h.resolve(c, domain.ReportIgnored, h.src.IgnoreReport)
}

// Delete handles DELETE /reports/:type/:id/delete. The reported post is
// deleted along with resolving the report.
func (h *ReportHandler) Delete(c *gin.Context) {
	h.resolve(c, domain.ReportDeleted, h.src.DeleteReport)
}

func (h *ReportHandler) resolve(c *gin.Context, action domain.ReportAction,
	apply func(ctx context.Context, token string, postType domain.PostType, id int64) error,
) {
	postType, err := pkg.ParamPostType(c, "type")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := apply(c.Request.Context(), middleware.BearerToken(c), postType, id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, ActionResult{Type: postType, ID: id, ActionState: action})
}
