package member

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/middleware"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// MemberHandler handles member administration.
type MemberHandler struct {
	src datasource.MemberSource
}

// NewHandler creates a new MemberHandler backed by src.
func NewHandler(src datasource.MemberSource) *MemberHandler {
	return &MemberHandler{src: src}
}

// List handles GET /members.
func (h *MemberHandler) List(c *gin.Context) {
	page, err := h.src.ListMembers(c.Request.Context(), middleware.BearerToken(c), pkg.ParsePageQuery(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Get handles GET /members/:id.
func (h *MemberHandler) Get(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	detail, err := h.src.GetMember(c.Request.Context(), middleware.BearerToken(c), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, detail)
}

// SetStatus handles PATCH /members/:id/status.
func (h *MemberHandler) SetStatus(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req StatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	status, err := domain.ParseMemberStatus(req.Status)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.src.SetMemberStatus(c.Request.Context(), middleware.BearerToken(c), id, status); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, StatusResult{ID: id, Status: status})
}

// Delete handles DELETE /members/:id.
func (h *MemberHandler) Delete(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.src.DeleteMember(c.Request.Context(), middleware.BearerToken(c), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, DeleteResult{ID: id, Deleted: true})
}
