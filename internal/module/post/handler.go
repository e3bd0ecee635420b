package post

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/middleware"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// PostHandler handles post moderation.
type PostHandler struct {
	src datasource.PostSource
}

// NewHandler creates a new PostHandler backed by src.
func NewHandler(src datasource.PostSource) *PostHandler {
	return &PostHandler{src: src}
}

// List handles GET /posts?type=&aiOnly=&query=&page=&size=.
func (h *PostHandler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	page, err := h.src.ListPosts(c.Request.Context(), middleware.BearerToken(c), filter, pkg.ParsePageQuery(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, page)
}

// Get handles GET /posts/:type/:id.
func (h *PostHandler) Get(c *gin.Context) {
	ref, err := parseRef(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	p, err := h.src.GetPost(c.Request.Context(), middleware.BearerToken(c), ref.Type, ref.ID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// Delete handles DELETE and PATCH /posts/:type/:id/delete.
func (h *PostHandler) Delete(c *gin.Context) {
	ref, err := parseRef(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.src.DeletePost(c.Request.Context(), middleware.BearerToken(c), ref.Type, ref.ID); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, DeleteResult{Type: ref.Type, ID: ref.ID, Deleted: true})
}

func parseFilter(c *gin.Context) (domain.PostFilter, error) {
	postType, err := domain.ParsePostTypeFilter(c.Query(ParamType))
	if err != nil {
		return domain.PostFilter{}, err
	}

	var aiOnly bool
	if raw := c.Query(ParamAIOnly); raw != "" {
		aiOnly, err = strconv.ParseBool(raw)
		if err != nil {
			return domain.PostFilter{}, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("invalid %s %q", ParamAIOnly, raw), nil)
		}
	}
	return domain.PostFilter{Type: postType, AIOnly: aiOnly}, nil
}

func parseRef(c *gin.Context) (domain.PostRef, error) {
	postType, err := pkg.ParamPostType(c, "type")
	if err != nil {
		return domain.PostRef{}, err
	}
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		return domain.PostRef{}, err
	}
	return domain.PostRef{Type: postType, ID: id}, nil
}
