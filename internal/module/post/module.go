package post

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/pkg"
)

// PostModule registers post moderation routes.
type PostModule struct {
	handler *PostHandler
}

// NewModule creates a new PostModule. Panics if h is nil.
func NewModule(h *PostHandler) *PostModule {
	if h == nil {
		panic("post.NewModule: handler must not be nil")
	}
	return &PostModule{handler: h}
}

// RegisterRoutes registers /posts routes on the admin group. Deletion is
// accepted as DELETE or PATCH on the same path.
func (m *PostModule) RegisterRoutes(admin *gin.RouterGroup) {
	posts := admin.Group("/posts")
	posts.GET("", m.handler.List)
	posts.GET("/:type/:id", m.handler.Get)
	posts.DELETE("/:type/:id/delete", m.handler.Delete)
	posts.PATCH("/:type/:id/delete", m.handler.Delete)

	posts.OPTIONS("", pkg.Preflight)
	posts.OPTIONS("/:type/:id", pkg.Preflight)
	posts.OPTIONS("/:type/:id/delete", pkg.Preflight)
}
