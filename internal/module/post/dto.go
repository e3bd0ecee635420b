package post

import "github.com/simp-lee/petadmin/internal/domain"

// Query parameters accepted by GET /posts on top of the shared paging ones.
const (
	ParamType   = "type"
	ParamAIOnly = "aiOnly"
)

// DeleteResult identifies the deleted post.
type DeleteResult struct {
	Type    domain.PostType `json:"type"`
	ID      int64           `json:"id"`
	Deleted bool            `json:"deleted"`
}
