package pkg

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/petadmin/internal/domain"
)

// ParamID parses the positive integer path parameter key.
func ParamID(c *gin.Context, key string) (int64, error) {
	raw := c.Param(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("invalid %s %q", key, raw), nil)
	}
	return id, nil
}

// ParamPostType parses the post type path parameter key. LOST and FOUND are
// accepted in any case.
func ParamPostType(c *gin.Context, key string) (domain.PostType, error) {
	return domain.ParsePostType(c.Param(key))
}
