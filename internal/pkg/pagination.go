package pkg

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/domain"
)

const (
	// DefaultPageSize is used when a request carries no usable size.
	DefaultPageSize = 20
	// MaxPageSize caps the size a client may ask for.
	MaxPageSize = 100
	defaultSort = "id:desc"
)

// Query parameter names shared by every admin list endpoint.
const (
	ParamQuery = "query"
	ParamPage  = "page"
	ParamSize  = "size"
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DecodePageQuery reads query, page (0-based) and size from values. The
// search text is kept verbatim; Search trims it. Missing or invalid numbers fall back to page 0 and DefaultPageSize; size is
// clamped to MaxPageSize.
func DecodePageQuery(values url.Values) domain.PageQuery {
	page, err := strconv.Atoi(values.Get(ParamPage))
	if err != nil || page < 0 {
		page = 0
	}

	size, err := strconv.Atoi(values.Get(ParamSize))
	if err != nil || size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return domain.PageQuery{
		SearchText: values.Get(ParamQuery),
		PageIndex:  page,
		PageSize:   size,
	}
}

// EncodePageQuery is the inverse of DecodePageQuery. An empty search text is
// omitted.
func EncodePageQuery(q domain.PageQuery) url.Values {
	values := url.Values{}
	if q.SearchText != "" {
		values.Set(ParamQuery, q.SearchText)
	}
	values.Set(ParamPage, strconv.Itoa(q.PageIndex))
	values.Set(ParamSize, strconv.Itoa(q.PageSize))
	return values
}

// ParsePageQuery extracts the page query from the request's query string.
func ParsePageQuery(c *gin.Context) domain.PageQuery {
	return DecodePageQuery(c.Request.URL.Query())
}

// TotalPages returns ceil(total / size), or 0 when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	s := int64(size)
	return int((total + s - 1) / s)
}

// NewPageResult creates a PageResult with computed TotalPages.
func NewPageResult[T any](items []T, total int64, q domain.PageQuery) *domain.PageResult[T] {
	if items == nil {
		items = []T{}
	}

	return &domain.PageResult[T]{
		Items:      items,
		TotalItems: total,
		TotalPages: TotalPages(total, q.PageSize),
		PageIndex:  q.PageIndex,
		PageSize:   q.PageSize,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET for a 0-based page.
func Paginate(q domain.PageQuery) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		size := q.PageSize
		if size <= 0 {
			size = DefaultPageSize
		}
		page := max(q.PageIndex, 0)
		return db.Offset(page * size).Limit(size)
	}
}

// Search returns a GORM scope matching text as a substring of any of fields.
// Field names failing validation are skipped; an empty text or no valid
// fields leaves the query untouched.
func Search(text string, fields ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		text = strings.TrimSpace(text)
		if text == "" {
			return db
		}

		var conds []string
		var args []any
		pattern := "%" + strings.ToLower(text) + "%"
		for _, f := range fields {
			if !validFieldName.MatchString(f) {
				continue
			}
			conds = append(conds, "LOWER("+f+") LIKE ?")
			args = append(args, pattern)
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// Sort returns a GORM scope that applies ORDER BY from a "field:direction"
// string. Only field names present in the allowed list are accepted; others
// are silently ignored. An empty sort uses "id:desc".
func Sort(sort string, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if sort == "" {
			sort = defaultSort
		}
		field, direction, ok := strings.Cut(sort, ":")
		if !ok {
			return db
		}

		field = strings.TrimSpace(field)
		direction = strings.TrimSpace(strings.ToLower(direction))

		if direction != "asc" && direction != "desc" {
			return db
		}

		if !validFieldName.MatchString(field) {
			return db
		}

		if !isAllowed(field, allowed) {
			return db
		}

		return db.Order(field + " " + direction)
	}
}

// isAllowed checks if a field name is in the allowed list.
func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
