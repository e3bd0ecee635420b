// Package listing implements the list screens of the admin console: a
// query state holder, a fetch-and-store screen, an id-scoped reconciler for
// mutation results, and a detail loader.
package listing

import (
	"fmt"
	"strings"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// QueryState owns the search text and page position of one screen.
// Changing the search text or page size moves back to the first page.
type QueryState struct {
	query domain.PageQuery
	dirty bool
}

// NewQueryState starts on page 0 with the given size. A size outside
// 1..pkg.MaxPageSize uses pkg.DefaultPageSize.
func NewQueryState(pageSize int) *QueryState {
	if pageSize <= 0 || pageSize > pkg.MaxPageSize {
		pageSize = pkg.DefaultPageSize
	}
	return &QueryState{
		query: domain.PageQuery{PageSize: pageSize},
		dirty: true,
	}
}

// Query returns the current query.
func (s *QueryState) Query() domain.PageQuery {
	return s.query
}

// Dirty reports whether the query changed since the last fetch.
func (s *QueryState) Dirty() bool {
	return s.dirty
}

// SetSearchText replaces the search text, trimmed, and resets to page 0.
func (s *QueryState) SetSearchText(text string) {
	s.query.SearchText = strings.TrimSpace(text)
	s.query.PageIndex = 0
	s.dirty = true
}

// SetPageSize replaces the page size and resets to page 0.
func (s *QueryState) SetPageSize(n int) error {
	if n <= 0 || n > pkg.MaxPageSize {
		return domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("page size must be between 1 and %d", pkg.MaxPageSize), nil)
	}
	s.query.PageSize = n
	s.query.PageIndex = 0
	s.dirty = true
	return nil
}

// SetPageIndex moves to page i without touching the other fields.
func (s *QueryState) SetPageIndex(i int) error {
	if i < 0 {
		return domain.NewAppError(domain.CodeValidation, "page index must not be negative", nil)
	}
	s.query.PageIndex = i
	s.dirty = true
	return nil
}

// markClean records that the current query has been fetched.
func (s *QueryState) markClean() {
	s.dirty = false
}
