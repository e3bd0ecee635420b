package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// Envelope is the wrapper every backend response uses. Member and report
// endpoints set isSuccess; the posts endpoint sets success instead.
type Envelope struct {
	IsSuccess *bool           `json:"isSuccess,omitempty"`
	Success   *bool           `json:"success,omitempty"`
	Code      any             `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     json.RawMessage `json:"error,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// Succeeded is the single success predicate for both envelope shapes.
func (e *Envelope) Succeeded() bool {
	return (e.IsSuccess != nil && *e.IsSuccess) || (e.Success != nil && *e.Success)
}

// RejectionMessage returns message, falling back to the error field.
func (e *Envelope) RejectionMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Error) == 0 || bytes.Equal(e.Error, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(e.Error)
}

func hasResult(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// pageInfo is the pagination metadata, either flat on result or nested
// under result.pageInfo.
type pageInfo struct {
	TotalElements *int64 `json:"totalElements"`
	TotalPages    *int   `json:"totalPages"`
	Page          *int   `json:"page"`
}

type rawPage struct {
	Content    json.RawMessage `json:"content"`
	TotalUsers *int64          `json:"totalUsers"`
	PageInfo   *pageInfo       `json:"pageInfo"`
	pageInfo
}

// decodePage maps a result payload onto a PageResult for q. Items are
// de-duplicated by id keeping the first occurrence and truncated to
// q.PageSize. A missing totalElements falls back to the returned item count
// and a missing totalPages to ceil(totalItems / pageSize); both undercount
// on a partial last page, which is accepted.
func decodePage[T domain.Identifiable](raw json.RawMessage, q domain.PageQuery) (*domain.PageResult[T], *int64, error) {
	var items []T
	var page rawPage

	trimmed := bytes.TrimSpace(raw)
	switch {
	case !hasResult(trimmed):
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, nil, fmt.Errorf("decode items: %w", err)
		}
	default:
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, nil, fmt.Errorf("decode page: %w", err)
		}
		if hasResult(page.Content) {
			if err := json.Unmarshal(page.Content, &items); err != nil {
				return nil, nil, fmt.Errorf("decode content: %w", err)
			}
		}
	}

	info := page.pageInfo
	if page.PageInfo != nil {
		info = mergePageInfo(*page.PageInfo, info)
	}

	items = Dedupe(items)
	if q.PageSize > 0 && len(items) > q.PageSize {
		items = items[:q.PageSize]
	}

	result := &domain.PageResult[T]{
		Items:     items,
		PageIndex: q.PageIndex,
		PageSize:  q.PageSize,
	}
	if result.Items == nil {
		result.Items = []T{}
	}

	if info.TotalElements != nil {
		result.TotalItems = *info.TotalElements
	} else {
		result.TotalItems = int64(len(items))
	}
	if info.TotalPages != nil {
		result.TotalPages = *info.TotalPages
	} else {
		result.TotalPages = pkg.TotalPages(result.TotalItems, q.PageSize)
	}
	if info.Page != nil && *info.Page >= 0 {
		result.PageIndex = *info.Page
	}

	return result, page.TotalUsers, nil
}

// mergePageInfo prefers the nested values and falls back to the flat ones.
func mergePageInfo(nested, flat pageInfo) pageInfo {
	if nested.TotalElements == nil {
		nested.TotalElements = flat.TotalElements
	}
	if nested.TotalPages == nil {
		nested.TotalPages = flat.TotalPages
	}
	if nested.Page == nil {
		nested.Page = flat.Page
	}
	return nested
}

// Dedupe returns items with later duplicates of an id removed.
func Dedupe[T domain.Identifiable](items []T) []T {
	if len(items) < 2 {
		return items
	}
	seen := make(map[int64]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id := item.GetID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}
