package listing

import (
	"github.com/simp-lee/petadmin/internal/domain"
)

// ApplyMutation returns a copy of items in which the entry with id is
// replaced by patch(entry). No entry is ever removed. When id is absent,
// items is returned as is.
func ApplyMutation[T domain.Identifiable](items []T, id int64, patch func(T) T) []T {
	idx := -1
	for i, item := range items {
		if item.GetID() == id {
			idx = i
			break
		}
	}
	if idx < 0 || patch == nil {
		return items
	}

	out := make([]T, len(items))
	copy(out, items)
	out[idx] = patch(out[idx])
	return out
}

// SetMemberStatus patches a member's status.
func SetMemberStatus(status domain.MemberStatus) func(domain.Member) domain.Member {
	return func(m domain.Member) domain.Member {
		m.Status = status
		return m
	}
}

// MarkMemberDeleted flags a member as soft-deleted at now. A member that is
// already flagged keeps its first deletion time.
func MarkMemberDeleted(now domain.Timestamp) func(domain.Member) domain.Member {
	return func(m domain.Member) domain.Member {
		if m.IsDeleted != nil && *m.IsDeleted && m.DeletedAt != nil {
			return m
		}
		deleted := true
		at := now
		m.IsDeleted = &deleted
		m.DeletedAt = &at
		return m
	}
}

// MarkPostDeleted flags a post as soft-deleted at now. A post that is
// already flagged keeps its first deletion time.
func MarkPostDeleted(now domain.Timestamp) func(domain.Post) domain.Post {
	return func(p domain.Post) domain.Post {
		if p.Deleted() && p.DeletedAt != nil {
			return p
		}
		deleted := true
		at := now
		p.IsDeleted = &deleted
		p.DeletedAt = &at
		return p
	}
}

// MarkReportResolved records the action taken on a report. The first
// recorded action is kept.
func MarkReportResolved(action domain.ReportAction) func(domain.Report) domain.Report {
	return func(r domain.Report) domain.Report {
		if r.Resolved() {
			return r
		}
		r.ActionState = action
		r.Status = domain.ReportResolved
		return r
	}
}
