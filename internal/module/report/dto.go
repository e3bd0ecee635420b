package report

import "github.com/simp-lee/petadmin/internal/domain"

// ActionResult reports the action applied to a report.
type ActionResult struct {
	Type        domain.PostType     `json:"type"`
	ID          int64               `json:"id"`
	ActionState domain.ReportAction `json:"actionState"`
}
