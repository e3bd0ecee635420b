package domain

// ReportAction is the terminal administrative action taken on a report.
type ReportAction string

const (
	ReportDeleted ReportAction = "deleted"
	ReportIgnored ReportAction = "ignored"
)

// Report statuses as stored by the fixture backend.
const (
	ReportPending  = "PENDING"
	ReportResolved = "RESOLVED"
)

// Report is a user complaint about a post.
type Report struct {
	ID               int64        `gorm:"primaryKey" json:"id"`
	Type             PostType     `gorm:"size:10;not null;index" json:"type"`
	PostID           int64        `gorm:"index;not null" json:"postId"`
	PostTitle        string       `gorm:"size:200" json:"postTitle"`
	ReporterID       int64        `gorm:"index;not null" json:"reporterId"`
	ReporterNickname string       `gorm:"size:100" json:"reporterNickname"`
	Reason           string       `gorm:"size:100;not null" json:"reason"`
	Content          string       `gorm:"type:text" json:"content,omitempty"`
	Status           string       `gorm:"size:20;not null" json:"status"`
	CreatedAt        Timestamp    `json:"createdAt"`
	ActionState      ReportAction `gorm:"size:20" json:"actionState,omitempty"`
}

// GetID implements Identifiable.
func (r Report) GetID() int64 { return r.ID }

// Resolved reports whether an action has already been taken on the report.
func (r Report) Resolved() bool {
	return r.ActionState != ""
}
