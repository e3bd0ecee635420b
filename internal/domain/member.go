package domain

import (
	"fmt"
	"strings"
)

// MemberStatus is the account state of a platform member.
type MemberStatus string

const (
	MemberActivated   MemberStatus = "ACTIVATED"
	MemberDeactivated MemberStatus = "DEACTIVATED"
)

// ParseMemberStatus parses s case-insensitively.
func ParseMemberStatus(s string) (MemberStatus, error) {
	switch MemberStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case MemberActivated:
		return MemberActivated, nil
	case MemberDeactivated:
		return MemberDeactivated, nil
	}
	return "", NewAppError(CodeValidation, fmt.Sprintf("invalid member status %q", s), nil)
}

// Member is a registered user of the platform as seen by an administrator.
type Member struct {
	ID           int64        `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Nickname     string       `gorm:"size:100;not null;index" json:"nickname"`
	Role         string       `gorm:"size:20;not null" json:"role"`
	Status       MemberStatus `gorm:"size:20;not null;index" json:"status"`
	PasswordHash string       `gorm:"size:255" json:"-"`
	PostCount    int64        `gorm:"-" json:"postCount"`
	ReportCount  int64        `gorm:"-" json:"reportCount"`
	CreatedAt    Timestamp    `json:"createdAt"`
	IsDeleted    *bool        `json:"isDeleted,omitempty"`
	DeletedAt    *Timestamp   `json:"deletedAt,omitempty"`
}

// GetID implements Identifiable.
func (m Member) GetID() int64 { return m.ID }

// MemberActivity lists what a member has posted and reported.
type MemberActivity struct {
	Posts   []Post   `json:"posts"`
	Reports []Report `json:"reports"`
}

// MemberDetail is a single member with nested activity.
type MemberDetail struct {
	Member
	Activity MemberActivity `json:"activity"`
}

// MemberPage is a page of members plus the platform-wide user count.
type MemberPage struct {
	PageResult[Member]
	TotalUsers int64 `json:"totalUsers"`
}
