package domain

import (
	"fmt"
	"strings"
)

// PostType distinguishes lost-pet listings from found-pet listings.
type PostType string

const (
	PostTypeLost  PostType = "LOST"
	PostTypeFound PostType = "FOUND"
	// PostTypeAll is only valid as a list filter.
	PostTypeAll PostType = "ALL"
)

// ParsePostType parses a concrete post type (LOST or FOUND), case-insensitively.
func ParsePostType(s string) (PostType, error) {
	switch PostType(strings.ToUpper(strings.TrimSpace(s))) {
	case PostTypeLost:
		return PostTypeLost, nil
	case PostTypeFound:
		return PostTypeFound, nil
	}
	return "", NewAppError(CodeValidation, fmt.Sprintf("invalid post type %q", s), nil)
}

// ParsePostTypeFilter parses a list filter; empty means ALL.
func ParsePostTypeFilter(s string) (PostType, error) {
	if strings.TrimSpace(s) == "" || strings.EqualFold(strings.TrimSpace(s), string(PostTypeAll)) {
		return PostTypeAll, nil
	}
	return ParsePostType(s)
}

// Path returns the lower-case path segment used by the admin API.
func (t PostType) Path() string {
	return strings.ToLower(string(t))
}

// Post is a lost or found listing.
type Post struct {
	ID             int64      `gorm:"primaryKey" json:"id"`
	Type           PostType   `gorm:"size:10;not null;index" json:"type"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Content        string     `gorm:"type:text" json:"content"`
	PetName        string     `gorm:"size:100" json:"petName,omitempty"`
	Breed          string     `gorm:"size:100" json:"breed,omitempty"`
	Location       string     `gorm:"size:255" json:"location,omitempty"`
	ImageURL       string     `gorm:"size:500" json:"imageUrl,omitempty"`
	AuthorID       int64      `gorm:"index;not null" json:"authorId"`
	AuthorNickname string     `gorm:"size:100" json:"authorNickname"`
	AIGenerated    bool       `gorm:"column:ai_generated;index" json:"aiGenerated"`
	CreatedAt      Timestamp  `json:"createdAt"`
	IsDeleted      *bool      `json:"isDeleted,omitempty"`
	DeletedAt      *Timestamp `json:"deletedAt,omitempty"`
}

// GetID implements Identifiable.
func (p Post) GetID() int64 { return p.ID }

// Deleted reports whether the post carries a resolved delete action.
func (p Post) Deleted() bool {
	return p.IsDeleted != nil && *p.IsDeleted
}

// PostFilter narrows the post list.
type PostFilter struct {
	Type   PostType
	AIOnly bool
}

// PostRef addresses one post. Admin API paths carry the type next to the id.
type PostRef struct {
	Type PostType
	ID   int64
}
