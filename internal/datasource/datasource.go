// Package datasource defines what the HTTP surface needs from a backend.
//
// Two implementations exist: remote forwards every call to the platform's
// admin API, fixture serves a seeded local store. One is chosen at startup.
package datasource

import (
	"context"

	"github.com/simp-lee/petadmin/internal/domain"
)

// Modes accepted by datasource.mode.
const (
	ModeRemote  = "remote"
	ModeFixture = "fixture"
)

// AuthSource authenticates administrators.
type AuthSource interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
}

// MemberSource manages platform members. Every call carries the caller's
// bearer token.
type MemberSource interface {
	ListMembers(ctx context.Context, token string, q domain.PageQuery) (*domain.MemberPage, error)
	GetMember(ctx context.Context, token string, id int64) (*domain.MemberDetail, error)
	SetMemberStatus(ctx context.Context, token string, id int64, status domain.MemberStatus) error
	DeleteMember(ctx context.Context, token string, id int64) error
}

// PostSource moderates lost and found posts.
type PostSource interface {
	ListPosts(ctx context.Context, token string, filter domain.PostFilter, q domain.PageQuery) (*domain.PageResult[domain.Post], error)
	GetPost(ctx context.Context, token string, postType domain.PostType, id int64) (*domain.Post, error)
	DeletePost(ctx context.Context, token string, postType domain.PostType, id int64) error
}

// ReportSource handles reports against posts.
type ReportSource interface {
	ListReports(ctx context.Context, token string, q domain.PageQuery) (*domain.PageResult[domain.Report], error)
	IgnoreReport(ctx context.Context, token string, postType domain.PostType, id int64) error
	DeleteReport(ctx context.Context, token string, postType domain.PostType, id int64) error
}

// DataSource is the full backend used by the server.
type DataSource interface {
	AuthSource
	MemberSource
	PostSource
	ReportSource

	// Name returns the mode the source implements.
	Name() string
	// Check reports whether the backend is usable.
	Check(ctx context.Context) error
	// Close releases held resources.
	Close() error
}
