package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

const (
	loginPath   = "/api/auth/login"
	membersPath = "/api/admin/members"
	postsPath   = "/api/admin/posts"
	reportsPath = "/api/admin/reports"
)

// Login exchanges credentials for tokens. It is the only call that does not
// need a token.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	raw, err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      loginPath,
		body:      map[string]string{"email": email, "password": password},
		anonymous: true,
	})
	if err != nil {
		return nil, err
	}
	var out domain.LoginResult
	if err := decodeResult(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ping checks that token is still accepted by fetching the smallest
// possible member page.
func (c *Client) Ping(ctx context.Context, token string) error {
	_, err := c.ListMembers(ctx, token, domain.PageQuery{PageSize: 1})
	return err
}

// ListMembers fetches one page of members. SearchText matches nickname or email.
func (c *Client) ListMembers(ctx context.Context, token string, q domain.PageQuery) (*domain.MemberPage, error) {
	raw, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   membersPath,
		query:  pkg.EncodePageQuery(q),
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	page, totalUsers, err := decodePage[domain.Member](raw, q)
	if err != nil {
		return nil, malformed(err)
	}
	out := &domain.MemberPage{PageResult: *page, TotalUsers: page.TotalItems}
	if totalUsers != nil {
		out.TotalUsers = *totalUsers
	}
	return out, nil
}

// GetMember fetches a member with nested activity.
func (c *Client) GetMember(ctx context.Context, token string, id int64) (*domain.MemberDetail, error) {
	raw, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   memberPath(id),
		token:  token,
		detail: true,
	})
	if err != nil {
		return nil, err
	}
	if !hasResult(raw) {
		return nil, domain.NewNotFoundError("member not found")
	}
	var out domain.MemberDetail
	if err := decodeResult(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetMemberStatus changes a member's account status.
func (c *Client) SetMemberStatus(ctx context.Context, token string, id int64, status domain.MemberStatus) error {
	_, err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   memberPath(id) + "/status",
		body:   map[string]string{"status": string(status)},
		token:  token,
	})
	return err
}

// DeleteMember soft-deletes a member.
func (c *Client) DeleteMember(ctx context.Context, token string, id int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   memberPath(id),
		token:  token,
	})
	return err
}

// ListPosts fetches one page of posts narrowed by filter.
func (c *Client) ListPosts(ctx context.Context, token string, filter domain.PostFilter, q domain.PageQuery) (*domain.PageResult[domain.Post], error) {
	query := pkg.EncodePageQuery(q)
	postType := filter.Type
	if postType == "" {
		postType = domain.PostTypeAll
	}
	query.Set("type", string(postType))
	if filter.AIOnly {
		query.Set("aiOnly", "true")
	}

	raw, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   postsPath,
		query:  query,
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	page, _, err := decodePage[domain.Post](raw, q)
	if err != nil {
		return nil, malformed(err)
	}
	return page, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, token string, postType domain.PostType, id int64) (*domain.Post, error) {
	raw, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   postPath(postType, id),
		token:  token,
		detail: true,
	})
	if err != nil {
		return nil, err
	}
	if !hasResult(raw) {
		return nil, domain.NewNotFoundError("post not found")
	}
	var out domain.Post
	if err := decodeResult(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost soft-deletes a post.
func (c *Client) DeletePost(ctx context.Context, token string, postType domain.PostType, id int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   postPath(postType, id) + "/delete",
		token:  token,
	})
	return err
}

// ListReports fetches one page of reports.
func (c *Client) ListReports(ctx context.Context, token string, q domain.PageQuery) (*domain.PageResult[domain.Report], error) {
	query := pkg.EncodePageQuery(domain.PageQuery{PageIndex: q.PageIndex, PageSize: q.PageSize})
	raw, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   reportsPath,
		query:  query,
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	page, _, err := decodePage[domain.Report](raw, q)
	if err != nil {
		return nil, malformed(err)
	}
	return page, nil
}

// IgnoreReport dismisses a report without touching the reported post.
func (c *Client) IgnoreReport(ctx context.Context, token string, postType domain.PostType, id int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   reportPath(postType, id) + "/ignore",
		token:  token,
	})
	return err
}

// DeleteReport resolves a report by deleting the reported post.
func (c *Client) DeleteReport(ctx context.Context, token string, postType domain.PostType, id int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   reportPath(postType, id) + "/delete",
		token:  token,
	})
	return err
}

func memberPath(id int64) string {
	return membersPath + "/" + strconv.FormatInt(id, 10)
}

func postPath(t domain.PostType, id int64) string {
	return postsPath + "/" + url.PathEscape(t.Path()) + "/" + strconv.FormatInt(id, 10)
}

func reportPath(t domain.PostType, id int64) string {
	return reportsPath + "/" + url.PathEscape(t.Path()) + "/" + strconv.FormatInt(id, 10)
}

func malformed(err error) error {
	return &domain.FetchError{Kind: domain.KindRejected, Status: http.StatusOK, Message: "malformed result", Err: err}
}
