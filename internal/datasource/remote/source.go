// Package remote forwards admin calls to the platform backend.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/upstream"
)

// Source relays every call with the inbound bearer token re-attached.
// Upstream failures come back as *domain.FetchError carrying the upstream
// status, so the HTTP layer passes them through unchanged.
type Source struct {
	*upstream.Client
	pinger *http.Client
}

var _ datasource.DataSource = (*Source)(nil)

// New wraps client.
func New(client *upstream.Client) *Source {
	if client == nil {
		panic("remote: nil upstream client")
	}
	return &Source{Client: client, pinger: &http.Client{Timeout: upstream.DefaultTimeout}}
}

// Name implements datasource.DataSource.
func (s *Source) Name() string { return datasource.ModeRemote }

// Check reports whether the backend answers at all. Any HTTP response
// counts; only a transport failure is an error.
func (s *Source) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL(), nil)
	if err != nil {
		return fmt.Errorf("build health check: %w", err)
	}
	resp, err := s.pinger.Do(req)
	if err != nil {
		return domain.NewNetworkError(err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	resp.Body.Close()
	return nil
}

// Close implements datasource.DataSource.
func (s *Source) Close() error { return nil }
