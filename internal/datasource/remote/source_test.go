package remote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/upstream"
)

func newSource(t *testing.T, h http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := upstream.NewClient(srv.URL, upstream.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return New(c)
}

func TestSource_ForwardsBearerToken(t *testing.T) {
	var gotAuth string
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `{"isSuccess":true,"result":{"content":[{"id":1}],"totalElements":1}}`)
	})

	page, err := s.ListReports(context.Background(), "inbound-token", domain.PageQuery{PageSize: 20})
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if gotAuth != "Bearer inbound-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(page.Items) != 1 {
		t.Errorf("items = %d, want 1", len(page.Items))
	}
}

func TestSource_PassesUpstreamStatusThrough(t *testing.T) {
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	err := s.SetMemberStatus(context.Background(), "tok", 1, domain.MemberDeactivated)
	if got := domain.HTTPStatusCode(err); got != http.StatusTeapot {
		t.Errorf("status = %d, want %d (err %v)", got, http.StatusTeapot, err)
	}
}

func TestSource_CheckAndName(t *testing.T) {
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if s.Name() != datasource.ModeRemote {
		t.Errorf("Name() = %q", s.Name())
	}
	if err := s.Check(context.Background()); err != nil {
		t.Errorf("Check: any HTTP answer counts as reachable, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestSource_CheckUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := upstream.NewClient(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := New(c).Check(context.Background()); domain.FetchKind(err) != domain.KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}
