package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/session"
)

var (
	// ErrLoginRequired means the session was cleared and the user must log in again.
	ErrLoginRequired = errors.New("login required")
	// ErrStale means a newer request was issued before this response arrived;
	// the response was discarded.
	ErrStale = errors.New("stale response discarded")
	// ErrCancelled means the user declined the confirmation prompt.
	ErrCancelled = errors.New("action cancelled")
	// ErrAlreadyResolved means a one-way action was already taken on the item,
	// so it accepts no further actions.
	ErrAlreadyResolved = errors.New("action already resolved")
	// ErrActionPending means another action on the same item is in flight.
	ErrActionPending = errors.New("action already pending")
	// ErrNotListed means the item is not on the current page.
	ErrNotListed = errors.New("item not on the current page")
)

// FetchFunc loads one page for q using token.
type FetchFunc[T domain.Identifiable] func(ctx context.Context, token string, q domain.PageQuery) (*domain.PageResult[T], error)

// Screen owns the query state and current page of one list. Every
// Refresh is tagged with a sequence number; a response is stored only if
// no newer Refresh was started in the meantime.
type Screen[T domain.Identifiable] struct {
	name    string
	session *session.Session
	fetch   FetchFunc[T]
	logger  *slog.Logger

	mu      sync.Mutex
	query   *QueryState
	page    domain.PageResult[T]
	err     error
	seq     uint64
	actions map[int64]ActionState

	onAccept func(*domain.PageResult[T])
}

// NewScreen returns a screen named name (used in logs) that fetches with fetch.
func NewScreen[T domain.Identifiable](name string, sess *session.Session, fetch FetchFunc[T], pageSize int, logger *slog.Logger) *Screen[T] {
	if sess == nil {
		panic("listing: nil session")
	}
	if fetch == nil {
		panic("listing: nil fetch func")
	}
	if logger == nil {
		logger = slog.Default()
	}
	q := NewQueryState(pageSize)
	return &Screen[T]{
		name:    name,
		session: sess,
		fetch:   fetch,
		logger:  logger,
		query:   q,
		page:    emptyPage[T](q.Query()),
		actions: make(map[int64]ActionState),
	}
}

// OnAccept registers fn to run with every response Refresh stores, before
// it is stored. Dropped and failed responses never reach fn. fn runs with
// the screen locked and must not call back into it.
func (s *Screen[T]) OnAccept(fn func(*domain.PageResult[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAccept = fn
}

// Name returns the screen name.
func (s *Screen[T]) Name() string { return s.name }

// Query returns the current query.
func (s *Screen[T]) Query() domain.PageQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.Query()
}

// Page returns a copy of the current page.
func (s *Screen[T]) Page() domain.PageResult[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page
	p.Items = append([]T(nil), s.page.Items...)
	return p
}

// Err returns the error of the last list fetch, if it failed.
func (s *Screen[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Item returns the entry with id on the current page.
func (s *Screen[T]) Item(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

// Search sets the search text and fetches page 0.
func (s *Screen[T]) Search(ctx context.Context, text string) error {
	s.mu.Lock()
	s.query.SetSearchText(text)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// SetPageSize changes the page size and fetches page 0.
func (s *Screen[T]) SetPageSize(ctx context.Context, n int) error {
	s.mu.Lock()
	err := s.query.SetPageSize(n)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// GoTo fetches page i.
func (s *Screen[T]) GoTo(ctx context.Context, i int) error {
	s.mu.Lock()
	err := s.query.SetPageIndex(i)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Next fetches the following page. On the last known page it does nothing.
func (s *Screen[T]) Next(ctx context.Context) error {
	s.mu.Lock()
	q := s.query.Query()
	last := s.page.TotalPages - 1
	s.mu.Unlock()
	if q.PageIndex >= last {
		return nil
	}
	return s.GoTo(ctx, q.PageIndex+1)
}

// Prev fetches the preceding page. On page 0 it does nothing.
func (s *Screen[T]) Prev(ctx context.Context) error {
	q := s.Query()
	if q.PageIndex == 0 {
		return nil
	}
	return s.GoTo(ctx, q.PageIndex-1)
}

// Refresh fetches the current query once.
//
// On failure the list is replaced by an empty page and the error is kept for
// inline display. Errors that invalidate the token clear the session and
// are returned wrapped in ErrLoginRequired. A response overtaken by a newer
// Refresh is dropped and ErrStale is returned.
func (s *Screen[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	q := s.query.Query()
	s.query.markClean()
	s.mu.Unlock()

	page, err := s.fetch(ctx, s.session.Token(), q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.DebugContext(ctx, "stale list response dropped",
			slog.String("screen", s.name),
			slog.Uint64("seq", seq),
			slog.Uint64("latest", s.seq),
		)
		return ErrStale
	}

	if err != nil {
		s.page = emptyPage[T](q)
		s.err = err
		s.logger.WarnContext(ctx, "list fetch failed",
			slog.String("screen", s.name),
			slog.String("error", err.Error()),
		)
		return s.loginRequired(err)
	}

	if page == nil {
		page = &domain.PageResult[T]{}
	}
	if s.onAccept != nil {
		s.onAccept(page)
	}
	s.page = *page
	if s.page.Items == nil {
		s.page.Items = []T{}
	}
	s.err = nil
	return nil
}

// loginRequired clears the session for errors that invalidate it.
// Callers hold s.mu.
func (s *Screen[T]) loginRequired(err error) error {
	if !domain.ClearsSession(err) {
		return err
	}
	if clearErr := s.session.Clear(); clearErr != nil {
		s.logger.Warn("clear session failed", slog.String("error", clearErr.Error()))
	}
	return fmt.Errorf("%w: %w", ErrLoginRequired, err)
}

func (s *Screen[T]) findLocked(id int64) (T, bool) {
	for _, item := range s.page.Items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func emptyPage[T any](q domain.PageQuery) domain.PageResult[T] {
	return domain.PageResult[T]{
		Items:     []T{},
		PageIndex: q.PageIndex,
		PageSize:  q.PageSize,
	}
}
