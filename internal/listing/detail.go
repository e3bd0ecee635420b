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

// ErrDetailClosed is returned by Retry when no detail is open.
var ErrDetailClosed = errors.New("no detail open")

// LoadFunc loads the detail record for key.
type LoadFunc[K comparable, D any] func(ctx context.Context, token string, key K) (*D, error)

// DetailLoader holds the record shown in an open detail view. Closing
// discards it; reopening loads again.
type DetailLoader[K comparable, D any] struct {
	session *session.Session
	load    LoadFunc[K, D]
	logger  *slog.Logger

	mu     sync.Mutex
	open   bool
	key    K
	record *D
	err    error
	gen    uint64
}

// NewDetailLoader returns a closed loader.
func NewDetailLoader[K comparable, D any](sess *session.Session, load LoadFunc[K, D], logger *slog.Logger) *DetailLoader[K, D] {
	if sess == nil {
		panic("listing: nil session")
	}
	if load == nil {
		panic("listing: nil load func")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailLoader[K, D]{session: sess, load: load, logger: logger}
}

// Open shows key and loads its record. A load failure keeps the view open
// with the error so that Retry can be offered.
func (l *DetailLoader[K, D]) Open(ctx context.Context, key K) error {
	l.mu.Lock()
	l.open = true
	l.key = key
	l.record = nil
	l.err = nil
	l.gen++
	l.mu.Unlock()
	return l.fetch(ctx)
}

// Retry loads the open key again.
func (l *DetailLoader[K, D]) Retry(ctx context.Context) error {
	l.mu.Lock()
	if !l.open {
		l.mu.Unlock()
		return ErrDetailClosed
	}
	l.err = nil
	l.gen++
	l.mu.Unlock()
	return l.fetch(ctx)
}

// Close discards the record.
func (l *DetailLoader[K, D]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero K
	l.open = false
	l.key = zero
	l.record = nil
	l.err = nil
	l.gen++
}

// State returns whether a detail is open, its key, the loaded record and the
// last load error.
func (l *DetailLoader[K, D]) State() (open bool, key K, record *D, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open, l.key, l.record, l.err
}

func (l *DetailLoader[K, D]) fetch(ctx context.Context) error {
	l.mu.Lock()
	key, gen := l.key, l.gen
	l.mu.Unlock()

	record, err := l.load(ctx, l.session.Token(), key)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return ErrStale
	}
	if err != nil {
		l.err = err
		if domain.ClearsSession(err) {
			if clearErr := l.session.Clear(); clearErr != nil {
				l.logger.Warn("clear session failed", slog.String("error", clearErr.Error()))
			}
			return fmt.Errorf("%w: %w", ErrLoginRequired, err)
		}
		return err
	}
	l.record = record
	return nil
}
