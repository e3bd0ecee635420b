package pkg

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/simp-lee/petadmin/internal/domain"
)

// nopConn satisfies gorm.ConnPool without touching a database.
type nopConn struct{}

func (nopConn) PrepareContext(context.Context, string) (*sql.Stmt, error) { return nil, nil }
func (nopConn) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, nil
}
func (nopConn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, nil
}
func (nopConn) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }

// recordingTx is the transaction handed out by recordingPool.
type recordingTx struct {
	nopConn
	committed  bool
	rolledBack bool
	commitErr  error
}

func (r *recordingTx) Commit() error   { r.committed = true; return r.commitErr }
func (r *recordingTx) Rollback() error { r.rolledBack = true; return nil }

type recordingPool struct {
	nopConn
	tx       *recordingTx
	beginErr error
	begun    int
}

func (p *recordingPool) BeginTx(context.Context, *sql.TxOptions) (gorm.ConnPool, error) {
	p.begun++
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func recordingDB(pool *recordingPool) *gorm.DB {
	db := &gorm.DB{Config: &gorm.Config{}}
	db.Statement = &gorm.Statement{DB: db, ConnPool: pool}
	return db
}

func TestWithTx_Outcomes(t *testing.T) {
	fnErr := errors.New("post already deleted")
	commitErr := errors.New("database is locked")

	tests := []struct {
		name         string
		commitErr    error
		fn           func(*gorm.DB) error
		wantErr      error
		wantCommit   bool
		wantRollback bool
	}{
		{
			name:       "commit",
			fn:         func(*gorm.DB) error { return nil },
			wantCommit: true,
		},
		{
			name:         "fn error rolls back unwrapped",
			fn:           func(*gorm.DB) error { return fnErr },
			wantErr:      fnErr,
			wantRollback: true,
		},
		{
			name:       "commit failure is wrapped",
			commitErr:  commitErr,
			fn:         func(*gorm.DB) error { return nil },
			wantErr:    commitErr,
			wantCommit: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &recordingTx{commitErr: tt.commitErr}
			db := recordingDB(&recordingPool{tx: tx})

			err := WithTx(context.Background(), db, tt.fn)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == fnErr && err != fnErr {
				t.Errorf("fn error must be returned as is, got %v", err)
			}
			if tx.committed != tt.wantCommit {
				t.Errorf("committed = %v, want %v", tx.committed, tt.wantCommit)
			}
			if tx.rolledBack != tt.wantRollback {
				t.Errorf("rolledBack = %v, want %v", tx.rolledBack, tt.wantRollback)
			}
		})
	}
}

func TestWithTx_PanicRollsBack(t *testing.T) {
	tx := &recordingTx{}
	db := recordingDB(&recordingPool{tx: tx})

	defer func() {
		if r := recover(); r != "cascade failed" {
			t.Fatalf("recovered %v, want the original panic", r)
		}
		if !tx.rolledBack || tx.committed {
			t.Errorf("rolledBack = %v, committed = %v", tx.rolledBack, tx.committed)
		}
	}()

	_ = WithTx(context.Background(), db, func(*gorm.DB) error {
		panic("cascade failed")
	})
}

func TestWithTx_BeginFailure(t *testing.T) {
	beginErr := errors.New("too many connections")
	db := recordingDB(&recordingPool{beginErr: beginErr})

	err := WithTx(context.Background(), db, func(*gorm.DB) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("err = %v, want wrapped begin error", err)
	}
}

func TestWithTx_CancelledContext(t *testing.T) {
	pool := &recordingPool{tx: &recordingTx{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTx(ctx, recordingDB(pool), func(*gorm.DB) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if pool.begun != 0 {
		t.Errorf("BeginTx called %d times", pool.begun)
	}
}

func newPostsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Post{}, &domain.Report{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_SQLite_PostAndReportTogether(t *testing.T) {
	db := newPostsDB(t)

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		p := domain.Post{ID: 7, Type: domain.PostTypeLost, Title: "Lost tabby", AuthorID: 2}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Report{ID: 1, Type: p.Type, PostID: p.ID, Reason: "SPAM", Status: domain.ReportPending}).Error
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if n := countRows(t, db, &domain.Post{}); n != 1 {
		t.Errorf("posts = %d, want 1", n)
	}
	if n := countRows(t, db, &domain.Report{}); n != 1 {
		t.Errorf("reports = %d, want 1", n)
	}
}

func TestWithTx_SQLite_FailureLeavesNothing(t *testing.T) {
	db := newPostsDB(t)
	conflict := domain.NewAppError(domain.CodeConflict, "report already resolved", nil)

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&domain.Post{ID: 8, Type: domain.PostTypeFound, Title: "Found beagle", AuthorID: 3}).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
		return conflict
	})
	if !domain.IsConflict(err) {
		t.Fatalf("err = %v, want the conflict returned by fn", err)
	}
	if n := countRows(t, db, &domain.Post{}); n != 0 {
		t.Errorf("posts = %d after rollback, want 0", n)
	}
}

func TestWithTx_SQLite_PanicLeavesNothing(t *testing.T) {
	db := newPostsDB(t)

	func() {
		defer func() { _ = recover() }()
		_ = WithTx(context.Background(), db, func(tx *gorm.DB) error {
			if err := tx.Create(&domain.Post{ID: 9, Type: domain.PostTypeLost, Title: "Missing parrot", AuthorID: 4}).Error; err != nil {
				t.Fatalf("insert: %v", err)
			}
			panic("boom")
		})
	}()

	if n := countRows(t, db, &domain.Post{}); n != 0 {
		t.Errorf("posts = %d after panic, want 0", n)
	}
}
