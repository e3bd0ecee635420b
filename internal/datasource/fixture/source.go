// Package fixture serves the admin API from a seeded local database.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
)

// RoleAdmin is the only role allowed to log in.
const RoleAdmin = "ADMIN"

// RefreshToken records an issued refresh token by hash.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	MemberID  int64     `gorm:"index;not null"`
	TokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Options configures a Source.
type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	RefreshTTL time.Duration
	// Seed fills an empty database with the demo data set.
	Seed          bool
	AdminEmail    string
	AdminPassword string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger
}

// Source implements datasource.DataSource over GORM.
type Source struct {
	db         *gorm.DB
	tokens     *TokenIssuer
	refreshTTL time.Duration
	cost       int
	logger     *slog.Logger
	now        func() time.Time
}

var _ datasource.DataSource = (*Source)(nil)

// New migrates the schema and, when opts.Seed is set and the database holds
// no members, seeds the demo data set.
func New(ctx context.Context, db *gorm.DB, opts Options) (*Source, error) {
	if db == nil {
		return nil, errors.New("fixture: nil database")
	}
	tokens, err := NewTokenIssuer(opts.JWTSecret, opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}

	s := &Source{
		db:         db,
		tokens:     tokens,
		refreshTTL: opts.RefreshTTL,
		cost:       opts.BcryptCost,
		logger:     opts.Logger,
		now:        time.Now,
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := db.WithContext(ctx).AutoMigrate(&domain.Member{}, &domain.Post{}, &domain.Report{}, &RefreshToken{}); err != nil {
		tokens.Close()
		return nil, fmt.Errorf("fixture: migrate: %w", err)
	}

	if opts.Seed {
		seeded, err := s.seed(ctx, strings.TrimSpace(opts.AdminEmail), opts.AdminPassword)
		if err != nil {
			tokens.Close()
			return nil, fmt.Errorf("fixture: seed: %w", err)
		}
		if seeded {
			s.logger.Info("fixture data seeded", slog.String("admin_email", opts.AdminEmail))
		}
	}
	return s, nil
}

// Name implements datasource.DataSource.
func (s *Source) Name() string { return datasource.ModeFixture }

// Check pings the database.
func (s *Source) Check(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close stops the token service and closes the database.
func (s *Source) Close() error {
	s.tokens.Close()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Source) timestamp() domain.Timestamp {
	return domain.NewTimestamp(s.now().UTC().Truncate(time.Microsecond))
}

// authorize verifies the bearer token and that its subject is still an
// active administrator.
func (s *Source) authorize(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, domain.NewAppError(domain.CodeForbidden, "admin role required", nil)
	}

	id, _ := claims.MemberID()
	var m domain.Member
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewAppError(domain.CodeUnauthorized, "account no longer exists", nil)
		}
		return nil, mapError(err)
	}
	if isDeleted(m.IsDeleted) || m.Status != domain.MemberActivated {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "account disabled", nil)
	}
	return claims, nil
}

func isDeleted(flag *bool) bool {
	return flag != nil && *flag
}
