package fixture

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/domain"
)

var errBadCredentials = domain.NewAppError(domain.CodeUnauthorized, "invalid email or password", nil)

// Login checks the administrator's credentials and issues an access token
// plus an opaque refresh token.
func (s *Source) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "email and password are required", nil)
	}

	var m domain.Member
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, mapError(err)
	}
	if m.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)) != nil {
		return nil, errBadCredentials
	}
	if isDeleted(m.IsDeleted) || m.Status != domain.MemberActivated {
		return nil, domain.NewAppError(domain.CodeForbidden, "account disabled", nil)
	}
	if m.Role != RoleAdmin {
		return nil, domain.NewAppError(domain.CodeForbidden, "admin role required", nil)
	}

	access, err := s.tokens.Issue(&m)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "issue token", err)
	}
	refresh, err := s.issueRefreshToken(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "administrator logged in", slog.Int64("member_id", m.ID))
	return &domain.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       m.ID,
		MemberName:   m.Nickname,
	}, nil
}

func (s *Source) issueRefreshToken(ctx context.Context, memberID int64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "generate refresh token", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)

	rec := RefreshToken{
		ID:        uuid.New(),
		MemberID:  memberID,
		TokenHash: hashToken(raw),
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", mapError(err)
	}
	return raw, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (s *Source) hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Ping checks that token is still accepted. Token failures come back as the
// 401 or 403 FetchError the HTTP API would answer with.
func (s *Source) Ping(ctx context.Context, token string) error {
	_, err := s.authorize(ctx, token)
	switch {
	case err == nil:
		return nil
	case domain.IsUnauthorized(err):
		return domain.NewHTTPError(http.StatusUnauthorized, "")
	case domain.HTTPStatusCode(err) == http.StatusForbidden:
		return domain.NewHTTPError(http.StatusForbidden, "")
	}
	return err
}
