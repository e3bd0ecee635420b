package fixture

import (
	"errors"
	"strconv"
	"time"

	"github.com/simp-lee/jwt"

	"github.com/simp-lee/petadmin/internal/domain"
)

const tokenIssuer = "petadmin-fixture"

// Claims are what a verified access token says about its holder.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// MemberID returns the subject as a member id.
func (c *Claims) MemberID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

// TokenIssuer signs and verifies HS256 access tokens. The member id is the
// subject and the member's role the only entry in roles.
type TokenIssuer struct {
	svc jwt.Service
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret, which must be at
// least 32 characters. Tokens expire after ttl. Close releases it.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	i := &TokenIssuer{ttl: ttl, now: time.Now}

	opts := []jwt.Option{
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(clockFunc(func() time.Time { return i.now() })),
	}
	if ttl > jwt.DefaultMaxTokenLifetime {
		opts = append(opts,
			jwt.WithMaxTokenLifetime(ttl),
			jwt.WithUserRevocationTTL(max(ttl, jwt.DefaultUserRevocationTTL)),
		)
	}
	svc, err := jwt.New(secret, opts...)
	if err != nil {
		return nil, err
	}
	i.svc = svc
	return i, nil
}

// Issue signs an access token for m.
func (i *TokenIssuer) Issue(m *domain.Member) (string, error) {
	return i.svc.GenerateToken(strconv.FormatInt(m.ID, 10), []string{m.Role}, i.ttl)
}

// Verify checks token's signature, issuer and expiry. Failures are
// CodeUnauthorized app errors.
func (i *TokenIssuer) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "missing token", nil)
	}
	tok, err := i.svc.ValidateToken(token)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", err)
	}

	claims := &Claims{Subject: tok.UserID, ExpiresAt: tok.ExpiresAt}
	if len(tok.Roles) > 0 {
		claims.Role = tok.Roles[0]
	}
	if _, err := claims.MemberID(); err != nil {
		return nil, domain.NewAppError(domain.CodeUnauthorized, "invalid token subject", err)
	}
	return claims, nil
}

// Close stops the service's background cleanup.
func (i *TokenIssuer) Close() { i.svc.Close() }
