// Package session holds the logged-in administrator's credentials.
//
// A Session is created by login and destroyed by logout or by any response
// that invalidates the token. Screens receive it by reference; there is no
// package-level session.
package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/petadmin/internal/domain"
)

// ErrNotLoggedIn is returned by operations that need a token when none is held.
var ErrNotLoggedIn = errors.New("not logged in")

// State is the persisted part of a session.
type State struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	Profile      domain.Profile `json:"profile"`
}

// Store persists State between runs.
type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	state State
	store Store
}

// New returns an empty session backed by store. A nil store keeps the
// session in memory only.
func New(store Store) *Session {
	return &Session{store: store}
}

// Restore loads a previously saved state from the store, if any.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	st, err := s.store.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// Begin starts a session from a successful login and persists it.
func (s *Session) Begin(res *domain.LoginResult, email string) error {
	if res == nil || res.AccessToken == "" {
		return errors.New("login returned no access token")
	}
	st := State{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Profile:      ProfileFromLogin(res, email),
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	if s.store != nil {
		return s.store.Save(st)
	}
	return nil
}

// Clear ends the session and removes any persisted copy.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Profile returns the logged-in administrator.
func (s *Session) Profile() (domain.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Profile, s.state.AccessToken != ""
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ProfileFromLogin builds a profile from the login response. Email and role
// are read from the access token's claims when it is a JWT; the token is
// not verified here, the backend does that on every call.
func ProfileFromLogin(res *domain.LoginResult, email string) domain.Profile {
	p := domain.Profile{
		UserID: res.UserID,
		Name:   res.MemberName,
		Email:  strings.TrimSpace(email),
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(res.AccessToken, claims); err != nil {
		return p
	}
	if role, ok := claims["role"].(string); ok {
		p.Role = role
	} else if roles, ok := claims["roles"].([]any); ok && len(roles) > 0 {
		p.Role, _ = roles[0].(string)
	}
	if p.Email == "" {
		if e, ok := claims["email"].(string); ok {
			p.Email = e
		}
	}
	if p.Name == "" {
		if n, ok := claims["name"].(string); ok {
			p.Name = n
		}
	}
	return p
}
