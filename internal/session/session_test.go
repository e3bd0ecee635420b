package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/simp-lee/petadmin/internal/domain"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestSession_BeginAndClear(t *testing.T) {
	s := New(nil)
	if s.Authenticated() {
		t.Fatal("new session should not be authenticated")
	}

	err := s.Begin(&domain.LoginResult{AccessToken: "opaque", RefreshToken: "r", UserID: 1, MemberName: "admin"}, " admin@example.com ")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if s.Token() != "opaque" {
		t.Errorf("Token() = %q", s.Token())
	}
	p, ok := s.Profile()
	if !ok {
		t.Fatal("expected profile after login")
	}
	want := domain.Profile{UserID: 1, Name: "admin", Email: "admin@example.com"}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Authenticated() {
		t.Error("session should be cleared")
	}
	if _, ok := s.Profile(); ok {
		t.Error("profile should be gone after clear")
	}
}

func TestSession_BeginRejectsEmptyToken(t *testing.T) {
	s := New(nil)
	if err := s.Begin(&domain.LoginResult{}, "a@example.com"); err == nil {
		t.Fatal("expected error for missing access token")
	}
	if err := s.Begin(nil, "a@example.com"); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestProfileFromLogin_ReadsClaims(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "1", "role": "ADMIN", "email": "root@example.com"})

	p := ProfileFromLogin(&domain.LoginResult{AccessToken: token, UserID: 1, MemberName: "root"}, "")
	want := domain.Profile{UserID: 1, Name: "root", Email: "root@example.com", Role: "ADMIN"}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileFromLogin_RolesArray(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"user_id": "4", "roles": []string{"ADMIN", "AUDITOR"}})

	p := ProfileFromLogin(&domain.LoginResult{AccessToken: token, UserID: 4, MemberName: "ops"}, "ops@example.com")
	if p.Role != "ADMIN" {
		t.Errorf("Role = %q, want ADMIN", p.Role)
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	st, err := store.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if st != (State{}) {
		t.Errorf("expected empty state, got %+v", st)
	}

	s := New(store)
	if err := s.Begin(&domain.LoginResult{AccessToken: "a", RefreshToken: "r", UserID: 9, MemberName: "nine"}, "nine@example.com"); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != filePerms {
		t.Errorf("permissions = %o, want %o", perm, filePerms)
	}

	restored := New(store)
	if err := restored.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if diff := cmp.Diff(s.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}

	if err := restored.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected session file removed, stat err = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatal("expected decode error")
	}
}
