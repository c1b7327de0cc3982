package services

import (
	"testing"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/observability/performance"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
)

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	config.JWTSecret = "test-secret-for-session-tokens"
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, nil, newTestLogger(t), performance.NewTracker(nil))
	return svc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	registered, err := svc.Register("Reader@Example.com", "reader_one", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.Token == "" {
		t.Error("expected a session token")
	}
	if registered.User.Email != "reader@example.com" {
		t.Errorf("email not normalized: %s", registered.User.Email)
	}
	if registered.User.Points != 0 || registered.User.Level != "beginner" {
		t.Errorf("new member should start at 0 points / beginner, got %d / %s", registered.User.Points, registered.User.Level)
	}

	logged, err := svc.Login("reader@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.User.ID != registered.User.ID {
		t.Error("login resolved a different account")
	}

	validated, err := svc.ValidateToken(logged.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if validated.ID != registered.User.ID {
		t.Error("token names a different account")
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.Register("a@example.com", "writer", "long password"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register("a@example.com", "other", "long password"); err != ErrAccountExists {
		t.Errorf("duplicate email: got %v, want ErrAccountExists", err)
	}
	if _, err := svc.Register("b@example.com", "writer", "long password"); err != ErrAccountExists {
		t.Errorf("duplicate username: got %v, want ErrAccountExists", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	cases := []struct {
		name     string
		email    string
		username string
		password string
	}{
		{"bad email", "not-an-email", "writer", "long password"},
		{"short username", "a@example.com", "ab", "long password"},
		{"bad username chars", "a@example.com", "Has Spaces!", "long password"},
		{"short password", "a@example.com", "writer", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(tc.email, tc.username, tc.password); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)

	if _, err := svc.Register("a@example.com", "writer", "long password"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login("a@example.com", "wrong password"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("missing@example.com", "long password"); err != ErrInvalidCredentials {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}
