package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/auth"
	userdomain "github.com/ghuser/pantry/services/user/domain"
)

func newAuthService(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, newTestIssuer(), auth.NewPasswordHasher(4), newTestLogger())
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"valid", "alice", "secret1", nil},
		{"blank username", "", "secret1", userdomain.ErrInvalidUsername},
		{"username with space", "al ice", "secret1", userdomain.ErrInvalidUsername},
		{"short password", "alice", "12345", userdomain.ErrInvalidPassword},
		{"long password", "alice", strings.Repeat("x", 21), userdomain.ErrInvalidPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeUserRepo()
			svc := newAuthService(repo)

			sess, err := svc.Register(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want != nil {
				if len(repo.users) != 0 {
					t.Fatal("rejected registration must not create a user")
				}
				return
			}
			if sess.AccessToken == "" || sess.RefreshToken == "" {
				t.Fatal("expected both tokens")
			}
			if sess.User.IsAdmin {
				t.Fatal("registered users are never admins")
			}
			if sess.User.PasswordHash == tt.password {
				t.Fatal("password must be stored hashed")
			}
		})
	}
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "secret2"); !errors.Is(err, userdomain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()
	reg, err := svc.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"correct", "alice", "secret1", nil},
		{"wrong password", "alice", "secret2", userdomain.ErrInvalidCredentials},
		{"unknown user", "bob", "secret1", userdomain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := svc.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == nil && sess.User.ID != reg.User.ID {
				t.Fatalf("logged in as %s, want %s", sess.User.ID, reg.User.ID)
			}
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	ctx := context.Background()
	reg, err := svc.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sess, err := svc.Refresh(ctx, reg.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if sess.User.ID != reg.User.ID {
		t.Fatal("refresh must sign in the same user")
	}
	if sess.RefreshToken == reg.RefreshToken {
		t.Fatal("refresh token must be rotated")
	}

	if _, err := svc.Refresh(ctx, reg.AccessToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("an access token must not refresh, got %v", err)
	}

	delete(repo.users, reg.User.ID)
	if _, err := svc.Refresh(ctx, sess.RefreshToken); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a deleted user, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()
	reg, err := svc.Register(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := svc.Me(ctx, reg.User.ID)
	if err != nil || u.Username != "alice" {
		t.Fatalf("unexpected user %+v, %v", u, err)
	}
	if _, err := svc.Me(ctx, uuid.New()); !errors.Is(err, userdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
