package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/logger"
	userdomain "github.com/ghuser/pantry/services/user/domain"
	"github.com/ghuser/pantry/services/user/domain/models"
	"github.com/ghuser/pantry/services/user/domain/repositories"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 20
)

// TokenIssuer is the subset of auth.TokenIssuer the auth service needs.
type TokenIssuer interface {
	IssueAccess(userID uuid.UUID, isAdmin bool) (string, time.Time, error)
	IssueRefresh(userID uuid.UUID) (string, time.Time, error)
	VerifyRefresh(token string) (*auth.Claims, error)
}

// PasswordHasher is satisfied by auth.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Session is the result of a successful register, login or refresh.
type Session struct {
	User            *models.User
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
}

// AuthService handles registration and credential exchange.
type AuthService struct {
	users     repositories.UserRepository
	tokens    TokenIssuer
	passwords PasswordHasher
	log       logger.Logger
}

func NewAuthService(users repositories.UserRepository, tokens TokenIssuer, passwords PasswordHasher, log logger.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, passwords: passwords, log: log}
}

// Register creates a non-admin account and signs it in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*Session, error) {
	name, err := models.NewUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", userdomain.ErrInvalidUsername, err)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(name, hash)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.issue(u)
}

// Login exchanges a username and password for a session. Unknown users and
// wrong passwords produce the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, userdomain.ErrUserNotFound) {
		return nil, userdomain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.passwords.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, userdomain.ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(u)
}

// Refresh validates a refresh token and issues a new access token together
// with a rotated refresh token. The user is reloaded so a deleted account
// or changed admin flag takes effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, claims.Principal().UserID)
	if errors.Is(err, userdomain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", auth.ErrInvalidToken)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return s.issue(u)
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*Session, error) {
	access, exp, err := s.tokens.IssueAccess(u.ID, u.IsAdmin)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: access, AccessExpiresAt: exp, RefreshToken: refresh}, nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return fmt.Errorf("%w: must be %d to %d characters", userdomain.ErrInvalidPassword, minPasswordLength, maxPasswordLength)
	}
	return nil
}
