package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// ErrInvalidToken is returned for any token that fails signature, expiry,
// audience or claim checks. The underlying reason is wrapped for logging.
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig holds the secrets and lifetimes for access and refresh tokens.
// Access and refresh tokens are signed with different secrets so one can
// never be replayed as the other.
type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Claims is the JWT payload for both token kinds. IsAdmin is only set on
// access tokens; refresh tokens re-read the user on exchange.
type Claims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer returns a TokenIssuer for the given configuration.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

// IssueAccess signs a short-lived access token for userID.
func (t *TokenIssuer) IssueAccess(userID uuid.UUID, isAdmin bool) (string, time.Time, error) {
	return t.sign(userID, isAdmin, audienceAccess, t.cfg.AccessSecret, t.cfg.AccessTTL)
}

// IssueRefresh signs a long-lived refresh token for userID.
func (t *TokenIssuer) IssueRefresh(userID uuid.UUID) (string, time.Time, error) {
	return t.sign(userID, false, audienceRefresh, t.cfg.RefreshSecret, t.cfg.RefreshTTL)
}

// VerifyAccess parses an access token and returns its claims.
func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return t.parse(token, audienceAccess, t.cfg.AccessSecret)
}

// VerifyRefresh parses a refresh token and returns its claims.
func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return t.parse(token, audienceRefresh, t.cfg.RefreshSecret)
}

// RefreshTTL is the lifetime of refresh tokens; the session cookie uses it as MaxAge.
func (t *TokenIssuer) RefreshTTL() time.Duration {
	return t.cfg.RefreshTTL
}

func (t *TokenIssuer) sign(userID uuid.UUID, isAdmin bool, audience string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)

	claims := Claims{
		UserID:  userID.String(),
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", audience, err)
	}
	return s, exp, nil
}

func (t *TokenIssuer) parse(token, audience string, secret []byte) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithAudience(audience),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: user_id: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// Principal converts verified claims into the request Principal.
func (c *Claims) Principal() Principal {
	id, _ := uuid.Parse(c.UserID)
	return Principal{UserID: id, IsAdmin: c.IsAdmin}
}
