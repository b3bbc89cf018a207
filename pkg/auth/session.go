// Package auth provides bearer token authentication, password hashing and
// the Redis-backed session that carries the refresh credential.
//
// Session keys should be 32 or 64 bytes for HMAC authentication,
// and 16, 24, or 32 bytes for AES encryption. Generate them with:
//
//	openssl rand -base64 32
package auth

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	// SessionName is the cookie that carries the encrypted session id.
	SessionName = "pantry_session"

	sessionKeyPrefix  = "pantry:session:"
	sessionRefreshKey = "refresh_token"
)

// ErrNoRefreshSession is returned when the request has no session holding a refresh token.
var ErrNoRefreshSession = errors.New("no refresh session")

// RedisStore is a sessions.Store backed by a Redis hash per session.
// Only string values are supported; the cookie holds nothing but the
// encrypted session id (HttpOnly, Secure in production, SameSite Lax).
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	options *sessions.Options
}

// NewSessionStore creates a Redis-backed session store whose cookies and
// Redis keys live for maxAge, normally the refresh token TTL.
//
// Example:
//
//	store := auth.NewSessionStore(
//	    app.Redis.Client(),
//	    []byte(cfg.SessionAuthKey),
//	    []byte(cfg.SessionEncryptionKey),
//	    cfg.Environment == config.EnvProduction,
//	    cfg.RefreshTokenTTL,
//	)
func NewSessionStore(client *redis.Client, authKey, encryptionKey []byte, secureCookie bool, maxAge time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(authKey, encryptionKey),
		options: &sessions.Options{
			Path:     "/api/users",
			MaxAge:   int(maxAge.Seconds()),
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Get returns the session cached on the request, loading it on first use.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New builds a session from the request cookie. A missing, tampered or
// expired cookie yields a fresh empty session and no error.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		return session, nil
	}

	values, err := s.client.HGetAll(r.Context(), sessionKeyPrefix+id).Result()
	if err != nil || len(values) == 0 {
		return session, nil
	}
	for k, v := range values {
		session.Values[k] = v
	}
	session.ID = id
	session.IsNew = false
	return session, nil
}

// Save writes the session hash and cookie. MaxAge < 0 deletes both.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), sessionKeyPrefix+session.ID).Err(); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
			"=",
		)
	}

	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.persist(r.Context(), session, ttl); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) persist(ctx context.Context, session *sessions.Session, ttl time.Duration) error {
	fields := make(map[string]any, len(session.Values))
	for k, v := range session.Values {
		key, ok := k.(string)
		if !ok {
			return fmt.Errorf("session key %v: only string keys are supported", k)
		}
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("session value %q: only string values are supported", key)
		}
		fields[key] = str
	}

	key := sessionKeyPrefix + session.ID
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// SaveRefreshToken stores the refresh token server-side in the caller's session.
func SaveRefreshToken(store sessions.Store, w http.ResponseWriter, r *http.Request, token string) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	session.Values[sessionRefreshKey] = token
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// RefreshTokenFromSession returns the refresh token held by the caller's session.
func RefreshTokenFromSession(store sessions.Store, r *http.Request) (string, error) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoRefreshSession, err)
	}
	token, ok := session.Values[sessionRefreshKey].(string)
	if !ok || token == "" {
		return "", ErrNoRefreshSession
	}
	return token, nil
}

// ClearSession expires the session cookie and deletes its server-side state.
func ClearSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	delete(session.Values, sessionRefreshKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
