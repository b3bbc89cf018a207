package httpx

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

// Defaults used when the matching ServerConfig field is zero.
const (
	DefaultRequestsPerMinute = 100
	DefaultMaxBodyBytes      = 1 << 20
	DefaultHandlerTimeout    = 30 * time.Second
)

// ServerConfig holds the options for NewRouter.
type ServerConfig struct {
	ServiceName   string
	IsDevelopment bool
	// CORSAllowedOrigins is a comma-separated list of browser origins that
	// may call the API. "*" is accepted for local development.
	CORSAllowedOrigins string

	// RequestsPerMinute is the per-client-IP budget shared by every route,
	// including /api/users/login.
	RequestsPerMinute int
	// MaxBodyBytes caps request bodies. The largest legitimate payload is a
	// recipe with its ingredient list, which fits well inside 1 MB.
	MaxBodyBytes int64
	// HandlerTimeout bounds a single handler. Shopping-list recompute fans out
	// to the recipe store, so keep it above the database statement timeout.
	HandlerTimeout time.Duration
}

func (c ServerConfig) withDefaults() ServerConfig {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = DefaultHandlerTimeout
	}
	return c
}

// Middlewares are the process-wide handlers built in cmd/api. A nil field is
// skipped, which keeps tests free of sentry and otel setup.
type Middlewares struct {
	Recovery func(http.Handler) http.Handler
	Sentry   func(http.Handler) http.Handler
	Tracing  func(http.Handler) http.Handler
	Logger   func(http.Handler) http.Handler
}

// NewRouter returns the root router for the pantry API.
//
// Recovery sits outside Sentry so a panic is reported first and then turned
// into a 500 by the logger's recovery handler. The request id is assigned
// before tracing and logging so both carry it. RealIP must run before the
// rate limiter, which keys on the client address; behind a proxy that does
// not set X-Forwarded-For every caller shares one budget.
//
// CORS answers preflights before the body limit and timeout apply. The
// security headers go last so they are present on every handler response,
// errors included.
func NewRouter(cfg ServerConfig, mw Middlewares) *chi.Mux {
	cfg = cfg.withDefaults()

	r := chi.NewRouter()
	for _, m := range []func(http.Handler) http.Handler{mw.Recovery, mw.Sentry} {
		if m != nil {
			r.Use(m)
		}
	}
	r.Use(middleware.RequestID)
	for _, m := range []func(http.Handler) http.Handler{mw.Tracing, mw.Logger} {
		if m != nil {
			r.Use(m)
		}
	}
	r.Use(
		middleware.RealIP,
		httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute),
		CORSMiddleware(cfg.CORSAllowedOrigins),
		RequestBodyLimit(cfg.MaxBodyBytes),
		middleware.Timeout(cfg.HandlerTimeout),
		securityHeaders(cfg.IsDevelopment).Handler,
	)
	return r
}

// securityHeaders only emits HSTS outside development; the API serves JSON,
// so the policy forbids framing and every non-self source.
func securityHeaders(dev bool) *secure.Secure {
	return secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none'",
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=()",
		IsDevelopment:         dev,
	})
}

// CORSMiddleware lets the configured web front ends call the API.
//
// Access tokens travel in the Authorization header, but /api/users/refresh-token
// reads the refresh session from a cookie, so browsers only send it on
// credentialed requests. Credentials are therefore allowed, but only when
// every origin is listed explicitly: with "*" the browser would reject the
// response anyway, and echoing arbitrary origins with credentials would let
// any site mint access tokens for a logged-in user.
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	origins := parseOrigins(allowedOrigins)
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Location", "X-Request-Id"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           600,
	})
}

func parseOrigins(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit caps the request body at maxBytes. Reads past the cap
// fail with *http.MaxBytesError, which validator.ValidateRequest answers with 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer wraps handler in an *http.Server. The write timeout leaves room
// for the handler timeout set by NewRouter.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      DefaultHandlerTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    64 << 10,
	}
}
