package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/pantry/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

type healthBody struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func checkHealth(t *testing.T, checks ...httpx.HealthCheck) (int, healthBody) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var body healthBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code, body
}

func TestHealthHandler(t *testing.T) {
	down := errors.New("conn refused")
	tests := []struct {
		name       string
		db, redis  error
		bus        error
		wantStatus int
		wantDown   []string
	}{
		{"all healthy", nil, nil, nil, http.StatusOK, nil},
		{"database down", down, nil, nil, http.StatusServiceUnavailable, []string{"database"}},
		{"redis down", nil, down, nil, http.StatusServiceUnavailable, []string{"redis"}},
		{"event bus down", nil, nil, down, http.StatusServiceUnavailable, []string{"event_bus"}},
		{"all down", down, down, down, http.StatusServiceUnavailable, []string{"database", "redis", "event_bus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := checkHealth(t,
				httpx.HealthCheck{Name: "database", Checker: &stubChecker{err: tt.db}},
				httpx.HealthCheck{Name: "redis", Checker: &stubChecker{err: tt.redis}},
				httpx.HealthCheck{Name: "event_bus", Checker: &stubChecker{err: tt.bus}},
			)
			if code != tt.wantStatus {
				t.Fatalf("status code = %d, want %d", code, tt.wantStatus)
			}
			wantStatus := "ok"
			if len(tt.wantDown) > 0 {
				wantStatus = "degraded"
			}
			if body.Status != wantStatus {
				t.Errorf("status = %q, want %q", body.Status, wantStatus)
			}
			for _, name := range tt.wantDown {
				if body.Components[name] != "unreachable" {
					t.Errorf("%s = %q, want unreachable", name, body.Components[name])
				}
			}
			if len(body.Components) != 3 {
				t.Errorf("components = %v, want 3 entries", body.Components)
			}
		})
	}
}

func TestHealthHandler_SkipsNilChecker(t *testing.T) {
	code, body := checkHealth(t,
		httpx.HealthCheck{Name: "database", Checker: &stubChecker{}},
		httpx.HealthCheck{Name: "temporal"},
	)
	if code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", code)
	}
	if _, ok := body.Components["temporal"]; ok {
		t.Errorf("nil checker should not be reported: %v", body.Components)
	}
}

func TestHealthHandler_ContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	httpx.HealthHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	ct := rr.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json; charset=utf-8")
	}
}
