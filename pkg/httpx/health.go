package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database pool, Redis client, event bus, Temporal client).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheck names one dependency checked by the health endpoint.
type HealthCheck struct {
	Name    string
	Checker HealthChecker
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

const healthTimeout = 2 * time.Second

// HealthHandler runs every check concurrently and answers 503 with
// status "degraded" when any of them fails. Nil checkers are skipped.
func HealthHandler(checks ...HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Components: make(map[string]string, len(checks))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			if c.Checker == nil {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				state := "ok"
				if err := c.Checker.Ping(ctx); err != nil {
					state = "unreachable"
				}
				mu.Lock()
				resp.Components[c.Name] = state
				if state != "ok" {
					resp.Status = "degraded"
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
