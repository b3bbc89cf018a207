package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PathUUID parses the named chi URL parameter as a UUID. On failure it
// writes a 400 response and returns false.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		JSONError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// QueryInt reads a non-negative integer query parameter, returning def when
// it is absent. A malformed or negative value writes a 400 response.
func QueryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		JSONError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}
