package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
	appsvcs "github.com/ghuser/pantry/services/recipe/application/services"
	recipedomain "github.com/ghuser/pantry/services/recipe/domain"
	"github.com/ghuser/pantry/services/recipe/domain/models"
	"github.com/ghuser/pantry/services/recipe/domain/repositories"
)

type memRecipes struct {
	mu      sync.Mutex
	recipes map[uuid.UUID]models.Recipe
}

func (m *memRecipes) Save(_ context.Context, r *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[r.ID] = *r
	return nil
}

func (m *memRecipes) GetByID(_ context.Context, id uuid.UUID) (*models.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, recipedomain.ErrRecipeNotFound
	}
	return &r, nil
}

func (m *memRecipes) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Recipe, error) {
	var out []*models.Recipe
	for _, id := range ids {
		if r, err := m.GetByID(ctx, id); err == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecipes) List(context.Context, repositories.QueryOpts) ([]*models.Recipe, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, &r)
	}
	return out, len(out), nil
}

func (m *memRecipes) Update(_ context.Context, r *models.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[r.ID]; !ok {
		return recipedomain.ErrRecipeNotFound
	}
	m.recipes[r.ID] = *r
	return nil
}

func (m *memRecipes) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return recipedomain.ErrRecipeNotFound
	}
	delete(m.recipes, id)
	return nil
}

func (m *memRecipes) PruneItem(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

type memCategories struct {
	mu   sync.Mutex
	cats map[uuid.UUID]models.RecipeCategory
}

func (m *memCategories) Save(_ context.Context, c *models.RecipeCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.cats {
		if existing.Name == c.Name {
			return recipedomain.ErrRecipeCategoryAlreadyExists
		}
	}
	m.cats[c.ID] = *c
	return nil
}

func (m *memCategories) GetByID(_ context.Context, id uuid.UUID) (*models.RecipeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cats[id]
	if !ok {
		return nil, recipedomain.ErrRecipeCategoryNotFound
	}
	return &c, nil
}

func (m *memCategories) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.RecipeCategory, error) {
	var out []*models.RecipeCategory
	for _, id := range ids {
		if c, err := m.GetByID(ctx, id); err == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCategories) List(context.Context) ([]*models.RecipeCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.RecipeCategory, 0, len(m.cats))
	for _, c := range m.cats {
		out = append(out, &c)
	}
	return out, nil
}

func (m *memCategories) Update(_ context.Context, c *models.RecipeCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cats[c.ID]; !ok {
		return recipedomain.ErrRecipeCategoryNotFound
	}
	m.cats[c.ID] = *c
	return nil
}

func (m *memCategories) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cats[id]; !ok {
		return recipedomain.ErrRecipeCategoryNotFound
	}
	delete(m.cats, id)
	return nil
}

type usernames map[uuid.UUID]string

func (u usernames) Usernames(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if name, ok := u[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

type testServer struct {
	router http.Handler
	admin  string
	user   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	tokens := auth.NewTokenIssuer(auth.TokenConfig{
		Issuer:        "pantry-test",
		AccessSecret:  []byte("test-access-secret-must-be-32-bytes"),
		RefreshSecret: []byte("test-refresh-secret-must-be-32-byte"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	})
	adminID := uuid.New()
	categories := &memCategories{cats: map[uuid.UUID]models.RecipeCategory{}}
	svcs := &appsvcs.Services{
		Recipe: appsvcs.NewRecipeService(
			&memRecipes{recipes: map[uuid.UUID]models.Recipe{}},
			categories,
			usernames{adminID: "chef"},
			log,
		),
		RecipeCategory: appsvcs.NewRecipeCategoryService(categories),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		RecipeRoutes(r, &app.Application{Logger: log, Tokens: tokens}, svcs)
	})

	admin, _, err := tokens.IssueAccess(adminID, true)
	if err != nil {
		t.Fatalf("issue admin token: %v", err)
	}
	user, _, err := tokens.IssueAccess(uuid.New(), false)
	if err != nil {
		t.Fatalf("issue user token: %v", err)
	}
	return &testServer{router: r, admin: admin, user: user}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func pancakes(categoryIDs ...string) map[string]any {
	return map[string]any{
		"name":            "Pancakes",
		"time_in_minutes": 20,
		"ingredients": []map[string]any{
			{"item_id": uuid.NewString(), "quantity": 250, "unit": "g"},
		},
		"instructions": []string{"Mix", "Fry"},
		"category_ids": categoryIDs,
	}
}

func TestRecipeRoutes_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/recipe-categories", s.admin, map[string]string{"name": "Breakfast"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", w.Code, w.Body)
	}
	var category struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&category); err != nil {
		t.Fatalf("decode category: %v", err)
	}

	w = s.do(t, http.MethodPost, "/api/recipes", s.admin, pancakes(category.ID.String()))
	if w.Code != http.StatusCreated {
		t.Fatalf("create recipe: expected 201, got %d: %s", w.Code, w.Body)
	}
	var created struct {
		ID       uuid.UUID `json:"id"`
		Approved bool      `json:"approved"`
	}
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode recipe: %v", err)
	}
	if !created.Approved {
		t.Error("recipe created by an admin should be approved")
	}
	if loc := w.Header().Get("Location"); loc != "/api/recipes/"+created.ID.String() {
		t.Errorf("Location = %q", loc)
	}

	w = s.do(t, http.MethodGet, "/api/recipes/"+created.ID.String(), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get recipe: expected 200, got %d", w.Code)
	}
	var detail struct {
		Categories        []json.RawMessage `json:"categories"`
		CreatedByUsername string            `json:"created_by_username"`
	}
	if err := json.NewDecoder(w.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.CreatedByUsername != "chef" || len(detail.Categories) != 1 {
		t.Errorf("detail = %+v, want author chef and one category", detail)
	}

	if w := s.do(t, http.MethodDelete, "/api/recipe-categories/"+category.ID.String(), s.admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete category: expected 204, got %d", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/api/recipes/"+created.ID.String(), s.admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete recipe: expected 204, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/recipes/"+created.ID.String(), "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted recipe: expected 404, got %d", w.Code)
	}
}

func TestRecipeRoutes_Errors(t *testing.T) {
	s := newTestServer(t)
	zeroTime := pancakes()
	zeroTime["time_in_minutes"] = 0
	noInstructions := pancakes()
	noInstructions["instructions"] = []string{}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"create without token", http.MethodPost, "/api/recipes", "", pancakes(), http.StatusUnauthorized},
		{"create as non-admin", http.MethodPost, "/api/recipes", "user", pancakes(), http.StatusForbidden},
		{"unknown category", http.MethodPost, "/api/recipes", "admin", pancakes(uuid.NewString()), http.StatusNotFound},
		{"zero cooking time", http.MethodPost, "/api/recipes", "admin", zeroTime, http.StatusUnprocessableEntity},
		{"no instructions", http.MethodPost, "/api/recipes", "admin", noInstructions, http.StatusUnprocessableEntity},
		{"missing recipe", http.MethodGet, "/api/recipes/" + uuid.NewString(), "", nil, http.StatusNotFound},
		{"malformed recipe id", http.MethodPut, "/api/recipes/abc", "admin", pancakes(), http.StatusBadRequest},
		{"blank category name", http.MethodPost, "/api/recipe-categories", "admin", map[string]string{"name": " "}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := map[string]string{"admin": s.admin, "user": s.user}[tt.token]
			if w := s.do(t, tt.method, tt.path, token, tt.body); w.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, w.Code, w.Body)
			}
		})
	}
}
