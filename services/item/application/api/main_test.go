package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/pantry/pkg/app"
	"github.com/ghuser/pantry/pkg/auth"
	"github.com/ghuser/pantry/pkg/config"
	"github.com/ghuser/pantry/pkg/logger"
	appsvcs "github.com/ghuser/pantry/services/item/application/services"
	itemdomain "github.com/ghuser/pantry/services/item/domain"
	"github.com/ghuser/pantry/services/item/domain/models"
	"github.com/ghuser/pantry/services/item/domain/repositories"
)

type memItems struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Item
}

func (m *memItems) Save(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Name == item.Name {
			return itemdomain.ErrItemAlreadyExists
		}
	}
	m.items[item.ID] = *item
	return nil
}

func (m *memItems) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, itemdomain.ErrItemNotFound
	}
	return &item, nil
}

func (m *memItems) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, &item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	total := len(out)
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, total, nil
}

func (m *memItems) Update(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return itemdomain.ErrItemNotFound
	}
	m.items[item.ID] = *item
	return nil
}

func (m *memItems) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return itemdomain.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

type memCategories struct {
	mu         sync.Mutex
	categories map[uuid.UUID]models.ItemCategory
}

func (m *memCategories) Save(_ context.Context, c *models.ItemCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name || existing.FaIcon == c.FaIcon {
			return itemdomain.ErrItemCategoryAlreadyExists
		}
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *memCategories) GetByID(_ context.Context, id uuid.UUID) (*models.ItemCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, itemdomain.ErrItemCategoryNotFound
	}
	return &c, nil
}

func (m *memCategories) List(context.Context) ([]*models.ItemCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ItemCategory, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, &c)
	}
	return out, nil
}

func (m *memCategories) Update(_ context.Context, c *models.ItemCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return itemdomain.ErrItemCategoryNotFound
	}
	m.categories[c.ID] = *c
	return nil
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
	categories := &memCategories{categories: map[uuid.UUID]models.ItemCategory{}}
	svcs := &appsvcs.Services{
		Item:         appsvcs.NewItemService(&memItems{items: map[uuid.UUID]models.Item{}}, categories, nil, log),
		ItemCategory: appsvcs.NewItemCategoryService(categories),
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		ItemRoutes(r, &app.Application{Logger: log, Tokens: tokens}, svcs)
	})

	admin, _, err := tokens.IssueAccess(uuid.New(), true)
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

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %s)", err, w.Body)
	}
	return v
}

func TestItemRoutes_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/item-categories", s.admin, map[string]string{"name": "Dairy", "fa_icon": "fa-cheese"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d: %s", w.Code, w.Body)
	}
	category := decode[struct {
		ID uuid.UUID `json:"id"`
	}](t, w)

	w = s.do(t, http.MethodPost, "/api/items", s.admin, map[string]string{"name": "Whole milk", "category_id": category.ID.String()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d: %s", w.Code, w.Body)
	}
	item := decode[struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}](t, w)
	if loc := w.Header().Get("Location"); loc != "/api/items/"+item.ID.String() {
		t.Errorf("Location = %q", loc)
	}

	if w := s.do(t, http.MethodGet, "/api/items/"+item.ID.String(), "", nil); w.Code != http.StatusOK {
		t.Fatalf("get item: expected 200, got %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/items?limit=10", "", nil)
	list := decode[struct {
		Items []json.RawMessage `json:"items"`
		Total int               `json:"total"`
	}](t, w)
	if list.Total != 1 || len(list.Items) != 1 {
		t.Errorf("list = %+v, want one item", list)
	}

	w = s.do(t, http.MethodPut, "/api/items/"+item.ID.String(), s.admin, map[string]string{"name": "Skimmed milk", "category_id": category.ID.String()})
	if w.Code != http.StatusOK {
		t.Fatalf("update item: expected 200, got %d: %s", w.Code, w.Body)
	}

	if w := s.do(t, http.MethodDelete, "/api/items/"+item.ID.String(), s.admin, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete item: expected 204, got %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/api/items/"+item.ID.String(), "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted item: expected 404, got %d", w.Code)
	}
}

func TestItemRoutes_Errors(t *testing.T) {
	s := newTestServer(t)
	validItem := map[string]string{"name": "Flour", "category_id": uuid.NewString()}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"create without token", http.MethodPost, "/api/items", "", validItem, http.StatusUnauthorized},
		{"create as non-admin", http.MethodPost, "/api/items", "user", validItem, http.StatusForbidden},
		{"unknown category", http.MethodPost, "/api/items", "admin", validItem, http.StatusNotFound},
		{"blank name", http.MethodPost, "/api/items", "admin", map[string]string{"name": "   ", "category_id": uuid.NewString()}, http.StatusUnprocessableEntity},
		{"bad category id", http.MethodPost, "/api/items", "admin", map[string]string{"name": "Flour", "category_id": "nope"}, http.StatusUnprocessableEntity},
		{"malformed item id", http.MethodGet, "/api/items/not-a-uuid", "", nil, http.StatusBadRequest},
		{"missing item", http.MethodGet, "/api/items/" + uuid.NewString(), "", nil, http.StatusNotFound},
		{"bad icon", http.MethodPost, "/api/item-categories", "admin", map[string]string{"name": "Veg", "fa_icon": "carrot"}, http.StatusUnprocessableEntity},
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

func TestItemCategoryRoutes_Duplicate(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "Bakery", "fa_icon": "fa-bread-slice"}
	if w := s.do(t, http.MethodPost, "/api/item-categories", s.admin, body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d: %s", w.Code, w.Body)
	}
	if w := s.do(t, http.MethodPost, "/api/item-categories", s.admin, body); w.Code != http.StatusConflict {
		t.Fatalf("duplicate create: expected 409, got %d", w.Code)
	}
	w := s.do(t, http.MethodGet, "/api/item-categories", "", nil)
	if got := decode[[]json.RawMessage](t, w); len(got) != 1 {
		t.Errorf("categories = %d, want 1", len(got))
	}
}
