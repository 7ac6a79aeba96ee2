package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/middleware"
	"github.com/lwozdev/10x-cards/internal/providers/genai/mock"
	"github.com/lwozdev/10x-cards/internal/service"
)

const testSecret = "handler-test-secret"

// testEnv wires the full router with in-memory stores and a mock provider.
type testEnv struct {
	router    http.Handler
	generator *mock.Generator
	jobs      *memJobs
	sets      *memSets
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	generator := &mock.Generator{}
	jobs := newMemJobs()
	sets := newMemSets()

	app := NewApp(
		service.NewGenerationService(generator, jobs, logger),
		service.NewSetService(sets, jobs, logger),
		logger,
	)
	return &testEnv{
		router:    testRouter(app),
		generator: generator,
		jobs:      jobs,
		sets:      sets,
	}
}

// testRouter mirrors the production route layout with just the middleware the
// tests exercise.
func testRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Locale(middleware.LocaleEnglish))
	r.Get("/v1/healthz", app.Health)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(testSecret))
		r.Route("/v1/generations", func(r chi.Router) {
			r.Post("/", app.Generate)
			r.Post("/suggest-name", app.SuggestName)
		})
		r.Route("/v1/sets", func(r chi.Router) {
			r.Post("/", app.CreateSet)
			r.Get("/", app.ListSets)
			r.Get("/{id}", app.GetSet)
			r.Put("/{id}", app.UpdateSet)
			r.Delete("/{id}", app.DeleteSet)
		})
	})
	return r
}

func authHeader(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.SignJWT(testSecret, middleware.TokenClaims{
		Sub: userID,
		Exp: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func validSourceText() string {
	return strings.TrimSpace(strings.Repeat("The mitochondrion is the powerhouse of the cell. ", 40))
}

type memJobs struct {
	mu     sync.Mutex
	jobs   map[string]*domain.GenerationJob
	linked map[string]bool
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*domain.GenerationJob{}, linked: map[string]bool{}}
}

func (m *memJobs) Create(_ context.Context, job *domain.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobs) GetByIDForUser(_ context.Context, jobID, userID string) (*domain.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (m *memJobs) LinkToSet(_ context.Context, job *domain.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	if m.linked[job.ID] {
		return domain.ErrJobAlreadyLinked
	}
	m.linked[job.ID] = true
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobs) get(jobID string) *domain.GenerationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[jobID]
}

type memSets struct {
	mu    sync.Mutex
	sets  map[string]*domain.Set
	cards map[string][]*domain.Card
}

func newMemSets() *memSets {
	return &memSets{sets: map[string]*domain.Set{}, cards: map[string][]*domain.Card{}}
}

func (m *memSets) Create(_ context.Context, set *domain.Set, cards []*domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[set.ID] = set
	m.cards[set.ID] = cards
	return nil
}

func (m *memSets) GetByIDForUser(_ context.Context, setID, userID string) (*domain.Set, []*domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[setID]
	if !ok || set.UserID != userID || set.Deleted {
		return nil, nil, domain.ErrNotFound
	}
	return set, m.cards[setID], nil
}

func (m *memSets) ListByUser(_ context.Context, userID string) ([]*domain.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Set
	for _, s := range m.sets {
		if s.UserID == userID && !s.Deleted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSets) Update(_ context.Context, set *domain.Set, cards []*domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[set.ID]; !ok {
		return domain.ErrNotFound
	}
	m.sets[set.ID] = set
	m.cards[set.ID] = cards
	return nil
}

func (m *memSets) SoftDelete(_ context.Context, setID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[setID]
	if !ok || set.UserID != userID {
		return domain.ErrNotFound
	}
	set.Deleted = true
	return nil
}

func (m *memSets) ExistsByName(_ context.Context, userID, name, excludeSetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sets {
		if s.UserID == userID && !s.Deleted && s.ID != excludeSetID && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
