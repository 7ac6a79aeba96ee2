package service

import (
	"context"
	"strings"
	"sync"

	"github.com/lwozdev/10x-cards/internal/domain"
)

// memJobs is an in-memory GenerationJobRepository with the same link-once
// guard a real store enforces.
type memJobs struct {
	mu        sync.Mutex
	jobs      map[string]*domain.GenerationJob
	linked    map[string]bool
	createErr error
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*domain.GenerationJob{}, linked: map[string]bool{}}
}

func (m *memJobs) Create(_ context.Context, job *domain.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
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

func (m *memJobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *memJobs) single() *domain.GenerationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		return j
	}
	return nil
}

// memSets is an in-memory SetRepository.
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

func (m *memSets) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets)
}
