//go:build integration

// Run with a disposable database:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/adapter/repo
package repo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/infra"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, infra.RunMigrations(url))
	pool, err := pgxpool.New(t.Context(), url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "TRUNCATE generation_jobs, cards, sets")
		pool.Close()
	})
	return pool
}

func mustSet(t *testing.T, sets *SetRepositoryPG, userID, name string) *domain.Set {
	t.Helper()
	set, err := domain.NewSet(userID, name)
	require.NoError(t, err)
	content, err := domain.NewGeneratedCard("front", "back")
	require.NoError(t, err)
	card, err := domain.NewCard(set.ID, content, domain.CardOriginManual, false)
	require.NoError(t, err)
	require.NoError(t, sets.Create(t.Context(), set, []*domain.Card{card}))
	return set
}

func TestExistsByNameExecutes(t *testing.T) {
	pool := testPool(t)
	sets := NewSetRepository(pool)
	userID := uuid.NewString()
	set := mustSet(t, sets, userID, "Cell Biology")

	// Create-mode check: no exclusion.
	exists, err := sets.ExistsByName(t.Context(), userID, "cell biology", "")
	require.NoError(t, err)
	assert.True(t, exists)

	// Rename-mode check: the set's own name does not collide with itself.
	exists, err = sets.ExistsByName(t.Context(), userID, "Cell Biology", set.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = sets.ExistsByName(t.Context(), uuid.NewString(), "Cell Biology", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCreateMapsUniqueViolation(t *testing.T) {
	pool := testPool(t)
	sets := NewSetRepository(pool)
	userID := uuid.NewString()
	mustSet(t, sets, userID, "History")

	dup, err := domain.NewSet(userID, "history")
	require.NoError(t, err)
	content, err := domain.NewGeneratedCard("front", "back")
	require.NoError(t, err)
	card, err := domain.NewCard(dup.ID, content, domain.CardOriginManual, false)
	require.NoError(t, err)

	err = sets.Create(t.Context(), dup, []*domain.Card{card})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestSoftDeleteFreesName(t *testing.T) {
	pool := testPool(t)
	sets := NewSetRepository(pool)
	userID := uuid.NewString()
	set := mustSet(t, sets, userID, "Reusable")

	require.NoError(t, sets.SoftDelete(t.Context(), set.ID, userID))

	exists, err := sets.ExistsByName(t.Context(), userID, "Reusable", "")
	require.NoError(t, err)
	assert.False(t, exists)

	mustSet(t, sets, userID, "Reusable")
}

func TestLinkToSetSecondWriterFails(t *testing.T) {
	pool := testPool(t)
	jobs := NewGenerationJobRepository(pool)
	sets := NewSetRepository(pool)
	userID := uuid.NewString()

	job := domain.NewSucceededJob(userID, "prompt", 3, "Deck", "gpt-4o-mini", 10, 5)
	require.NoError(t, jobs.Create(t.Context(), job))

	first := mustSet(t, sets, userID, "First")
	second := mustSet(t, sets, userID, "Second")

	// Two loaded copies of the job race past the entity guard.
	a, err := jobs.GetByIDForUser(t.Context(), job.ID, userID)
	require.NoError(t, err)
	b, err := jobs.GetByIDForUser(t.Context(), job.ID, userID)
	require.NoError(t, err)

	require.NoError(t, a.LinkToSet(first.ID, 2, 1))
	require.NoError(t, jobs.LinkToSet(t.Context(), a))

	require.NoError(t, b.LinkToSet(second.ID, 3, 0))
	err = jobs.LinkToSet(t.Context(), b)
	assert.ErrorIs(t, err, domain.ErrJobAlreadyLinked)

	stored, err := jobs.GetByIDForUser(t.Context(), job.ID, userID)
	require.NoError(t, err)
	require.NotNil(t, stored.SetID)
	assert.Equal(t, first.ID, *stored.SetID)
	assert.Equal(t, 2, *stored.AcceptedCount)
}

func TestGetJobScopedToOwner(t *testing.T) {
	pool := testPool(t)
	jobs := NewGenerationJobRepository(pool)

	job := domain.NewSucceededJob(uuid.NewString(), "prompt", 1, "Deck", "gpt-4o-mini", 10, 5)
	require.NoError(t, jobs.Create(t.Context(), job))

	_, err := jobs.GetByIDForUser(t.Context(), job.ID, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
