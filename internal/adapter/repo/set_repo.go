package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lwozdev/10x-cards/internal/domain"
)

const uniqueViolation = "23505"

// SetRepositoryPG implements domain.SetRepository.
type SetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewSetRepository creates a new set repository backed by PostgreSQL.
func NewSetRepository(pool *pgxpool.Pool) *SetRepositoryPG {
	return &SetRepositoryPG{pool: pool}
}

// Create inserts a set together with its cards in one transaction.
func (r *SetRepositoryPG) Create(ctx context.Context, set *domain.Set, cards []*domain.Card) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
INSERT INTO sets (id, user_id, name, deleted, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	if _, err := tx.Exec(ctx, query,
		set.ID,
		set.UserID,
		set.Name,
		set.Deleted,
		set.CreatedAt,
		set.UpdatedAt,
	); err != nil {
		return translateUniqueViolation(err)
	}
	if err := insertCards(ctx, tx, cards); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByIDForUser fetches a non-deleted set and its cards, scoped to the owner.
func (r *SetRepositoryPG) GetByIDForUser(ctx context.Context, setID, userID string) (*domain.Set, []*domain.Card, error) {
	query := `
SELECT id, user_id, name, deleted, created_at, updated_at
FROM sets
WHERE id = $1 AND user_id = $2 AND deleted = FALSE;
`
	row := r.pool.QueryRow(ctx, query, setID, userID)
	var set domain.Set
	if err := row.Scan(
		&set.ID,
		&set.UserID,
		&set.Name,
		&set.Deleted,
		&set.CreatedAt,
		&set.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}

	cards, err := r.cardsForSet(ctx, set.ID)
	if err != nil {
		return nil, nil, err
	}
	return &set, cards, nil
}

// ListByUser returns the user's non-deleted sets, newest first.
func (r *SetRepositoryPG) ListByUser(ctx context.Context, userID string) ([]*domain.Set, error) {
	query := `
SELECT id, user_id, name, deleted, created_at, updated_at
FROM sets
WHERE user_id = $1 AND deleted = FALSE
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []*domain.Set
	for rows.Next() {
		var set domain.Set
		if err := rows.Scan(
			&set.ID,
			&set.UserID,
			&set.Name,
			&set.Deleted,
			&set.CreatedAt,
			&set.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sets = append(sets, &set)
	}
	return sets, rows.Err()
}

// Update renames the set and replaces its cards in one transaction.
func (r *SetRepositoryPG) Update(ctx context.Context, set *domain.Set, cards []*domain.Card) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
UPDATE sets
SET name = $3, updated_at = $4
WHERE id = $1 AND user_id = $2 AND deleted = FALSE;
`
	tag, err := tx.Exec(ctx, query, set.ID, set.UserID, set.Name, set.UpdatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cards WHERE set_id = $1;`, set.ID); err != nil {
		return err
	}
	if err := insertCards(ctx, tx, cards); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SoftDelete marks the set deleted; cards stay in place and the name is freed
// by the partial unique index.
func (r *SetRepositoryPG) SoftDelete(ctx context.Context, setID, userID string) error {
	query := `
UPDATE sets
SET deleted = TRUE, updated_at = NOW()
WHERE id = $1 AND user_id = $2 AND deleted = FALSE;
`
	tag, err := r.pool.Exec(ctx, query, setID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExistsByName reports whether the user already owns a non-deleted set with
// the same name, compared case-insensitively. The exclusion compares on
// id::text so the parameter stays text-typed either way; an empty
// excludeSetID never equals a real id and excludes nothing.
func (r *SetRepositoryPG) ExistsByName(ctx context.Context, userID, name, excludeSetID string) (bool, error) {
	query := `
SELECT EXISTS (
    SELECT 1 FROM sets
    WHERE user_id = $1 AND lower(name) = lower($2) AND deleted = FALSE
      AND id::text <> $3
);
`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, name, excludeSetID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SetRepositoryPG) cardsForSet(ctx context.Context, setID string) ([]*domain.Card, error) {
	query := `
SELECT id, set_id, front, back, origin, edited, created_at, updated_at
FROM cards
WHERE set_id = $1
ORDER BY created_at ASC;
`
	rows, err := r.pool.Query(ctx, query, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		var card domain.Card
		if err := rows.Scan(
			&card.ID,
			&card.SetID,
			&card.Front,
			&card.Back,
			&card.Origin,
			&card.Edited,
			&card.CreatedAt,
			&card.UpdatedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, &card)
	}
	return cards, rows.Err()
}

func insertCards(ctx context.Context, tx pgx.Tx, cards []*domain.Card) error {
	query := `
INSERT INTO cards (id, set_id, front, back, origin, edited, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	for _, card := range cards {
		if _, err := tx.Exec(ctx, query,
			card.ID,
			card.SetID,
			card.Front,
			card.Back,
			card.Origin,
			card.Edited,
			card.CreatedAt,
			card.UpdatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// translateUniqueViolation maps the partial unique index on (user_id,
// lower(name)) to the domain error so a racing duplicate insert surfaces the
// same way as the pre-check.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateName
	}
	return err
}

var _ domain.SetRepository = (*SetRepositoryPG)(nil)
