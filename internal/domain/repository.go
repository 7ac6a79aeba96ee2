package domain

import "context"

// GenerationJobRepository defines persistence for generation jobs. Lookups are
// scoped by owner so a job belonging to another user is indistinguishable from
// a missing one.
type GenerationJobRepository interface {
	Create(ctx context.Context, job *GenerationJob) error
	GetByIDForUser(ctx context.Context, jobID, userID string) (*GenerationJob, error)
	// LinkToSet persists the one-time linkage. Implementations must guard
	// against concurrent linkers: a second writer gets ErrJobAlreadyLinked
	// even if it raced past the entity's in-memory check.
	LinkToSet(ctx context.Context, job *GenerationJob) error
}

// SetRepository defines persistence for sets and their cards.
type SetRepository interface {
	Create(ctx context.Context, set *Set, cards []*Card) error
	GetByIDForUser(ctx context.Context, setID, userID string) (*Set, []*Card, error)
	ListByUser(ctx context.Context, userID string) ([]*Set, error)
	// Update persists a rename and replaces the set's cards.
	Update(ctx context.Context, set *Set, cards []*Card) error
	SoftDelete(ctx context.Context, setID, userID string) error
	// ExistsByName reports whether the user owns a non-deleted set with the
	// given name, compared case-insensitively. excludeSetID, when non-empty,
	// ignores that set (for renames).
	ExistsByName(ctx context.Context, userID, name, excludeSetID string) (bool, error)
}
