package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lwozdev/10x-cards/internal/domain"
)

// CardInput is one user-approved card in a create or update request.
type CardInput struct {
	Front  string
	Back   string
	Origin domain.CardOrigin
	Edited bool
}

// CreateSetInput is the payload for creating a set. JobID, when set,
// references the generation job whose cards the user reviewed.
type CreateSetInput struct {
	Name  string
	Cards []CardInput
	JobID string
}

// UpdateSetInput renames a set and replaces its cards. Updates never re-link
// a generation job; linking happens once, at creation.
type UpdateSetInput struct {
	Name  string
	Cards []CardInput
}

// SetService persists user-approved card lists and closes the generation loop
// by linking jobs to their accepted outcome.
type SetService struct {
	sets   domain.SetRepository
	jobs   domain.GenerationJobRepository
	logger zerolog.Logger
}

func NewSetService(sets domain.SetRepository, jobs domain.GenerationJobRepository, logger zerolog.Logger) *SetService {
	return &SetService{sets: sets, jobs: jobs, logger: logger}
}

// Create validates and persists a new set with its cards, then links the
// generation job to the accepted outcome. Linking happens here and nowhere
// else.
func (s *SetService) Create(ctx context.Context, userID string, in CreateSetInput) (*domain.Set, int, error) {
	set, err := domain.NewSet(userID, in.Name)
	if err != nil {
		return nil, 0, err
	}
	cards, err := buildCards(set.ID, in.Cards)
	if err != nil {
		return nil, 0, err
	}

	exists, err := s.sets.ExistsByName(ctx, userID, set.Name, "")
	if err != nil {
		return nil, 0, fmt.Errorf("check duplicate name: %w", err)
	}
	if exists {
		return nil, 0, domain.ErrDuplicateName
	}

	// Resolve the job before any mutation so an orphaned reference leaves
	// nothing behind. The lookup is owner-scoped: a job belonging to another
	// user is indistinguishable from a missing one.
	var job *domain.GenerationJob
	if in.JobID != "" {
		job, err = s.jobs.GetByIDForUser(ctx, in.JobID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, 0, domain.ErrJobNotFound
			}
			return nil, 0, fmt.Errorf("load generation job: %w", err)
		}
	}

	if err := s.sets.Create(ctx, set, cards); err != nil {
		return nil, 0, fmt.Errorf("persist set: %w", err)
	}

	if job != nil {
		accepted, edited := countAccepted(cards)
		if err := job.LinkToSet(set.ID, accepted, edited); err != nil {
			s.logger.Error().
				Err(err).
				Str("job_id", job.ID).
				Str("set_id", set.ID).
				Int("accepted", accepted).
				Int("edited", edited).
				Msg("link generation job")
			return nil, 0, err
		}
		if err := s.jobs.LinkToSet(ctx, job); err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Str("set_id", set.ID).Msg("persist job linkage")
			return nil, 0, err
		}
		s.logger.Info().
			Str("job_id", job.ID).
			Str("set_id", set.ID).
			Int("accepted", accepted).
			Int("edited", edited).
			Int("deleted", job.DeletedCount()).
			Msg("generation job linked")
	}

	return set, len(cards), nil
}

// Update renames a set and replaces its cards.
func (s *SetService) Update(ctx context.Context, userID, setID string, in UpdateSetInput) (*domain.Set, int, error) {
	set, _, err := s.sets.GetByIDForUser(ctx, setID, userID)
	if err != nil {
		return nil, 0, err
	}
	if err := set.Rename(in.Name); err != nil {
		return nil, 0, err
	}
	cards, err := buildCards(set.ID, in.Cards)
	if err != nil {
		return nil, 0, err
	}

	exists, err := s.sets.ExistsByName(ctx, userID, set.Name, set.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("check duplicate name: %w", err)
	}
	if exists {
		return nil, 0, domain.ErrDuplicateName
	}

	if err := s.sets.Update(ctx, set, cards); err != nil {
		return nil, 0, fmt.Errorf("persist set update: %w", err)
	}
	return set, len(cards), nil
}

// Get returns a set with its cards.
func (s *SetService) Get(ctx context.Context, userID, setID string) (*domain.Set, []*domain.Card, error) {
	return s.sets.GetByIDForUser(ctx, setID, userID)
}

// List returns the user's sets, newest first.
func (s *SetService) List(ctx context.Context, userID string) ([]*domain.Set, error) {
	return s.sets.ListByUser(ctx, userID)
}

// Delete soft-deletes a set so its name can be reused.
func (s *SetService) Delete(ctx context.Context, userID, setID string) error {
	return s.sets.SoftDelete(ctx, setID, userID)
}

func buildCards(setID string, inputs []CardInput) ([]*domain.Card, error) {
	if len(inputs) == 0 {
		return nil, &domain.ValidationError{Field: "cards", Reason: "must contain at least one card"}
	}
	cards := make([]*domain.Card, 0, len(inputs))
	for _, in := range inputs {
		content, err := domain.NewGeneratedCard(in.Front, in.Back)
		if err != nil {
			return nil, err
		}
		card, err := domain.NewCard(setID, content, in.Origin, in.Edited)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// countAccepted derives the linkage counts: accepted is every AI-origin card
// the user kept, edited the subset they changed before saving.
func countAccepted(cards []*domain.Card) (accepted, edited int) {
	for _, c := range cards {
		if c.Origin != domain.CardOriginAI {
			continue
		}
		accepted++
		if c.Edited {
			edited++
		}
	}
	return accepted, edited
}
