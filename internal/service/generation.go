package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/providers/genai"
)

// GenerationResult is what the caller gets back from a successful generation:
// the audit job id plus the candidates the user will review.
type GenerationResult struct {
	JobID          string
	SuggestedName  string
	Cards          []domain.GeneratedCard
	GeneratedCount int
}

// GenerationService coordinates the provider call and job persistence. Every
// attempt, successful or not, leaves a durable GenerationJob behind.
type GenerationService struct {
	generator genai.Generator
	jobs      domain.GenerationJobRepository
	logger    zerolog.Logger
}

func NewGenerationService(generator genai.Generator, jobs domain.GenerationJobRepository, logger zerolog.Logger) *GenerationService {
	return &GenerationService{generator: generator, jobs: jobs, logger: logger}
}

// Generate validates the input, calls the provider, and records the outcome.
// Provider failures are persisted as a failed job and then re-raised
// unchanged; the job record is for auditing, it never swallows the error.
func (s *GenerationService) Generate(ctx context.Context, userID, rawText string) (*GenerationResult, error) {
	text, err := domain.NewSourceText(rawText)
	if err != nil {
		return nil, err
	}

	res, genErr := s.safeGenerate(ctx, text)
	if genErr != nil {
		pe := genai.WrapUnexpected(genErr)
		job := domain.NewFailedJob(userID, text.String(), pe.Message)
		if err := s.jobs.Create(ctx, job); err != nil {
			// The original failure still propagates; the lost audit row is
			// all we can log about.
			s.logger.Error().Err(err).Str("user_id", userID).Msg("persist failed generation job")
		} else {
			s.logger.Info().
				Str("job_id", job.ID).
				Str("user_id", userID).
				Str("error_kind", string(pe.Kind)).
				Msg("generation failed")
		}
		return nil, pe
	}

	job := domain.NewSucceededJob(
		userID,
		text.String(),
		len(res.Cards),
		res.SuggestedName,
		res.Model,
		res.PromptTokens,
		res.CompletionTokens,
	)
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("persist generation job: %w", err)
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("user_id", userID).
		Int("generated_count", job.GeneratedCount).
		Int("tokens_in", job.TokensIn).
		Int("tokens_out", job.TokensOut).
		Msg("generation succeeded")

	return &GenerationResult{
		JobID:          job.ID,
		SuggestedName:  job.SuggestedName,
		Cards:          res.Cards,
		GeneratedCount: job.GeneratedCount,
	}, nil
}

// SuggestName proposes a deck name without creating a job.
func (s *GenerationService) SuggestName(ctx context.Context, userID, rawText string) (string, error) {
	text, err := domain.NewSourceText(rawText)
	if err != nil {
		return "", err
	}
	name, err := s.generator.SuggestName(ctx, text)
	if err != nil {
		return "", genai.WrapUnexpected(err)
	}
	return name, nil
}

// safeGenerate guards the provider boundary: a panicking generator surfaces
// as a parse-class failure instead of taking the request down, so the failed
// job still gets recorded.
func (s *GenerationService) safeGenerate(ctx context.Context, text domain.SourceText) (res *genai.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("generator panicked")
			res = nil
			err = &genai.ProviderError{Kind: genai.KindParse, Message: fmt.Sprintf("generator panic: %v", r)}
		}
	}()
	return s.generator.Generate(ctx, text)
}
