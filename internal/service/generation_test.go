package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/providers/genai"
	"github.com/lwozdev/10x-cards/internal/providers/genai/mock"
)

func validText() string {
	return strings.Repeat("the krebs cycle is a series of chemical reactions. ", 40)
}

func twelveCards() []domain.GeneratedCard {
	cards := make([]domain.GeneratedCard, 12)
	for i := range cards {
		cards[i] = domain.GeneratedCard{Front: "Q", Back: "A"}
	}
	return cards
}

func TestGenerateSuccessPersistsJob(t *testing.T) {
	jobs := newMemJobs()
	gen := &mock.Generator{
		GenerateFunc: func(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
			return &genai.Result{
				Cards:            twelveCards(),
				SuggestedName:    "Cell respiration",
				Model:            "gpt-4o-mini",
				PromptTokens:     1500,
				CompletionTokens: 420,
			}, nil
		},
	}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	res, err := svc.Generate(context.Background(), "user-1", validText())
	require.NoError(t, err)

	assert.Equal(t, 12, res.GeneratedCount)
	assert.Len(t, res.Cards, 12)
	assert.Equal(t, "Cell respiration", res.SuggestedName)
	assert.NotEmpty(t, res.JobID)

	require.Equal(t, 1, jobs.count())
	job := jobs.single()
	assert.Equal(t, res.JobID, job.ID)
	assert.True(t, job.IsSuccessful())
	assert.Equal(t, "user-1", job.UserID)
	assert.Equal(t, 12, job.GeneratedCount)
	assert.Equal(t, "gpt-4o-mini", job.Model)
	assert.Equal(t, 1500, job.TokensIn)
	assert.Equal(t, 420, job.TokensOut)
}

func TestGenerateFailureRecordsJobAndReRaises(t *testing.T) {
	jobs := newMemJobs()
	gen := &mock.Generator{
		GenerateFunc: func(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
			return nil, &genai.ProviderError{Kind: genai.KindTimeout, Message: "deadline exceeded"}
		},
	}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", validText())
	pe, ok := genai.AsProviderError(err)
	require.True(t, ok, "original typed failure propagates")
	assert.Equal(t, genai.KindTimeout, pe.Kind)

	require.Equal(t, 1, jobs.count(), "failed attempt is as durably recorded as a successful one")
	job := jobs.single()
	assert.True(t, job.IsFailed())
	assert.Equal(t, "deadline exceeded", job.ErrorMessage)
}

func TestGenerateWrapsUntypedErrors(t *testing.T) {
	jobs := newMemJobs()
	gen := &mock.Generator{
		GenerateFunc: func(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
			return nil, errors.New("something unspecified broke")
		},
	}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", validText())
	pe, ok := genai.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, genai.KindParse, pe.Kind)
	assert.Equal(t, 1, jobs.count())
}

func TestGenerateRecoversGeneratorPanic(t *testing.T) {
	jobs := newMemJobs()
	gen := &mock.Generator{
		GenerateFunc: func(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
			panic("index out of range")
		},
	}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", validText())
	pe, ok := genai.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, genai.KindParse, pe.Kind)
	assert.Contains(t, pe.Message, "index out of range")
	assert.Equal(t, 1, jobs.count())
}

func TestGenerateTruncatesLongErrors(t *testing.T) {
	jobs := newMemJobs()
	gen := &mock.Generator{
		GenerateFunc: func(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
			return nil, &genai.ProviderError{Kind: genai.KindServerError, Message: strings.Repeat("ą", 400)}
		},
	}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", validText())
	require.Error(t, err)
	job := jobs.single()
	assert.Equal(t, domain.JobErrorMaxLen, utf8.RuneCountInString(job.ErrorMessage))
}

func TestGenerateRejectsInvalidInputBeforeCalling(t *testing.T) {
	jobs := newMemJobs()
	gen := &mock.Generator{}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", "too short")
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, gen.GenerateCalls(), "no external call for invalid input")
	assert.Zero(t, jobs.count(), "no job for rejected input")
}

func TestGenerateJobPersistenceFailure(t *testing.T) {
	jobs := newMemJobs()
	jobs.createErr = errors.New("database down")
	svc := NewGenerationService(&mock.Generator{}, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", validText())
	assert.ErrorContains(t, err, "persist generation job")
}

func TestGenerateFailurePathPersistErrorStillReRaises(t *testing.T) {
	jobs := newMemJobs()
	jobs.createErr = errors.New("database down")
	gen := &mock.Generator{
		GenerateFunc: func(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
			return nil, &genai.ProviderError{Kind: genai.KindServerError, Message: "upstream 500"}
		},
	}
	svc := NewGenerationService(gen, jobs, zerolog.Nop())

	_, err := svc.Generate(context.Background(), "user-1", validText())
	pe, ok := genai.AsProviderError(err)
	require.True(t, ok, "store trouble must not mask the provider failure")
	assert.Equal(t, genai.KindServerError, pe.Kind)
}

func TestSuggestName(t *testing.T) {
	svc := NewGenerationService(&mock.Generator{}, newMemJobs(), zerolog.Nop())

	name, err := svc.SuggestName(context.Background(), "user-1", validText())
	require.NoError(t, err)
	assert.Equal(t, "Mock deck", name)

	_, err = svc.SuggestName(context.Background(), "user-1", "short")
	assert.True(t, domain.IsValidation(err))
}
