package genai

import (
	"context"

	"github.com/lwozdev/10x-cards/internal/domain"
)

// Generator is the boundary between the application core and the external
// text-generation provider.
type Generator interface {
	// Generate produces flashcard candidates from the source text, or a
	// *ProviderError describing why it could not.
	Generate(ctx context.Context, text domain.SourceText) (*Result, error)

	// SuggestName proposes a short deck name from an excerpt of the text.
	// Failures carry the same taxonomy as Generate.
	SuggestName(ctx context.Context, text domain.SourceText) (string, error)
}

// Result is a successful generation with its usage metadata.
type Result struct {
	Cards            []domain.GeneratedCard
	SuggestedName    string
	Model            string
	PromptTokens     int
	CompletionTokens int
}
