// Package mock provides a configurable Generator for tests.
package mock

import (
	"context"
	"sync"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/providers/genai"
)

// Generator implements genai.Generator with injectable behavior and call
// counting.
type Generator struct {
	mu sync.Mutex

	GenerateFunc    func(ctx context.Context, text domain.SourceText) (*genai.Result, error)
	SuggestNameFunc func(ctx context.Context, text domain.SourceText) (string, error)

	generateCalls int
	suggestCalls  int
}

func (g *Generator) Generate(ctx context.Context, text domain.SourceText) (*genai.Result, error) {
	g.mu.Lock()
	g.generateCalls++
	g.mu.Unlock()
	if g.GenerateFunc != nil {
		return g.GenerateFunc(ctx, text)
	}
	return &genai.Result{
		Cards: []domain.GeneratedCard{
			{Front: "What is a mock?", Back: "A stand-in for the real provider."},
		},
		SuggestedName: "Mock deck",
		Model:         "mock-model",
	}, nil
}

func (g *Generator) SuggestName(ctx context.Context, text domain.SourceText) (string, error) {
	g.mu.Lock()
	g.suggestCalls++
	g.mu.Unlock()
	if g.SuggestNameFunc != nil {
		return g.SuggestNameFunc(ctx, text)
	}
	return "Mock deck", nil
}

// GenerateCalls returns how many times Generate was invoked.
func (g *Generator) GenerateCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.generateCalls
}

// SuggestNameCalls returns how many times SuggestName was invoked.
func (g *Generator) SuggestNameCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.suggestCalls
}

var _ genai.Generator = (*Generator)(nil)
