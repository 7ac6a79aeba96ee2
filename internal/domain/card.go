package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	CardFrontMaxLen = 1000
	CardBackMaxLen  = 1000
)

// CardOrigin records whether a card came out of the AI pipeline or was typed
// in by the user.
type CardOrigin string

const (
	CardOriginAI     CardOrigin = "ai"
	CardOriginManual CardOrigin = "manual"
)

// Valid reports whether o is a known origin value.
func (o CardOrigin) Valid() bool {
	return o == CardOriginAI || o == CardOriginManual
}

// GeneratedCard is a provider-produced question/answer candidate. It is never
// persisted; only cards the user keeps become Card entities.
type GeneratedCard struct {
	Front string
	Back  string
}

// NewGeneratedCard validates front/back content against the card bounds.
func NewGeneratedCard(front, back string) (GeneratedCard, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" {
		return GeneratedCard{}, &ValidationError{Field: "front", Reason: "must not be empty"}
	}
	if back == "" {
		return GeneratedCard{}, &ValidationError{Field: "back", Reason: "must not be empty"}
	}
	if n := utf8.RuneCountInString(front); n > CardFrontMaxLen {
		return GeneratedCard{}, &ValidationError{
			Field:  "front",
			Reason: fmt.Sprintf("must be at most %d characters, got %d", CardFrontMaxLen, n),
		}
	}
	if n := utf8.RuneCountInString(back); n > CardBackMaxLen {
		return GeneratedCard{}, &ValidationError{
			Field:  "back",
			Reason: fmt.Sprintf("must be at most %d characters, got %d", CardBackMaxLen, n),
		}
	}
	return GeneratedCard{Front: front, Back: back}, nil
}

// Card is a persisted flashcard belonging to a set.
type Card struct {
	ID        string
	SetID     string
	Front     string
	Back      string
	Origin    CardOrigin
	Edited    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCard builds a persisted card for the given set from validated content.
func NewCard(setID string, content GeneratedCard, origin CardOrigin, edited bool) (*Card, error) {
	if !origin.Valid() {
		return nil, &ValidationError{Field: "origin", Reason: fmt.Sprintf("unknown origin %q", origin)}
	}
	now := time.Now().UTC()
	return &Card{
		ID:        uuid.NewString(),
		SetID:     setID,
		Front:     content.Front,
		Back:      content.Back,
		Origin:    origin,
		Edited:    edited,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
