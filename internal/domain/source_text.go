package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	SourceTextMinLen = 1000
	SourceTextMaxLen = 10000
)

// SourceText is the block of study material a user submits for flashcard
// generation. Length bounds are counted in Unicode code points after trimming.
type SourceText struct {
	value string
}

// NewSourceText validates raw input and returns an immutable SourceText.
func NewSourceText(raw string) (SourceText, error) {
	trimmed := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(trimmed)
	if n < SourceTextMinLen {
		return SourceText{}, &ValidationError{
			Field:  "source_text",
			Reason: fmt.Sprintf("must be at least %d characters, got %d", SourceTextMinLen, n),
		}
	}
	if n > SourceTextMaxLen {
		return SourceText{}, &ValidationError{
			Field:  "source_text",
			Reason: fmt.Sprintf("must be at most %d characters, got %d", SourceTextMaxLen, n),
		}
	}
	return SourceText{value: trimmed}, nil
}

func (s SourceText) String() string {
	return s.value
}

// Len returns the text length in Unicode code points.
func (s SourceText) Len() int {
	return utf8.RuneCountInString(s.value)
}
