package genai

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lwozdev/10x-cards/internal/domain"
)

// sanitizeSourceText strips control characters (keeping newline, carriage
// return and tab), trims, and re-checks the length bounds. The bounds check
// duplicates domain validation on purpose: the client does not trust its
// callers with what it sends to the provider.
func sanitizeSourceText(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimSpace(cleaned)

	n := utf8.RuneCountInString(cleaned)
	if n < domain.SourceTextMinLen || n > domain.SourceTextMaxLen {
		return "", &ProviderError{
			Kind: KindInvalidRequest,
			Message: fmt.Sprintf("source text must be %d-%d characters after sanitization, got %d",
				domain.SourceTextMinLen, domain.SourceTextMaxLen, n),
		}
	}
	return cleaned, nil
}

// truncateRunes caps s at n code points.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
