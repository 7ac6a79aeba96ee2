package genai

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lwozdev/10x-cards/internal/domain"
)

const fallbackNameWords = 6

// suggestedNameFromText derives a deterministic deck name from the opening
// words of the material, used when the provider omits one.
func suggestedNameFromText(text string) string {
	line := text
	if idx := strings.IndexAny(line, "\r\n"); idx >= 0 {
		line = line[:idx]
	}
	words := strings.Fields(line)
	if len(words) > fallbackNameWords {
		words = words[:fallbackNameWords]
	}
	name := cases.Title(language.Und).String(strings.Join(words, " "))
	return truncateRunes(name, domain.SetNameMaxLen)
}
