package handlers

import (
	"context"

	"github.com/lwozdev/10x-cards/internal/middleware"
)

// plMessages holds Polish translations for the fixed API error messages.
// Dynamic messages, validation reasons and provider diagnostics among them,
// pass through untranslated.
var plMessages = map[string]string{
	"missing user context":                          "brak kontekstu użytkownika",
	"invalid payload":                               "nieprawidłowe dane wejściowe",
	"a set with this name already exists":           "zestaw o tej nazwie już istnieje",
	"generation job not found":                      "nie znaleziono zadania generowania",
	"set not found":                                 "nie znaleziono zestawu",
	"generation job is already linked to a set":     "zadanie generowania jest już powiązane z zestawem",
	"generation job did not succeed":                "zadanie generowania nie powiodło się",
	"generation timed out":                          "generowanie przekroczyło limit czasu",
	"generation provider is rate limiting requests": "dostawca generowania ogranicza liczbę żądań",
	"generation failed":                             "generowanie nie powiodło się",
	"internal server error":                         "wewnętrzny błąd serwera",
}

func localize(ctx context.Context, message string) string {
	if middleware.LocaleFromContext(ctx) != middleware.LocalePolish {
		return message
	}
	if translated, ok := plMessages[message]; ok {
		return translated
	}
	return message
}
