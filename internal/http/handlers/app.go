package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/middleware"
	"github.com/lwozdev/10x-cards/internal/providers/genai"
	"github.com/lwozdev/10x-cards/internal/service"
)

type App struct {
	Generation *service.GenerationService
	Sets       *service.SetService
	Logger     zerolog.Logger
}

func NewApp(generation *service.GenerationService, sets *service.SetService, logger zerolog.Logger) *App {
	return &App{Generation: generation, Sets: sets, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{
			"code":    errCode,
			"message": localize(r.Context(), message),
		},
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// domainError maps service-layer failures onto the API error surface.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		a.json(w, http.StatusUnprocessableEntity, map[string]any{
			"error": map[string]string{
				"code":    "validation_error",
				"field":   ve.Field,
				"message": ve.Reason,
			},
		})
	case errors.Is(err, domain.ErrDuplicateName):
		a.error(w, r, http.StatusConflict, "duplicate_name", "a set with this name already exists")
	case errors.Is(err, domain.ErrJobNotFound):
		a.error(w, r, http.StatusNotFound, "job_not_found", "generation job not found")
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, "not_found", "set not found")
	case errors.Is(err, domain.ErrJobAlreadyLinked):
		a.error(w, r, http.StatusUnprocessableEntity, "job_already_linked", "generation job is already linked to a set")
	case errors.Is(err, domain.ErrJobNotSuccessful):
		a.error(w, r, http.StatusUnprocessableEntity, "job_not_successful", "generation job did not succeed")
	case errors.Is(err, domain.ErrAcceptedExceedsGenerated),
		errors.Is(err, domain.ErrEditedExceedsAccepted),
		errors.Is(err, domain.ErrNegativeCount):
		a.error(w, r, http.StatusUnprocessableEntity, "invalid_counts", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled service error")
		a.error(w, r, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// providerError maps a typed generation failure onto a status code. Rate
// limits forward the provider's retry hint when it gave one.
func (a *App) providerError(w http.ResponseWriter, r *http.Request, pe *genai.ProviderError) {
	switch pe.Kind {
	case genai.KindInvalidRequest:
		a.error(w, r, http.StatusUnprocessableEntity, "invalid_request", pe.Message)
	case genai.KindTimeout:
		a.error(w, r, http.StatusGatewayTimeout, "generation_timeout", "generation timed out")
	case genai.KindRateLimited:
		if pe.RetryAfter > 0 {
			secs := int(pe.RetryAfter.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
		a.error(w, r, http.StatusTooManyRequests, "rate_limited", "generation provider is rate limiting requests")
	default:
		a.Logger.Error().Str("kind", string(pe.Kind)).Str("message", pe.Message).Msg("generation failed")
		a.error(w, r, http.StatusInternalServerError, "generation_failed", "generation failed")
	}
}
