package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lwozdev/10x-cards/internal/providers/genai"
)

type generateRequest struct {
	SourceText string `json:"source_text"`
}

type generatedCardResponse struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type generateResponse struct {
	JobID          string                  `json:"job_id"`
	SuggestedName  string                  `json:"suggested_name"`
	GeneratedCount int                     `json:"generated_count"`
	Cards          []generatedCardResponse `json:"cards"`
}

// Generate runs the AI pipeline synchronously and returns the candidates for
// review. The set is not created here; cards only persist once the user saves.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	res, err := a.Generation.Generate(r.Context(), userID, req.SourceText)
	if err != nil {
		if pe, ok := genai.AsProviderError(err); ok {
			a.providerError(w, r, pe)
			return
		}
		a.domainError(w, r, err)
		return
	}

	cards := make([]generatedCardResponse, 0, len(res.Cards))
	for _, c := range res.Cards {
		cards = append(cards, generatedCardResponse{Front: c.Front, Back: c.Back})
	}
	a.json(w, http.StatusOK, generateResponse{
		JobID:          res.JobID,
		SuggestedName:  res.SuggestedName,
		GeneratedCount: res.GeneratedCount,
		Cards:          cards,
	})
}

type suggestNameRequest struct {
	SourceText string `json:"source_text"`
}

// SuggestName proposes a deck name for the given material without recording a
// generation job.
func (a *App) SuggestName(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req suggestNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	name, err := a.Generation.SuggestName(r.Context(), userID, req.SourceText)
	if err != nil {
		if pe, ok := genai.AsProviderError(err); ok {
			a.providerError(w, r, pe)
			return
		}
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"name": name})
}
