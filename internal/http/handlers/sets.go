package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lwozdev/10x-cards/internal/domain"
	"github.com/lwozdev/10x-cards/internal/service"
)

type cardRequest struct {
	Front  string `json:"front"`
	Back   string `json:"back"`
	Origin string `json:"origin"`
	Edited bool   `json:"edited"`
}

type createSetRequest struct {
	Name  string        `json:"name"`
	JobID string        `json:"job_id"`
	Cards []cardRequest `json:"cards"`
}

type updateSetRequest struct {
	Name  string        `json:"name"`
	Cards []cardRequest `json:"cards"`
}

type setResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type cardResponse struct {
	ID     string `json:"id"`
	Front  string `json:"front"`
	Back   string `json:"back"`
	Origin string `json:"origin"`
	Edited bool   `json:"edited"`
}

type setDetailResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Cards     []cardResponse `json:"cards"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateSet persists the reviewed cards as a named set. When job_id is given
// the generation job is linked to the outcome, once and for all.
func (a *App) CreateSet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req createSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	set, cardCount, err := a.Sets.Create(r.Context(), userID, service.CreateSetInput{
		Name:  req.Name,
		JobID: req.JobID,
		Cards: toCardInputs(req.Cards),
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, setResponse{
		ID:        set.ID,
		Name:      set.Name,
		CardCount: cardCount,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	})
}

// ListSets returns the user's sets, newest first.
func (a *App) ListSets(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sets, err := a.Sets.List(r.Context(), userID)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	out := make([]setResponse, 0, len(sets))
	for _, s := range sets {
		out = append(out, setResponse{
			ID:        s.ID,
			Name:      s.Name,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"sets": out})
}

// GetSet returns a single set with its cards.
func (a *App) GetSet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	set, cards, err := a.Sets.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	out := make([]cardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardResponse{
			ID:     c.ID,
			Front:  c.Front,
			Back:   c.Back,
			Origin: string(c.Origin),
			Edited: c.Edited,
		})
	}
	a.json(w, http.StatusOK, setDetailResponse{
		ID:        set.ID,
		Name:      set.Name,
		Cards:     out,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	})
}

// UpdateSet renames a set and replaces its cards. Updates never touch the
// generation job linkage.
func (a *App) UpdateSet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req updateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	set, cardCount, err := a.Sets.Update(r.Context(), userID, chi.URLParam(r, "id"), service.UpdateSetInput{
		Name:  req.Name,
		Cards: toCardInputs(req.Cards),
	})
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, setResponse{
		ID:        set.ID,
		Name:      set.Name,
		CardCount: cardCount,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	})
}

// DeleteSet soft-deletes a set, freeing its name for reuse.
func (a *App) DeleteSet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, r, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if err := a.Sets.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		a.domainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCardInputs(cards []cardRequest) []service.CardInput {
	inputs := make([]service.CardInput, 0, len(cards))
	for _, c := range cards {
		inputs = append(inputs, service.CardInput{
			Front:  c.Front,
			Back:   c.Back,
			Origin: domain.CardOrigin(c.Origin),
			Edited: c.Edited,
		})
	}
	return inputs
}
