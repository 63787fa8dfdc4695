package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/services"
)

type getLearningSetRequest struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
}

type getManyLearningSetsRequest struct {
	SessionID string    `json:"sessionId"`
	IDs       *[]string `json:"ids"`
}

type upsertLearningSetRequest struct {
	SessionID   string    `json:"sessionId"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Collections *[]string `json:"collections"`
	Version     *int      `json:"version"`
	Public      *bool     `json:"public"`
}

type learningSetWithID struct {
	models.LearningSet
	ID string `json:"id"`
}

// GetLearningSet handles POST /sets/get.
func (h *Handler) GetLearningSet(w http.ResponseWriter, r *http.Request) {
	var req getLearningSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.SessionID == "" {
		unauthorized(w)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "message", "Learning set ID is required.")
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}

	set, err := h.sets.Get(user, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "message", "Not found.")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "message", "Forbidden.")
		default:
			internalError(w, err)
		}
		return
	}
	writeData(w, http.StatusOK, set)
}

// GetManyLearningSets handles POST /sets/get-many.
func (h *Handler) GetManyLearningSets(w http.ResponseWriter, r *http.Request) {
	var req getManyLearningSetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.IDs == nil {
		writeError(w, http.StatusBadRequest, "message", "Learning set IDs are required.")
		return
	}
	if req.SessionID == "" {
		unauthorized(w)
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}

	data, errs := h.sets.GetMany(user, *req.IDs)
	writeBatch(w, data, errs)
}

// UpsertLearningSet handles POST /sets/set.
func (h *Handler) UpsertLearningSet(w http.ResponseWriter, r *http.Request) {
	var req upsertLearningSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.SessionID == "" {
		unauthorized(w)
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}

	var collections []string
	if req.Collections != nil {
		collections = *req.Collections
		if collections == nil {
			collections = []string{}
		}
	}

	set, id, created, err := h.sets.Upsert(user, services.LearningSetPatch{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Collections: collections,
		Version:     req.Version,
		Public:      req.Public,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "message", "Learning set name and collections are required.")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "message", "Forbidden.")
		case errors.Is(err, services.ErrInvalidID):
			writeError(w, http.StatusBadRequest, "message", "Invalid learning set ID.")
		default:
			internalError(w, err)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(w, status, learningSetWithID{LearningSet: *set, ID: id})
}
