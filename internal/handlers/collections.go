package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/services"
)

type getCollectionRequest struct {
	SessionID string `json:"sessionId"`
	ID        string `json:"id"`
}

type getManyCollectionsRequest struct {
	SessionID string    `json:"sessionId"`
	IDs       *[]string `json:"ids"`
}

type upsertCollectionRequest struct {
	SessionID   string          `json:"sessionId"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Cards       json.RawMessage `json:"cards"`
	Version     *int            `json:"version"`
	Public      *bool           `json:"public"`
	Sets        []string        `json:"sets"`
}

// collectionWithID is the response shape of an upsert: the stored
// document plus its id.
type collectionWithID struct {
	models.Collection
	ID string `json:"id"`
}

// decodeCards turns the raw "cards" field into [][]string. nil raw means
// the field was absent (nil result, no error); anything that is not an
// array of string arrays is a shape error.
func decodeCards(raw json.RawMessage) ([][]string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	cards := make([][]string, 0, len(elems))
	for _, e := range elems {
		var pair []string
		if err := json.Unmarshal(e, &pair); err != nil {
			return nil, false
		}
		cards = append(cards, pair)
	}
	return cards, true
}

// GetCollection handles POST /collection/get.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	var req getCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.SessionID == "" {
		unauthorized(w)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "message", "Collection ID is required.")
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}

	c, err := h.collections.Get(user, req.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			writeError(w, http.StatusNotFound, "message", "Collection not found.")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "message", "Forbidden.")
		default:
			internalError(w, err)
		}
		return
	}
	writeData(w, http.StatusOK, c)
}

// GetManyCollections handles POST /collection/get-many. Per-id failures
// land in "errors" while the rest of the batch succeeds.
func (h *Handler) GetManyCollections(w http.ResponseWriter, r *http.Request) {
	var req getManyCollectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.IDs == nil {
		writeError(w, http.StatusBadRequest, "message", "Collection IDs are required.")
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

	data, errs := h.collections.GetMany(user, *req.IDs)
	writeBatch(w, data, errs)
}

// UpsertCollection handles POST /collection/set: create without an id,
// update (author only) with one.
func (h *Handler) UpsertCollection(w http.ResponseWriter, r *http.Request) {
	var req upsertCollectionRequest
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

	cards, ok := decodeCards(req.Cards)
	if !ok {
		writeError(w, http.StatusBadRequest, "message", "Cards must be an array of arrays.")
		return
	}

	c, id, created, err := h.collections.Upsert(user, services.CollectionPatch{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Cards:       cards,
		Version:     req.Version,
		Public:      req.Public,
		Sets:        req.Sets,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "message", "Collection name and cards are required.")
		case errors.Is(err, services.ErrForbidden):
			writeError(w, http.StatusForbidden, "message", "Forbidden.")
		case errors.Is(err, services.ErrInvalidID):
			writeError(w, http.StatusBadRequest, "message", "Invalid collection ID.")
		default:
			internalError(w, err)
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(w, status, collectionWithID{Collection: *c, ID: id})
}
