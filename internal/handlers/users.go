package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/powercards/powercards-api/internal/services"
)

type getUserRequest struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
}

type updateUserRequest struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// GetUser handles POST /user/get: the caller's own projection, or a
// named user's when "username" is given.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	var req getUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}

	if req.Username != "" {
		target, err := h.users.Get(req.Username)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				writeError(w, http.StatusNotFound, "message", "User not found.")
				return
			}
			internalError(w, err)
			return
		}
		writeData(w, http.StatusOK, target)
		return
	}
	writeData(w, http.StatusOK, user.Public())
}

// UpdateUser handles POST /user/set: email/name updates and username
// renames.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}

	updated, err := h.users.Update(user, services.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, "message", "Username unavailable.")
		case errors.Is(err, services.ErrInvalidID):
			writeError(w, http.StatusBadRequest, "username", "Invalid username.")
		default:
			internalError(w, err)
		}
		return
	}
	writeData(w, http.StatusOK, updated.Public())
}
