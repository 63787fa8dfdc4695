package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/powercards/powercards-api/internal/models"
	"github.com/powercards/powercards-api/internal/services"
)

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	SessionID   string `json:"sessionId"`
	OldPassword string `json:"oldPassword"`
	Password    string `json:"password"`
}

// authenticate resolves the request's session id, writing the 401
// response itself on failure.
func (h *Handler) authenticate(w http.ResponseWriter, sessionID string) (*models.User, bool) {
	if sessionID == "" {
		unauthorized(w)
		return nil, false
	}
	user, err := h.sessions.Authenticate(sessionID)
	if err != nil {
		unauthorized(w)
		return nil, false
	}
	return user, true
}

// SignUp handles POST /auth/signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.Email == "" || req.Password == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "body", "Email and password are required.")
		return
	}

	user, tok, err := h.users.SignUp(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, "email", "Username is already taken.")
		case errors.Is(err, services.ErrInvalidID):
			writeError(w, http.StatusBadRequest, "username", "Invalid username.")
		default:
			internalError(w, err)
		}
		return
	}
	writeAuth(w, http.StatusCreated, user.Public(), tok.Secret)
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "body", "Username and password are required.")
		return
	}

	user, tok, err := h.users.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "email", "User does not exist.")
		case errors.Is(err, services.ErrIncorrectPassword):
			writeError(w, http.StatusBadRequest, "password", "Incorrect password.")
		default:
			internalError(w, err)
		}
		return
	}
	writeAuth(w, http.StatusOK, user.Public(), tok.Secret)
}

// ChangePassword handles POST /auth/change-password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidJSON(w)
		return
	}
	user, ok := h.authenticate(w, req.SessionID)
	if !ok {
		return
	}
	if req.OldPassword == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "message", "Old password and current password are required.")
		return
	}

	updated, tok, err := h.users.ChangePassword(user, req.OldPassword, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrIncorrectPassword) {
			writeError(w, http.StatusBadRequest, "message", "Incorrect password.")
			return
		}
		internalError(w, err)
		return
	}
	writeAuth(w, http.StatusOK, updated.Public(), tok.Secret)
}
