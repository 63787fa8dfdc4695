package handlers

import (
	"github.com/powercards/powercards-api/internal/services"
)

// Handler carries the services behind the HTTP surface. Every operation
// is a POST with a JSON body; the session id travels in the body as
// "sessionId".
type Handler struct {
	sessions    *services.SessionManager
	users       *services.UserService
	collections *services.CollectionService
	sets        *services.LearningSetService
}

func New(sessions *services.SessionManager, users *services.UserService, collections *services.CollectionService, sets *services.LearningSetService) *Handler {
	return &Handler{
		sessions:    sessions,
		users:       users,
		collections: collections,
		sets:        sets,
	}
}
