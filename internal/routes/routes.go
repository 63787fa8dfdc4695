package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/powercards/powercards-api/internal/handlers"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler) {
	// Auth routes
	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/change-password", h.ChangePassword)

	// User routes
	r.Post("/user/get", h.GetUser)
	r.Post("/user/set", h.UpdateUser)

	// Collection routes
	r.Post("/collection/get", h.GetCollection)
	r.Post("/collection/get-many", h.GetManyCollections)
	r.Post("/collection/set", h.UpsertCollection)

	// Learning set routes
	r.Post("/sets/get", h.GetLearningSet)
	r.Post("/sets/get-many", h.GetManyLearningSets)
	r.Post("/sets/set", h.UpsertLearningSet)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Powercards API v1"))
	})
}
