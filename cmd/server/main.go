package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/powercards/powercards-api/internal/config"
	"github.com/powercards/powercards-api/internal/handlers"
	"github.com/powercards/powercards-api/internal/middleware"
	"github.com/powercards/powercards-api/internal/routes"
	"github.com/powercards/powercards-api/internal/services"
	"github.com/powercards/powercards-api/internal/store"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Open the document store
	log.Printf("Opening document store at %s...", cfg.DataDir)
	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to open document store:", err)
	}

	// Wire services
	sessions := services.NewSessionManager(st)
	users := services.NewUserService(st, sessions)
	collections := services.NewCollectionService(st)
	sets := services.NewLearningSetService(st)
	h := handlers.New(sessions, users, collections, sets)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.HostCheck(cfg.AllowedHost))
		log.Println("Production security enabled (security headers, host check)")
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r, h)

	log.Println("Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /auth/signup")
	log.Println("  POST /auth/login")
	log.Println("  POST /auth/change-password")
	log.Println("  POST /user/get")
	log.Println("  POST /user/set")
	log.Println("  POST /collection/get")
	log.Println("  POST /collection/get-many")
	log.Println("  POST /collection/set")
	log.Println("  POST /sets/get")
	log.Println("  POST /sets/get-many")
	log.Println("  POST /sets/set")

	log.Printf("Powercards API running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
