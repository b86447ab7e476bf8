package main

import (
	"net/http"

	"dungeon-chat/internal/api/handlers"
	"dungeon-chat/internal/app"
	"dungeon-chat/internal/auth"
	"dungeon-chat/internal/config"
	"dungeon-chat/internal/logger"
	"dungeon-chat/internal/repository/postgres"
	"dungeon-chat/internal/service/llm"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	database, err := postgres.NewPostgresDB(appConfig.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close()

	cfg := app.NewConfig(database, appConfig)

	completion := llm.NewOpenAIProvider(&appConfig.LLM)

	// Moderation rides on the same API key; skip it when none is set
	var moderation llm.ModerationService
	if appConfig.LLM.OpenAIAPIKey != "" {
		moderation = llm.NewOpenAIModeration(&appConfig.LLM)
	}

	authn := auth.New(database, appConfig.Auth)
	h := handlers.NewHandlers(cfg, completion, moderation)

	mux := http.NewServeMux()

	corsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusOK)
	}

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", enableCORS(authn.RegisterHandler))
	mux.HandleFunc("POST /api/v1/auth/login", enableCORS(authn.LoginHandler))
	mux.HandleFunc("GET /api/v1/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	// Protected routes
	mux.HandleFunc("POST /api/v1/chat", enableCORS(authn.Middleware(h.SubmitHandler)))
	mux.HandleFunc("POST /api/v1/adventures", enableCORS(authn.Middleware(h.CreateAdventureHandler)))
	mux.HandleFunc("GET /api/v1/adventures", enableCORS(authn.Middleware(h.ListAdventuresHandler)))
	mux.HandleFunc("GET /api/v1/adventures/{id}/turns", enableCORS(authn.Middleware(h.TurnsHandler)))
	mux.HandleFunc("DELETE /api/v1/adventures/{id}", enableCORS(authn.Middleware(h.DeleteAdventureHandler)))
	mux.HandleFunc("GET /api/v1/adventures/{id}/character", enableCORS(authn.Middleware(h.GetCharacterHandler)))
	mux.HandleFunc("POST /api/v1/character", enableCORS(authn.Middleware(h.SaveCharacterHandler)))
	mux.HandleFunc("POST /api/v1/gain_xp", enableCORS(authn.Middleware(h.GrantXPHandler)))
	mux.HandleFunc("POST /api/v1/levelup", enableCORS(authn.Middleware(h.LevelUpHandler)))

	// CORS preflight for everything under the API prefix
	mux.HandleFunc("OPTIONS /api/v1/", corsHandler)

	logger.Log.WithField("port", appConfig.Server.Port).Info("Server starting")
	if err := http.ListenAndServe(":"+appConfig.Server.Port, mux); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
