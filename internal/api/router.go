package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aseguradoss/internal/api/handler"
	"github.com/mcoot/aseguradoss/internal/api/middleware"
	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/services/catalog"
	"github.com/mcoot/aseguradoss/internal/services/game"
	"github.com/mcoot/aseguradoss/internal/storage"
	"github.com/mcoot/aseguradoss/internal/web/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Storage        storage.Storage
	CatalogService *catalog.Service
	Engine         *game.Engine
	Hub            *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.Storage, cfg.Logger)
	eventHandler := handler.NewEventHandler(cfg.Storage, cfg.CatalogService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.Engine, cfg.Hub, cfg.Logger)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Persistence endpoints
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players", playerHandler.Replace).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.DeleteAll).Methods(http.MethodDelete)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/players/{id}/position", playerHandler.UpdatePosition).Methods(http.MethodPatch)

	api.HandleFunc("/eventos", eventHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/eventos", eventHandler.Seed).Methods(http.MethodPost)
	api.HandleFunc("/eventos/random", eventHandler.Random).Methods(http.MethodGet)

	// Game endpoints
	api.HandleFunc("/game", gameHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/game", gameHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/game", gameHandler.Reset).Methods(http.MethodDelete)
	api.HandleFunc("/game/roll", gameHandler.Roll).Methods(http.MethodPost)
	api.HandleFunc("/game/decisions/{id}", gameHandler.Decide).Methods(http.MethodPost)
	api.HandleFunc("/game/events", gameHandler.Events).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
