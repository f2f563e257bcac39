package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/aseguradoss/internal/api/request"
	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/game"
	"github.com/mcoot/aseguradoss/internal/web/sse"
)

// GameHandler drives the turn engine over HTTP
type GameHandler struct {
	engine *game.Engine
	hub    *sse.Hub
	logger *slog.Logger
}

// NewGameHandler creates a new game handler. hub may be nil, in which case
// the event stream endpoint is unavailable.
func NewGameHandler(engine *game.Engine, hub *sse.Hub, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		engine: engine,
		hub:    hub,
		logger: logger.With(slog.String("component", "game-handler")),
	}
}

// Start handles POST /api/game
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.StartGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Names) == 0 {
		WriteError(w, NewInvalidRequestError("At least one player name is required"))
		return
	}
	for _, name := range req.Names {
		if name == "" {
			WriteError(w, NewInvalidRequestError("Player names must not be empty"))
			return
		}
	}

	if _, err := h.engine.Start(r.Context(), req.Names); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.GameStateFromSnapshot(h.engine.Snapshot()))
}

// Get handles GET /api/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.GameStateFromSnapshot(h.engine.Snapshot()))
}

// Roll handles POST /api/game/roll. It returns once the dice settle; the rest
// of the turn runs in the background.
func (h *GameHandler) Roll(w http.ResponseWriter, r *http.Request) {
	value, err := h.engine.Roll(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusAccepted, response.Roll{Value: value})
}

// Decide handles POST /api/game/decisions/{id}
func (h *GameHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req request.DecisionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.engine.Resolve(id, model.Outcome(req.Outcome)); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameStateFromSnapshot(h.engine.Snapshot()))
}

// Reset handles DELETE /api/game
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset(r.Context())
	response.NoContent(w)
}

// Events handles GET /api/game/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		WriteError(w, NewInvalidRequestError("Event stream unavailable"))
		return
	}
	sse.ServeSSE(w, r, h.hub)
}
