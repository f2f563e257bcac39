package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/aseguradoss/internal/api/request"
	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// PlayerHandler serves the player persistence endpoints. It reads and writes
// the store directly; the running game keeps its own in-memory copy.
type PlayerHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(storage storage.Storage, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{
		storage: storage,
		logger:  logger.With(slog.String("component", "player-handler")),
	}
}

// List handles GET /api/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.storage.ListPlayers(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	result := make([]response.Player, len(players))
	for i, p := range players {
		result[i] = response.PlayerFromModel(p)
	}
	response.List(w, http.StatusOK, result)
}

// Get handles GET /api/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	player, err := h.storage.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// Replace handles POST /api/players
func (h *PlayerHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req []response.Player
	if !decodeJSON(w, r, &req) {
		return
	}

	players := make([]*model.Player, len(req))
	seen := make(map[int]bool, len(req))
	for i, p := range req {
		if seen[p.ID] {
			WriteError(w, NewInvalidRequestError("Duplicate player id "+strconv.Itoa(p.ID)))
			return
		}
		seen[p.ID] = true
		players[i] = p.ToModel()
	}

	if err := h.storage.ReplacePlayers(r.Context(), players); err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Info("players replaced", slog.Int("count", len(players)))

	h.List(w, r)
}

// Update handles PUT /api/players/{id}
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	var req request.PlayerUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.storage.GetPlayer(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	req.Apply(player)

	if err := h.storage.SavePlayer(r.Context(), player); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// UpdatePosition handles PATCH /api/players/{id}/position
func (h *PlayerHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	var req request.PositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Position == nil || *req.Position != math.Trunc(*req.Position) {
		WriteError(w, NewInvalidRequestError("position must be a whole number"))
		return
	}
	position := int(*req.Position)
	if !model.IsValidPosition(position) {
		WriteError(w, model.ErrInvalidPosition)
		return
	}

	if err := h.storage.UpdatePlayerPosition(r.Context(), id, position); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// DeleteAll handles DELETE /api/players
func (h *PlayerHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeletePlayers(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Info("players deleted")
	response.NoContent(w)
}

func playerID(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("Invalid player id"))
		return 0, false
	}
	return model.PlayerID(id), true
}
