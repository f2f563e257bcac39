package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/catalog"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// EventHandler serves the event catalog endpoints
type EventHandler struct {
	storage storage.Storage
	catalog *catalog.Service
	logger  *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(storage storage.Storage, catalog *catalog.Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		storage: storage,
		catalog: catalog,
		logger:  logger.With(slog.String("component", "event-handler")),
	}
}

// List handles GET /api/eventos
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.storage.ListEvents(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	result := make([]response.Event, len(events))
	for i, e := range events {
		result[i] = response.EventFromModel(e)
	}
	response.List(w, http.StatusOK, result)
}

// Random handles GET /api/eventos/random
func (h *EventHandler) Random(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.IsLoaded() {
		if _, err := h.catalog.Load(r.Context()); err != nil {
			WriteError(w, model.ErrCatalogUnavailable)
			return
		}
	}

	event, err := h.catalog.RandomEvent()
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.EventFromModel(&event))
}

// Seed handles POST /api/eventos, replacing the catalog
func (h *EventHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req []response.Event
	if !decodeJSON(w, r, &req) {
		return
	}

	events := make([]*model.Event, len(req))
	for i, e := range req {
		events[i] = e.ToModel()
		if err := events[i].Validate(); err != nil {
			WriteError(w, fmt.Errorf("event %d: %w", i, err))
			return
		}
	}

	if err := h.storage.SaveEvents(r.Context(), events); err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.catalog.Reload(r.Context()); err != nil && !errors.Is(err, model.ErrCatalogUnavailable) {
		WriteError(w, err)
		return
	}
	h.logger.Info("event catalog replaced", slog.Int("events", len(events)))

	response.List(w, http.StatusCreated, req)
}
