// Package catalog holds the random events a player can draw on an event cell.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/mcoot/aseguradoss/internal/dependencies/random"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// Service provides the event catalog
type Service struct {
	storage storage.Storage
	random  random.Random
	logger  *slog.Logger

	mu     sync.RWMutex
	events []model.Event
}

// New creates a new catalog service
func New(storage storage.Storage, rng random.Random, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		random:  rng,
		logger:  logger.With(slog.String("component", "catalog")),
	}
}

// Load fetches the catalog from storage. An empty catalog is an error.
func (s *Service) Load(ctx context.Context) ([]model.Event, error) {
	stored, err := s.storage.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCatalogUnavailable, err)
	}
	if len(stored) == 0 {
		return nil, model.ErrCatalogUnavailable
	}

	events := make([]model.Event, len(stored))
	for i, e := range stored {
		events[i] = *e
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	s.logger.Info("event catalog loaded", slog.Int("events", len(events)))
	return s.Events(), nil
}

// Reload discards the cached catalog and loads it again
func (s *Service) Reload(ctx context.Context) ([]model.Event, error) {
	s.mu.Lock()
	s.events = nil
	s.mu.Unlock()
	return s.Load(ctx)
}

// LoadFromFile seeds storage from a JSON file when storage holds no events,
// then loads the catalog from storage
func (s *Service) LoadFromFile(ctx context.Context, path string) ([]model.Event, error) {
	existing, err := s.storage.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrCatalogUnavailable, err)
	}

	if len(existing) == 0 {
		events, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := s.storage.SaveEvents(ctx, events); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
		}
		s.logger.Info("event catalog seeded", slog.String("path", path), slog.Int("events", len(events)))
	}

	return s.Load(ctx)
}

// RandomEvent selects one loaded event uniformly
func (s *Service) RandomEvent() (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) == 0 {
		return model.Event{}, model.ErrCatalogUnavailable
	}
	return s.events[s.random.Intn(len(s.events))], nil
}

// Events returns a copy of the loaded catalog
func (s *Service) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]model.Event, len(s.events))
	copy(result, s.events)
	return result
}

// IsLoaded returns whether a non-empty catalog is loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events) > 0
}

// fileEvent is the on-disk layout of one event
type fileEvent struct {
	ID        int      `json:"_id"`
	Tipo      string   `json:"tipo"`
	Texto     string   `json:"texto"`
	Cantidad  int      `json:"cantidad"`
	Variable  string   `json:"variable"`
	Descuento *float64 `json:"descuento,omitempty"`
}

// ReadFile parses and validates a JSON array of events
func ReadFile(path string) ([]*model.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []fileEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	events := make([]*model.Event, 0, len(raw))
	for i, r := range raw {
		e := &model.Event{
			ID:       r.ID,
			Kind:     model.InsuranceKind(r.Tipo),
			Text:     r.Texto,
			Amount:   r.Cantidad,
			Variable: model.Variable(r.Variable),
			Discount: r.Descuento,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("event %d in %s: %w", i, path, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// ServiceInterface is what the turn engine needs from the catalog
type ServiceInterface interface {
	RandomEvent() (model.Event, error)
	Load(ctx context.Context) ([]model.Event, error)
	IsLoaded() bool
}

var _ ServiceInterface = (*Service)(nil)
