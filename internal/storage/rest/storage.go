// Package rest stores players and events on another game server through its
// persistence endpoints.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mcoot/aseguradoss/internal/api/request"
	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/client"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// Storage implements storage.Storage over HTTP
type Storage struct {
	client *client.Client
}

// New creates a REST-backed storage talking to the server at baseURL
func New(baseURL string, opts ...client.Option) *Storage {
	return NewWithClient(client.New(baseURL, opts...))
}

// NewWithClient creates a REST-backed storage from an existing client
func NewWithClient(c *client.Client) *Storage {
	return &Storage{client: c}
}

// Ping checks that the remote server is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if _, err := s.client.Health(ctx); err != nil {
		return fmt.Errorf("remote storage at %s: %w", s.client.BaseURL(), err)
	}
	return nil
}

// ListPlayers returns every player sorted by id
func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	players, err := s.client.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*model.Player, len(players))
	for i, p := range players {
		result[i] = p.ToModel()
	}
	return result, nil
}

// GetPlayer returns one player
func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	p, err := s.client.GetPlayer(ctx, int(id))
	if err != nil {
		return nil, err
	}
	return p.ToModel(), nil
}

// ReplacePlayers replaces the whole player collection
func (s *Storage) ReplacePlayers(ctx context.Context, players []*model.Player) error {
	body := make([]response.Player, len(players))
	for i, p := range players {
		body[i] = response.PlayerFromModel(p)
	}
	return s.client.ReplacePlayers(ctx, body)
}

// SavePlayer overwrites every field of an existing player
func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	wire := response.PlayerFromModel(player)
	_, err := s.client.UpdatePlayer(ctx, wire.ID, request.PlayerUpdateRequest{
		Name:         &wire.Name,
		Money:        &wire.Money,
		Salary:       &wire.Salary,
		Rent:         &wire.Rent,
		Position:     &wire.Position,
		Insured:      &wire.Insured,
		SkipNextTurn: &wire.SkipNextTurn,
	})
	return err
}

// UpdatePlayerPosition moves an existing player
func (s *Storage) UpdatePlayerPosition(ctx context.Context, id model.PlayerID, position int) error {
	return s.client.UpdatePosition(ctx, int(id), position)
}

// DeletePlayers removes every player
func (s *Storage) DeletePlayers(ctx context.Context) error {
	return s.client.DeletePlayers(ctx)
}

// ListEvents returns the event catalog
func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	events, err := s.client.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*model.Event, len(events))
	for i, e := range events {
		result[i] = e.ToModel()
	}
	return result, nil
}

// SaveEvents replaces the event catalog
func (s *Storage) SaveEvents(ctx context.Context, events []*model.Event) error {
	body := make([]response.Event, len(events))
	for i, e := range events {
		body[i] = response.EventFromModel(e)
	}
	return s.client.SeedEvents(ctx, body)
}

// IsNotFound reports whether err is a 404 from the remote server
func IsNotFound(err error) bool {
	return client.IsStatus(err, http.StatusNotFound)
}

var _ storage.Storage = (*Storage)(nil)
