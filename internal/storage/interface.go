package storage

import (
	"context"

	"github.com/mcoot/aseguradoss/internal/model"
)

// Storage is the persistence collaborator for player records and the event catalog
type Storage interface {
	// Player operations
	ListPlayers(ctx context.Context) ([]*model.Player, error) // Sorted by ID
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	ReplacePlayers(ctx context.Context, players []*model.Player) error
	SavePlayer(ctx context.Context, player *model.Player) error // ErrPlayerNotFound if absent
	UpdatePlayerPosition(ctx context.Context, id model.PlayerID, position int) error
	DeletePlayers(ctx context.Context) error

	// Event catalog operations
	ListEvents(ctx context.Context) ([]*model.Event, error)
	SaveEvents(ctx context.Context, events []*model.Event) error
}
