package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players map[model.PlayerID]*model.Player
	events  []*model.Event
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		c := p.Clone()
		result = append(result, &c)
	}
	slices.SortFunc(result, func(a, b *model.Player) int {
		return int(a.ID) - int(b.ID)
	})
	return result, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (s *Storage) ReplacePlayers(ctx context.Context, players []*model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = make(map[model.PlayerID]*model.Player, len(players))
	for _, p := range players {
		c := p.Clone()
		s.players[p.ID] = &c
	}
	return nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.ID]; !ok {
		return model.ErrPlayerNotFound
	}
	c := player.Clone()
	s.players[player.ID] = &c
	return nil
}

func (s *Storage) UpdatePlayerPosition(ctx context.Context, id model.PlayerID, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	p.Position = position
	return nil
}

func (s *Storage) DeletePlayers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = make(map[model.PlayerID]*model.Player)
	return nil
}

// Event catalog operations

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*model.Event, len(s.events))
	for i, e := range s.events {
		c := *e
		result[i] = &c
	}
	return result, nil
}

func (s *Storage) SaveEvents(ctx context.Context, events []*model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]*model.Event, len(events))
	for i, e := range events {
		c := *e
		s.events[i] = &c
	}
	return nil
}
