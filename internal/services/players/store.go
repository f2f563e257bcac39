// Package players owns the canonical player list and whose turn it is.
package players

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// DefaultPersistTimeout bounds every write to the persistence collaborator
const DefaultPersistTimeout = 3 * time.Second

// Observer receives a snapshot of the player list after every mutation
type Observer func(players []model.Player)

// Store is the single writer of player state. Memory is authoritative;
// writes to storage are best-effort and a failed write is retried as a
// full snapshot on the next mutation.
type Store struct {
	storage        storage.Storage
	logger         *slog.Logger
	persistTimeout time.Duration

	mu        sync.RWMutex
	players   []model.Player
	current   int
	observers []Observer

	persistMu sync.Mutex
	dirty     bool
}

// New creates a player store
func New(storage storage.Storage, logger *slog.Logger) *Store {
	return &Store{
		storage:        storage,
		logger:         logger.With(slog.String("component", "players")),
		persistTimeout: DefaultPersistTimeout,
	}
}

// SetPersistTimeout overrides the per-write timeout. Call it before the
// store is shared.
func (s *Store) SetPersistTimeout(d time.Duration) {
	s.persistTimeout = d
}

// Subscribe registers an observer for player list changes
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Load restores a persisted session. The turn index starts at the first player.
func (s *Store) Load(ctx context.Context) error {
	stored, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	players := make([]model.Player, len(stored))
	for i, p := range stored {
		players[i] = p.Clone()
		players[i].Position = model.NormalizePosition(players[i].Position)
	}

	s.mu.Lock()
	s.players = players
	s.current = 0
	s.mu.Unlock()

	s.logger.Info("players loaded", slog.Int("player_count", len(players)))
	s.notify()
	return nil
}

// Initialize creates one player per name with the starting economy.
// It is a no-op when players already exist.
func (s *Store) Initialize(ctx context.Context, names []string) ([]model.Player, error) {
	if len(names) == 0 {
		return nil, model.ErrNoPlayers
	}

	s.mu.Lock()
	if len(s.players) > 0 {
		snapshot := model.ClonePlayers(s.players)
		s.mu.Unlock()
		s.logger.Info("players already initialized, keeping session", slog.Int("player_count", len(snapshot)))
		return snapshot, nil
	}

	players := make([]model.Player, len(names))
	for i, name := range names {
		players[i] = model.NewPlayer(model.PlayerID(i+1), name)
	}
	s.players = players
	s.current = 0
	snapshot := model.ClonePlayers(players)
	s.mu.Unlock()

	s.persist(ctx, func(ctx context.Context) error {
		return s.storage.ReplacePlayers(ctx, pointers(snapshot))
	})

	s.logger.Info("players initialized", slog.Int("player_count", len(snapshot)))
	s.notify()
	return model.ClonePlayers(snapshot), nil
}

// List returns the players ordered by creation
func (s *Store) List() []model.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ClonePlayers(s.players)
}

// Len returns the number of players
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Get returns the player with the given id
func (s *Store) Get(id model.PlayerID) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Player{}, model.ErrPlayerNotFound
	}
	return s.players[i].Clone(), nil
}

// At returns the player at index i
func (s *Store) At(i int) (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.players) {
		return model.Player{}, model.ErrPlayerNotFound
	}
	return s.players[i].Clone(), nil
}

// CurrentIndex returns the index of the player whose turn it is
func (s *Store) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Current returns the player whose turn it is
func (s *Store) Current() (model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.players) == 0 {
		return model.Player{}, model.ErrNoPlayers
	}
	return s.players[s.current].Clone(), nil
}

// SetCurrentIndex moves the turn to index i, taken modulo the player count
func (s *Store) SetCurrentIndex(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.players)
	if n == 0 {
		return model.ErrNoPlayers
	}
	s.current = ((i % n) + n) % n
	return nil
}

// UpdatePosition moves a player; the position is normalized onto the board
func (s *Store) UpdatePosition(ctx context.Context, id model.PlayerID, position int) error {
	position = model.NormalizePosition(position)

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return model.ErrPlayerNotFound
	}
	s.players[i].Position = position
	s.mu.Unlock()

	s.persist(ctx, func(ctx context.Context) error {
		return s.storage.UpdatePlayerPosition(ctx, id, position)
	})
	s.notify()
	return nil
}

// UpdatePlayer replaces the stored record for updated.ID in full
func (s *Store) UpdatePlayer(ctx context.Context, updated model.Player) error {
	updated = updated.Clone()
	updated.Position = model.NormalizePosition(updated.Position)

	s.mu.Lock()
	i := s.indexOf(updated.ID)
	if i < 0 {
		s.mu.Unlock()
		return model.ErrPlayerNotFound
	}
	s.players[i] = updated
	s.mu.Unlock()

	s.persist(ctx, func(ctx context.Context) error {
		return s.storage.SavePlayer(ctx, &updated)
	})
	s.notify()
	return nil
}

// ResetAll clears the players, the turn index and persisted state
func (s *Store) ResetAll(ctx context.Context) {
	s.mu.Lock()
	s.players = nil
	s.current = 0
	s.mu.Unlock()

	s.persist(ctx, func(ctx context.Context) error {
		return s.storage.DeletePlayers(ctx)
	})

	s.logger.Info("players reset")
	s.notify()
}

// Dirty reports whether the last write to storage failed
func (s *Store) Dirty() bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.dirty
}

// persist runs write, or a full snapshot write if an earlier write failed.
// Failures are logged and never returned; the caller's cancellation is ignored.
func (s *Store) persist(ctx context.Context, write func(ctx context.Context) error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	if s.dirty {
		s.mu.RLock()
		snapshot := model.ClonePlayers(s.players)
		s.mu.RUnlock()
		write = func(ctx context.Context) error {
			return s.storage.ReplacePlayers(ctx, pointers(snapshot))
		}
	}

	err := write(ctx)
	if err == nil {
		if s.dirty {
			s.logger.Info("persistence recovered, snapshot written")
		}
		s.dirty = false
		return
	}

	s.dirty = true
	if errors.Is(err, model.ErrPlayerNotFound) {
		// Storage lost the record; the next write replaces everything
		s.logger.Warn("player missing from storage", slog.String("error", err.Error()))
		return
	}
	s.logger.Error("failed to persist players",
		slog.String("error", fmt.Errorf("%w: %v", model.ErrPersistence, err).Error()),
	)
}

func (s *Store) notify() {
	s.mu.RLock()
	observers := s.observers
	snapshot := model.ClonePlayers(s.players)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

// indexOf returns the index of id, or -1. Caller holds mu.
func (s *Store) indexOf(id model.PlayerID) int {
	for i := range s.players {
		if s.players[i].ID == id {
			return i
		}
	}
	return -1
}

func pointers(players []model.Player) []*model.Player {
	result := make([]*model.Player, len(players))
	for i := range players {
		result[i] = &players[i]
	}
	return result
}
