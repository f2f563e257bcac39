package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Players are JSON documents indexed by a sorted set; events are a JSON list.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	keys, err := s.client.ZRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.Player{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Player may have expired
		}
		var p model.Player
		if err := json.Unmarshal([]byte(val.(string)), &p); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	return players, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var p model.Player
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) ReplacePlayers(ctx context.Context, players []*model.Player) error {
	oldKeys, err := s.client.ZRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return err
	}

	// Drop the old collection and write the new one atomically
	pipe := s.client.TxPipeline()
	for _, key := range oldKeys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, playersIndexKey())
	for _, p := range players {
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		key := playerKey(p.ID)
		pipe.Set(ctx, key, data, s.cfg.PlayerTTL)
		pipe.ZAdd(ctx, playersIndexKey(), redis.Z{Score: float64(p.ID), Member: key})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// XX: only overwrite an existing record
	ok, err := s.client.SetXX(ctx, playerKey(player.ID), data, s.cfg.PlayerTTL).Result()
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrPlayerNotFound
	}
	return nil
}

func (s *Storage) UpdatePlayerPosition(ctx context.Context, id model.PlayerID, position int) error {
	key := playerKey(id)

	// Optimistic read-modify-write on the player document
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrPlayerNotFound
			}
			return err
		}

		var p model.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		p.Position = position

		updated, err := json.Marshal(&p)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.cfg.PlayerTTL)
			return nil
		})
		return err
	}, key)
}

func (s *Storage) DeletePlayers(ctx context.Context) error {
	keys, err := s.client.ZRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, playersIndexKey())
	_, err = pipe.Exec(ctx)
	return err
}

// Event catalog operations

func (s *Storage) ListEvents(ctx context.Context) ([]*model.Event, error) {
	values, err := s.client.LRange(ctx, eventsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]*model.Event, 0, len(values))
	for _, val := range values {
		var e model.Event
		if err := json.Unmarshal([]byte(val), &e); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, nil
}

func (s *Storage) SaveEvents(ctx context.Context, events []*model.Event) error {
	members := make([]interface{}, len(events))
	for i, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		members[i] = string(data)
	}

	// Replace the catalog atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, eventsKey())
	if len(members) > 0 {
		pipe.RPush(ctx, eventsKey(), members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}
