package redis

import (
	"fmt"

	"github.com/mcoot/aseguradoss/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "aseg"

// playerKey returns the Redis key for a Player document
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%d", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the ZSET of player keys, scored by ID
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// eventsKey returns the Redis key for the LIST of catalog events
func eventsKey() string {
	return fmt.Sprintf("%s:eventos", keyPrefix)
}
