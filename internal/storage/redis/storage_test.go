package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.PlayerTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestPlayerTTL() {
	p := model.NewPlayer(1, "Ana")
	s.Require().NoError(s.storage.ReplacePlayers(s.Ctx, []*model.Player{&p}))

	ttl := s.mini.TTL(playerKey(1))
	s.True(ttl > 0, "Player should have TTL")

	s.Require().NoError(s.storage.UpdatePlayerPosition(s.Ctx, 1, 3))
	ttl = s.mini.TTL(playerKey(1))
	s.True(ttl > 0, "Position update should keep a TTL")
}

func (s *StorageSuite) TestEventsNoTTL() {
	err := s.storage.SaveEvents(s.Ctx, []*model.Event{
		{ID: 1, Kind: model.KindGeneric, Text: "uno", Amount: 10, Variable: model.VariableMoney},
	})
	s.Require().NoError(err)

	ttl := s.mini.TTL(eventsKey())
	s.Equal(time.Duration(0), ttl, "Event catalog should not have TTL")
}

func (s *StorageSuite) TestExpiredPlayerSkippedInList() {
	a := model.NewPlayer(1, "Ana")
	b := model.NewPlayer(2, "Beto")
	s.Require().NoError(s.storage.ReplacePlayers(s.Ctx, []*model.Player{&a, &b}))

	// Expire one document while its index entry remains
	s.mini.Del(playerKey(1))

	players, err := s.storage.ListPlayers(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal(model.PlayerID(2), players[0].ID)
}

func (s *StorageSuite) TestIndexKeyUsesScoreOrder() {
	a := model.NewPlayer(10, "Ana")
	b := model.NewPlayer(2, "Beto")
	s.Require().NoError(s.storage.ReplacePlayers(s.Ctx, []*model.Player{&a, &b}))

	members, err := s.mini.ZMembers(playersIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{playerKey(2), playerKey(10)}, members)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "not-a-url"})
	s.Error(err)
}
