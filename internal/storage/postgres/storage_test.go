package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

// Runs only against a real database: POSTGRES_DSN=postgresql://... go test ./...
func TestStorageSuite(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}

	cfg := DefaultConfig()
	cfg.DSN = dsn
	store, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	suite.Run(t, &StorageSuite{storage: store})
}

func (s *StorageSuite) SetupTest() {
	s.Storage = s.storage
	s.Ctx = context.Background()
	s.Require().NoError(s.storage.DeletePlayers(s.Ctx))
	s.Require().NoError(s.storage.SaveEvents(s.Ctx, nil))
}

func TestPlayerRecordRoundTrip(t *testing.T) {
	p := model.NewPlayer(4, "Dani")
	p.Insured = []model.InsuranceKind{model.InsuranceHome}
	p.SkipNextTurn = true

	r, err := playerToRecord(&p)
	require.NoError(t, err)
	assert.JSONEq(t, `["HOGAR"]`, string(r.Insured))

	back, err := r.toModel()
	require.NoError(t, err)
	assert.Equal(t, p, *back)
}

func TestPlayerRecordNilInsured(t *testing.T) {
	p := model.Player{ID: 1, Name: "Ana"}

	r, err := playerToRecord(&p)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(r.Insured))

	back, err := (&playerRecord{ID: 1}).toModel()
	require.NoError(t, err)
	assert.NotNil(t, back.Insured)
}

func TestEventRecordKeepsOrderAndDiscount(t *testing.T) {
	d := 1.0
	e := &model.Event{ID: 8, Kind: model.InsuranceHealth, Text: "Gripe", Amount: -150, Variable: model.VariableMoney, Discount: &d}

	r := eventToRecord(3, e)
	assert.Equal(t, 3, r.Ord)
	assert.Equal(t, 8, r.EventID)
	assert.Equal(t, *e, *r.toModel())
}
