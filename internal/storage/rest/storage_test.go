package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aseguradoss/internal/api"
	"github.com/mcoot/aseguradoss/internal/dependencies/random"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/catalog"
	"github.com/mcoot/aseguradoss/internal/storage/memory"
	"github.com/mcoot/aseguradoss/internal/storage/storagetest"
	"github.com/mcoot/aseguradoss/internal/testutil"
)

// newRemote starts a server exposing the persistence endpoints over an
// in-memory store
func newRemote(t *testing.T) (*httptest.Server, *memory.Storage) {
	t.Helper()
	backing := memory.New()
	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		Storage:        backing,
		CatalogService: catalog.New(backing, random.New(), logger),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, backing
}

type RestStorageSuite struct {
	storagetest.Suite
}

func TestRestStorageSuite(t *testing.T) {
	suite.Run(t, new(RestStorageSuite))
}

func (s *RestStorageSuite) SetupTest() {
	server, _ := newRemote(s.T())
	s.Storage = New(server.URL)
	s.Ctx = context.Background()
}

func TestPing(t *testing.T) {
	server, _ := newRemote(t)
	require.NoError(t, New(server.URL).Ping(context.Background()))

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	assert.Error(t, New(down.URL).Ping(context.Background()))
}

func TestWritesReachBackingStore(t *testing.T) {
	server, backing := newRemote(t)
	store := New(server.URL)
	ctx := context.Background()

	p := model.NewPlayer(1, "Ana")
	require.NoError(t, store.ReplacePlayers(ctx, []*model.Player{&p}))
	require.NoError(t, store.UpdatePlayerPosition(ctx, 1, 20))

	got, err := backing.GetPlayer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Position)
}

func TestNotFoundIsReported(t *testing.T) {
	server, _ := newRemote(t)
	_, err := New(server.URL).GetPlayer(context.Background(), 3)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, model.ErrPlayerNotFound)
}

func TestInvalidEventRejected(t *testing.T) {
	server, _ := newRemote(t)
	err := New(server.URL).SaveEvents(context.Background(), []*model.Event{
		{ID: 1, Kind: "NOPE", Text: "x", Amount: 1, Variable: model.VariableMoney},
	})
	assert.ErrorIs(t, err, model.ErrInvalidEvent)
}
