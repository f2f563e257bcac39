package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/aseguradoss/internal/api"
	"github.com/mcoot/aseguradoss/internal/api/apierr"
	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/factory"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/testutil"
)

type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })
	require.NoError(t, app.LoadTestCatalog(context.Background()))

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		Storage:        app.Storage,
		CatalogService: app.CatalogService,
		Engine:         app.Engine,
		Hub:            app.Hub,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

func (ts *testServer) waitForDecision(t *testing.T) response.Decision {
	t.Helper()
	var d response.Decision
	require.Eventually(t, func() bool {
		state := decode[response.GameState](t, ts.request(http.MethodGet, "/api/game", nil))
		if state.Decision == nil {
			return false
		}
		d = *state.Decision
		return true
	}, time.Second, 5*time.Millisecond)
	return d
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

// Persistence endpoints

func TestPlayersReplaceAndList(t *testing.T) {
	ts := newTestServer(t)

	body := []response.Player{
		{ID: 2, Name: "Beto", Money: 800, Salary: 500, Rent: 100, Position: 3, Insured: []string{"VIDA"}},
		{ID: 1, Name: "Ana", Money: 1000, Salary: 500, Rent: 100, Position: 11, Insured: []string{}},
	}
	rr := ts.request(http.MethodPost, "/api/players", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	players := decode[[]response.Player](t, ts.request(http.MethodGet, "/api/players", nil))
	require.Len(t, players, 2)
	assert.Equal(t, "Ana", players[0].Name)
	assert.Equal(t, "Beto", players[1].Name)
	assert.Equal(t, []string{"VIDA"}, players[1].Insured)

	rr = ts.request(http.MethodGet, "/api/players/2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 800, decode[response.Player](t, rr).Money)
}

func TestPlayersReplaceRejectsDuplicateIDs(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/players", []response.Player{{ID: 1, Name: "Ana"}, {ID: 1, Name: "Otra"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestPlayerUpdateIsPartial(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/players", []response.Player{{ID: 1, Name: "Ana", Money: 1000, Salary: 500, Rent: 100, Position: 11}})

	rr := ts.request(http.MethodPut, "/api/players/1", map[string]any{"money": 450, "skipNextTurn": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	p := decode[response.Player](t, rr)
	assert.Equal(t, 450, p.Money)
	assert.True(t, p.SkipNextTurn)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, 11, p.Position)
}

func TestPlayerUpdateNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPut, "/api/players/9", map[string]any{"money": 1})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestPlayerPositionUpdate(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/players", []response.Player{{ID: 1, Name: "Ana", Position: 11}})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"valid", "/api/players/1/position", `{"position":5}`, http.StatusNoContent},
		{"unknown player", "/api/players/4/position", `{"position":5}`, http.StatusNotFound},
		{"string position", "/api/players/1/position", `{"position":"cinco"}`, http.StatusBadRequest},
		{"missing position", "/api/players/1/position", `{}`, http.StatusBadRequest},
		{"fractional position", "/api/players/1/position", `{"position":2.5}`, http.StatusBadRequest},
		{"off the board", "/api/players/1/position", `{"position":22}`, http.StatusBadRequest},
		{"bad id", "/api/players/uno/position", `{"position":5}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}

	p := decode[response.Player](t, ts.request(http.MethodGet, "/api/players/1", nil))
	assert.Equal(t, 5, p.Position)
}

func TestPlayerUpdateValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/players", []response.Player{{ID: 1, Name: "Ana", Money: 1000, Position: 11, Insured: []string{"SALUD"}}})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"negative position", `{"position":-40}`, http.StatusBadRequest, apierr.CodeInvalidPosition},
		{"off the board", `{"position":22}`, http.StatusBadRequest, apierr.CodeInvalidPosition},
		{"unknown insurance", `{"insured":["BOGUS"]}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"event tag is not an insurance", `{"insured":["EVENTO"]}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"duplicate insurance", `{"insured":["VIDA","VIDA"]}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"negative money", `{"money":-999}`, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"everything wrong", `{"position":-40,"insured":["BOGUS","BOGUS"],"money":-999}`, http.StatusBadRequest, apierr.CodeInvalidPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPut, "/api/players/1", tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rr))
		})
	}

	p := decode[response.Player](t, ts.request(http.MethodGet, "/api/players/1", nil))
	assert.Equal(t, 11, p.Position)
	assert.Equal(t, 1000, p.Money)
	assert.Equal(t, []string{"SALUD"}, p.Insured)

	rr := ts.request(http.MethodPut, "/api/players/1", `{"position":0,"insured":["VIDA","COCHE"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	p = decode[response.Player](t, rr)
	assert.Equal(t, 0, p.Position)
	assert.Equal(t, []string{"VIDA", "COCHE"}, p.Insured)
}

func TestPlayersDelete(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/players", []response.Player{{ID: 1, Name: "Ana"}})

	rr := ts.request(http.MethodDelete, "/api/players", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	players := decode[[]response.Player](t, ts.request(http.MethodGet, "/api/players", nil))
	assert.Empty(t, players)
}

func TestEventsListAndRandom(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/eventos", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"_id":1`)
	assert.Contains(t, rr.Body.String(), `"tipo":"COCHE"`)
	assert.Contains(t, rr.Body.String(), `"descuento":0.5`)
	assert.Len(t, decode[[]response.Event](t, rr), 3)

	ts.app.MockRandom.QueueIntn(2)
	rr = ts.request(http.MethodGet, "/api/eventos/random", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 3, decode[response.Event](t, rr).ID)
}

func TestRandomEventEmptyCatalog(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/eventos", []response.Event{})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/eventos/random", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeCatalogUnavailable, errorCode(t, rr))
}

func TestEventsSeedValidates(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/eventos", []response.Event{{ID: 1, Tipo: "COCHE", Texto: "x", Cantidad: -1, Variable: "edad"}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidEvent, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/eventos", []response.Event{{ID: 7, Tipo: "EVENTO", Texto: "Lotería", Cantidad: 300, Variable: "money"}})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/eventos/random", nil)
	assert.Equal(t, 7, decode[response.Event](t, rr).ID)
}

// Game endpoints

func TestGameStart(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/game", map[string]any{"names": []string{"Ana", "Beto"}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	state := decode[response.GameState](t, rr)
	assert.Equal(t, "awaiting_roll", state.State)
	assert.Equal(t, 0, state.CurrentIndex)
	require.Len(t, state.Players, 2)
	assert.Equal(t, 1000, state.Players[0].Money)
	assert.Equal(t, 11, state.Players[0].Position)

	// Starting again keeps the existing game
	rr = ts.request(http.MethodPost, "/api/game", map[string]any{"names": []string{"Otro"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Len(t, decode[response.GameState](t, rr).Players, 2)
}

func TestGameStartValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/game", map[string]any{"names": []string{}})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/game", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRollWithoutPlayers(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/game/roll", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNoPlayers, errorCode(t, rr))
}

func TestRollAndBuyInsurance(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/game", map[string]any{"names": []string{"Ana", "Beto"}})

	// 11 -> 12, the health insurance cell
	ts.app.MockRandom.QueueRoll(1)
	rr := ts.request(http.MethodPost, "/api/game/roll", nil)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decode[response.Roll](t, rr).Value)

	decision := ts.waitForDecision(t)
	assert.Equal(t, "insurance_purchase", decision.Kind)
	assert.Equal(t, "SALUD", decision.Insurance)
	assert.Equal(t, 200, decision.Price)

	// A second roll is refused while the turn waits
	rr = ts.request(http.MethodPost, "/api/game/roll", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeTurnInProgress, errorCode(t, rr))

	// Wrong answers are refused
	rr = ts.request(http.MethodPost, "/api/game/decisions/"+decision.ID, map[string]string{"outcome": "next"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidOutcome, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/game/decisions/nope", map[string]string{"outcome": "buy"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeDecisionMismatch, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/game/decisions/"+decision.ID, map[string]string{"outcome": "buy"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Eventually(t, func() bool {
		state := decode[response.GameState](t, ts.request(http.MethodGet, "/api/game", nil))
		return !state.TurnInProgress && state.CurrentIndex == 1
	}, time.Second, 5*time.Millisecond)

	ana := decode[response.Player](t, ts.request(http.MethodGet, "/api/players/1", nil))
	assert.Equal(t, 800, ana.Money)
	assert.Equal(t, 12, ana.Position)
	assert.Equal(t, []string{"SALUD"}, ana.Insured)
}

func TestDecideWithoutOpenDecision(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/game/decisions/abc", map[string]string{"outcome": "next"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNoOpenDecision, errorCode(t, rr))
}

func TestGameReset(t *testing.T) {
	ts := newTestServer(t)
	ts.request(http.MethodPost, "/api/game", map[string]any{"names": []string{"Ana"}})

	ts.app.MockRandom.QueueRoll(1)
	ts.request(http.MethodPost, "/api/game/roll", nil)
	ts.waitForDecision(t)

	rr := ts.request(http.MethodDelete, "/api/game", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	state := decode[response.GameState](t, ts.request(http.MethodGet, "/api/game", nil))
	assert.Empty(t, state.Players)
	assert.Nil(t, state.Decision)
	assert.False(t, state.TurnInProgress)

	players, err := ts.app.Storage.ListPlayers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestGameEventStream(t *testing.T) {
	ts := newTestServer(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/game/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return ts.app.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	ts.app.Broadcaster.Notice("Fondos insuficientes", model.SeverityError)

	var got strings.Builder
	buf := make([]byte, 4096)
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(got.String(), "event: notice") && time.Now().Before(deadline) {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
	}
	assert.Contains(t, got.String(), `event: notice`)
	assert.Contains(t, got.String(), `"message":"Fondos insuficientes"`)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	ts := newTestServer(t)

	cfg := api.DefaultServerConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	server := api.NewServer(ts.handler, cfg, testutil.NopLogger())

	var closed atomic.Bool
	server.OnShutdown(func() { closed.Store(true) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Eventually(t, closed.Load, time.Second, 5*time.Millisecond)
}
