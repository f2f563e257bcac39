package sse

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/arbiter"
	"github.com/mcoot/aseguradoss/internal/testutil"
)

// receive reads one message from the client and splits out the event name and data
func receive(t *testing.T, client *Client) (string, string) {
	t.Helper()
	select {
	case msg := <-client.send:
		lines := strings.Split(strings.TrimSuffix(string(msg), "\n\n"), "\n")
		require.Len(t, lines, 2)
		return strings.TrimPrefix(lines[0], "event: "), strings.TrimPrefix(lines[1], "data: ")
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return "", ""
	}
}

func newBroadcaster(t *testing.T) (*Broadcaster, *Client) {
	t.Helper()
	hub := startHub(t)
	client := NewClient()
	hub.Register(client)
	waitForClients(t, hub, 1)
	return NewBroadcaster(hub, testutil.NopLogger()), client
}

func TestBroadcaster_PlayersChanged(t *testing.T) {
	b, client := newBroadcaster(t)

	p := model.NewPlayer(1, "Ana")
	p.Insured = []model.InsuranceKind{model.InsuranceCar}
	b.PlayersChanged([]model.Player{p})

	event, data := receive(t, client)
	assert.Equal(t, EventPlayersChanged, event)

	var players []response.Player
	require.NoError(t, json.Unmarshal([]byte(data), &players))
	require.Len(t, players, 1)
	assert.Equal(t, "Ana", players[0].Name)
	assert.Equal(t, []string{"COCHE"}, players[0].Insured)
	assert.Equal(t, model.SalaryCell, players[0].Position)
}

func TestBroadcaster_TurnAdvanced(t *testing.T) {
	b, client := newBroadcaster(t)

	b.TurnAdvanced(2, model.NewPlayer(3, "Carla"))

	event, data := receive(t, client)
	assert.Equal(t, EventTurnAdvanced, event)
	assert.JSONEq(t, `{"index":2,"player":{"id":3,"name":"Carla","money":1000,"salary":500,"rent":100,"position":11,"insured":[],"skipNextTurn":false}}`, data)
}

func TestBroadcaster_Dice(t *testing.T) {
	b, client := newBroadcaster(t)

	b.DiceIntermediate(3)
	b.DiceFinal(5)

	event, data := receive(t, client)
	assert.Equal(t, EventDiceIntermediate, event)
	assert.JSONEq(t, `{"value":3}`, data)

	event, data = receive(t, client)
	assert.Equal(t, EventDiceFinal, event)
	assert.JSONEq(t, `{"value":5}`, data)
}

func TestBroadcaster_DecisionRequested(t *testing.T) {
	b, client := newBroadcaster(t)

	it := arbiter.Interaction{
		ID: "abc",
		Decision: model.InsurancePurchase{
			Player:    model.NewPlayer(1, "Ana"),
			Insurance: model.InsuranceHome,
			Price:     500,
		},
	}
	b.DecisionRequested(it)

	event, data := receive(t, client)
	assert.Equal(t, EventDecisionRequested, event)

	var d response.Decision
	require.NoError(t, json.Unmarshal([]byte(data), &d))
	assert.Equal(t, "abc", d.ID)
	assert.Equal(t, "insurance_purchase", d.Kind)
	assert.Equal(t, []string{"buy", "decline"}, d.Outcomes)
	assert.Equal(t, "HOGAR", d.Insurance)
	assert.Equal(t, "Seguro de Hogar", d.InsuranceName)
	assert.Equal(t, 500, d.Price)
	require.NotNil(t, d.Player)
	assert.Equal(t, "Ana", d.Player.Name)
}

func TestBroadcaster_Notice(t *testing.T) {
	b, client := newBroadcaster(t)

	b.Notice("Fondos insuficientes", model.SeverityError)

	event, data := receive(t, client)
	assert.Equal(t, EventNotice, event)
	assert.JSONEq(t, `{"message":"Fondos insuficientes","severity":"error"}`, data)
}
