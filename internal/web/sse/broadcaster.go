package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/aseguradoss/internal/api/response"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/arbiter"
	"github.com/mcoot/aseguradoss/internal/services/game"
)

// Event names sent on the stream
const (
	EventPlayersChanged    = "players-changed"
	EventTurnAdvanced      = "turn-advanced"
	EventDiceIntermediate  = "dice-intermediate"
	EventDiceFinal         = "dice-final"
	EventDecisionRequested = "decision-requested"
	EventNotice            = "notice"
)

// Broadcaster renders engine notifications as JSON SSE events
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hub:    hub,
		logger: logger.With(slog.String("component", "sse-broadcaster")),
	}
}

var _ game.Notifier = (*Broadcaster)(nil)

// PlayersChanged broadcasts the full player list
func (b *Broadcaster) PlayersChanged(players []model.Player) {
	b.send(EventPlayersChanged, response.PlayersFromModel(players))
}

// TurnAdvanced broadcasts whose turn it is now
func (b *Broadcaster) TurnAdvanced(index int, player model.Player) {
	b.send(EventTurnAdvanced, response.TurnAdvanced{
		Index:  index,
		Player: response.PlayerFromModel(&player),
	})
}

// DiceIntermediate broadcasts one animation face
func (b *Broadcaster) DiceIntermediate(value int) {
	b.send(EventDiceIntermediate, response.Roll{Value: value})
}

// DiceFinal broadcasts the settled roll
func (b *Broadcaster) DiceFinal(value int) {
	b.send(EventDiceFinal, response.Roll{Value: value})
}

// DecisionRequested broadcasts a newly opened decision
func (b *Broadcaster) DecisionRequested(it arbiter.Interaction) {
	b.send(EventDecisionRequested, response.DecisionFromInteraction(it))
}

// Notice broadcasts a message for the players
func (b *Broadcaster) Notice(message string, severity model.Severity) {
	b.send(EventNotice, response.Notice{Message: message, Severity: string(severity)})
}

func (b *Broadcaster) send(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("sse failed to encode event",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	b.hub.BroadcastEvent(event, string(data))
}
