package response

import (
	"time"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/arbiter"
	"github.com/mcoot/aseguradoss/internal/services/game"
)

// Player is the wire form of a player record
type Player struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Money        int      `json:"money"`
	Salary       int      `json:"salary"`
	Rent         int      `json:"rent"`
	Position     int      `json:"position"`
	Insured      []string `json:"insured"`
	SkipNextTurn bool     `json:"skipNextTurn"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	insured := make([]string, len(p.Insured))
	for i, k := range p.Insured {
		insured[i] = string(k)
	}
	return Player{
		ID:           int(p.ID),
		Name:         p.Name,
		Money:        p.Money,
		Salary:       p.Salary,
		Rent:         p.Rent,
		Position:     p.Position,
		Insured:      insured,
		SkipNextTurn: p.SkipNextTurn,
	}
}

// PlayersFromModel converts a player list
func PlayersFromModel(players []model.Player) []Player {
	result := make([]Player, len(players))
	for i := range players {
		result[i] = PlayerFromModel(&players[i])
	}
	return result
}

// ToModel converts back to a model.Player
func (p Player) ToModel() *model.Player {
	insured := make([]model.InsuranceKind, len(p.Insured))
	for i, k := range p.Insured {
		insured[i] = model.InsuranceKind(k)
	}
	return &model.Player{
		ID:           model.PlayerID(p.ID),
		Name:         p.Name,
		Money:        p.Money,
		Salary:       p.Salary,
		Rent:         p.Rent,
		Position:     p.Position,
		Insured:      insured,
		SkipNextTurn: p.SkipNextTurn,
	}
}

// Event is the wire form of a catalog event
type Event struct {
	ID        int      `json:"_id"`
	Tipo      string   `json:"tipo"`
	Texto     string   `json:"texto"`
	Cantidad  int      `json:"cantidad"`
	Variable  string   `json:"variable"`
	Descuento *float64 `json:"descuento,omitempty"`
}

// EventFromModel converts a model.Event
func EventFromModel(e *model.Event) Event {
	return Event{
		ID:        e.ID,
		Tipo:      string(e.Kind),
		Texto:     e.Text,
		Cantidad:  e.Amount,
		Variable:  string(e.Variable),
		Descuento: e.Discount,
	}
}

// ToModel converts back to a model.Event
func (e Event) ToModel() *model.Event {
	return &model.Event{
		ID:       e.ID,
		Kind:     model.InsuranceKind(e.Tipo),
		Text:     e.Texto,
		Amount:   e.Cantidad,
		Variable: model.Variable(e.Variable),
		Discount: e.Descuento,
	}
}

// Decision is an open or queued interaction awaiting an outcome
type Decision struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Outcomes []string  `json:"outcomes"`
	OpenedAt time.Time `json:"openedAt"`

	Player        *Player `json:"player,omitempty"`
	Insurance     string  `json:"insurance,omitempty"`
	InsuranceName string  `json:"insuranceName,omitempty"`
	Price         int     `json:"price,omitempty"`
	Event         *Event  `json:"event,omitempty"`
	Message       string  `json:"message,omitempty"`
	Severity      string  `json:"severity,omitempty"`
}

// DecisionFromInteraction flattens the decision variant into one object
func DecisionFromInteraction(it arbiter.Interaction) Decision {
	outcomes := it.Decision.Outcomes()
	d := Decision{
		ID:       it.ID,
		Kind:     string(it.Decision.Kind()),
		Outcomes: make([]string, len(outcomes)),
		OpenedAt: it.OpenedAt,
	}
	for i, o := range outcomes {
		d.Outcomes[i] = string(o)
	}

	switch v := it.Decision.(type) {
	case model.InsurancePurchase:
		p := PlayerFromModel(&v.Player)
		d.Player = &p
		d.Insurance = string(v.Insurance)
		d.InsuranceName = v.Insurance.DisplayName()
		d.Price = v.Price
	case model.EventAck:
		p := PlayerFromModel(&v.Player)
		e := EventFromModel(&v.Event)
		d.Player = &p
		d.Event = &e
	case model.RentDue:
		p := PlayerFromModel(&v.Player)
		d.Player = &p
	case model.SalaryCredit:
		p := PlayerFromModel(&v.Player)
		d.Player = &p
	case model.Notice:
		d.Message = v.Message
		d.Severity = string(v.Severity)
	}
	return d
}

// GameState is the full game view
type GameState struct {
	State          string    `json:"state"`
	TurnInProgress bool      `json:"turnInProgress"`
	CurrentIndex   int       `json:"currentIndex"`
	Players        []Player  `json:"players"`
	Decision       *Decision `json:"decision,omitempty"`
	Pending        int       `json:"pending"`
}

// GameStateFromSnapshot converts an engine snapshot
func GameStateFromSnapshot(s game.Snapshot) GameState {
	gs := GameState{
		State:          string(s.State),
		TurnInProgress: s.TurnInProgress,
		CurrentIndex:   s.CurrentIndex,
		Players:        PlayersFromModel(s.Players),
		Pending:        s.Pending,
	}
	if s.Decision != nil {
		d := DecisionFromInteraction(*s.Decision)
		gs.Decision = &d
	}
	return gs
}

// Roll is the result of a dice roll
type Roll struct {
	Value int `json:"value"`
}

// TurnAdvanced announces whose turn it is
type TurnAdvanced struct {
	Index  int    `json:"index"`
	Player Player `json:"player"`
}

// Notice is a message for the players
type Notice struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}
