package game

import (
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/arbiter"
)

// Notifier is the rendering collaborator. Calls must not block.
type Notifier interface {
	PlayersChanged(players []model.Player)
	TurnAdvanced(index int, player model.Player)
	DiceIntermediate(value int)
	DiceFinal(value int)
	DecisionRequested(it arbiter.Interaction)
	Notice(message string, severity model.Severity)
}

// NopNotifier discards every notification
type NopNotifier struct{}

func (NopNotifier) PlayersChanged([]model.Player)         {}
func (NopNotifier) TurnAdvanced(int, model.Player)        {}
func (NopNotifier) DiceIntermediate(int)                  {}
func (NopNotifier) DiceFinal(int)                         {}
func (NopNotifier) DecisionRequested(arbiter.Interaction) {}
func (NopNotifier) Notice(string, model.Severity)         {}

var _ Notifier = NopNotifier{}
