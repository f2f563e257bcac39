// Package game runs the turn state machine: roll, move, fire cell effects,
// wait for decisions and hand the turn to the next eligible player.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/services/arbiter"
	"github.com/mcoot/aseguradoss/internal/services/catalog"
	"github.com/mcoot/aseguradoss/internal/services/cells"
	"github.com/mcoot/aseguradoss/internal/services/dice"
	"github.com/mcoot/aseguradoss/internal/services/players"
)

// State is the turn engine's position in the turn cycle
type State string

const (
	StateAwaitingRoll           State = "awaiting_roll"
	StateAnimating              State = "animating"
	StateResolvingPassEffects   State = "resolving_pass_effects"
	StateResolvingLandingEffect State = "resolving_landing_effect"
	StateAwaitingDecision       State = "awaiting_decision"
	StateAdvancingTurn          State = "advancing_turn"
)

// Snapshot is a consistent view of the game for display
type Snapshot struct {
	State          State
	TurnInProgress bool
	CurrentIndex   int
	Players        []model.Player
	Decision       *arbiter.Interaction
	Pending        int
}

// Engine orchestrates turns. At most one turn runs at a time.
type Engine struct {
	players  *players.Store
	catalog  catalog.ServiceInterface
	arbiter  *arbiter.Arbiter
	roller   *dice.Roller
	notifier Notifier
	logger   *slog.Logger

	diceInterval time.Duration

	mu         sync.Mutex
	state      State
	running    bool
	cancelTurn context.CancelFunc
	turns      sync.WaitGroup
}

// Option configures an Engine
type Option func(*Engine)

// WithDiceInterval paces the dice animation ticks
func WithDiceInterval(d time.Duration) Option {
	return func(e *Engine) { e.diceInterval = d }
}

// WithNotifier sets the rendering collaborator
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine creates a turn engine and subscribes the notifier to player
// changes and opened decisions. Notices reach the notifier when they open,
// not when they are queued.
func NewEngine(
	store *players.Store,
	events catalog.ServiceInterface,
	arb *arbiter.Arbiter,
	roller *dice.Roller,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	e := &Engine{
		players:  store,
		catalog:  events,
		arbiter:  arb,
		roller:   roller,
		notifier: NopNotifier{},
		logger:   logger.With(slog.String("component", "engine")),
		state:    StateAwaitingRoll,
	}
	for _, opt := range opts {
		opt(e)
	}

	store.Subscribe(func(ps []model.Player) {
		e.notifier.PlayersChanged(ps)
	})
	arb.Subscribe(func(it arbiter.Interaction) {
		if n, ok := it.Decision.(model.Notice); ok {
			e.notifier.Notice(n.Message, n.Severity)
		}
		e.notifier.DecisionRequested(it)
	})
	return e
}

// Start creates the players for a new game. When a game already exists it is
// kept and returned unchanged.
func (e *Engine) Start(ctx context.Context, names []string) ([]model.Player, error) {
	ps, err := e.players.Initialize(ctx, names)
	if err != nil {
		return nil, err
	}
	idx := e.players.CurrentIndex()
	e.notifier.TurnAdvanced(idx, ps[idx])
	return ps, nil
}

// Snapshot returns the current game view
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	state, running := e.state, e.running
	e.mu.Unlock()

	snap := Snapshot{
		State:          state,
		TurnInProgress: running,
		CurrentIndex:   e.players.CurrentIndex(),
		Players:        e.players.List(),
		Pending:        e.arbiter.Pending(),
	}
	if it, ok := e.arbiter.Current(); ok {
		snap.Decision = &it
	}
	return snap
}

// Roll rolls the dice for the current player and starts the turn in the
// background. It returns the rolled value once the dice settle.
func (e *Engine) Roll(ctx context.Context) (int, error) {
	turnCtx, err := e.begin()
	if err != nil {
		return 0, err
	}

	steps, err := e.settleRoll(ctx)
	if err != nil {
		e.end()
		return 0, err
	}

	go func() {
		defer e.end()
		if err := e.playTurn(turnCtx, steps); err != nil {
			e.logger.Warn("turn aborted", slog.Int("steps", steps), slog.String("error", err.Error()))
		}
	}()
	return steps, nil
}

// PlayTurn runs a whole turn for the current player moving the given number
// of steps, blocking on decisions until they are resolved
func (e *Engine) PlayTurn(ctx context.Context, steps int) error {
	if steps < 1 {
		return model.ErrInvalidSteps
	}
	turnCtx, err := e.begin()
	if err != nil {
		return err
	}
	defer e.end()

	// Either cancellation aborts the turn
	stop := context.AfterFunc(ctx, e.cancelCurrent)
	defer stop()

	return e.playTurn(turnCtx, steps)
}

// Wait blocks until no turn is running
func (e *Engine) Wait() {
	e.turns.Wait()
}

// Resolve answers the open decision
func (e *Engine) Resolve(id string, outcome model.Outcome) error {
	return e.arbiter.Resolve(id, outcome)
}

// Reset aborts any running turn, drops open decisions and clears the players
func (e *Engine) Reset(ctx context.Context) {
	e.cancelCurrent()
	e.arbiter.Clear()
	e.turns.Wait()
	// Drop anything the aborted turn posted on its way out
	e.arbiter.Clear()

	e.players.ResetAll(ctx)
	e.setState(StateAwaitingRoll)
	e.logger.Info("game reset")
}

// Stop aborts any running turn and waits for it to finish. Players are kept.
func (e *Engine) Stop() {
	e.cancelCurrent()
	e.arbiter.Clear()
	e.turns.Wait()
}

// AdvanceTurn hands the turn to the next player without a skip flag,
// clearing the flag of every skipped player. If every player was flagged the
// flags are all consumed, the turn stays on the last player examined and
// ErrNoEligiblePlayer is returned.
func (e *Engine) AdvanceTurn(ctx context.Context) (model.Player, error) {
	n := e.players.Len()
	if n == 0 {
		return model.Player{}, model.ErrNoPlayers
	}

	idx := e.players.CurrentIndex()
	for range n {
		idx = (idx + 1) % n
		p, err := e.players.At(idx)
		if err != nil {
			return model.Player{}, err
		}
		if !p.SkipNextTurn {
			if err := e.players.SetCurrentIndex(idx); err != nil {
				return model.Player{}, err
			}
			e.notifier.TurnAdvanced(idx, p)
			return p, nil
		}

		p.SkipNextTurn = false
		if err := e.players.UpdatePlayer(ctx, p); err != nil {
			return model.Player{}, err
		}
		e.logger.Info("turn skipped", slog.Int("player_id", int(p.ID)))
		e.notice(fmt.Sprintf("%s pierde este turno", p.Name), model.SeverityInfo)
	}

	if err := e.players.SetCurrentIndex(idx); err != nil {
		return model.Player{}, err
	}
	e.logger.Warn("no eligible player", slog.Int("player_count", n))
	return model.Player{}, model.ErrNoEligiblePlayer
}

func (e *Engine) begin() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil, model.ErrTurnInProgress
	}
	if e.players.Len() == 0 {
		return nil, model.ErrNoPlayers
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.cancelTurn = cancel
	e.turns.Add(1)
	return ctx, nil
}

func (e *Engine) end() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelTurn != nil {
		e.cancelTurn()
		e.cancelTurn = nil
	}
	e.running = false
	e.state = StateAwaitingRoll
	e.turns.Done()
}

func (e *Engine) cancelCurrent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancelTurn != nil {
		e.cancelTurn()
	}
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s
}

func (e *Engine) currentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) settleRoll(ctx context.Context) (int, error) {
	e.setState(StateAnimating)
	steps, err := dice.Settle(ctx, e.roller.Roll(), e.diceInterval, e.notifier.DiceIntermediate)
	if err != nil {
		return 0, err
	}
	e.notifier.DiceFinal(steps)
	return steps, nil
}

func (e *Engine) playTurn(ctx context.Context, steps int) error {
	p, err := e.players.Current()
	if err != nil {
		return err
	}
	logger := e.logger.With(slog.Int("player_id", int(p.ID)))

	// A flagged player loses the roll and stays put
	if p.SkipNextTurn {
		p.SkipNextTurn = false
		if err := e.players.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		logger.Info("turn skipped at roll", slog.Int("steps", steps))
		e.notice(fmt.Sprintf("%s pierde este turno", p.Name), model.SeverityInfo)
		return e.advance(ctx)
	}

	logger.Info("turn started", slog.Int("steps", steps), slog.Int("from", p.Position))

	e.setState(StateResolvingPassEffects)
	for _, cell := range passingCells(p.Position, steps) {
		switch cells.ClassifyPassing(cell).Kind {
		case model.EffectSalary:
			if err := e.resolveSalary(ctx, p.ID); err != nil {
				return err
			}
		case model.EffectRent:
			paid, err := e.resolveRent(ctx, p.ID)
			if err != nil {
				return err
			}
			if !paid {
				// The player was sent to the salary cell; the move ends there
				logger.Info("move aborted by unpaid rent")
				return e.advance(ctx)
			}
		}
	}

	to := model.NormalizePosition(p.Position + steps)
	if err := e.players.UpdatePosition(ctx, p.ID, to); err != nil {
		return err
	}

	e.setState(StateResolvingLandingEffect)
	effect := cells.ClassifyLanding(to)
	switch effect.Kind {
	case model.EffectInsurance:
		err = e.resolveInsurance(ctx, p.ID, effect.Insurance)
	case model.EffectRandomEvent:
		err = e.resolveEvent(ctx, p.ID)
	}
	if err != nil {
		return err
	}

	logger.Info("turn finished", slog.Int("to", to))
	return e.advance(ctx)
}

func (e *Engine) advance(ctx context.Context) error {
	e.setState(StateAdvancingTurn)
	_, err := e.AdvanceTurn(ctx)
	if errors.Is(err, model.ErrNoEligiblePlayer) {
		e.notice("Todos los jugadores han perdido el turno", model.SeverityError)
	}
	return err
}

// request opens a decision and waits for its outcome
func (e *Engine) request(ctx context.Context, d model.Decision) (model.Outcome, error) {
	prev := e.currentState()
	e.setState(StateAwaitingDecision)
	defer e.setState(prev)
	return e.arbiter.Request(ctx, d)
}

// notice posts an acknowledgment-only message without waiting for it
func (e *Engine) notice(message string, severity model.Severity) {
	e.arbiter.Post(model.Notice{Message: message, Severity: severity})
}

func (e *Engine) resolveSalary(ctx context.Context, id model.PlayerID) error {
	p, err := e.players.Get(id)
	if err != nil {
		return err
	}
	if _, err := e.request(ctx, model.SalaryCredit{Player: p}); err != nil {
		return err
	}

	p, err = e.players.Get(id)
	if err != nil {
		return err
	}
	return e.players.UpdatePlayer(ctx, CreditSalary(p))
}

func (e *Engine) resolveRent(ctx context.Context, id model.PlayerID) (bool, error) {
	p, err := e.players.Get(id)
	if err != nil {
		return false, err
	}
	if _, err := e.request(ctx, model.RentDue{Player: p}); err != nil {
		return false, err
	}

	p, err = e.players.Get(id)
	if err != nil {
		return false, err
	}
	updated, paid := ChargeRent(p)
	if err := e.players.UpdatePlayer(ctx, updated); err != nil {
		return false, err
	}
	if !paid {
		e.logger.Info("rent unpaid", slog.Int("player_id", int(id)), slog.Int("money", p.Money), slog.Int("rent", p.Rent))
		e.notice(fmt.Sprintf("%s no puede pagar el alquiler y pierde un turno", p.Name), model.SeverityError)
	}
	return paid, nil
}

func (e *Engine) resolveInsurance(ctx context.Context, id model.PlayerID, kind model.InsuranceKind) error {
	price, ok := cells.InsurancePrice(kind)
	if !ok {
		return fmt.Errorf("no price for %s", kind)
	}

	p, err := e.players.Get(id)
	if err != nil {
		return err
	}
	outcome, err := e.request(ctx, model.InsurancePurchase{Player: p, Insurance: kind, Price: price})
	if err != nil {
		return err
	}
	if outcome != model.OutcomeBuy {
		return nil
	}

	p, err = e.players.Get(id)
	if err != nil {
		return err
	}
	updated, err := BuyInsurance(p, kind, price)
	switch {
	case errors.Is(err, model.ErrInsufficientFunds):
		e.notice("Fondos insuficientes", model.SeverityError)
		return nil
	case errors.Is(err, model.ErrAlreadyInsured):
		e.notice(fmt.Sprintf("Ya tienes el %s", kind.DisplayName()), model.SeverityInfo)
		return nil
	case err != nil:
		return err
	}

	e.logger.Info("insurance bought", slog.Int("player_id", int(id)), slog.String("kind", string(kind)), slog.Int("price", price))
	return e.players.UpdatePlayer(ctx, updated)
}

func (e *Engine) resolveEvent(ctx context.Context, id model.PlayerID) error {
	ev, err := e.drawEvent(ctx)
	if errors.Is(err, model.ErrCatalogUnavailable) {
		e.logger.Warn("event cell skipped", slog.String("error", err.Error()))
		return nil
	}
	if err != nil {
		return err
	}

	p, err := e.players.Get(id)
	if err != nil {
		return err
	}
	if _, err := e.request(ctx, model.EventAck{Event: ev, Player: p}); err != nil {
		return err
	}

	p, err = e.players.Get(id)
	if err != nil {
		return err
	}
	result := ApplyEvent(p, ev)
	if !result.Applied {
		p.SkipNextTurn = true
		if err := e.players.UpdatePlayer(ctx, p); err != nil {
			return err
		}
		e.notice(fmt.Sprintf("%s no puede asumir el gasto y pierde un turno", p.Name), model.SeverityError)
		return nil
	}

	if err := e.players.UpdatePlayer(ctx, result.Player); err != nil {
		return err
	}
	if result.DiscountApplied {
		saved := abs(ev.Amount - result.FinalAmount)
		e.notice(fmt.Sprintf("Tu %s te ahorra %d€", ev.Kind.DisplayName(), saved), model.SeverityInfo)
	}
	return nil
}

// drawEvent draws from the catalog, loading it first if nothing is loaded yet
func (e *Engine) drawEvent(ctx context.Context) (model.Event, error) {
	if !e.catalog.IsLoaded() {
		if _, err := e.catalog.Load(ctx); err != nil {
			return model.Event{}, err
		}
	}
	return e.catalog.RandomEvent()
}

// passingCells returns the cells a move steps through, destination included.
// A move of fewer than one step passes nothing.
func passingCells(from, steps int) []int {
	if steps < 1 {
		return nil
	}
	result := make([]int, 0, steps)
	for i := 1; i <= steps; i++ {
		result = append(result, model.NormalizePosition(from+i))
	}
	return result
}
