// Package arbiter serializes decisions so that at most one is open at a time.
//
// A decision is opened immediately when nothing is open, otherwise it waits in
// a FIFO queue. Resolving the open decision always promotes the head of the
// queue, so a request submitted while the queue was empty is never missed.
package arbiter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/aseguradoss/internal/dependencies/clock"
	"github.com/mcoot/aseguradoss/internal/model"
)

// Interaction is one decision waiting for, or holding, the open slot
type Interaction struct {
	ID       string
	Decision model.Decision
	OpenedAt time.Time // Zero while queued

	done chan model.Outcome
}

// Listener is told about every interaction as it opens
type Listener func(Interaction)

// Arbiter owns the single open slot and the queue behind it
type Arbiter struct {
	clock  clock.Clock
	logger *slog.Logger

	mu        sync.Mutex
	current   *Interaction
	queue     []*Interaction
	listeners []Listener
}

// New creates an Arbiter
func New(clk clock.Clock, logger *slog.Logger) *Arbiter {
	return &Arbiter{
		clock:  clk,
		logger: logger.With(slog.String("component", "arbiter")),
	}
}

// Subscribe registers fn to be called, outside the lock, whenever an interaction opens
func (a *Arbiter) Subscribe(fn Listener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Request submits d and blocks until it is resolved or ctx ends.
// A cancelled request leaves the queue, or frees the slot if it was open.
func (a *Arbiter) Request(ctx context.Context, d model.Decision) (model.Outcome, error) {
	it := a.submit(d)

	select {
	case outcome := <-it.done:
		return outcome, nil
	case <-ctx.Done():
		a.withdraw(it.ID)
		// A resolution may have won the race
		select {
		case outcome := <-it.done:
			return outcome, nil
		default:
		}
		return "", ctx.Err()
	}
}

// Post submits d without waiting for its outcome
func (a *Arbiter) Post(d model.Decision) Interaction {
	return *a.submit(d)
}

// Resolve answers the open interaction. id must name the open one and
// outcome must be accepted by its decision.
func (a *Arbiter) Resolve(id string, outcome model.Outcome) error {
	a.mu.Lock()
	if a.current == nil {
		a.mu.Unlock()
		return model.ErrNoOpenDecision
	}
	if a.current.ID != id {
		a.mu.Unlock()
		return model.ErrDecisionMismatch
	}
	if !model.Accepts(a.current.Decision, outcome) {
		a.mu.Unlock()
		return model.ErrInvalidOutcome
	}

	resolved := a.current
	resolved.done <- outcome
	next, listeners := a.promoteLocked()
	a.mu.Unlock()

	a.logger.Debug("decision resolved",
		slog.String("id", resolved.ID),
		slog.String("kind", string(resolved.Decision.Kind())),
		slog.String("outcome", string(outcome)),
	)
	a.notify(next, listeners)
	return nil
}

// Current returns the open interaction, if any
func (a *Arbiter) Current() (Interaction, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return Interaction{}, false
	}
	return *a.current, true
}

// Pending returns the number of queued interactions behind the open one
func (a *Arbiter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

// Clear drops the open interaction and the queue. Blocked requesters are
// not woken; their contexts must be cancelled by the caller.
func (a *Arbiter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = nil
	a.queue = nil
}

func (a *Arbiter) submit(d model.Decision) *Interaction {
	it := &Interaction{
		ID:       uuid.NewString(),
		Decision: d,
		done:     make(chan model.Outcome, 1),
	}

	a.mu.Lock()
	if a.current != nil {
		a.queue = append(a.queue, it)
		a.mu.Unlock()
		return it
	}
	it.OpenedAt = a.clock.Now()
	a.current = it
	listeners := a.listeners
	a.mu.Unlock()

	a.notify(it, listeners)
	return it
}

func (a *Arbiter) withdraw(id string) {
	a.mu.Lock()
	if a.current != nil && a.current.ID == id {
		next, listeners := a.promoteLocked()
		a.mu.Unlock()
		a.notify(next, listeners)
		return
	}
	for i, it := range a.queue {
		if it.ID == id {
			a.queue = append(a.queue[:i], a.queue[i+1:]...)
			break
		}
	}
	a.mu.Unlock()
}

// promoteLocked opens the head of the queue. Caller holds mu.
func (a *Arbiter) promoteLocked() (*Interaction, []Listener) {
	a.current = nil
	if len(a.queue) == 0 {
		return nil, nil
	}
	next := a.queue[0]
	a.queue = a.queue[1:]
	next.OpenedAt = a.clock.Now()
	a.current = next
	return next, a.listeners
}

func (a *Arbiter) notify(it *Interaction, listeners []Listener) {
	if it == nil {
		return
	}
	for _, fn := range listeners {
		fn(*it)
	}
}
