// Package dice produces the animated sequence of a die roll.
package dice

import (
	"context"
	"iter"
	"time"

	"github.com/mcoot/aseguradoss/internal/dependencies/random"
)

const (
	// Spins is the number of faces shown per roll; the last one counts
	Spins = 15
	Faces = 6
)

// Roller rolls a six-sided die
type Roller struct {
	random random.Random
}

// New creates a Roller over the given random source
func New(rng random.Random) *Roller {
	return &Roller{random: rng}
}

// Roll returns a lazy sequence of Spins independent faces in [1, Faces].
// Each iteration draws afresh; only the last face is the result.
func (r *Roller) Roll() iter.Seq[int] {
	return func(yield func(int) bool) {
		for range Spins {
			if !yield(r.random.Intn(Faces) + 1) {
				return
			}
		}
	}
}

// Settle drains a roll, calling onTick for every face but the last, and
// returns the last face. A non-zero interval paces the ticks.
func Settle(ctx context.Context, roll iter.Seq[int], interval time.Duration, onTick func(int)) (int, error) {
	last := 0
	pending := false
	for face := range roll {
		if pending && onTick != nil {
			onTick(last)
		}
		if interval > 0 && pending {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(interval):
			}
		} else if err := ctx.Err(); err != nil {
			return 0, err
		}
		last = face
		pending = true
	}
	return last, nil
}
