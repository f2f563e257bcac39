package request

import (
	"fmt"

	"github.com/mcoot/aseguradoss/internal/api/apierr"
	"github.com/mcoot/aseguradoss/internal/model"
)

// StartGameRequest is the request body for starting a game
type StartGameRequest struct {
	Names []string `json:"names"`
}

// DecisionRequest is the request body for resolving the open decision
type DecisionRequest struct {
	Outcome string `json:"outcome"`
}

// PositionRequest is the request body for a position-only update.
// Position is a float so that a non-integer number can be rejected.
type PositionRequest struct {
	Position *float64 `json:"position"`
}

// PlayerUpdateRequest is a partial player record; absent fields keep their value
type PlayerUpdateRequest struct {
	Name         *string   `json:"name"`
	Money        *int      `json:"money"`
	Salary       *int      `json:"salary"`
	Rent         *int      `json:"rent"`
	Position     *int      `json:"position"`
	Insured      *[]string `json:"insured"`
	SkipNextTurn *bool     `json:"skipNextTurn"`
}

// Validate checks the present fields against the player invariants
func (r *PlayerUpdateRequest) Validate() error {
	if r.Position != nil && !model.IsValidPosition(*r.Position) {
		return model.ErrInvalidPosition
	}
	if r.Money != nil && *r.Money < 0 {
		return apierr.NewInvalidRequestError("money must not be negative")
	}
	if r.Insured != nil {
		seen := make(map[model.InsuranceKind]bool, len(*r.Insured))
		for _, k := range *r.Insured {
			kind := model.InsuranceKind(k)
			if !kind.IsInsurance() {
				return apierr.NewInvalidRequestError(fmt.Sprintf("unknown insurance %q", k))
			}
			if seen[kind] {
				return apierr.NewInvalidRequestError(fmt.Sprintf("insurance %q listed twice", k))
			}
			seen[kind] = true
		}
	}
	return nil
}

// Apply merges the present fields onto p
func (r *PlayerUpdateRequest) Apply(p *model.Player) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Money != nil {
		p.Money = *r.Money
	}
	if r.Salary != nil {
		p.Salary = *r.Salary
	}
	if r.Rent != nil {
		p.Rent = *r.Rent
	}
	if r.Position != nil {
		p.Position = *r.Position
	}
	if r.Insured != nil {
		p.Insured = make([]model.InsuranceKind, len(*r.Insured))
		for i, k := range *r.Insured {
			p.Insured[i] = model.InsuranceKind(k)
		}
	}
	if r.SkipNextTurn != nil {
		p.SkipNextTurn = *r.SkipNextTurn
	}
}
