// Package cells classifies board cells into the effects they trigger.
package cells

import (
	"slices"

	"github.com/mcoot/aseguradoss/internal/model"
)

// layout is the landing kind of every cell on the 22-cell board.
// Opposite sides mirror each other, offset by 11.
var layout = [model.TotalCells]model.InsuranceKind{
	0:  model.KindGeneric,
	1:  model.InsuranceHealth,
	2:  model.KindGeneric,
	3:  model.InsuranceLife,
	4:  model.InsuranceCar,
	5:  model.KindGeneric,
	6:  model.InsuranceTravel,
	7:  model.KindGeneric,
	8:  model.InsuranceHome,
	9:  model.InsuranceLiability,
	10: model.InsuranceSavings,
	11: model.KindGeneric,
	12: model.InsuranceHealth,
	13: model.KindGeneric,
	14: model.InsuranceLife,
	15: model.InsuranceCar,
	16: model.KindGeneric,
	17: model.InsuranceTravel,
	18: model.KindGeneric,
	19: model.InsuranceHome,
	20: model.InsuranceLiability,
	21: model.InsuranceSavings,
}

var prices = map[model.InsuranceKind]int{
	model.InsuranceHealth:    200,
	model.InsuranceLife:      300,
	model.InsuranceCar:       400,
	model.InsuranceTravel:    400,
	model.InsuranceHome:      500,
	model.InsuranceLiability: 200,
	model.InsuranceSavings:   50,
}

// Layout returns a copy of the landing kind of every cell, indexed by position
func Layout() []model.InsuranceKind {
	return slices.Clone(layout[:])
}

// ClassifyLanding returns the effect of ending a move on pos.
// The salary and rent cells classify as random events when landed on.
func ClassifyLanding(pos int) model.Effect {
	kind := layout[model.NormalizePosition(pos)]
	if kind == model.KindGeneric {
		return model.Effect{Kind: model.EffectRandomEvent}
	}
	return model.Effect{Kind: model.EffectInsurance, Insurance: kind}
}

// ClassifyPassing returns the effect of stepping through pos, destination included
func ClassifyPassing(pos int) model.Effect {
	switch model.NormalizePosition(pos) {
	case model.SalaryCell:
		return model.Effect{Kind: model.EffectSalary}
	case model.RentCell:
		return model.Effect{Kind: model.EffectRent}
	}
	return model.Effect{Kind: model.EffectNone}
}

// InsurancePrice returns the purchase price of kind; false for non-insurance kinds
func InsurancePrice(kind model.InsuranceKind) (int, bool) {
	p, ok := prices[kind]
	return p, ok
}
