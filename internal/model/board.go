package model

// Board geometry: tokens travel around the perimeter of a Cols x Rows grid
const (
	BoardCols = 8
	BoardRows = 5

	// TotalCells is the number of perimeter cells (corners counted once)
	TotalCells = 2*(BoardCols+BoardRows) - 4

	// SalaryCell pays the salary when passed; also the starting cell
	SalaryCell = 11
	// RentCell charges the rent when passed
	RentCell = 0
)

// NormalizePosition maps any integer onto [0, TotalCells)
func NormalizePosition(pos int) int {
	pos %= TotalCells
	if pos < 0 {
		pos += TotalCells
	}
	return pos
}

// IsValidPosition returns true if pos is a board cell index
func IsValidPosition(pos int) bool {
	return pos >= 0 && pos < TotalCells
}

// EffectKind classifies what happens on a cell
type EffectKind string

const (
	EffectNone        EffectKind = "none"
	EffectSalary      EffectKind = "salary"
	EffectRent        EffectKind = "rent"
	EffectInsurance   EffectKind = "insurance"
	EffectRandomEvent EffectKind = "random_event"
)

// Effect is the classification of a cell; Insurance is set only for EffectInsurance
type Effect struct {
	Kind      EffectKind
	Insurance InsuranceKind
}
