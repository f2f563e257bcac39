package model

// InsuranceKind tags an insurance category, or the generic event category
type InsuranceKind string

const (
	InsuranceHealth    InsuranceKind = "SALUD"
	InsuranceLife      InsuranceKind = "VIDA"
	InsuranceCar       InsuranceKind = "COCHE"
	InsuranceTravel    InsuranceKind = "VIAJE"
	InsuranceHome      InsuranceKind = "HOGAR"
	InsuranceLiability InsuranceKind = "RESPONSABILIDAD_CIVIL"
	InsuranceSavings   InsuranceKind = "CAJA_AHORROS"

	// KindGeneric marks events that no insurance covers
	KindGeneric InsuranceKind = "EVENTO"
)

// InsuranceKinds returns every purchasable insurance kind
func InsuranceKinds() []InsuranceKind {
	return []InsuranceKind{
		InsuranceHealth,
		InsuranceLife,
		InsuranceCar,
		InsuranceTravel,
		InsuranceHome,
		InsuranceLiability,
		InsuranceSavings,
	}
}

// IsInsurance returns true for purchasable kinds
func (k InsuranceKind) IsInsurance() bool {
	switch k {
	case InsuranceHealth, InsuranceLife, InsuranceCar, InsuranceTravel,
		InsuranceHome, InsuranceLiability, InsuranceSavings:
		return true
	}
	return false
}

// IsValid returns true for insurance kinds and the generic tag
func (k InsuranceKind) IsValid() bool {
	return k == KindGeneric || k.IsInsurance()
}

// DisplayName returns the label shown to players
func (k InsuranceKind) DisplayName() string {
	switch k {
	case InsuranceHealth:
		return "Seguro de Salud"
	case InsuranceLife:
		return "Seguro de Vida"
	case InsuranceCar:
		return "Seguro de Coche"
	case InsuranceTravel:
		return "Seguro de Viaje"
	case InsuranceHome:
		return "Seguro de Hogar"
	case InsuranceLiability:
		return "Seguro de Responsabilidad Civil"
	case InsuranceSavings:
		return "Caja de Ahorros"
	case KindGeneric:
		return "Evento"
	default:
		return string(k)
	}
}

// Variable names the player field an event modifies
type Variable string

const (
	VariableMoney  Variable = "money"
	VariableSalary Variable = "salary"
	VariableRent   Variable = "rent"
)

// IsValid returns true for known variables
func (v Variable) IsValid() bool {
	return v == VariableMoney || v == VariableSalary || v == VariableRent
}

// Event is a random occurrence drawn when landing on an event cell.
// Events are reference data and are never mutated by gameplay.
type Event struct {
	ID       int
	Kind     InsuranceKind
	Text     string
	Amount   int      // Signed delta
	Variable Variable // Field the delta applies to
	Discount *float64 // 0.5 or 1 when holders of Kind get a discount
}

// Validate checks the event against the allowed enumerations
func (e *Event) Validate() error {
	if !e.Kind.IsValid() || !e.Variable.IsValid() || e.Text == "" {
		return ErrInvalidEvent
	}
	if e.Discount != nil && *e.Discount != 0.5 && *e.Discount != 1 {
		return ErrInvalidEvent
	}
	return nil
}
