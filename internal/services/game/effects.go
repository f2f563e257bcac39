package game

import "github.com/mcoot/aseguradoss/internal/model"

// The economic effects are pure: they take a player by value and return the
// updated copy. The engine persists the result.

// CreditSalary pays the player's salary into their money
func CreditSalary(p model.Player) model.Player {
	p = p.Clone()
	p.Money += p.Salary
	return p
}

// ChargeRent debits the rent. A player who cannot pay strictly more than the
// rent loses everything, returns to the salary cell and skips a turn; paid is false.
func ChargeRent(p model.Player) (updated model.Player, paid bool) {
	p = p.Clone()
	if p.Money <= p.Rent {
		p.Money = 0
		p.Position = model.SalaryCell
		p.SkipNextTurn = true
		return p, false
	}
	p.Money -= p.Rent
	return p, true
}

// BuyInsurance debits price and adds kind to the player's insurances.
// Buying at exactly the player's money is rejected.
func BuyInsurance(p model.Player, kind model.InsuranceKind, price int) (model.Player, error) {
	if p.HasInsurance(kind) {
		return p, model.ErrAlreadyInsured
	}
	if p.Money <= price {
		return p, model.ErrInsufficientFunds
	}
	p = p.Clone()
	p.Money -= price
	p.Insured = append(p.Insured, kind)
	return p, nil
}

// EventResult reports how an event landed on a player
type EventResult struct {
	Player          model.Player
	Applied         bool
	DiscountApplied bool
	FinalAmount     int
}

// ApplyEvent applies ev to the player. Holders of a matching insurance get
// the discount; a loss the player cannot cover is not applied at all.
func ApplyEvent(p model.Player, ev model.Event) EventResult {
	p = p.Clone()

	final := ev.Amount
	discounted := false
	if ev.Kind != model.KindGeneric && ev.Discount != nil && p.HasInsurance(ev.Kind) {
		final = ev.Amount - int(float64(ev.Amount)*(*ev.Discount))
		discounted = true
	}

	if ev.Amount < 0 && abs(final) > p.Money {
		return EventResult{Player: p}
	}

	switch ev.Variable {
	case model.VariableMoney:
		p.Money += final
	case model.VariableSalary:
		p.Salary += final
	case model.VariableRent:
		p.Rent += final
	}

	return EventResult{
		Player:          p,
		Applied:         true,
		DiscountApplied: discounted,
		FinalAmount:     final,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
