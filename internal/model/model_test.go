package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalCells(t *testing.T) {
	assert.Equal(t, 22, TotalCells)
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"in range", 5, 5},
		{"exact wrap", 22, 0},
		{"past wrap", 25, 3},
		{"negative", -1, 21},
		{"large negative", -45, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePosition(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.True(t, IsValidPosition(got))
		})
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer(3, "Ana")

	assert.Equal(t, PlayerID(3), p.ID)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, StartingMoney, p.Money)
	assert.Equal(t, StartingSalary, p.Salary)
	assert.Equal(t, StartingRent, p.Rent)
	assert.Equal(t, SalaryCell, p.Position)
	assert.Empty(t, p.Insured)
	assert.False(t, p.SkipNextTurn)
}

func TestCloneDoesNotShareInsured(t *testing.T) {
	p := NewPlayer(1, "Ana")
	p.Insured = append(p.Insured, InsuranceHealth)

	c := p.Clone()
	c.Insured[0] = InsuranceCar

	assert.Equal(t, InsuranceHealth, p.Insured[0])
	assert.True(t, p.HasInsurance(InsuranceHealth))
	assert.False(t, p.HasInsurance(InsuranceCar))

	// Both methods work on values that are not addressable
	byID := map[PlayerID]Player{1: p}
	assert.True(t, byID[1].HasInsurance(InsuranceHealth))
	assert.Equal(t, p.Insured, byID[1].Clone().Insured)
}

func TestEventValidate(t *testing.T) {
	half := 0.5
	bad := 0.3

	valid := Event{Kind: InsuranceCar, Text: "Golpe", Amount: -200, Variable: VariableMoney, Discount: &half}
	assert.NoError(t, valid.Validate())

	generic := Event{Kind: KindGeneric, Text: "Premio", Amount: 100, Variable: VariableSalary}
	assert.NoError(t, generic.Validate())

	badDiscount := valid
	badDiscount.Discount = &bad
	assert.ErrorIs(t, badDiscount.Validate(), ErrInvalidEvent)

	badKind := valid
	badKind.Kind = "PAGO_MENSUAL"
	assert.ErrorIs(t, badKind.Validate(), ErrInvalidEvent)

	badVar := valid
	badVar.Variable = "position"
	assert.ErrorIs(t, badVar.Validate(), ErrInvalidEvent)
}

func TestDecisionOutcomes(t *testing.T) {
	assert.True(t, Accepts(InsurancePurchase{}, OutcomeBuy))
	assert.True(t, Accepts(InsurancePurchase{}, OutcomeDecline))
	assert.False(t, Accepts(InsurancePurchase{}, OutcomeNext))

	for _, d := range []Decision{EventAck{}, RentDue{}, SalaryCredit{}, Notice{}} {
		assert.True(t, Accepts(d, OutcomeNext), d.Kind())
		assert.False(t, Accepts(d, OutcomeBuy), d.Kind())
	}
}

func TestDecisionOutcomesAreCopies(t *testing.T) {
	InsurancePurchase{}.Outcomes()[0] = OutcomeNext
	Notice{}.Outcomes()[0] = OutcomeBuy

	assert.True(t, Accepts(InsurancePurchase{}, OutcomeBuy))
	assert.False(t, Accepts(InsurancePurchase{}, OutcomeNext))
	assert.True(t, Accepts(EventAck{}, OutcomeNext))
	assert.False(t, Accepts(EventAck{}, OutcomeBuy))
}
