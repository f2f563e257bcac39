package model

import "slices"

// PlayerID uniquely identifies a player within a game session
type PlayerID int

// Starting economy for newly created players
const (
	StartingMoney  = 1000
	StartingSalary = 500
	StartingRent   = 100
)

// Player represents a participant and their economic state
type Player struct {
	ID           PlayerID
	Name         string
	Money        int
	Salary       int
	Rent         int
	Position     int
	Insured      []InsuranceKind
	SkipNextTurn bool
}

// NewPlayer creates a player with the starting economy, placed on the salary cell
func NewPlayer(id PlayerID, name string) Player {
	return Player{
		ID:       id,
		Name:     name,
		Money:    StartingMoney,
		Salary:   StartingSalary,
		Rent:     StartingRent,
		Position: SalaryCell,
		Insured:  []InsuranceKind{},
	}
}

// HasInsurance returns true if the player holds the given insurance kind
func (p Player) HasInsurance(kind InsuranceKind) bool {
	return slices.Contains(p.Insured, kind)
}

// Clone returns a copy that shares no slices with p
func (p Player) Clone() Player {
	c := p
	c.Insured = slices.Clone(p.Insured)
	if c.Insured == nil {
		c.Insured = []InsuranceKind{}
	}
	return c
}

// ClonePlayers copies a slice of players
func ClonePlayers(players []Player) []Player {
	result := make([]Player, len(players))
	for i, p := range players {
		result[i] = p.Clone()
	}
	return result
}
