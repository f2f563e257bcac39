package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNoPlayers          = errors.New("no players in game")
	ErrAlreadyInitialized = errors.New("players already initialized")
	ErrInvalidPosition    = errors.New("invalid board position")

	// Economy errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAlreadyInsured    = errors.New("player already holds this insurance")

	// Catalog errors
	ErrCatalogUnavailable = errors.New("event catalog unavailable")
	ErrInvalidEvent       = errors.New("invalid event")

	// Turn errors
	ErrNoEligiblePlayer = errors.New("every player is flagged to skip their turn")
	ErrTurnInProgress   = errors.New("a turn is already in progress")
	ErrInvalidSteps     = errors.New("a move must be at least one step")

	// Decision errors
	ErrNoOpenDecision   = errors.New("no decision is open")
	ErrDecisionMismatch = errors.New("decision is not the open one")
	ErrInvalidOutcome   = errors.New("outcome not accepted by this decision")

	// Storage errors
	ErrPersistence = errors.New("persistence failed")
)
