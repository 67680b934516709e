package domain

import "errors"

// Sentinel errors for the rental/rating flow. Handlers map these to HTTP
// status codes with errors.Is; services wrap them with context via %w.
var (
	ErrAgentNotFound    = errors.New("agent not found")
	ErrAgentInactive    = errors.New("agent is not accepting rentals")
	ErrInvalidDuration  = errors.New("rental duration must be at least one day")
	ErrAlreadyRented    = errors.New("an active rental already exists for this agent")
	ErrPaymentFailed    = errors.New("payment failed")
	ErrNoEligibleRental = errors.New("no rental eligible for rating")
	ErrInvalidScore     = errors.New("rating score must be between 1 and 5")
	ErrNotCreator       = errors.New("caller is not the agent creator")
	ErrInvalidPrice     = errors.New("rental price must not be negative")
	ErrMissingName      = errors.New("agent name is required")
	ErrTxNotFound       = errors.New("transaction not found")
)
