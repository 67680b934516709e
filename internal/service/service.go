package service

import (
	"context"
	"math/big"

	"agentforge-backend/internal/domain"
)

// CreateAgentParams is the creator-supplied listing for a new agent.
type CreateAgentParams struct {
	Name              string
	Category          string
	Avatar            string
	Traits            []string
	Expertise         []string
	RentalPricePerDay *big.Int
}

// RentalStatusInfo answers "does this renter currently hold this agent".
// End time and remaining days are present only while a rental is active.
type RentalStatusInfo struct {
	HasRental     bool   `json:"has_rental"`
	RentalEndTime *int64 `json:"rental_end_time,omitempty"`
	RemainingDays *int32 `json:"remaining_days,omitempty"`
}

// Write operations return a pending receipt: the caller observes the
// outcome through the receipt, never through the immediate return. Errors
// from these methods mean the request was rejected before broadcast
// (malformed input); everything state-dependent settles in the receipt.
type DirectoryService interface {
	CreateAgent(ctx context.Context, creator string, params CreateAgentParams) (*domain.TxReceipt, error)
	UpdateRentalPrice(ctx context.Context, caller string, agentID int64, newPrice *big.Int) (*domain.TxReceipt, error)
	UpdateMetadata(ctx context.Context, caller string, agentID int64, category string, traits, expertise []string) (*domain.TxReceipt, error)
	DeactivateAgent(ctx context.Context, caller string, agentID int64) (*domain.TxReceipt, error)
	ReactivateAgent(ctx context.Context, caller string, agentID int64) (*domain.TxReceipt, error)

	GetTotalAgents(ctx context.Context) (int64, error)
	GetAgentDetails(ctx context.Context, id int64) (*domain.Agent, error)
	ListAgents(ctx context.Context, activeOnly bool, page, pageSize int32) ([]domain.Agent, int64, error)
	GetCreatorAgents(ctx context.Context, creator string) ([]int64, error)
}

type RentalService interface {
	RequestRental(ctx context.Context, renter string, agentID int64, durationDays int32) (*domain.TxReceipt, error)

	HasActiveRental(ctx context.Context, renter string, agentID int64) (*RentalStatusInfo, error)
	GetUserRentedAgents(ctx context.Context, renter string) ([]int64, error)
	ListRentals(ctx context.Context, renter string) ([]domain.Rental, error)
	ChatGate(ctx context.Context, renter string, agentID int64, now int64) (domain.ChatAccess, error)
}

type RatingService interface {
	SubmitRating(ctx context.Context, rater string, agentID int64, score int32) (*domain.TxReceipt, error)
	ListAgentRatings(ctx context.Context, agentID int64, page, pageSize int32) ([]domain.Rating, int64, error)
}

type ChatService interface {
	// Respond generates one in-character reply. Provider failures resolve
	// to a fixed fallback string, never an error surfaced to the renter.
	Respond(ctx context.Context, agentID int64, history []domain.ChatTurn, message string) (string, error)
}

type LedgerService interface {
	GetBalance(ctx context.Context, account string) (*big.Int, error)
	Deposit(ctx context.Context, account string, amount *big.Int) (*domain.TxReceipt, error)
	ListEntries(ctx context.Context, account string, page, pageSize int32) ([]domain.LedgerEntry, int64, error)
	GetSummary(ctx context.Context, account string) (*domain.LedgerSummary, error)
}

type EmailService interface {
	SendOpsDigest(ctx context.Context, expiredRentals, unratedRentals int) error
}

// TxService exposes receipt lookup and bounded waiting over submitted
// transactions.
type TxService interface {
	GetReceipt(hash string) (*domain.TxReceipt, error)
	WaitForReceipt(ctx context.Context, hash string) (*domain.TxReceipt, error)
}
