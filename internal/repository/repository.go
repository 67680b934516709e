package repository

import (
	"context"
	"math/big"

	"agentforge-backend/internal/domain"
)

type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent, creationFee *big.Int, treasury string) error
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, activeOnly bool, page, pageSize int32) ([]domain.Agent, int64, error)
	ListIDsByCreator(ctx context.Context, creator string) ([]int64, error)
	UpdateMetadata(ctx context.Context, id int64, category string, traits, expertise []string) error
	UpdatePrice(ctx context.Context, id int64, price *big.Int) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// RentAgentParams carries everything the rental transaction needs. The fee
// split is policy decided by the service; the repository only applies it.
type RentAgentParams struct {
	AgentID         int64
	Renter          string
	DurationDays    int32
	StartTime       int64
	TxHash          string
	PlatformFeeBps  int32
	TreasuryAccount string
}

type RentalRepository interface {
	// Rent executes the whole rental as one serializable transaction:
	// re-validates the agent and overlap preconditions under lock, debits
	// the renter, splits the payment between creator and treasury, bumps
	// the agent aggregates and inserts the rental row. Returns the typed
	// domain error when a precondition no longer holds.
	Rent(ctx context.Context, params RentAgentParams) (*domain.Rental, error)

	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	GetLatestForPair(ctx context.Context, agentID int64, renter string) (*domain.Rental, error)
	ListByRenter(ctx context.Context, renter string) ([]domain.Rental, error)
	ListAgentIDsByRenter(ctx context.Context, renter string) ([]int64, error)
	MarkExpired(ctx context.Context, now int64) ([]domain.Rental, error)
	ListExpiredUnrated(ctx context.Context, expiredAfter, expiredBefore int64) ([]domain.Rental, error)
}

type RatingRepository interface {
	// Rate flips the rental's rated flag and folds the score into the agent
	// aggregates in one transaction; no partial update is ever visible.
	Rate(ctx context.Context, agentID int64, rater string, score int32) (*domain.Agent, *domain.Rating, error)

	ListByAgent(ctx context.Context, agentID int64, page, pageSize int32) ([]domain.Rating, int64, error)
}

type LedgerRepository interface {
	GetBalance(ctx context.Context, account string) (*big.Int, error)
	Deposit(ctx context.Context, account string, amount *big.Int, description string) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, account string, page, pageSize int32) ([]domain.LedgerEntry, int64, error)
	GetSummary(ctx context.Context, account string) (*domain.LedgerSummary, error)
}
