package service

import (
	"context"
	"time"

	"agentforge-backend/internal/cache"
	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"
	"agentforge-backend/internal/repository"
)

type rentalService struct {
	rentalRepo     repository.RentalRepository
	submitter      *ledger.Submitter
	snapshots      *cache.SnapshotCache
	platformFeeBps int32
	treasury       string
	now            func() time.Time
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	submitter *ledger.Submitter,
	snapshots *cache.SnapshotCache,
	platformFeeBps int32,
	treasury string,
) RentalService {
	return &rentalService{
		rentalRepo:     rentalRepo,
		submitter:      submitter,
		snapshots:      snapshots,
		platformFeeBps: platformFeeBps,
		treasury:       treasury,
		now:            time.Now,
	}
}

// RequestRental rejects malformed durations before broadcast; every
// state-dependent precondition (agent exists and is active, no overlapping
// rental, sufficient balance) is re-validated inside the backend
// transaction and settles in the receipt.
func (s *rentalService) RequestRental(ctx context.Context, renter string, agentID int64, durationDays int32) (*domain.TxReceipt, error) {
	if durationDays < 1 {
		return nil, domain.ErrInvalidDuration
	}

	type rentPayload struct {
		AgentID      int64  `json:"agent_id"`
		Renter       string `json:"renter"`
		DurationDays int32  `json:"duration_days"`
	}
	payload := rentPayload{AgentID: agentID, Renter: renter, DurationDays: durationDays}

	receipt := s.submitter.Submit("rentAgent", payload, func(opCtx context.Context, txHash string) (ledger.Result, error) {
		rental, err := s.rentalRepo.Rent(opCtx, repository.RentAgentParams{
			AgentID:         agentID,
			Renter:          renter,
			DurationDays:    durationDays,
			StartTime:       s.now().Unix(),
			TxHash:          txHash,
			PlatformFeeBps:  s.platformFeeBps,
			TreasuryAccount: s.treasury,
		})
		if err != nil {
			return ledger.Result{}, err
		}
		s.snapshots.InvalidateAgent(opCtx, agentID)
		return ledger.Result{AgentID: &agentID, RentalID: &rental.ID}, nil
	})
	return receipt, nil
}

func (s *rentalService) HasActiveRental(ctx context.Context, renter string, agentID int64) (*RentalStatusInfo, error) {
	rental, err := s.rentalRepo.GetLatestForPair(ctx, agentID, renter)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	if rental == nil || !rental.ActiveAt(now) {
		return &RentalStatusInfo{HasRental: false}, nil
	}

	remaining := rental.RemainingDays(now)
	return &RentalStatusInfo{
		HasRental:     true,
		RentalEndTime: &rental.EndTime,
		RemainingDays: &remaining,
	}, nil
}

func (s *rentalService) GetUserRentedAgents(ctx context.Context, renter string) ([]int64, error) {
	return s.rentalRepo.ListAgentIDsByRenter(ctx, renter)
}

func (s *rentalService) ListRentals(ctx context.Context, renter string) ([]domain.Rental, error) {
	return s.rentalRepo.ListByRenter(ctx, renter)
}

// ChatGate is the capability check for message submission. It derives from
// the latest rental for the pair; the rental's sweep status is irrelevant.
func (s *rentalService) ChatGate(ctx context.Context, renter string, agentID int64, now int64) (domain.ChatAccess, error) {
	rental, err := s.rentalRepo.GetLatestForPair(ctx, agentID, renter)
	if err != nil {
		return domain.ChatAccess{}, err
	}
	return domain.ChatGate(rental, now), nil
}
