package service

import (
	"context"

	"agentforge-backend/internal/cache"
	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"
	"agentforge-backend/internal/repository"
)

type ratingService struct {
	ratingRepo repository.RatingRepository
	submitter  *ledger.Submitter
	snapshots  *cache.SnapshotCache
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	submitter *ledger.Submitter,
	snapshots *cache.SnapshotCache,
) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		submitter:  submitter,
		snapshots:  snapshots,
	}
}

// SubmitRating rejects out-of-range scores before broadcast. Eligibility
// (an unrated rental for the pair, active or expired) is re-validated in
// the backend transaction, so a double submission settles as failed with
// NoEligibleRental rather than double-counting.
func (s *ratingService) SubmitRating(ctx context.Context, rater string, agentID int64, score int32) (*domain.TxReceipt, error) {
	if !domain.ValidScore(score) {
		return nil, domain.ErrInvalidScore
	}

	type ratePayload struct {
		AgentID int64  `json:"agent_id"`
		Rater   string `json:"rater"`
		Score   int32  `json:"score"`
	}
	payload := ratePayload{AgentID: agentID, Rater: rater, Score: score}

	receipt := s.submitter.Submit("rateAgent", payload, func(opCtx context.Context, _ string) (ledger.Result, error) {
		agent, rating, err := s.ratingRepo.Rate(opCtx, agentID, rater, score)
		if err != nil {
			return ledger.Result{}, err
		}
		s.snapshots.InvalidateAgent(opCtx, agent.ID)
		return ledger.Result{AgentID: &agent.ID, RentalID: &rating.RentalID}, nil
	})
	return receipt, nil
}

func (s *ratingService) ListAgentRatings(ctx context.Context, agentID int64, page, pageSize int32) ([]domain.Rating, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ratingRepo.ListByAgent(ctx, agentID, page, pageSize)
}
