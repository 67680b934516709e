package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"time"

	"agentforge-backend/internal/cache"
	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"
	"agentforge-backend/internal/logger"
	"agentforge-backend/internal/repository"
)

const (
	listRetryAttempts = 3
	listRetryDelay    = 200 * time.Millisecond
)

type directoryService struct {
	agentRepo   repository.AgentRepository
	submitter   *ledger.Submitter
	snapshots   *cache.SnapshotCache
	creationFee *big.Int
	treasury    string
}

func NewDirectoryService(
	agentRepo repository.AgentRepository,
	submitter *ledger.Submitter,
	snapshots *cache.SnapshotCache,
	creationFee *big.Int,
	treasury string,
) DirectoryService {
	return &directoryService{
		agentRepo:   agentRepo,
		submitter:   submitter,
		snapshots:   snapshots,
		creationFee: creationFee,
		treasury:    treasury,
	}
}

func (s *directoryService) CreateAgent(ctx context.Context, creator string, params CreateAgentParams) (*domain.TxReceipt, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, domain.ErrMissingName
	}
	if params.RentalPricePerDay == nil || params.RentalPricePerDay.Sign() < 0 {
		return nil, domain.ErrInvalidPrice
	}

	agent := &domain.Agent{
		Creator:           creator,
		Name:              params.Name,
		Category:          params.Category,
		Avatar:            params.Avatar,
		Traits:            params.Traits,
		Expertise:         params.Expertise,
		RentalPricePerDay: params.RentalPricePerDay,
	}

	receipt := s.submitter.Submit("createAgent", params, func(opCtx context.Context, _ string) (ledger.Result, error) {
		if err := s.agentRepo.Create(opCtx, agent, s.creationFee, s.treasury); err != nil {
			return ledger.Result{}, err
		}
		s.snapshots.InvalidateAgent(opCtx, agent.ID)
		return ledger.Result{AgentID: &agent.ID}, nil
	})
	return receipt, nil
}

func (s *directoryService) UpdateRentalPrice(ctx context.Context, caller string, agentID int64, newPrice *big.Int) (*domain.TxReceipt, error) {
	if newPrice == nil || newPrice.Sign() < 0 {
		return nil, domain.ErrInvalidPrice
	}

	receipt := s.submitter.Submit("updateRentalPrice", agentID, func(opCtx context.Context, _ string) (ledger.Result, error) {
		if err := s.requireCreator(opCtx, caller, agentID); err != nil {
			return ledger.Result{}, err
		}
		if err := s.agentRepo.UpdatePrice(opCtx, agentID, newPrice); err != nil {
			return ledger.Result{}, err
		}
		s.snapshots.InvalidateAgent(opCtx, agentID)
		return ledger.Result{AgentID: &agentID}, nil
	})
	return receipt, nil
}

func (s *directoryService) UpdateMetadata(ctx context.Context, caller string, agentID int64, category string, traits, expertise []string) (*domain.TxReceipt, error) {
	receipt := s.submitter.Submit("updateMetadata", agentID, func(opCtx context.Context, _ string) (ledger.Result, error) {
		if err := s.requireCreator(opCtx, caller, agentID); err != nil {
			return ledger.Result{}, err
		}
		if err := s.agentRepo.UpdateMetadata(opCtx, agentID, category, traits, expertise); err != nil {
			return ledger.Result{}, err
		}
		s.snapshots.InvalidateAgent(opCtx, agentID)
		return ledger.Result{AgentID: &agentID}, nil
	})
	return receipt, nil
}

func (s *directoryService) DeactivateAgent(ctx context.Context, caller string, agentID int64) (*domain.TxReceipt, error) {
	return s.setActive(caller, agentID, false), nil
}

func (s *directoryService) ReactivateAgent(ctx context.Context, caller string, agentID int64) (*domain.TxReceipt, error) {
	return s.setActive(caller, agentID, true), nil
}

func (s *directoryService) setActive(caller string, agentID int64, active bool) *domain.TxReceipt {
	operation := "deactivateAgent"
	if active {
		operation = "reactivateAgent"
	}
	return s.submitter.Submit(operation, agentID, func(opCtx context.Context, _ string) (ledger.Result, error) {
		if err := s.requireCreator(opCtx, caller, agentID); err != nil {
			return ledger.Result{}, err
		}
		if err := s.agentRepo.SetActive(opCtx, agentID, active); err != nil {
			return ledger.Result{}, err
		}
		s.snapshots.InvalidateAgent(opCtx, agentID)
		return ledger.Result{AgentID: &agentID}, nil
	})
}

// requireCreator re-validates ownership inside the write, not against a
// client snapshot.
func (s *directoryService) requireCreator(ctx context.Context, caller string, agentID int64) error {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(agent.Creator, caller) {
		return domain.ErrNotCreator
	}
	return nil
}

func (s *directoryService) GetTotalAgents(ctx context.Context) (int64, error) {
	return s.agentRepo.Count(ctx)
}

func (s *directoryService) GetAgentDetails(ctx context.Context, id int64) (*domain.Agent, error) {
	if cached := s.snapshots.GetAgent(ctx, id); cached != nil {
		return cached, nil
	}
	agent, err := s.agentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.snapshots.PutAgent(ctx, agent)
	return agent, nil
}

// ListAgents retries transient backend failures with a bounded total wait,
// then degrades to the cached snapshot (or an empty page) instead of
// blocking the caller.
func (s *directoryService) ListAgents(ctx context.Context, activeOnly bool, page, pageSize int32) ([]domain.Agent, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	cacheable := activeOnly && page == 1
	if cacheable {
		if agents, total, ok := s.snapshots.GetListing(ctx); ok {
			return agents, total, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < listRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(listRetryDelay):
			case <-ctx.Done():
				return []domain.Agent{}, 0, nil
			}
		}
		agents, total, err := s.agentRepo.List(ctx, activeOnly, page, pageSize)
		if err == nil {
			if cacheable {
				s.snapshots.PutListing(ctx, agents, total)
			}
			return agents, total, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		lastErr = err
	}

	logger.Warn("Agent listing degraded to empty result", "error", lastErr)
	return []domain.Agent{}, 0, nil
}

func (s *directoryService) GetCreatorAgents(ctx context.Context, creator string) ([]int64, error) {
	return s.agentRepo.ListIDsByCreator(ctx, creator)
}
