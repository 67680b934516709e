package service

import (
	"context"
	"math/big"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockAgentRepo
type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) Create(ctx context.Context, agent *domain.Agent, creationFee *big.Int, treasury string) error {
	args := m.Called(ctx, agent, creationFee, treasury)
	return args.Error(0)
}
func (m *MockAgentRepo) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}
func (m *MockAgentRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockAgentRepo) List(ctx context.Context, activeOnly bool, page, pageSize int32) ([]domain.Agent, int64, error) {
	args := m.Called(ctx, activeOnly, page, pageSize)
	return args.Get(0).([]domain.Agent), args.Get(1).(int64), args.Error(2)
}
func (m *MockAgentRepo) ListIDsByCreator(ctx context.Context, creator string) ([]int64, error) {
	args := m.Called(ctx, creator)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockAgentRepo) UpdateMetadata(ctx context.Context, id int64, category string, traits, expertise []string) error {
	args := m.Called(ctx, id, category, traits, expertise)
	return args.Error(0)
}
func (m *MockAgentRepo) UpdatePrice(ctx context.Context, id int64, price *big.Int) error {
	args := m.Called(ctx, id, price)
	return args.Error(0)
}
func (m *MockAgentRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Rent(ctx context.Context, params repository.RentAgentParams) (*domain.Rental, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) GetLatestForPair(ctx context.Context, agentID int64, renter string) (*domain.Rental, error) {
	args := m.Called(ctx, agentID, renter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByRenter(ctx context.Context, renter string) ([]domain.Rental, error) {
	args := m.Called(ctx, renter)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListAgentIDsByRenter(ctx context.Context, renter string) ([]int64, error) {
	args := m.Called(ctx, renter)
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockRentalRepo) MarkExpired(ctx context.Context, now int64) ([]domain.Rental, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListExpiredUnrated(ctx context.Context, expiredAfter, expiredBefore int64) ([]domain.Rental, error) {
	args := m.Called(ctx, expiredAfter, expiredBefore)
	return args.Get(0).([]domain.Rental), args.Error(1)
}

// MockRatingRepo
type MockRatingRepo struct {
	mock.Mock
}

func (m *MockRatingRepo) Rate(ctx context.Context, agentID int64, rater string, score int32) (*domain.Agent, *domain.Rating, error) {
	args := m.Called(ctx, agentID, rater, score)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Agent), args.Get(1).(*domain.Rating), args.Error(2)
}
func (m *MockRatingRepo) ListByAgent(ctx context.Context, agentID int64, page, pageSize int32) ([]domain.Rating, int64, error) {
	args := m.Called(ctx, agentID, page, pageSize)
	return args.Get(0).([]domain.Rating), args.Get(1).(int64), args.Error(2)
}

// MockLedgerRepo
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) GetBalance(ctx context.Context, account string) (*big.Int, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}
func (m *MockLedgerRepo) Deposit(ctx context.Context, account string, amount *big.Int, description string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, account, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}
func (m *MockLedgerRepo) ListEntries(ctx context.Context, account string, page, pageSize int32) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, account, page, pageSize)
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}
func (m *MockLedgerRepo) GetSummary(ctx context.Context, account string) (*domain.LedgerSummary, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerSummary), args.Error(1)
}
