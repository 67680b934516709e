package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestLedgerService_Deposit verifies that deposits follow the same async
// write path as every other mutation and that non-positive amounts are
// rejected before broadcast.
func TestLedgerService_Deposit(t *testing.T) {
	ctx := context.Background()
	account := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	t.Run("NonPositiveAmount", func(t *testing.T) {
		mockLedgerRepo := new(MockLedgerRepo)
		svc := NewLedgerService(mockLedgerRepo, ledger.NewSubmitter(time.Second))

		for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
			receipt, err := svc.Deposit(ctx, account, amount)
			assert.Error(t, err)
			assert.Nil(t, receipt)
		}
		mockLedgerRepo.AssertNotCalled(t, "Deposit")
	})

	t.Run("Confirmed", func(t *testing.T) {
		mockLedgerRepo := new(MockLedgerRepo)
		submitter := ledger.NewSubmitter(time.Second)
		svc := NewLedgerService(mockLedgerRepo, submitter)

		amount := big.NewInt(1_500_000_000_000_000_000)
		mockLedgerRepo.On("Deposit", mock.Anything, account, amount, "Deposit of 1.5 SEI").
			Return(&domain.LedgerEntry{ID: 1, Account: account, Amount: amount}, nil).Once()

		receipt, err := svc.Deposit(ctx, account, amount)
		require.NoError(t, err)

		settled, err := submitter.Wait(ctx, receipt.Hash)
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusConfirmed, settled.Status)
		mockLedgerRepo.AssertExpectations(t)
	})
}

func TestLedgerService_GetBalance(t *testing.T) {
	ctx := context.Background()
	account := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	mockLedgerRepo := new(MockLedgerRepo)
	svc := NewLedgerService(mockLedgerRepo, ledger.NewSubmitter(time.Second))

	mockLedgerRepo.On("GetBalance", ctx, account).
		Return(big.NewInt(42), nil).Once()

	balance, err := svc.GetBalance(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
	mockLedgerRepo.AssertExpectations(t)
}
