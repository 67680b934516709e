package service

import (
	"context"
	"testing"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/ledger"
	"agentforge-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedClock(unix int64) func() time.Time {
	return func() time.Time { return time.Unix(unix, 0).UTC() }
}

// TestRentalService_RequestRental verifies the split between synchronous
// input validation and asynchronous settlement:
// 1. A malformed duration is rejected immediately, before any broadcast.
// 2. A well-formed request returns a pending receipt and confirms once the
//    backend transaction commits.
// 3. A precondition failure (agent already rented) settles the receipt as
//    failed instead of surfacing an error to the caller.
func TestRentalService_RequestRental(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidDuration", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{
			rentalRepo:     mockRentalRepo,
			submitter:      ledger.NewSubmitter(time.Second),
			platformFeeBps: 250,
			treasury:       "0x00000000000000000000000000000000000000fe",
			now:            fixedClock(1_000_000),
		}

		receipt, err := svc.RequestRental(ctx, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 1, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
		assert.Nil(t, receipt)
		mockRentalRepo.AssertNotCalled(t, "Rent")
	})

	t.Run("Confirmed", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		submitter := ledger.NewSubmitter(time.Second)
		svc := &rentalService{
			rentalRepo:     mockRentalRepo,
			submitter:      submitter,
			platformFeeBps: 250,
			treasury:       "0x00000000000000000000000000000000000000fe",
			now:            fixedClock(1_000_000),
		}

		mockRentalRepo.On("Rent", mock.Anything, mock.MatchedBy(func(p repository.RentAgentParams) bool {
			return p.AgentID == 7 &&
				p.DurationDays == 3 &&
				p.StartTime == 1_000_000 &&
				p.PlatformFeeBps == 250 &&
				p.TxHash != ""
		})).Return(&domain.Rental{ID: 42, AgentID: 7}, nil).Once()

		receipt, err := svc.RequestRental(ctx, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 7, 3)
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusPending, receipt.Status)

		settled, err := submitter.Wait(ctx, receipt.Hash)
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusConfirmed, settled.Status)
		require.NotNil(t, settled.RentalID)
		assert.Equal(t, int64(42), *settled.RentalID)
		mockRentalRepo.AssertExpectations(t)
	})

	t.Run("Failed_AlreadyRented", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		submitter := ledger.NewSubmitter(time.Second)
		svc := &rentalService{
			rentalRepo:     mockRentalRepo,
			submitter:      submitter,
			platformFeeBps: 250,
			treasury:       "0x00000000000000000000000000000000000000fe",
			now:            fixedClock(1_000_000),
		}

		mockRentalRepo.On("Rent", mock.Anything, mock.Anything).
			Return(nil, domain.ErrAlreadyRented).Once()

		receipt, err := svc.RequestRental(ctx, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 7, 3)
		require.NoError(t, err)

		settled, err := submitter.Wait(ctx, receipt.Hash)
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusFailed, settled.Status)
		assert.Contains(t, settled.Error, domain.ErrAlreadyRented.Error())
		mockRentalRepo.AssertExpectations(t)
	})
}

// TestRentalService_HasActiveRental verifies status derivation from the
// latest rental for the pair: no rental, an active one, and one past its
// end time all map to the right answer regardless of the stored status.
func TestRentalService_HasActiveRental(t *testing.T) {
	ctx := context.Background()
	renter := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	t.Run("NoRental", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{rentalRepo: mockRentalRepo, now: fixedClock(1_000_000)}

		mockRentalRepo.On("GetLatestForPair", ctx, int64(7), renter).Return(nil, nil).Once()

		info, err := svc.HasActiveRental(ctx, renter, 7)
		require.NoError(t, err)
		assert.False(t, info.HasRental)
		assert.Nil(t, info.RentalEndTime)
	})

	t.Run("Active", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{rentalRepo: mockRentalRepo, now: fixedClock(1_000_000)}

		rental := &domain.Rental{
			ID:        1,
			AgentID:   7,
			Renter:    renter,
			StartTime: 1_000_000 - domain.SecondsPerDay,
			EndTime:   1_000_000 + 2*domain.SecondsPerDay,
			Status:    domain.RentalStatusActive,
		}
		mockRentalRepo.On("GetLatestForPair", ctx, int64(7), renter).Return(rental, nil).Once()

		info, err := svc.HasActiveRental(ctx, renter, 7)
		require.NoError(t, err)
		assert.True(t, info.HasRental)
		require.NotNil(t, info.RentalEndTime)
		assert.Equal(t, rental.EndTime, *info.RentalEndTime)
		require.NotNil(t, info.RemainingDays)
		assert.Equal(t, int32(2), *info.RemainingDays)
	})

	t.Run("Expired", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{rentalRepo: mockRentalRepo, now: fixedClock(1_000_000)}

		// Sweep has not run yet, so the stored status still says active.
		rental := &domain.Rental{
			ID:        1,
			AgentID:   7,
			Renter:    renter,
			StartTime: 1_000_000 - 3*domain.SecondsPerDay,
			EndTime:   1_000_000 - domain.SecondsPerDay,
			Status:    domain.RentalStatusActive,
		}
		mockRentalRepo.On("GetLatestForPair", ctx, int64(7), renter).Return(rental, nil).Once()

		info, err := svc.HasActiveRental(ctx, renter, 7)
		require.NoError(t, err)
		assert.False(t, info.HasRental)
	})
}

// TestRentalService_ChatGate verifies the capability check behind message
// submission distinguishes "never rented" from "rental expired".
func TestRentalService_ChatGate(t *testing.T) {
	ctx := context.Background()
	renter := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	t.Run("NoRental", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{rentalRepo: mockRentalRepo, now: fixedClock(1_000_000)}

		mockRentalRepo.On("GetLatestForPair", ctx, int64(7), renter).Return(nil, nil).Once()

		access, err := svc.ChatGate(ctx, renter, 7, 1_000_000)
		require.NoError(t, err)
		assert.False(t, access.Allowed)
		assert.Equal(t, domain.ChatDenialNoRental, access.Reason)
	})

	t.Run("Expired", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{rentalRepo: mockRentalRepo, now: fixedClock(1_000_000)}

		rental := &domain.Rental{
			StartTime: 1_000_000 - 2*domain.SecondsPerDay,
			EndTime:   1_000_000 - 10,
		}
		mockRentalRepo.On("GetLatestForPair", ctx, int64(7), renter).Return(rental, nil).Once()

		access, err := svc.ChatGate(ctx, renter, 7, 1_000_000)
		require.NoError(t, err)
		assert.False(t, access.Allowed)
		assert.Equal(t, domain.ChatDenialExpired, access.Reason)
	})

	t.Run("Allowed", func(t *testing.T) {
		mockRentalRepo := new(MockRentalRepo)
		svc := &rentalService{rentalRepo: mockRentalRepo, now: fixedClock(1_000_000)}

		rental := &domain.Rental{
			StartTime: 1_000_000 - 10,
			EndTime:   1_000_000 + domain.SecondsPerDay,
		}
		mockRentalRepo.On("GetLatestForPair", ctx, int64(7), renter).Return(rental, nil).Once()

		access, err := svc.ChatGate(ctx, renter, 7, 1_000_000)
		require.NoError(t, err)
		assert.True(t, access.Allowed)
	})
}
