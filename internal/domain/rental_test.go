package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRental(start int64, days int32) *Rental {
	return &Rental{
		ID:           1,
		AgentID:      7,
		Renter:       "0xrenter",
		StartTime:    start,
		EndTime:      start + int64(days)*SecondsPerDay,
		DurationDays: days,
		AmountPaid:   big.NewInt(0),
		Status:       RentalStatusActive,
	}
}

func TestRentalActiveAt(t *testing.T) {
	r := testRental(0, 3)

	assert.True(t, r.ActiveAt(0))
	assert.True(t, r.ActiveAt(100000))
	assert.True(t, r.ActiveAt(r.EndTime-1))
	assert.False(t, r.ActiveAt(r.EndTime))
	assert.False(t, r.ActiveAt(300000))
	assert.False(t, r.ActiveAt(-1), "window has not started yet")
}

func TestRentalRemainingDays(t *testing.T) {
	r := testRental(0, 3)

	tests := []struct {
		now      int64
		expected int32
	}{
		{0, 3},
		{1, 3},
		{86400, 2},
		{100000, 2},
		{172800, 1},
		{259199, 1},
		{259200, 0},
		{300000, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, r.RemainingDays(tt.now), "now=%d", tt.now)
	}
}

func TestRentalRemainingDaysMonotone(t *testing.T) {
	r := testRental(1000, 5)

	prev := r.RemainingDays(0)
	for now := int64(0); now <= r.EndTime+SecondsPerDay; now += 7200 {
		cur := r.RemainingDays(now)
		assert.LessOrEqual(t, cur, prev, "remaining days increased at now=%d", now)
		assert.GreaterOrEqual(t, cur, int32(0))
		prev = cur
	}
}

func TestRentalRateable(t *testing.T) {
	r := testRental(0, 1)
	assert.True(t, r.Rateable())

	// Expiry does not revoke rating eligibility.
	r.Status = RentalStatusExpired
	assert.True(t, r.Rateable())

	r.Rated = true
	assert.False(t, r.Rateable())
}

func TestChatGate(t *testing.T) {
	t.Run("No rental", func(t *testing.T) {
		access := ChatGate(nil, 100)
		assert.False(t, access.Allowed)
		assert.Equal(t, ChatDenialNoRental, access.Reason)
	})

	t.Run("Active rental", func(t *testing.T) {
		access := ChatGate(testRental(0, 3), 100000)
		assert.True(t, access.Allowed)
		assert.Equal(t, ChatDenialNone, access.Reason)
	})

	t.Run("Expired rental", func(t *testing.T) {
		r := testRental(0, 3)
		access := ChatGate(r, 300000)
		assert.False(t, access.Allowed)
		assert.Equal(t, ChatDenialExpired, access.Reason)
	})

	t.Run("Expired rental blocks chat even when unrated", func(t *testing.T) {
		r := testRental(0, 3)
		r.Rated = false
		access := ChatGate(r, r.EndTime)
		assert.False(t, access.Allowed)
		assert.Equal(t, ChatDenialExpired, access.Reason)
	})
}

func TestAgentAverageRating(t *testing.T) {
	a := &Agent{}
	assert.Equal(t, float64(0), a.AverageRating())

	a.RatingSum = 8
	a.RatingCount = 2
	assert.Equal(t, float64(4), a.AverageRating())
}
