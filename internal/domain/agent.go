package domain

import (
	"math/big"
	"time"
)

// Agent is a listed, rentable AI personality. Aggregate counters
// (TotalRentals, TotalEarnings, RatingSum, RatingCount) are only mutated
// through the rental and rating flows, never directly by a caller.
type Agent struct {
	ID                int64     `json:"id"`
	Creator           string    `json:"creator"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Avatar            string    `json:"avatar"`
	Traits            []string  `json:"traits"`
	Expertise         []string  `json:"expertise"`
	RentalPricePerDay *big.Int  `json:"rental_price_per_day_wei"`
	IsActive          bool      `json:"is_active"`
	TotalRentals      int64     `json:"total_rentals"`
	TotalEarnings     *big.Int  `json:"total_earnings_wei"`
	RatingSum         int64     `json:"rating_sum"`
	RatingCount       int64     `json:"rating_count"`
	CreatedOn         time.Time `json:"created_on"`
	UpdatedOn         time.Time `json:"updated_on"`
}

// AverageRating derives the running average from the stored sum and count.
// Storing the sum keeps the fold order-independent: scores [3,5] average to
// 4 no matter which was submitted first.
func (a *Agent) AverageRating() float64 {
	if a.RatingCount == 0 {
		return 0
	}
	return float64(a.RatingSum) / float64(a.RatingCount)
}
