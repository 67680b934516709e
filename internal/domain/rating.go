package domain

import "time"

const (
	MinRatingScore int32 = 1
	MaxRatingScore int32 = 5
)

// Rating is a 1-5 score tied to exactly one rental. At most one rating per
// rental; submitting one flips the rental's Rated flag in the same
// transaction that folds the score into the agent aggregates.
type Rating struct {
	ID        int64     `json:"id"`
	AgentID   int64     `json:"agent_id"`
	RentalID  int64     `json:"rental_id"`
	Rater     string    `json:"rater"`
	Score     int32     `json:"score"`
	CreatedOn time.Time `json:"created_on"`
}

// ValidScore reports whether a score is within the accepted 1..5 range.
func ValidScore(score int32) bool {
	return score >= MinRatingScore && score <= MaxRatingScore
}
