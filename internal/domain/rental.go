package domain

import (
	"math/big"
	"time"
)

// SecondsPerDay is the fixed length of one rental day.
const SecondsPerDay int64 = 86400

type RentalStatus string

const (
	RentalStatusActive  RentalStatus = "ACTIVE"
	RentalStatusExpired RentalStatus = "EXPIRED"
)

// Rental is one renter's paid access window to one agent. EndTime is fixed
// at creation (StartTime + DurationDays*86400); there is no extension. The
// Status column is sweep bookkeeping; access control always derives from
// ActiveAt, never from Status.
type Rental struct {
	ID           int64        `json:"id"`
	AgentID      int64        `json:"agent_id"`
	Renter       string       `json:"renter"`
	StartTime    int64        `json:"start_time"`
	EndTime      int64        `json:"end_time"`
	DurationDays int32        `json:"duration_days"`
	AmountPaid   *big.Int     `json:"amount_paid_wei"`
	Rated        bool         `json:"rated"`
	Status       RentalStatus `json:"status"`
	TxHash       string       `json:"tx_hash"`
	CreatedOn    time.Time    `json:"created_on"`
}

// ActiveAt reports whether the rental window covers the given unix time.
func (r *Rental) ActiveAt(now int64) bool {
	return now >= r.StartTime && now < r.EndTime
}

// RemainingDays returns ceil((EndTime-now)/86400), floored at zero once the
// rental has expired. Display and renewal-prompt use only.
func (r *Rental) RemainingDays(now int64) int32 {
	if now >= r.EndTime {
		return 0
	}
	left := r.EndTime - now
	return int32((left + SecondsPerDay - 1) / SecondsPerDay)
}

// Rateable reports whether a rating may still be submitted against this
// rental. Expiry does not revoke rating eligibility; only a prior rating
// does.
func (r *Rental) Rateable() bool {
	return !r.Rated
}

// ChatDenialReason distinguishes "never rented" from "rental ran out" so the
// caller can surface the right message.
type ChatDenialReason string

const (
	ChatDenialNone     ChatDenialReason = ""
	ChatDenialNoRental ChatDenialReason = "no_rental"
	ChatDenialExpired  ChatDenialReason = "rental_expired"
)

// ChatAccess is the result of the chat capability check.
type ChatAccess struct {
	Allowed bool             `json:"allowed"`
	Reason  ChatDenialReason `json:"reason,omitempty"`
}

// ChatGate derives chat access from the renter's latest rental for an agent.
// A nil rental means the renter never held one.
func ChatGate(r *Rental, now int64) ChatAccess {
	if r == nil {
		return ChatAccess{Allowed: false, Reason: ChatDenialNoRental}
	}
	if r.ActiveAt(now) {
		return ChatAccess{Allowed: true}
	}
	return ChatAccess{Allowed: false, Reason: ChatDenialExpired}
}
