package domain

import "time"

type TxStatus string

const (
	TxStatusPending   TxStatus = "PENDING"
	TxStatusConfirmed TxStatus = "CONFIRMED"
	TxStatusFailed    TxStatus = "FAILED"
)

// TxReceipt tracks one submitted write through its observable states:
// pending until the backend applies or rejects it, then confirmed or failed.
// A failed receipt carries the reason; confirmed receipts carry the id of
// the resource the write produced, when there is one.
type TxReceipt struct {
	Hash        string     `json:"hash"`
	Operation   string     `json:"operation"`
	Status      TxStatus   `json:"status"`
	Error       string     `json:"error,omitempty"`
	AgentID     *int64     `json:"agent_id,omitempty"`
	RentalID    *int64     `json:"rental_id,omitempty"`
	SubmittedOn time.Time  `json:"submitted_on"`
	ResolvedOn  *time.Time `json:"resolved_on,omitempty"`
}

// Settled reports whether the transaction has left the pending state.
func (r *TxReceipt) Settled() bool {
	return r.Status == TxStatusConfirmed || r.Status == TxStatusFailed
}
