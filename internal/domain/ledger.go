package domain

import (
	"math/big"
	"time"
)

type EntryType string

const (
	EntryTypeDeposit       EntryType = "DEPOSIT"
	EntryTypeRentalDebit   EntryType = "RENTAL_DEBIT"
	EntryTypeCreatorCredit EntryType = "CREATOR_CREDIT"
	EntryTypePlatformFee   EntryType = "PLATFORM_FEE"
	EntryTypeCreationFee   EntryType = "CREATION_FEE"
)

// LedgerEntry is one movement on an account. Amount is positive for credits
// and negative for debits, denominated in wei.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	Account     string    `json:"account"`
	Amount      *big.Int  `json:"amount_wei"`
	Type        EntryType `json:"type"`
	AgentID     *int64    `json:"agent_id,omitempty"`
	RentalID    *int64    `json:"rental_id,omitempty"`
	Description string    `json:"description"`
	CreatedOn   time.Time `json:"created_on"`
}

// LedgerSummary is a per-account rollup for display.
type LedgerSummary struct {
	Account      string   `json:"account"`
	Balance      *big.Int `json:"balance_wei"`
	TotalCredits *big.Int `json:"total_credits_wei"`
	TotalDebits  *big.Int `json:"total_debits_wei"`
	EntryCount   int64    `json:"entry_count"`
}
