package http

import (
	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/utils"
)

// Wei amounts cross the wire as decimal strings: JSON numbers cannot carry
// 78-digit integers without loss.

type agentResponse struct {
	ID                int64    `json:"id"`
	Creator           string   `json:"creator"`
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	Avatar            string   `json:"avatar,omitempty"`
	Traits            []string `json:"traits"`
	Expertise         []string `json:"expertise"`
	RentalPriceWei    string   `json:"rental_price_per_day_wei"`
	RentalPriceSei    string   `json:"rental_price_per_day_sei"`
	IsActive          bool     `json:"is_active"`
	TotalRentals      int64    `json:"total_rentals"`
	TotalEarningsWei  string   `json:"total_earnings_wei"`
	AverageRating     float64  `json:"average_rating"`
	RatingCount       int64    `json:"rating_count"`
	CreatedOn         int64    `json:"created_on"`
}

func toAgentResponse(a *domain.Agent) agentResponse {
	return agentResponse{
		ID:               a.ID,
		Creator:          a.Creator,
		Name:             a.Name,
		Category:         a.Category,
		Avatar:           a.Avatar,
		Traits:           a.Traits,
		Expertise:        a.Expertise,
		RentalPriceWei:   a.RentalPricePerDay.String(),
		RentalPriceSei:   utils.FormatSei(a.RentalPricePerDay),
		IsActive:         a.IsActive,
		TotalRentals:     a.TotalRentals,
		TotalEarningsWei: a.TotalEarnings.String(),
		AverageRating:    a.AverageRating(),
		RatingCount:      a.RatingCount,
		CreatedOn:        a.CreatedOn.Unix(),
	}
}

func toAgentResponses(agents []domain.Agent) []agentResponse {
	out := make([]agentResponse, 0, len(agents))
	for i := range agents {
		out = append(out, toAgentResponse(&agents[i]))
	}
	return out
}

type rentalResponse struct {
	ID            int64  `json:"id"`
	AgentID       int64  `json:"agent_id"`
	Renter        string `json:"renter"`
	StartTime     int64  `json:"start_time"`
	EndTime       int64  `json:"end_time"`
	DurationDays  int32  `json:"duration_days"`
	AmountPaidWei string `json:"amount_paid_wei"`
	Rated         bool   `json:"rated"`
	Status        string `json:"status"`
	TxHash        string `json:"tx_hash"`
}

func toRentalResponse(r *domain.Rental) rentalResponse {
	return rentalResponse{
		ID:            r.ID,
		AgentID:       r.AgentID,
		Renter:        r.Renter,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		DurationDays:  r.DurationDays,
		AmountPaidWei: r.AmountPaid.String(),
		Rated:         r.Rated,
		Status:        string(r.Status),
		TxHash:        r.TxHash,
	}
}

func toRentalResponses(rentals []domain.Rental) []rentalResponse {
	out := make([]rentalResponse, 0, len(rentals))
	for i := range rentals {
		out = append(out, toRentalResponse(&rentals[i]))
	}
	return out
}

type receiptResponse struct {
	Hash        string `json:"hash"`
	Operation   string `json:"operation"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	AgentID     *int64 `json:"agent_id,omitempty"`
	RentalID    *int64 `json:"rental_id,omitempty"`
	SubmittedOn int64  `json:"submitted_on"`
	ResolvedOn  *int64 `json:"resolved_on,omitempty"`
}

func toReceiptResponse(r *domain.TxReceipt) receiptResponse {
	resp := receiptResponse{
		Hash:        r.Hash,
		Operation:   r.Operation,
		Status:      string(r.Status),
		Error:       r.Error,
		AgentID:     r.AgentID,
		RentalID:    r.RentalID,
		SubmittedOn: r.SubmittedOn.Unix(),
	}
	if r.ResolvedOn != nil {
		resolved := r.ResolvedOn.Unix()
		resp.ResolvedOn = &resolved
	}
	return resp
}

type ledgerEntryResponse struct {
	ID          int64  `json:"id"`
	Account     string `json:"account"`
	AmountWei   string `json:"amount_wei"`
	Type        string `json:"type"`
	AgentID     *int64 `json:"agent_id,omitempty"`
	RentalID    *int64 `json:"rental_id,omitempty"`
	Description string `json:"description"`
	CreatedOn   int64  `json:"created_on"`
}

func toLedgerEntryResponses(entries []domain.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		out = append(out, ledgerEntryResponse{
			ID:          e.ID,
			Account:     e.Account,
			AmountWei:   e.Amount.String(),
			Type:        string(e.Type),
			AgentID:     e.AgentID,
			RentalID:    e.RentalID,
			Description: e.Description,
			CreatedOn:   e.CreatedOn.Unix(),
		})
	}
	return out
}

type paginatedResponse struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}
