package http

import (
	"net/http"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/service"
	"agentforge-backend/internal/utils"
)

type LedgerHandler struct {
	ledger service.LedgerService
}

func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	account := claimsFrom(r).Address
	balance, err := h.ledger.GetBalance(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"account":     account,
		"balance_wei": balance.String(),
		"balance_sei": utils.FormatSei(balance),
	})
}

type depositRequest struct {
	AmountSei string `json:"amount_sei"`
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := utils.ParseSei(req.AmountSei)
	if err != nil {
		writeError(w, domain.ErrInvalidPrice)
		return
	}

	receipt, err := h.ledger.Deposit(r.Context(), claimsFrom(r).Address, amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

func (h *LedgerHandler) Entries(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	entries, total, err := h.ledger.ListEntries(r.Context(), claimsFrom(r).Address, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paginatedResponse{
		Items:    toLedgerEntryResponses(entries),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.GetSummary(r.Context(), claimsFrom(r).Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account":           summary.Account,
		"balance_wei":       summary.Balance.String(),
		"total_credits_wei": summary.TotalCredits.String(),
		"total_debits_wei":  summary.TotalDebits.String(),
		"entry_count":       summary.EntryCount,
	})
}
