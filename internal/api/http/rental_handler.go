package http

import (
	"net/http"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/service"
)

type RentalHandler struct {
	rentals service.RentalService
}

func NewRentalHandler(rentals service.RentalService) *RentalHandler {
	return &RentalHandler{rentals: rentals}
}

type rentAgentRequest struct {
	DurationDays int32 `json:"duration_days"`
}

// Rent submits a rental request. The 202 response carries the pending
// receipt; payment and availability settle asynchronously.
func (h *RentalHandler) Rent(w http.ResponseWriter, r *http.Request) {
	agentID, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}
	var req rentAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.rentals.RequestRental(r.Context(), claimsFrom(r).Address, agentID, req.DurationDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

func (h *RentalHandler) Status(w http.ResponseWriter, r *http.Request) {
	agentID, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}

	info, err := h.rentals.HasActiveRental(r.Context(), claimsFrom(r).Address, agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *RentalHandler) RentedAgents(w http.ResponseWriter, r *http.Request) {
	ids, err := h.rentals.GetUserRentedAgents(r.Context(), claimsFrom(r).Address)
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"agent_ids": ids})
}

func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentals.ListRentals(r.Context(), claimsFrom(r).Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]rentalResponse{"rentals": toRentalResponses(rentals)})
}
