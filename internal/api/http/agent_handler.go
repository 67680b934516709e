package http

import (
	"net/http"
	"strconv"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/service"
	"agentforge-backend/internal/utils"

	"github.com/gorilla/mux"
)

// AgentHandler exposes the agent directory: public reads and creator-gated
// writes. Writes return 202 with a pending receipt.
type AgentHandler struct {
	directory service.DirectoryService
	ratings   service.RatingService
}

func NewAgentHandler(directory service.DirectoryService, ratings service.RatingService) *AgentHandler {
	return &AgentHandler{directory: directory, ratings: ratings}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func pageParams(r *http.Request) (int32, int32) {
	page := int32(1)
	pageSize := int32(20)
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 {
		pageSize = int32(v)
	}
	return page, pageSize
}

type createAgentRequest struct {
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	Avatar            string   `json:"avatar"`
	Traits            []string `json:"traits"`
	Expertise         []string `json:"expertise"`
	RentalPriceSei    string   `json:"rental_price_per_day_sei"`
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := utils.ParseSei(req.RentalPriceSei)
	if err != nil {
		writeError(w, domain.ErrInvalidPrice)
		return
	}

	receipt, err := h.directory.CreateAgent(r.Context(), claimsFrom(r).Address, service.CreateAgentParams{
		Name:              req.Name,
		Category:          req.Category,
		Avatar:            req.Avatar,
		Traits:            req.Traits,
		Expertise:         req.Expertise,
		RentalPricePerDay: price,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	activeOnly := r.URL.Query().Get("include_inactive") != "true"

	agents, total, err := h.directory.ListAgents(r.Context(), activeOnly, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paginatedResponse{
		Items:    toAgentResponses(agents),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *AgentHandler) Count(w http.ResponseWriter, r *http.Request) {
	total, err := h.directory.GetTotalAgents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}

	agent, err := h.directory.GetAgentDetails(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAgentResponse(agent))
}

type updatePriceRequest struct {
	RentalPriceSei string `json:"rental_price_per_day_sei"`
}

func (h *AgentHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}
	var req updatePriceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	price, err := utils.ParseSei(req.RentalPriceSei)
	if err != nil {
		writeError(w, domain.ErrInvalidPrice)
		return
	}

	receipt, err := h.directory.UpdateRentalPrice(r.Context(), claimsFrom(r).Address, id, price)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

type updateMetadataRequest struct {
	Category  string   `json:"category"`
	Traits    []string `json:"traits"`
	Expertise []string `json:"expertise"`
}

func (h *AgentHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}
	var req updateMetadataRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.directory.UpdateMetadata(r.Context(), claimsFrom(r).Address, id, req.Category, req.Traits, req.Expertise)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

func (h *AgentHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *AgentHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *AgentHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}

	var receipt *domain.TxReceipt
	var err error
	if active {
		receipt, err = h.directory.ReactivateAgent(r.Context(), claimsFrom(r).Address, id)
	} else {
		receipt, err = h.directory.DeactivateAgent(r.Context(), claimsFrom(r).Address, id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

func (h *AgentHandler) CreatorAgents(w http.ResponseWriter, r *http.Request) {
	ids, err := h.directory.GetCreatorAgents(r.Context(), claimsFrom(r).Address)
	if err != nil {
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"agent_ids": ids})
}

type submitRatingRequest struct {
	Score int32 `json:"score"`
}

func (h *AgentHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}
	var req submitRatingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.ratings.SubmitRating(r.Context(), claimsFrom(r).Address, id, req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toReceiptResponse(receipt))
}

func (h *AgentHandler) ListRatings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}
	page, pageSize := pageParams(r)

	ratings, total, err := h.ratings.ListAgentRatings(r.Context(), id, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	writeJSON(w, http.StatusOK, paginatedResponse{
		Items:    ratings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
