package http

import (
	"net/http"

	"agentforge-backend/internal/security"
)

// AuthHandler issues API tokens for a wallet address. Signature-based
// wallet verification happens at the gateway in front of this service;
// here the address is taken as the authenticated identity.
type AuthHandler struct {
	tokens security.TokenManager
}

func NewAuthHandler(tokens security.TokenManager) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

type sessionRequest struct {
	Address string `json:"address"`
}

type sessionResponse struct {
	Address      string `json:"address"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := security.NormalizeAddress(req.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	access, err := h.tokens.GenerateAccessToken(address)
	if err != nil {
		writeError(w, err)
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Address:      address,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeBody(w, r, &req) {
		return
	}

	claims, err := h.tokens.ValidateToken(req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	if claims.Type != security.TokenTypeRefresh {
		writeError(w, security.ErrWrongTokenType)
		return
	}

	access, err := h.tokens.GenerateAccessToken(claims.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(claims.Address)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Address:      claims.Address,
		AccessToken:  access,
		RefreshToken: refresh,
	})
}
