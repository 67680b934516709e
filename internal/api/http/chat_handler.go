package http

import (
	"net/http"
	"time"

	"agentforge-backend/internal/domain"
	"agentforge-backend/internal/logger"
	"agentforge-backend/internal/security"
	"agentforge-backend/internal/service"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout  = 10 * time.Second
	wsPongTimeout   = 60 * time.Second
	wsPingInterval  = 30 * time.Second
	wsMaxMessageLen = 8192
)

// ChatHandler serves agent conversations over plain HTTP and over a
// websocket. Both paths run the same capability check: only a renter with
// an unexpired rental may talk to the agent.
type ChatHandler struct {
	chats    service.ChatService
	rentals  service.RentalService
	tokens   security.TokenManager
	upgrader websocket.Upgrader
}

func NewChatHandler(chats service.ChatService, rentals service.RentalService, tokens security.TokenManager, allowedOrigins []string) *ChatHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &ChatHandler{
		chats:   chats,
		rentals: rentals,
		tokens:  tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

type chatTurnDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message"`
	History []chatTurnDTO `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type chatDenied struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

func toChatHistory(turns []chatTurnDTO) []domain.ChatTurn {
	history := make([]domain.ChatTurn, 0, len(turns))
	for _, t := range turns {
		role := domain.ChatRoleUser
		if t.Role == string(domain.ChatRoleModel) {
			role = domain.ChatRoleModel
		}
		history = append(history, domain.ChatTurn{Role: role, Content: t.Content})
	}
	return history
}

// Message handles one request/response chat exchange.
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	agentID, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	renter := claimsFrom(r).Address
	access, err := h.rentals.ChatGate(r.Context(), renter, agentID, time.Now().Unix())
	if err != nil {
		writeError(w, err)
		return
	}
	if !access.Allowed {
		writeJSON(w, http.StatusForbidden, chatDenied{
			Error:  "chat requires an active rental",
			Reason: string(access.Reason),
		})
		return
	}

	reply, err := h.chats.Respond(r.Context(), agentID, toChatHistory(req.History), req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

// Stream upgrades to a websocket conversation. Browsers cannot set an
// Authorization header on websocket dials, so the token rides in the query
// string. The rental gate is re-checked on every message: access ends
// mid-conversation the moment the rental expires.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	agentID, ok := pathID(r, "id")
	if !ok {
		writeError(w, domain.ErrAgentNotFound)
		return
	}

	claims, err := h.tokens.ValidateToken(r.URL.Query().Get("token"))
	if err != nil || claims.Type != security.TokenTypeAccess {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessageLen)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	var history []domain.ChatTurn
	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("Websocket closed unexpectedly", "error", err)
			}
			return
		}
		if req.Message == "" {
			continue
		}

		access, err := h.rentals.ChatGate(r.Context(), claims.Address, agentID, time.Now().Unix())
		if err != nil {
			h.writeWS(conn, chatDenied{Error: "chat unavailable", Reason: "internal"})
			continue
		}
		if !access.Allowed {
			h.writeWS(conn, chatDenied{
				Error:  "chat requires an active rental",
				Reason: string(access.Reason),
			})
			return
		}

		reply, err := h.chats.Respond(r.Context(), agentID, history, req.Message)
		if err != nil {
			h.writeWS(conn, chatDenied{Error: "chat unavailable", Reason: "agent_not_found"})
			return
		}

		history = append(history,
			domain.ChatTurn{Role: domain.ChatRoleUser, Content: req.Message},
			domain.ChatTurn{Role: domain.ChatRoleModel, Content: reply},
		)
		h.writeWS(conn, chatResponse{Reply: reply})
	}
}

func (h *ChatHandler) writeWS(conn *websocket.Conn, payload any) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		logger.Debug("Websocket write failed", "error", err)
	}
}

func (h *ChatHandler) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
