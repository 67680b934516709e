package http

import (
	"net/http"

	"agentforge-backend/internal/config"
	"agentforge-backend/internal/security"
	"agentforge-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth   *AuthHandler
	Agents *AgentHandler
	Rental *RentalHandler
	Chat   *ChatHandler
	Ledger *LedgerHandler
	Tx     *TxHandler
}

func NewHandlers(
	tokens security.TokenManager,
	directory service.DirectoryService,
	rentals service.RentalService,
	ratings service.RatingService,
	chats service.ChatService,
	ledger service.LedgerService,
	txs service.TxService,
	allowedOrigins []string,
) *Handlers {
	return &Handlers{
		Auth:   NewAuthHandler(tokens),
		Agents: NewAgentHandler(directory, ratings),
		Rental: NewRentalHandler(rentals),
		Chat:   NewChatHandler(chats, rentals, tokens, allowedOrigins),
		Ledger: NewLedgerHandler(ledger),
		Tx:     NewTxHandler(txs),
	}
}

// NewRouter mounts all routes under /api/v1. Directory reads and receipt
// lookups are public; everything acting as a wallet requires a bearer
// token.
func NewRouter(h *Handlers, tokens security.TokenManager, cfg *config.Config) http.Handler {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public surface.
	api.HandleFunc("/auth/session", h.Auth.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/agents", h.Agents.List).Methods(http.MethodGet)
	api.HandleFunc("/agents/count", h.Agents.Count).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id:[0-9]+}", h.Agents.Get).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id:[0-9]+}/ratings", h.Agents.ListRatings).Methods(http.MethodGet)
	api.HandleFunc("/tx/{hash:0x[0-9a-f]+}", h.Tx.Get).Methods(http.MethodGet)
	api.HandleFunc("/tx/{hash:0x[0-9a-f]+}/wait", h.Tx.Wait).Methods(http.MethodGet)

	// The websocket carries its token in the query string.
	api.HandleFunc("/agents/{id:[0-9]+}/chat/ws", h.Chat.Stream).Methods(http.MethodGet)

	// Authenticated surface.
	auth := api.NewRoute().Subrouter()
	auth.Use(AuthMiddleware(tokens))
	auth.HandleFunc("/agents", h.Agents.Create).Methods(http.MethodPost)
	auth.HandleFunc("/agents/{id:[0-9]+}/price", h.Agents.UpdatePrice).Methods(http.MethodPut)
	auth.HandleFunc("/agents/{id:[0-9]+}/metadata", h.Agents.UpdateMetadata).Methods(http.MethodPut)
	auth.HandleFunc("/agents/{id:[0-9]+}/deactivate", h.Agents.Deactivate).Methods(http.MethodPost)
	auth.HandleFunc("/agents/{id:[0-9]+}/reactivate", h.Agents.Reactivate).Methods(http.MethodPost)
	auth.HandleFunc("/agents/{id:[0-9]+}/rent", h.Rental.Rent).Methods(http.MethodPost)
	auth.HandleFunc("/agents/{id:[0-9]+}/rental-status", h.Rental.Status).Methods(http.MethodGet)
	auth.HandleFunc("/agents/{id:[0-9]+}/ratings", h.Agents.SubmitRating).Methods(http.MethodPost)
	auth.HandleFunc("/agents/{id:[0-9]+}/chat", h.Chat.Message).Methods(http.MethodPost)
	auth.HandleFunc("/me/agents", h.Agents.CreatorAgents).Methods(http.MethodGet)
	auth.HandleFunc("/me/rented-agents", h.Rental.RentedAgents).Methods(http.MethodGet)
	auth.HandleFunc("/me/rentals", h.Rental.List).Methods(http.MethodGet)
	auth.HandleFunc("/me/balance", h.Ledger.Balance).Methods(http.MethodGet)
	auth.HandleFunc("/me/deposit", h.Ledger.Deposit).Methods(http.MethodPost)
	auth.HandleFunc("/me/ledger", h.Ledger.Entries).Methods(http.MethodGet)
	auth.HandleFunc("/me/ledger/summary", h.Ledger.Summary).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
