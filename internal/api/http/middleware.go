package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"agentforge-backend/internal/logger"
	"agentforge-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "wallet_claims"

// AuthMiddleware validates the bearer token and stores the wallet claims on
// the request context. Handlers read the address from the claims and pass
// it to services explicitly.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, err)
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, security.ErrWrongTokenType)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFrom returns the authenticated wallet claims, or nil on routes that
// skipped the auth middleware.
func claimsFrom(r *http.Request) *security.WalletClaims {
	claims, _ := r.Context().Value(claimsContextKey).(*security.WalletClaims)
	return claims
}

// LoggingMiddleware logs each request with its duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
