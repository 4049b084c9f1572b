package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Verifier checks a bearer token and returns its claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// JWTMiddleware creates a middleware for protecting routes. A missing bearer
// credential yields 401; a credential that fails verification yields 403.
func JWTMiddleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "Acesso negado. Faça login.")
				return
			}

			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected session token")
				writeAuthError(w, http.StatusForbidden, "Token inválido")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
// A bare token without the scheme is accepted as well. Any other scheme, such
// as "Basic ...", carries no bearer credential and is treated as missing (401).
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if len(parts) == 1 && !strings.EqualFold(parts[0], "Bearer") {
		return parts[0]
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"erro": msg})
}
