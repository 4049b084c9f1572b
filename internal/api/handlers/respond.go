package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/models"
	"github.com/isdelr/despesas-be/internal/services"
	"github.com/rs/zerolog/log"
)

const msgInternal = "erro interno"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"erro": msg})
}

// writeServiceError maps a service error to its status and client message.
// Anything unrecognised is logged and reported as an opaque 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrCategoryInUse):
		writeError(w, http.StatusBadRequest, "Não é possível excluir uma categoria com despesas")
	case errors.Is(err, services.ErrCategoryNotFound):
		writeError(w, http.StatusBadRequest, "A categoria precisa ser salva antes da despesa.")
	case errors.Is(err, services.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email já cadastrado")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Email ou senha incorretos")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Não encontrado")
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

// decodeBody decodes a JSON request body into dst, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}
	return true
}

// accountID returns the caller's id from the verified claims. Routes using it
// sit behind auth.JWTMiddleware, so a miss is a wiring bug.
func accountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("Could not retrieve user claims from context")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return "", false
	}
	return claims.AccountID, true
}
