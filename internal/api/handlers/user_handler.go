package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/despesas-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TokenIssuer signs session tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID, name string) (string, error)
}

// UserHandler handles HTTP requests for signup, login and the current account.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  TokenIssuer
	audit   services.AuditRecorder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens TokenIssuer, audit services.AuditRecorder) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, audit: audit}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new account registration.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	account, err := h.service.CreateUser(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			log.Info().Msg("Signup rejected: email already registered")
		}
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), account.ID, services.ActionSignup, account.Email)

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
	})
}

// Login handles authentication and token issuance. Unknown emails and wrong
// passwords get the same response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	account, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Msg("Failed authentication attempt")
		}
		writeServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(account.ID, account.Name)
	if err != nil {
		log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"name":  account.Name,
	})
}

// GetMe returns the account behind the session token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}
