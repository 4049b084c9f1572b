package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/despesas-be/internal/models"
	"github.com/isdelr/despesas-be/internal/services"
)

// ExpenseHandler handles HTTP requests for the caller's expenses.
type ExpenseHandler struct {
	service services.ExpenseServiceProvider
	audit   services.AuditRecorder
	now     func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(service services.ExpenseServiceProvider, audit services.AuditRecorder) *ExpenseHandler {
	return &ExpenseHandler{service: service, audit: audit, now: time.Now}
}

// ExpensePayload defines the structure for expense create and update requests.
type ExpensePayload struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	CategoryID  string  `json:"categoryId"`
	Date        string  `json:"date"`
}

// GetAll lists the caller's expenses, optionally within ?inicio&fim.
func (h *ExpenseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}
	window, err := parseDateRange(r)
	if err != nil {
		writeRangeError(w)
		return
	}

	expenses, err := h.service.GetExpenses(r.Context(), owner, window)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Create records a new expense for the caller. A missing date means now.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}
	var payload ExpensePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	date := h.now()
	if payload.Date != "" {
		parsed, err := parseBodyDate(payload.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Data inválida")
			return
		}
		date = parsed
	}

	expense, err := models.NewExpense(payload.Description, payload.Amount, payload.CategoryID, date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	created, err := h.service.CreateExpense(r.Context(), expense, owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), owner, services.ActionExpenseCreate, describe(created))

	writeJSON(w, http.StatusCreated, created)
}

// Update replaces every field of an expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := accountID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var payload ExpensePayload
	if !decodeBody(w, r, &payload) {
		return
	}

	var date time.Time
	if payload.Date != "" {
		parsed, err := parseBodyDate(payload.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Data inválida")
			return
		}
		date = parsed
	}

	updated, err := h.service.UpdateExpense(r.Context(), id, payload.Description, payload.Amount, payload.CategoryID, date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), caller, services.ActionExpenseUpdate, describe(updated))

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := accountID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), caller, services.ActionExpenseDelete, id)

	w.WriteHeader(http.StatusNoContent)
}

func describe(e models.Expense) string {
	return fmt.Sprintf("%s (%.2f)", e.Description, e.Amount)
}
