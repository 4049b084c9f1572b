package handlers

import (
	"net/http"

	"github.com/isdelr/despesas-be/internal/services"
)

// DashboardHandler serves the category-share report.
type DashboardHandler struct {
	expenses services.ExpenseServiceProvider
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(expenses services.ExpenseServiceProvider) *DashboardHandler {
	return &DashboardHandler{expenses: expenses}
}

// Get totals the caller's expenses per category within ?inicio&fim.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := accountID(w, r)
	if !ok {
		return
	}
	window, err := parseDateRange(r)
	if err != nil {
		writeRangeError(w)
		return
	}

	expenses, err := h.expenses.GetExpenses(r.Context(), owner, window)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, services.AggregateByCategory(expenses))
}
