package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/despesas-be/internal/services"
)

// CategoryHandler handles HTTP requests for the shared category list.
type CategoryHandler struct {
	service services.CategoryServiceProvider
	audit   services.AuditRecorder
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider, audit services.AuditRecorder) *CategoryHandler {
	return &CategoryHandler{service: service, audit: audit}
}

type categoryPayload struct {
	Name string `json:"name"`
}

// GetAll handles the request to list categories.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAllCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Create handles the request to create a category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := accountID(w, r)
	if !ok {
		return
	}
	var payload categoryPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), payload.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), caller, services.ActionCategoryCreate, category.Name)

	writeJSON(w, http.StatusCreated, category)
}

// Update handles the request to rename a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := accountID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var payload categoryPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, payload.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), caller, services.ActionCategoryUpdate, category.Name)

	writeJSON(w, http.StatusOK, category)
}

// Delete handles the request to delete a category. Categories that still
// have expenses are refused.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := accountID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.audit.Record(r.Context(), caller, services.ActionCategoryDelete, id)

	w.WriteHeader(http.StatusNoContent)
}
