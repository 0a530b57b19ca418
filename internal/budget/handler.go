package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/equalify/equalify/pkg/middleware"
	"github.com/equalify/equalify/pkg/response"
)

// Handler handles HTTP requests for budget operations
type Handler struct {
	service *Service
}

// NewHandler creates a new budget handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for budget endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{categoryId}", h.Update)
	r.Post("/{categoryId}/spend", h.RecordSpend)
	r.Delete("/{categoryId}", h.Delete)

	return r
}

// Create handles POST /budgets
// @Summary      Create a budget category
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        request body CreateCategoryRequest true "Category to create"
// @Success      201 {object} response.Envelope{data=CategoryResponse}
// @Failure      400 {object} response.Envelope
// @Router       /budgets [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	category, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create budget category")
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(category))
}

// List handles GET /budgets
// @Summary      List my budget categories
// @Tags         budgets
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]CategoryResponse}
// @Router       /budgets [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	categories, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list budget categories")
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(categories))
}

// Update handles PUT /budgets/{categoryId}
// @Summary      Update a budget category
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        categoryId path int true "Category ID"
// @Param        request body UpdateCategoryRequest true "Fields to update"
// @Success      200 {object} response.Envelope{data=CategoryResponse}
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /budgets/{categoryId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	category, err := h.service.Update(r.Context(), userID, categoryID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update budget category")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(category))
}

// RecordSpend handles POST /budgets/{categoryId}/spend
// @Summary      Record spending against a category
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        categoryId path int true "Category ID"
// @Param        request body RecordSpendRequest true "Amount spent"
// @Success      200 {object} response.Envelope{data=CategoryResponse}
// @Failure      400 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /budgets/{categoryId}/spend [post]
func (h *Handler) RecordSpend(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	var req RecordSpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	category, err := h.service.RecordSpend(r.Context(), userID, categoryID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to record spending")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(category))
}

// Delete handles DELETE /budgets/{categoryId}
// @Summary      Delete a budget category
// @Tags         budgets
// @Produce      json
// @Param        categoryId path int true "Category ID"
// @Success      200 {object} response.Envelope
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /budgets/{categoryId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "categoryId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid category ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, categoryID); err != nil {
		h.writeError(w, err, "Failed to delete budget category")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Budget category deleted successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTaken), errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
