package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/equalify/equalify/internal/expense/split"
	"github.com/equalify/equalify/internal/friend"
	"github.com/equalify/equalify/pkg/middleware"
	"github.com/equalify/equalify/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/recent", h.ListRecent)
	r.Get("/summary", h.SplitSummary)
	r.Get("/monthly", h.MonthlySpending)
	r.Get("/group/{groupId}", h.ListByGroup)
	r.Get("/{expenseId}", h.GetByID)
	r.Post("/{expenseId}/settle", h.Settle)
	r.Delete("/{expenseId}", h.Delete)

	return r
}

// Create handles POST /expenses
// @Summary      Create an expense
// @Description  Create an expense, split it across participants and update pairwise balances
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense to create"
// @Success      201 {object} response.Envelope{data=ExpenseResponse}
// @Failure      400 {object} response.Envelope
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, ToResponse(expense))
}

// GetByID handles GET /expenses/{expenseId}
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        expenseId path int true "Expense ID"
// @Success      200 {object} response.Envelope{data=ExpenseResponse}
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /expenses/{expenseId} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "expenseId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	expense, err := h.service.Get(r.Context(), userID, expenseID)
	if err != nil {
		h.writeError(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(expense))
}

// Delete handles DELETE /expenses/{expenseId}
// @Summary      Delete an expense
// @Description  Reverse the expense's balance updates and remove it
// @Tags         expenses
// @Produce      json
// @Param        expenseId path int true "Expense ID"
// @Success      200 {object} response.Envelope
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Failure      409 {object} response.Envelope
// @Router       /expenses/{expenseId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "expenseId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	if err := h.service.Delete(r.Context(), userID, expenseID); err != nil {
		h.writeError(w, err, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// Settle handles POST /expenses/{expenseId}/settle
// @Summary      Mark an expense settled
// @Description  Flip the expense's settle flag; friend balances are not changed
// @Tags         expenses
// @Produce      json
// @Param        expenseId path int true "Expense ID"
// @Success      200 {object} response.Envelope{data=ExpenseResponse}
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Failure      409 {object} response.Envelope
// @Router       /expenses/{expenseId}/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	expenseID, err := strconv.ParseInt(chi.URLParam(r, "expenseId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	expense, err := h.service.Settle(r.Context(), userID, expenseID)
	if err != nil {
		h.writeError(w, err, "Failed to settle expense")
		return
	}

	response.JSON(w, http.StatusOK, ToResponse(expense))
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List group expenses
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.Envelope{data=[]ExpenseResponse}
// @Failure      403 {object} response.Envelope
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	expenses, err := h.service.ListByGroup(r.Context(), userID, groupID)
	if err != nil {
		h.writeError(w, err, "Failed to list group expenses")
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(expenses))
}

// ListRecent handles GET /expenses/recent
// @Summary      List recent expenses
// @Description  The ten newest expenses the caller paid for or participates in
// @Tags         expenses
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]ExpenseResponse}
// @Router       /expenses/recent [get]
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	expenses, err := h.service.ListRecent(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list recent expenses")
		return
	}

	response.JSON(w, http.StatusOK, ToResponseList(expenses))
}

// SplitSummary handles GET /expenses/summary
// @Summary      Split summary
// @Description  Totals of what the caller paid versus what their shares add up to
// @Tags         expenses
// @Produce      json
// @Success      200 {object} response.Envelope{data=SplitSummaryResponse}
// @Router       /expenses/summary [get]
func (h *Handler) SplitSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	summary, err := h.service.SplitSummary(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get split summary")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// MonthlySpending handles GET /expenses/monthly
// @Summary      Monthly spending
// @Description  Per-month totals of expenses the caller paid for
// @Tags         expenses
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]MonthlySpendingResponse}
// @Router       /expenses/monthly [get]
func (h *Handler) MonthlySpending(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	months, err := h.service.MonthlySpending(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get monthly spending")
		return
	}

	response.JSON(w, http.StatusOK, months)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	var mismatch *split.MismatchError
	switch {
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotGroupMember), errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrNotInvolved):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrAlreadySettled):
		response.Conflict(w, err.Error())
	case errors.Is(err, friend.ErrNegativeBalance):
		response.Conflict(w, "Cannot reverse expense: a balance it contributed to was already settled")
	case errors.As(err, &mismatch):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrDescriptionMissing), errors.Is(err, ErrPayerNotListed),
		errors.Is(err, split.ErrNoParticipants), errors.Is(err, split.ErrInvalidAmount),
		errors.Is(err, split.ErrDuplicateParticipant), errors.Is(err, split.ErrMissingAmount),
		errors.Is(err, split.ErrNegativeShare), errors.Is(err, split.ErrUnknownMode):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
