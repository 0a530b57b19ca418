package friend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/equalify/equalify/pkg/middleware"
	"github.com/equalify/equalify/pkg/response"
)

// Handler handles HTTP requests for friend and settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new friend handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for friend endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/{friendId}", h.Delete)

	r.Get("/balance", h.TotalBalance)
	r.Get("/debts/owing", h.ListOwing)
	r.Get("/debts/owed", h.ListOwed)

	r.Post("/{friendId}/settle", h.Settle)
	r.Get("/settlements", h.ListSettlements)

	return r
}

// List handles GET /friends
// @Summary      List friends
// @Description  Get all friend records with their running balances
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]FriendResponse}
// @Router       /friends [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list friends")
		return
	}

	response.JSON(w, http.StatusOK, toFriendResponses(friends))
}

// Add handles POST /friends
// @Summary      Add a friend
// @Description  Create a zero-balance friend record, linked to a registered account when the email matches one
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        request body AddFriendRequest true "Friend to add"
// @Success      201 {object} response.Envelope{data=FriendResponse}
// @Failure      400 {object} response.Envelope
// @Router       /friends [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	f, err := h.service.AddFriend(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrEmailRequired) || errors.Is(err, ErrFriendAlreadyAdded) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to add friend")
		return
	}

	response.JSON(w, http.StatusCreated, f.ToResponse())
}

// Delete handles DELETE /friends/{friendId}
// @Summary      Remove a friend
// @Tags         friends
// @Produce      json
// @Param        friendId path int true "Friend record ID"
// @Success      200 {object} response.Envelope
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /friends/{friendId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friendID, err := strconv.ParseInt(chi.URLParam(r, "friendId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid friend ID")
		return
	}

	if err := h.service.DeleteFriend(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, ErrFriendNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete friend")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

// TotalBalance handles GET /friends/balance
// @Summary      Aggregate balance
// @Description  Totals across all friends: owed, owing, and net
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.Envelope{data=BalanceResponse}
// @Router       /friends/balance [get]
func (h *Handler) TotalBalance(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	balance, err := h.service.TotalBalance(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get balance")
		return
	}

	response.JSON(w, http.StatusOK, balance)
}

// ListOwing handles GET /friends/debts/owing
// @Summary      Friends the user owes
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]FriendResponse}
// @Router       /friends/debts/owing [get]
func (h *Handler) ListOwing(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friends, err := h.service.ListOwing(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list debts")
		return
	}

	response.JSON(w, http.StatusOK, toFriendResponses(friends))
}

// ListOwed handles GET /friends/debts/owed
// @Summary      Friends who owe the user
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]FriendResponse}
// @Router       /friends/debts/owed [get]
func (h *Handler) ListOwed(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friends, err := h.service.ListOwed(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list debts")
		return
	}

	response.JSON(w, http.StatusOK, toFriendResponses(friends))
}

// Settle handles POST /friends/{friendId}/settle
// @Summary      Record a settlement
// @Description  Reduce an outstanding balance with a friend; rejected when the amount exceeds the recorded debt
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        friendId path int true "Friend record ID"
// @Param        request body SettleRequest true "Settlement request"
// @Success      200 {object} response.Envelope{data=SettleResult}
// @Failure      400 {object} response.Envelope
// @Failure      403 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /friends/{friendId}/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	friendID, err := strconv.ParseInt(chi.URLParam(r, "friendId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid friend ID")
		return
	}

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Settle(r.Context(), userID, friendID, &req)
	if err != nil {
		var exceeds *ExceedsDebtError
		switch {
		case errors.Is(err, ErrFriendNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(w, err.Error())
		case errors.As(err, &exceeds),
			errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrInvalidDirection),
			errors.Is(err, ErrInvalidReference):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to record settlement")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// ListSettlements handles GET /friends/settlements
// @Summary      List recorded settlements
// @Tags         friends
// @Produce      json
// @Success      200 {object} response.Envelope{data=[]SettlementResponse}
// @Router       /friends/settlements [get]
func (h *Handler) ListSettlements(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	settlements, err := h.service.ListSettlements(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	responses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		responses[i] = s.ToResponse()
	}
	response.JSON(w, http.StatusOK, responses)
}

func toFriendResponses(friends []*Friend) []*FriendResponse {
	responses := make([]*FriendResponse, len(friends))
	for i, f := range friends {
		responses[i] = f.ToResponse()
	}
	return responses
}
