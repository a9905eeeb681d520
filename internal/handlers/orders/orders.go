//go:generate mockgen -source=orders.go -destination=mock_orders.go -package=orders

package orders

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/dto"
	"github.com/GlebRadaev/taskmart/internal/handlers/httpx"
	"github.com/GlebRadaev/taskmart/pkg/utils"
)

type Service interface {
	GetOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	ListSteps(ctx context.Context, actor domain.Actor, orderID int64) ([]domain.OrderStep, error)
	ListBuyerOrders(ctx context.Context, buyerID int64, limit int) ([]domain.Order, error)
	SubmitStep(ctx context.Context, orderID, buyerID int64, stepIndex int, payload json.RawMessage) (*domain.Order, error)
	Cancel(ctx context.Context, orderID, buyerID int64) (*domain.Order, error)
	Review(ctx context.Context, orderID int64, reviewer domain.Actor, decision domain.Decision, reason string) (*domain.Order, error)
}

type OrderHandler struct {
	orderService Service
}

func New(orderService Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// GetOrders godoc
//
//	@Summary		Get orders list for buyer
//	@Description	Retrieve the buyer's orders, newest first.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{array}		dto.OrderResponseDTO
//	@Failure		204		{object}	utils.Response	"No data available"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/orders [get]
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)

	orders, err := h.orderService.ListBuyerOrders(r.Context(), actor.ID, httpx.Limit(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if len(orders) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderListResponse(orders))
}

// GetOrder godoc
//
//	@Summary	Get an order
//	@Tags		Orders
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Order ID"
//	@Success	200	{object}	dto.OrderResponseDTO
//	@Failure	403	{object}	utils.Response	"Order belongs to someone else"
//	@Failure	404	{object}	utils.Response	"Order not found"
//	@Router		/api/orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// GetSteps godoc
//
//	@Summary	List submitted steps of an order
//	@Tags		Orders
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Order ID"
//	@Success	200	{array}		dto.OrderStepResponseDTO
//	@Failure	403	{object}	utils.Response	"Order belongs to someone else"
//	@Failure	404	{object}	utils.Response	"Order not found"
//	@Router		/api/orders/{id}/steps [get]
func (h *OrderHandler) GetSteps(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	steps, err := h.orderService.ListSteps(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderStepsResponse(steps))
}

// SubmitStep godoc
//
//	@Summary		Submit the next step of an order
//	@Description	Steps are submitted strictly in order. Submitting the last step sends the order to review.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Order ID"
//	@Param			request	body		dto.SubmitStepRequestDTO	true	"Step payload"
//	@Success		200		{object}	dto.OrderResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Order belongs to someone else"
//	@Failure		422		{object}	utils.Response	"Wrong step or order state"
//	@Router			/api/orders/{id}/steps [post]
func (h *OrderHandler) SubmitStep(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req dto.SubmitStepRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.SubmitStep(r.Context(), id, actor.ID, req.StepIndex, req.Payload)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// Cancel godoc
//
//	@Summary		Cancel an order
//	@Description	Give up a claimed order. The slot is returned and the merchant's funds are unfrozen.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Order ID"
//	@Success		200	{object}	dto.OrderResponseDTO
//	@Failure		403	{object}	utils.Response	"Order belongs to someone else"
//	@Failure		422	{object}	utils.Response	"Order can no longer be cancelled"
//	@Router			/api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.Cancel(r.Context(), id, actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

// Review godoc
//
//	@Summary		Review a submitted order
//	@Description	Approve pays the buyer out of the frozen funds, reject returns them to the merchant.
//	@Tags			Orders
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Order ID"
//	@Param			request	body		dto.ReviewRequestDTO	true	"Decision"
//	@Success		200		{object}	dto.OrderResponseDTO
//	@Failure		403		{object}	utils.Response	"Not the task owner"
//	@Failure		409		{object}	utils.Response	"Order changed concurrently"
//	@Failure		422		{object}	utils.Response	"Order is not awaiting review"
//	@Router			/api/orders/{id}/review [post]
func (h *OrderHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req dto.ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Decision.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orderService.Review(r.Context(), id, actor, req.Decision, req.Reason)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}
