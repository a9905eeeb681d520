//go:generate mockgen -source=withdrawals.go -destination=mock_withdrawals.go -package=withdrawals

package withdrawals

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
	Request(ctx context.Context, req domain.WithdrawalRequest) (*domain.Withdrawal, error)
	Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Withdrawal, error)
	ListOwnerWithdrawals(ctx context.Context, owner domain.AccountRef, limit int) ([]domain.Withdrawal, error)
}

type WithdrawalHandler struct {
	withdrawalService Service
}

func New(withdrawalService Service) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

// Withdraw godoc
//
//	@Summary		Request a withdrawal
//	@Description	Debit the amount immediately and queue the request for review.
//	@Description	Repeating a request with the same idempotency key returns the original withdrawal.
//	@Tags			Вывод средств
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawalRequestDTO	true	"Withdrawal request payload"
//	@Success		201		{object}	dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request"
//	@Failure		402		{object}	utils.Response	"Insufficient balance"
//	@Failure		409		{object}	utils.Response	"Idempotency key reused"
//	@Failure		422		{object}	utils.Response	"Amount below minimum"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/withdrawals [post]
func (h *WithdrawalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	ref, ok := owner(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req dto.WithdrawalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if key := r.Header.Get("Idempotency-Key"); key != "" && req.IdempotencyKey == "" {
		req.IdempotencyKey = key
	}

	withdrawal, err := h.withdrawalService.Request(r.Context(), req.Request(ref))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewWithdrawalResponse(withdrawal))
}

// GetWithdrawals godoc
//
//	@Summary		Get withdrawals
//	@Description	Retrieve the caller's withdrawal requests, newest first.
//	@Tags			Вывод средств
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Success		200		{array}		dto.WithdrawalResponseDTO
//	@Failure		204		{object}	utils.Response	"No withdrawals found"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/withdrawals [get]
func (h *WithdrawalHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	ref, ok := owner(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	withdrawals, err := h.withdrawalService.ListOwnerWithdrawals(r.Context(), ref, httpx.Limit(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if len(withdrawals) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No withdrawals found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalListResponse(withdrawals))
}

// GetWithdrawal godoc
//
//	@Summary	Get a withdrawal
//	@Tags		Вывод средств
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Withdrawal ID"
//	@Success	200	{object}	dto.WithdrawalResponseDTO
//	@Failure	403	{object}	utils.Response	"Withdrawal belongs to someone else"
//	@Failure	404	{object}	utils.Response	"Withdrawal not found"
//	@Router		/api/withdrawals/{id} [get]
func (h *WithdrawalHandler) GetWithdrawal(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid withdrawal id")
		return
	}

	withdrawal, err := h.withdrawalService.Get(r.Context(), actor, id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalResponse(withdrawal))
}

func owner(r *http.Request) (domain.AccountRef, bool) {
	actor, ok := httpx.Actor(r)
	if !ok {
		return domain.AccountRef{}, false
	}
	return actor.Account()
}
