//go:generate mockgen -source=admin.go -destination=mock_admin.go -package=admin

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/dto"
	"github.com/GlebRadaev/taskmart/internal/handlers/httpx"
	"github.com/GlebRadaev/taskmart/pkg/utils"
)

type LedgerService interface {
	OpenAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	AdminAdjust(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal, reason string, operatorID int64) (decimal.Decimal, error)
	Recharge(ctx context.Context, merchantID int64, amount decimal.Decimal, externalRef string) (decimal.Decimal, error)
	Reconcile(ctx context.Context, ref domain.AccountRef) (*domain.Reconciliation, error)
}

type WithdrawalService interface {
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error)
	Review(ctx context.Context, id int64, decision domain.Decision, remark string, adminID int64) (*domain.Withdrawal, error)
	BatchReview(ctx context.Context, ids []int64, decision domain.Decision, remark string, adminID int64) (domain.BatchResult, error)
	ConfirmPayment(ctx context.Context, id, adminID int64) (*domain.Withdrawal, error)
}

// AdminHandler serves the back-office routes. Every route requires the
// admin role.
type AdminHandler struct {
	ledgerService     LedgerService
	withdrawalService WithdrawalService
}

func New(ledgerService LedgerService, withdrawalService WithdrawalService) *AdminHandler {
	return &AdminHandler{
		ledgerService:     ledgerService,
		withdrawalService: withdrawalService,
	}
}

// ListWithdrawals godoc
//
//	@Summary		Withdrawal review queue
//	@Description	Withdrawals in the given status, oldest first. Defaults to PENDING.
//	@Tags			Администрирование
//	@Security		BearerAuth
//	@Produce		json
//	@Param			status	query		string	false	"Withdrawal status"	Enums(PENDING, APPROVED_PENDING_TRANSFER, REJECTED, COMPLETED)
//	@Param			limit	query		int		false	"Page size"
//	@Success		200		{array}		dto.WithdrawalResponseDTO
//	@Failure		403		{object}	utils.Response	"Admins only"
//	@Router			/api/admin/withdrawals [get]
func (h *AdminHandler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	status := domain.WithdrawalStatus(strings.ToUpper(r.URL.Query().Get("status")))

	withdrawals, err := h.withdrawalService.ListByStatus(r.Context(), status, httpx.Limit(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalListResponse(withdrawals))
}

// ReviewWithdrawal godoc
//
//	@Summary		Review a withdrawal
//	@Description	Approve moves the request to APPROVED_PENDING_TRANSFER. Reject refunds the debited amount.
//	@Tags			Администрирование
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Withdrawal ID"
//	@Param			request	body		dto.ReviewWithdrawalRequestDTO	true	"Decision"
//	@Success		200		{object}	dto.WithdrawalResponseDTO
//	@Failure		404		{object}	utils.Response	"Withdrawal not found"
//	@Failure		409		{object}	utils.Response	"Already reviewed"
//	@Router			/api/admin/withdrawals/{id}/review [post]
func (h *AdminHandler) ReviewWithdrawal(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid withdrawal id")
		return
	}

	var req dto.ReviewWithdrawalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Decision.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	withdrawal, err := h.withdrawalService.Review(r.Context(), id, req.Decision, req.Remark, actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalResponse(withdrawal))
}

// BatchReview godoc
//
//	@Summary		Review many withdrawals at once
//	@Description	Each id is reviewed on its own; failures do not affect the others.
//	@Tags			Администрирование
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.BatchReviewRequestDTO	true	"Ids and decision"
//	@Success		200		{object}	dto.BatchReviewResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Router			/api/admin/withdrawals/batch-review [post]
func (h *AdminHandler) BatchReview(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)

	var req dto.BatchReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Decision.Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.withdrawalService.BatchReview(r.Context(), req.IDs, req.Decision, req.Remark, actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BatchReviewResponseDTO{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

// ConfirmPayment godoc
//
//	@Summary	Confirm the bank transfer of an approved withdrawal
//	@Tags		Администрирование
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Withdrawal ID"
//	@Success	200	{object}	dto.WithdrawalResponseDTO
//	@Failure	404	{object}	utils.Response	"Withdrawal not found"
//	@Failure	422	{object}	utils.Response	"Withdrawal is not approved"
//	@Router		/api/admin/withdrawals/{id}/confirm [post]
func (h *AdminHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid withdrawal id")
		return
	}

	withdrawal, err := h.withdrawalService.ConfirmPayment(r.Context(), id, actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalResponse(withdrawal))
}

// OpenAccount godoc
//
//	@Summary	Open a ledger account
//	@Tags		Администрирование
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.OpenAccountRequestDTO	true	"Account owner"
//	@Success	201		{object}	dto.AccountResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid owner"
//	@Router		/api/admin/accounts [post]
func (h *AdminHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.ledgerService.OpenAccount(r.Context(), domain.AccountRef{Kind: req.Kind, ID: req.ID})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewAccountResponse(account))
}

// Adjust godoc
//
//	@Summary		Adjust an account field
//	@Description	Manual correction with a mandatory reason. A debit may not take the field below zero.
//	@Tags			Администрирование
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			kind	path		string				true	"Owner kind"	Enums(BUYER, MERCHANT)
//	@Param			id		path		int					true	"Owner ID"
//	@Param			request	body		dto.AdjustRequestDTO	true	"Adjustment"
//	@Success		200		{object}	dto.FieldValueResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid adjustment"
//	@Failure		402		{object}	utils.Response	"Field would go negative"
//	@Router			/api/admin/accounts/{kind}/{id}/adjust [post]
func (h *AdminHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	ref, ok := accountRef(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid account")
		return
	}

	var req dto.AdjustRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value, err := h.ledgerService.AdminAdjust(r.Context(), ref, req.Field, req.Delta, req.Reason, actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FieldValueResponseDTO{Value: value})
}

// Recharge godoc
//
//	@Summary	Credit funds received from outside the platform
//	@Tags		Администрирование
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		kind	path		string					true	"Owner kind"	Enums(MERCHANT)
//	@Param		id		path		int						true	"Merchant ID"
//	@Param		request	body		dto.RechargeRequestDTO	true	"Recharge"
//	@Success	200		{object}	dto.FieldValueResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid recharge"
//	@Router		/api/admin/accounts/{kind}/{id}/recharge [post]
func (h *AdminHandler) Recharge(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(r)
	if !ok || ref.Kind != domain.AccountMerchant {
		utils.RespondWithError(w, http.StatusBadRequest, "only merchant accounts can be recharged")
		return
	}

	var req dto.RechargeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	value, err := h.ledgerService.Recharge(r.Context(), ref.ID, req.Amount, req.ExternalRef)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.FieldValueResponseDTO{Value: value})
}

// Reconcile godoc
//
//	@Summary		Reconcile an account against its finance records
//	@Tags			Администрирование
//	@Security		BearerAuth
//	@Produce		json
//	@Param			kind	path		string	true	"Owner kind"	Enums(BUYER, MERCHANT)
//	@Param			id		path		int		true	"Owner ID"
//	@Success		200		{object}	dto.ReconcileResponseDTO
//	@Failure		404		{object}	utils.Response	"Account not found"
//	@Router			/api/admin/accounts/{kind}/{id}/reconcile [get]
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ref, ok := accountRef(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid account")
		return
	}

	report, err := h.ledgerService.Reconcile(r.Context(), ref)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewReconcileResponse(report))
}

func accountRef(r *http.Request) (domain.AccountRef, bool) {
	kind := domain.AccountKind(strings.ToUpper(chi.URLParam(r, "kind")))
	id, ok := httpx.PathID(r, "id")
	if !ok || !kind.Valid() {
		return domain.AccountRef{}, false
	}
	return domain.AccountRef{Kind: kind, ID: id}, true
}
