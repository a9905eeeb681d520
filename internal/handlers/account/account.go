//go:generate mockgen -source=account.go -destination=mock_account.go -package=account

package account

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/dto"
	"github.com/GlebRadaev/taskmart/internal/handlers/httpx"
	"github.com/GlebRadaev/taskmart/pkg/utils"
)

type Service interface {
	GetAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	ListRecords(ctx context.Context, ref domain.AccountRef, limit int) ([]domain.FinanceRecord, error)
}

type AccountHandler struct {
	ledgerService Service
}

func New(ledgerService Service) *AccountHandler {
	return &AccountHandler{
		ledgerService: ledgerService,
	}
}

// GetAccount godoc
//
//	@Summary		Get current balances
//	@Description	Spendable balance, frozen balance and silver of the caller's account.
//	@Tags			Баланс
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.AccountResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Account not opened yet"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/account [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ref, ok := owner(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	account, err := h.ledgerService.GetAccount(r.Context(), ref)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAccountResponse(account))
}

// GetRecords godoc
//
//	@Summary	List finance records
//	@Tags		Баланс
//	@Security	BearerAuth
//	@Produce	json
//	@Param		limit	query		int	false	"Page size"
//	@Success	200		{array}		dto.FinanceRecordResponseDTO
//	@Failure	401		{object}	utils.Response	"User not authorized"
//	@Failure	500		{object}	utils.Response	"Internal server error"
//	@Router		/api/account/records [get]
func (h *AccountHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	ref, ok := owner(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Forbidden")
		return
	}

	records, err := h.ledgerService.ListRecords(r.Context(), ref, httpx.Limit(r))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewFinanceRecordsResponse(records))
}

func owner(r *http.Request) (domain.AccountRef, bool) {
	actor, ok := httpx.Actor(r)
	if !ok {
		return domain.AccountRef{}, false
	}
	return actor.Account()
}
