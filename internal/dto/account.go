package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type AccountResponseDTO struct {
	Kind          string          `json:"kind" example:"MERCHANT"`
	ID            int64           `json:"id" example:"7"`
	Balance       decimal.Decimal `json:"balance" swaggertype:"string" example:"895.00"`
	FrozenBalance decimal.Decimal `json:"frozen_balance" swaggertype:"string" example:"105.00"`
	Silver        decimal.Decimal `json:"silver" swaggertype:"string" example:"0"`
}

func NewAccountResponse(a *domain.Account) AccountResponseDTO {
	return AccountResponseDTO{
		Kind:          string(a.Kind),
		ID:            a.ID,
		Balance:       a.Balance,
		FrozenBalance: a.FrozenBalance,
		Silver:        a.Silver,
	}
}

type FinanceRecordResponseDTO struct {
	ID            int64           `json:"id" example:"31"`
	Field         string          `json:"field" example:"frozen_balance"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"105.00"`
	BalanceAfter  decimal.Decimal `json:"balance_after" swaggertype:"string" example:"105.00"`
	FinanceType   string          `json:"finance_type" example:"TASK_FREEZE"`
	CorrelationID string          `json:"correlation_id" example:"2f6c0d8e-7f0a-4a55-9d7b-0b8f6f1d1c11"`
	Remark        string          `json:"remark,omitempty"`
	CreatedAt     time.Time       `json:"created_at" example:"2024-05-01T10:00:00Z"`
}

func NewFinanceRecordsResponse(records []domain.FinanceRecord) []FinanceRecordResponseDTO {
	resp := make([]FinanceRecordResponseDTO, 0, len(records))
	for _, r := range records {
		resp = append(resp, FinanceRecordResponseDTO{
			ID:            r.ID,
			Field:         string(r.Field),
			Amount:        r.Amount,
			BalanceAfter:  r.BalanceAfter,
			FinanceType:   string(r.FinanceType),
			CorrelationID: r.CorrelationID.String(),
			Remark:        r.Remark,
			CreatedAt:     r.CreatedAt,
		})
	}
	return resp
}
