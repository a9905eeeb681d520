package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type WithdrawalRequestDTO struct {
	Amount         decimal.Decimal     `json:"amount" swaggertype:"string" example:"100.00"`
	Currency       domain.CurrencyType `json:"currency" swaggertype:"string" enums:"BALANCE,SILVER" example:"BALANCE"`
	BankCardID     int64               `json:"bank_card_id" example:"12"`
	AccountName    string              `json:"account_name" example:"Ivan Petrov"`
	CardNumber     string              `json:"card_number" example:"4111111111111111"`
	IdempotencyKey string              `json:"idempotency_key" example:"c0a8012e-5b1d-4c1e-8a3f-1d2b3c4d5e6f"`
}

func (d WithdrawalRequestDTO) Request(owner domain.AccountRef) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		Owner:    owner,
		Amount:   d.Amount,
		Currency: d.Currency,
		Payout: domain.PayoutDetails{
			BankCardID:  d.BankCardID,
			AccountName: d.AccountName,
			CardNumber:  d.CardNumber,
		},
		IdempotencyKey: d.IdempotencyKey,
	}
}

type WithdrawalResponseDTO struct {
	ID           int64           `json:"id" example:"4"`
	SerialNo     string          `json:"serial_no" example:"W1790000000000000002"`
	OwnerKind    string          `json:"owner_kind" example:"BUYER"`
	OwnerID      int64           `json:"owner_id" example:"3"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"100.00"`
	Fee          decimal.Decimal `json:"fee" swaggertype:"string" example:"0"`
	ActualAmount decimal.Decimal `json:"actual_amount" swaggertype:"string" example:"100.00"`
	Currency     string          `json:"currency" example:"BALANCE"`
	Status       string          `json:"status" example:"PENDING"`
	AccountName  string          `json:"account_name" example:"Ivan Petrov"`
	CardNumber   string          `json:"card_number" example:"************1111"`
	Remark       string          `json:"remark,omitempty"`
	CreatedAt    time.Time       `json:"created_at" example:"2024-05-01T10:00:00Z"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func NewWithdrawalResponse(w *domain.Withdrawal) WithdrawalResponseDTO {
	return WithdrawalResponseDTO{
		ID:           w.ID,
		SerialNo:     w.SerialNo,
		OwnerKind:    string(w.OwnerKind),
		OwnerID:      w.OwnerID,
		Amount:       w.Amount,
		Fee:          w.Fee,
		ActualAmount: w.ActualAmount,
		Currency:     string(w.Currency),
		Status:       string(w.Status),
		AccountName:  w.AccountName,
		CardNumber:   maskCard(w.CardNumber),
		Remark:       w.Remark,
		CreatedAt:    w.CreatedAt,
		ReviewedAt:   w.ReviewedAt,
		CompletedAt:  w.CompletedAt,
	}
}

func NewWithdrawalListResponse(ws []domain.Withdrawal) []WithdrawalResponseDTO {
	resp := make([]WithdrawalResponseDTO, 0, len(ws))
	for i := range ws {
		resp = append(resp, NewWithdrawalResponse(&ws[i]))
	}
	return resp
}

func maskCard(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]byte, len(number))
	for i := range masked {
		masked[i] = '*'
	}
	copy(masked[len(number)-4:], number[len(number)-4:])
	return string(masked)
}

type ReviewWithdrawalRequestDTO struct {
	Decision domain.Decision `json:"decision" swaggertype:"string" enums:"approve,reject" example:"reject"`
	Remark   string          `json:"remark,omitempty" example:"card holder mismatch"`
}

type BatchReviewRequestDTO struct {
	IDs      []int64         `json:"ids" example:"1,2,3"`
	Decision domain.Decision `json:"decision" swaggertype:"string" enums:"approve,reject" example:"approve"`
	Remark   string          `json:"remark,omitempty"`
}

type BatchReviewResponseDTO struct {
	Succeeded int `json:"succeeded" example:"2"`
	Failed    int `json:"failed" example:"1"`
}
