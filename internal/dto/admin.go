package dto

import (
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type OpenAccountRequestDTO struct {
	Kind domain.AccountKind `json:"kind" swaggertype:"string" enums:"BUYER,MERCHANT" example:"MERCHANT"`
	ID   int64              `json:"id" example:"7"`
}

type AdjustRequestDTO struct {
	Field  domain.Field    `json:"field" swaggertype:"string" enums:"balance,frozen_balance,silver" example:"balance"`
	Delta  decimal.Decimal `json:"delta" swaggertype:"string" example:"-15.50"`
	Reason string          `json:"reason" example:"chargeback #118"`
}

type RechargeRequestDTO struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"1000.00"`
	ExternalRef string          `json:"external_ref" example:"pay_8f2a1c"`
}

type FieldValueResponseDTO struct {
	Value decimal.Decimal `json:"value" swaggertype:"string" example:"984.50"`
}

type ReconcileResponseDTO struct {
	Account  AccountResponseDTO         `json:"account"`
	Recorded map[string]decimal.Decimal `json:"recorded" swaggertype:"object"`
	Balanced bool                       `json:"balanced" example:"true"`
}

func NewReconcileResponse(r *domain.Reconciliation) ReconcileResponseDTO {
	recorded := make(map[string]decimal.Decimal, len(r.Recorded))
	for f, v := range r.Recorded {
		recorded[string(f)] = v
	}
	return ReconcileResponseDTO{
		Account:  NewAccountResponse(&r.Account),
		Recorded: recorded,
		Balanced: r.Balanced(),
	}
}
