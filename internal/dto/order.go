package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type SubmitStepRequestDTO struct {
	StepIndex int             `json:"step_index" example:"1"`
	Payload   json.RawMessage `json:"payload" swaggertype:"object"`
}

type ReviewRequestDTO struct {
	Decision domain.Decision `json:"decision" swaggertype:"string" enums:"approve,reject" example:"approve"`
	Reason   string          `json:"reason,omitempty" example:"screenshot missing"`
}

type OrderResponseDTO struct {
	ID           int64           `json:"id" example:"15"`
	OrderNo      string          `json:"order_no" example:"T1790000000000000001"`
	TaskID       int64           `json:"task_id" example:"1"`
	BuyerID      int64           `json:"buyer_id" example:"3"`
	MerchantID   int64           `json:"merchant_id" example:"7"`
	Principal    decimal.Decimal `json:"principal" swaggertype:"string" example:"100.00"`
	Commission   decimal.Decimal `json:"commission" swaggertype:"string" example:"5.00"`
	SilverReward decimal.Decimal `json:"silver_reward" swaggertype:"string" example:"2.00"`
	FrozenAmount decimal.Decimal `json:"frozen_amount" swaggertype:"string" example:"105.00"`
	CurrentStep  int             `json:"current_step" example:"1"`
	TotalSteps   int             `json:"total_steps" example:"3"`
	Status       string          `json:"status" example:"IN_PROGRESS"`
	Reason       string          `json:"reason,omitempty"`
	DeadlineAt   time.Time       `json:"deadline_at" example:"2024-05-01T12:00:00Z"`
	ClaimedAt    time.Time       `json:"claimed_at" example:"2024-05-01T10:00:00Z"`
	SubmittedAt  *time.Time      `json:"submitted_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

func NewOrderResponse(o *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		TaskID:       o.TaskID,
		BuyerID:      o.BuyerID,
		MerchantID:   o.MerchantID,
		Principal:    o.Principal,
		Commission:   o.Commission,
		SilverReward: o.SilverReward,
		FrozenAmount: o.FrozenAmount,
		CurrentStep:  o.CurrentStep,
		TotalSteps:   o.TotalSteps,
		Status:       string(o.Status),
		Reason:       o.Reason,
		DeadlineAt:   o.DeadlineAt,
		ClaimedAt:    o.ClaimedAt,
		SubmittedAt:  o.SubmittedAt,
		CompletedAt:  o.CompletedAt,
	}
}

func NewOrderListResponse(orders []domain.Order) []OrderResponseDTO {
	resp := make([]OrderResponseDTO, 0, len(orders))
	for i := range orders {
		resp = append(resp, NewOrderResponse(&orders[i]))
	}
	return resp
}

type OrderStepResponseDTO struct {
	StepIndex   int             `json:"step_index" example:"1"`
	Payload     json.RawMessage `json:"payload" swaggertype:"object"`
	SubmittedAt time.Time       `json:"submitted_at" example:"2024-05-01T10:30:00Z"`
}

func NewOrderStepsResponse(steps []domain.OrderStep) []OrderStepResponseDTO {
	resp := make([]OrderStepResponseDTO, 0, len(steps))
	for _, s := range steps {
		resp = append(resp, OrderStepResponseDTO{
			StepIndex:   s.StepIndex,
			Payload:     s.Payload,
			SubmittedAt: s.SubmittedAt,
		})
	}
	return resp
}
