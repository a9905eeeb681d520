package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type CreateTaskRequestDTO struct {
	Title        string          `json:"title" example:"Buy and review a kettle"`
	TotalSlots   int             `json:"total_slots" example:"10"`
	StepCount    int             `json:"step_count" example:"3"`
	Principal    decimal.Decimal `json:"principal" swaggertype:"string" example:"100.00"`
	Commission   decimal.Decimal `json:"commission" swaggertype:"string" example:"5.00"`
	SilverReward decimal.Decimal `json:"silver_reward" swaggertype:"string" example:"2.00"`
}

func (d CreateTaskRequestDTO) Task(merchantID int64) *domain.Task {
	return &domain.Task{
		MerchantID:   merchantID,
		Title:        d.Title,
		TotalSlots:   d.TotalSlots,
		StepCount:    d.StepCount,
		Principal:    d.Principal,
		Commission:   d.Commission,
		SilverReward: d.SilverReward,
	}
}

type ChangeTaskStatusRequestDTO struct {
	Status domain.TaskStatus `json:"status" swaggertype:"string" enums:"ACTIVE,PAUSED,CLOSED" example:"ACTIVE"`
}

type TaskResponseDTO struct {
	ID           int64           `json:"id" example:"1"`
	MerchantID   int64           `json:"merchant_id" example:"7"`
	Title        string          `json:"title" example:"Buy and review a kettle"`
	TotalSlots   int             `json:"total_slots" example:"10"`
	ClaimedSlots int             `json:"claimed_slots" example:"4"`
	StepCount    int             `json:"step_count" example:"3"`
	Principal    decimal.Decimal `json:"principal" swaggertype:"string" example:"100.00"`
	Commission   decimal.Decimal `json:"commission" swaggertype:"string" example:"5.00"`
	SilverReward decimal.Decimal `json:"silver_reward" swaggertype:"string" example:"2.00"`
	Status       string          `json:"status" example:"ACTIVE"`
	CreatedAt    time.Time       `json:"created_at" example:"2024-05-01T10:00:00Z"`
}

func NewTaskResponse(t *domain.Task) TaskResponseDTO {
	return TaskResponseDTO{
		ID:           t.ID,
		MerchantID:   t.MerchantID,
		Title:        t.Title,
		TotalSlots:   t.TotalSlots,
		ClaimedSlots: t.ClaimedSlots,
		StepCount:    t.StepCount,
		Principal:    t.Principal,
		Commission:   t.Commission,
		SilverReward: t.SilverReward,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
	}
}

func NewTaskListResponse(tasks []domain.Task) []TaskResponseDTO {
	resp := make([]TaskResponseDTO, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, NewTaskResponse(&tasks[i]))
	}
	return resp
}
