//go:generate mockgen -source=tasks.go -destination=mock_tasks.go -package=tasks

package tasks

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
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	ListMerchantTasks(ctx context.Context, merchantID int64) ([]domain.Task, error)
	ChangeTaskStatus(ctx context.Context, merchantID, taskID int64, to domain.TaskStatus) (*domain.Task, error)
	Claim(ctx context.Context, taskID, buyerID int64) (*domain.Order, error)
}

type TaskHandler struct {
	taskService Service
}

func New(taskService Service) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask godoc
//
//	@Summary		Publish a new task
//	@Description	Create a task in DRAFT status. It becomes claimable once activated.
//	@Tags			Задания
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateTaskRequestDTO	true	"Task definition"
//	@Success		201		{object}	dto.TaskResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid task definition"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Merchants only"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/tasks [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)

	var req dto.CreateTaskRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task := req.Task(actor.ID)
	if err := h.taskService.CreateTask(r.Context(), task); err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewTaskResponse(task))
}

// ListTasks godoc
//
//	@Summary		List merchant tasks
//	@Tags			Задания
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TaskResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/tasks [get]
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)

	tasks, err := h.taskService.ListMerchantTasks(r.Context(), actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTaskListResponse(tasks))
}

// GetTask godoc
//
//	@Summary	Get a task
//	@Tags		Задания
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"Task ID"
//	@Success	200	{object}	dto.TaskResponseDTO
//	@Failure	404	{object}	utils.Response	"Task not found"
//	@Router		/api/tasks/{id} [get]
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// ChangeStatus godoc
//
//	@Summary		Change task status
//	@Description	Activate, pause or close a task owned by the merchant.
//	@Tags			Задания
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Task ID"
//	@Param			request	body		dto.ChangeTaskStatusRequestDTO	true	"Target status"
//	@Success		200		{object}	dto.TaskResponseDTO
//	@Failure		403		{object}	utils.Response	"Task belongs to another merchant"
//	@Failure		404		{object}	utils.Response	"Task not found"
//	@Failure		422		{object}	utils.Response	"Transition not allowed"
//	@Router			/api/tasks/{id}/status [post]
func (h *TaskHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req dto.ChangeTaskStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	task, err := h.taskService.ChangeTaskStatus(r.Context(), actor.ID, id, req.Status)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// Claim godoc
//
//	@Summary		Claim a task slot
//	@Description	Reserve one slot of an active task and freeze the merchant's funds for it.
//	@Tags			Задания
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		201	{object}	dto.OrderResponseDTO
//	@Failure		402	{object}	utils.Response	"Merchant cannot fund the slot"
//	@Failure		404	{object}	utils.Response	"Task not found"
//	@Failure		409	{object}	utils.Response	"No slots left or already claimed"
//	@Failure		422	{object}	utils.Response	"Task is not active"
//	@Router			/api/tasks/{id}/claim [post]
func (h *TaskHandler) Claim(w http.ResponseWriter, r *http.Request) {
	actor, _ := httpx.Actor(r)
	id, ok := httpx.PathID(r, "id")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	order, err := h.taskService.Claim(r.Context(), id, actor.ID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewOrderResponse(order))
}
