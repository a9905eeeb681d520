//go:generate mockgen -source=claimservice.go -destination=mock_claimservice.go -package=claimservice
package claimservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

type TaskRepo interface {
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id int64) (*domain.Task, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Task, error)
	IncrementClaimed(ctx context.Context, id int64) (*domain.Task, error)
	UpdateStatus(ctx context.Context, id int64, merchantID int64, from []domain.TaskStatus, to domain.TaskStatus) (*domain.Task, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]domain.Task, error)
}

type OrderRepo interface {
	Create(ctx context.Context, order *domain.Order) error
	HasOpenOrder(ctx context.Context, buyerID int64, taskID int64) (bool, error)
	CountMerchantClaims(ctx context.Context, buyerID int64, merchantID int64, day time.Time) (int, error)
}

type Ledger interface {
	LockAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	Freeze(ctx context.Context, merchantID int64, amount decimal.Decimal, correlationID uuid.UUID, remark string) error
}

// Scheduler arranges for an order to be expired at its deadline. It is
// called inside the claim transaction.
type Scheduler interface {
	ScheduleExpiry(ctx context.Context, orderID int64, at time.Time) error
}

type NumberGenerator interface {
	Next() string
}

type Config struct {
	OrderTTL       time.Duration
	SilverCashRate decimal.Decimal
	// OneTaskPerMerchantPerDay limits a buyer to one live order per merchant
	// per calendar day.
	OneTaskPerMerchantPerDay bool
}

// Transitions a merchant may request, keyed by target status.
var allowedFrom = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskActive: {domain.TaskDraft, domain.TaskPaused},
	domain.TaskPaused: {domain.TaskActive},
	domain.TaskClosed: {domain.TaskDraft, domain.TaskActive, domain.TaskPaused},
}

type Service struct {
	tasks     TaskRepo
	orders    OrderRepo
	ledger    Ledger
	scheduler Scheduler
	numbers   NumberGenerator
	txManager pg.TXManager
	cfg       Config
	now       func() time.Time
}

func New(tasks TaskRepo, orders OrderRepo, ledger Ledger, scheduler Scheduler, numbers NumberGenerator, txManager pg.TXManager, cfg Config) *Service {
	return &Service{
		tasks:     tasks,
		orders:    orders,
		ledger:    ledger,
		scheduler: scheduler,
		numbers:   numbers,
		txManager: txManager,
		cfg:       cfg,
		now:       time.Now,
	}
}

func cents(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}

func (s *Service) CreateTask(ctx context.Context, task *domain.Task) error {
	if task.Title == "" || task.TotalSlots <= 0 || task.StepCount <= 0 {
		return fmt.Errorf("%w: title, slots and steps are required", domain.ErrInvalidInput)
	}
	if !cents(task.Principal) || !cents(task.Commission) || !cents(task.SilverReward) {
		return fmt.Errorf("%w: amounts must be non-negative with at most two decimals", domain.ErrInvalidInput)
	}
	task.ClaimedSlots = 0
	task.Status = domain.TaskDraft
	task.AutoClosed = false
	if err := s.tasks.Create(ctx, task); err != nil {
		zap.L().Error("failed to create task", zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		zap.L().Error("failed to get task", zap.Error(err))
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotFound, id)
	}
	return task, nil
}

func (s *Service) ListMerchantTasks(ctx context.Context, merchantID int64) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByMerchant(ctx, merchantID)
	if err != nil {
		zap.L().Error("failed to list tasks", zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

// ChangeTaskStatus applies a merchant-driven lifecycle change. A task closed
// by hand stays closed.
func (s *Service) ChangeTaskStatus(ctx context.Context, merchantID, taskID int64, to domain.TaskStatus) (*domain.Task, error) {
	from, ok := allowedFrom[to]
	if !ok {
		return nil, fmt.Errorf("%w: task cannot move to %q", domain.ErrInvalidState, to)
	}
	task, err := s.tasks.UpdateStatus(ctx, taskID, merchantID, from, to)
	if err != nil {
		return nil, err
	}
	if task != nil {
		return task, nil
	}

	current, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	switch {
	case current == nil:
		return nil, fmt.Errorf("%w: task %d", domain.ErrNotFound, taskID)
	case current.MerchantID != merchantID:
		return nil, domain.ErrForbidden
	default:
		return nil, fmt.Errorf("%w: task is %s", domain.ErrInvalidState, current.Status)
	}
}

// Claim reserves one slot of the task for the buyer and freezes the
// merchant's funds for it. Everything happens in one transaction; locks are
// taken buyer account first, then task, then merchant account.
func (s *Service) Claim(ctx context.Context, taskID, buyerID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.LockAccount(ctx, domain.Buyer(buyerID)); err != nil {
			return err
		}

		task, err := s.tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: task %d", domain.ErrNotFound, taskID)
		}
		if !task.HasCapacity() {
			return domain.ErrSlotsExhausted
		}
		if task.Status != domain.TaskActive {
			return fmt.Errorf("%w: task is %s", domain.ErrTaskUnavailable, task.Status)
		}

		open, err := s.orders.HasOpenOrder(ctx, buyerID, taskID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrDuplicateClaim
		}

		now := s.now().UTC()
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if s.cfg.OneTaskPerMerchantPerDay {
			n, err := s.orders.CountMerchantClaims(ctx, buyerID, task.MerchantID, day)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: one task per merchant per day", domain.ErrDuplicateClaim)
			}
		}

		task, err = s.tasks.IncrementClaimed(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.ErrSlotsExhausted
		}

		order = &domain.Order{
			OrderNo:      s.numbers.Next(),
			TaskID:       task.ID,
			BuyerID:      buyerID,
			MerchantID:   task.MerchantID,
			Principal:    task.Principal,
			Commission:   task.Commission,
			SilverReward: task.SilverReward,
			FrozenAmount: s.freezeAmount(task),
			TotalSteps:   task.StepCount,
			Status:       domain.OrderClaimed,
			ClaimDate:    day,
			DeadlineAt:   now.Add(s.cfg.OrderTTL),
			ClaimedAt:    now,
		}

		if order.FrozenAmount.IsPositive() {
			err := s.ledger.Freeze(ctx, task.MerchantID, order.FrozenAmount, uuid.New(), "claim "+order.OrderNo)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// A merchant without an account has nothing to freeze.
					return domain.ErrInsufficientFunds
				}
				return err
			}
		}

		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		if s.scheduler != nil {
			return s.scheduler.ScheduleExpiry(ctx, order.ID, order.DeadlineAt)
		}
		return nil
	})
	if err != nil {
		zap.L().Info("claim refused",
			zap.Int64("task", taskID), zap.Int64("buyer", buyerID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("task claimed",
		zap.Int64("task", taskID), zap.Int64("buyer", buyerID), zap.String("order_no", order.OrderNo))
	return order, nil
}

// freezeAmount is what the merchant commits per slot: principal, commission
// and the cash value of the silver reward.
func (s *Service) freezeAmount(task *domain.Task) decimal.Decimal {
	silverCash := task.SilverReward.Mul(s.cfg.SilverCashRate)
	return task.Principal.Add(task.Commission).Add(silverCash).Round(2)
}
