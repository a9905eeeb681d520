//go:generate mockgen -source=orderservice.go -destination=mock_orderservice.go -package=orderservice
package orderservice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Repo interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	Transition(ctx context.Context, id int64, from []domain.OrderStatus, to domain.OrderStatus, reason string, at time.Time) (*domain.Order, error)
	AdvanceStep(ctx context.Context, id int64, buyerID int64, step int, status domain.OrderStatus, at time.Time) (*domain.Order, error)
	SaveStep(ctx context.Context, step *domain.OrderStep) error
	ListSteps(ctx context.Context, orderID int64) ([]domain.OrderStep, error)
	ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]domain.Order, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Order, error)
}

type TaskRepo interface {
	ReleaseSlot(ctx context.Context, id int64) (*domain.Task, error)
}

type Ledger interface {
	Release(ctx context.Context, r domain.Release) error
}

type Service struct {
	repo      Repo
	tasks     TaskRepo
	ledger    Ledger
	txManager pg.TXManager
	now       func() time.Time
}

func New(repo Repo, tasks TaskRepo, ledger Ledger, txManager pg.TXManager) *Service {
	return &Service{
		repo:      repo,
		tasks:     tasks,
		ledger:    ledger,
		txManager: txManager,
		now:       time.Now,
	}
}

// SubmitStep records step stepIndex (1-based) of the buyer's order. The first
// step starts the order; the last one sends it to review.
func (s *Service) SubmitStep(ctx context.Context, orderID, buyerID int64, stepIndex int, payload json.RawMessage) (*domain.Order, error) {
	if len(payload) > 0 && !json.Valid(payload) {
		return nil, fmt.Errorf("%w: step payload is not JSON", domain.ErrInvalidInput)
	}

	var updated *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.load(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return domain.ErrForbidden
		}
		if order.Status != domain.OrderClaimed && order.Status != domain.OrderInProgress {
			return fmt.Errorf("%w: order is %s", domain.ErrInvalidState, order.Status)
		}
		now := s.now()
		if now.After(order.DeadlineAt) {
			return fmt.Errorf("%w: order expired", domain.ErrInvalidState)
		}
		if stepIndex != order.CurrentStep+1 || stepIndex > order.TotalSteps {
			return fmt.Errorf("%w: expected step %d of %d", domain.ErrInvalidStep, order.CurrentStep+1, order.TotalSteps)
		}

		status := domain.OrderInProgress
		if stepIndex == order.TotalSteps {
			status = domain.OrderAwaitingReview
		}
		updated, err = s.repo.AdvanceStep(ctx, orderID, buyerID, stepIndex, status, now)
		if err != nil {
			return err
		}
		if updated == nil {
			// Someone else moved the order between the read and the update.
			current, err := s.load(ctx, orderID)
			if err != nil {
				return err
			}
			if current.Status != domain.OrderClaimed && current.Status != domain.OrderInProgress {
				return fmt.Errorf("%w: order is %s", domain.ErrInvalidState, current.Status)
			}
			return domain.ErrInvalidStep
		}

		return s.repo.SaveStep(ctx, &domain.OrderStep{
			OrderID:     orderID,
			StepIndex:   stepIndex,
			Payload:     payload,
			SubmittedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Review settles an order waiting for review. Approval pays the buyer out of
// the merchant's frozen funds; rejection refunds the merchant and frees the slot.
func (s *Service) Review(ctx context.Context, orderID int64, reviewer domain.Actor, decision domain.Decision, reason string) (*domain.Order, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: decision %q", domain.ErrInvalidInput, decision)
	}

	var result *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.load(ctx, orderID)
		if err != nil {
			return err
		}
		if !canReview(reviewer, order) {
			return domain.ErrForbidden
		}

		now := s.now()
		awaiting := []domain.OrderStatus{domain.OrderAwaitingReview}
		if decision == domain.DecisionReject {
			rejected, err := s.repo.Transition(ctx, orderID, awaiting, domain.OrderRejected, reason, now)
			if err != nil {
				return err
			}
			if rejected == nil {
				return s.stale(ctx, orderID)
			}
			result = rejected
			return s.unwind(ctx, rejected, "order "+rejected.OrderNo+" rejected")
		}

		approved, err := s.repo.Transition(ctx, orderID, awaiting, domain.OrderApproved, reason, now)
		if err != nil {
			return err
		}
		if approved == nil {
			return s.stale(ctx, orderID)
		}
		if approved.FrozenAmount.IsPositive() || approved.Commission.IsPositive() || approved.SilverReward.IsPositive() {
			err := s.ledger.Release(ctx, domain.Release{
				MerchantID:    approved.MerchantID,
				Amount:        approved.FrozenAmount,
				Destination:   domain.ReleasePayout,
				BuyerID:       approved.BuyerID,
				Commission:    approved.Commission,
				Silver:        approved.SilverReward,
				CorrelationID: uuid.New(),
				Remark:        "order " + approved.OrderNo + " completed",
			})
			if err != nil {
				return err
			}
		}
		result, err = s.repo.Transition(ctx, orderID, []domain.OrderStatus{domain.OrderApproved}, domain.OrderCompleted, "", now)
		if err != nil {
			return err
		}
		if result == nil {
			return s.stale(ctx, orderID)
		}
		return nil
	})
	if err != nil {
		zap.L().Info("order review refused", zap.Int64("order", orderID), zap.Error(err))
		return nil, err
	}
	zap.L().Info("order reviewed",
		zap.Int64("order", orderID), zap.String("status", string(result.Status)), zap.Int64("reviewer", reviewer.ID))
	return result, nil
}

func (s *Service) Cancel(ctx context.Context, orderID, buyerID int64) (*domain.Order, error) {
	var result *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.load(ctx, orderID)
		if err != nil {
			return err
		}
		if order.BuyerID != buyerID {
			return domain.ErrForbidden
		}
		result, err = s.cancel(ctx, order, "cancelled by buyer")
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelExpired cancels an order whose deadline has passed. It is safe to
// call repeatedly: an order that is already cancelled, was submitted in time
// or has not expired yet is returned unchanged.
func (s *Service) CancelExpired(ctx context.Context, orderID int64) (*domain.Order, error) {
	var result *domain.Order
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		order, err := s.load(ctx, orderID)
		if err != nil {
			return err
		}
		result = order
		if order.Status != domain.OrderClaimed && order.Status != domain.OrderInProgress {
			return nil
		}
		if s.now().Before(order.DeadlineAt) {
			return nil
		}
		cancelled, err := s.cancel(ctx, order, "expired")
		if err != nil {
			return err
		}
		result = cancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListExpired returns open orders past their deadline.
func (s *Service) ListExpired(ctx context.Context, limit int) ([]domain.Order, error) {
	orders, err := s.repo.FindExpired(ctx, s.now(), limit)
	if err != nil {
		zap.L().Error("failed to find expired orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *Service) ListSteps(ctx context.Context, actor domain.Actor, orderID int64) ([]domain.OrderStep, error) {
	order, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	steps, err := s.repo.ListSteps(ctx, order.ID)
	if err != nil {
		zap.L().Error("failed to list order steps", zap.Error(err))
		return nil, err
	}
	return steps, nil
}

func (s *Service) ListBuyerOrders(ctx context.Context, buyerID int64, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	orders, err := s.repo.ListByBuyer(ctx, buyerID, limit)
	if err != nil {
		zap.L().Error("failed to list orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// cancel moves a CLAIMED or IN_PROGRESS order to CANCELLED. A concurrent
// cancellation that got there first counts as success.
func (s *Service) cancel(ctx context.Context, order *domain.Order, reason string) (*domain.Order, error) {
	open := []domain.OrderStatus{domain.OrderClaimed, domain.OrderInProgress}
	cancelled, err := s.repo.Transition(ctx, order.ID, open, domain.OrderCancelled, reason, s.now())
	if err != nil {
		return nil, err
	}
	if cancelled == nil {
		current, err := s.load(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.OrderCancelled {
			return current, nil
		}
		return nil, fmt.Errorf("%w: order is %s", domain.ErrInvalidState, current.Status)
	}
	if err := s.unwind(ctx, cancelled, "order "+cancelled.OrderNo+" "+reason); err != nil {
		return nil, err
	}
	zap.L().Info("order cancelled", zap.Int64("order", order.ID), zap.String("reason", reason))
	return cancelled, nil
}

// unwind returns the slot to the task and the frozen funds to the merchant.
// The task row is locked before the merchant account.
func (s *Service) unwind(ctx context.Context, order *domain.Order, remark string) error {
	if _, err := s.tasks.ReleaseSlot(ctx, order.TaskID); err != nil {
		return err
	}
	if !order.FrozenAmount.IsPositive() {
		return nil
	}
	return s.ledger.Release(ctx, domain.Release{
		MerchantID:    order.MerchantID,
		Amount:        order.FrozenAmount,
		Destination:   domain.ReleaseRefundToBalance,
		CorrelationID: uuid.New(),
		Remark:        remark,
	})
}

func (s *Service) load(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		zap.L().Error("failed to get order", zap.Error(err))
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	return order, nil
}

// stale reports why a conditional transition matched nothing.
func (s *Service) stale(ctx context.Context, orderID int64) error {
	current, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: order is %s", domain.ErrInvalidState, current.Status)
}

func canReview(actor domain.Actor, order *domain.Order) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleMerchant:
		return actor.ID == order.MerchantID
	}
	return false
}

func canView(actor domain.Actor, order *domain.Order) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleMerchant:
		return actor.ID == order.MerchantID
	case domain.RoleBuyer:
		return actor.ID == order.BuyerID
	}
	return false
}
