package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

var liveStatuses = []domain.OrderStatus{
	domain.OrderClaimed, domain.OrderInProgress, domain.OrderAwaitingReview, domain.OrderApproved,
}

type Orders struct{ s *Store }

func (o *Orders) Create(ctx context.Context, order *domain.Order) error {
	return o.s.do(ctx, func(st *state) error {
		for _, existing := range st.orders {
			if existing.BuyerID == order.BuyerID && existing.TaskID == order.TaskID &&
				slices.Contains(liveStatuses, existing.Status) {
				return domain.ErrDuplicateClaim
			}
		}
		order.ID = st.nextID()
		st.orders[order.ID] = *order
		return nil
	})
}

func (o *Orders) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var out *domain.Order
	err := o.s.do(ctx, func(st *state) error {
		if order, ok := st.orders[id]; ok {
			out = &order
		}
		return nil
	})
	return out, err
}

func (o *Orders) HasOpenOrder(ctx context.Context, buyerID, taskID int64) (bool, error) {
	var found bool
	err := o.s.do(ctx, func(st *state) error {
		for _, order := range st.orders {
			if order.BuyerID == buyerID && order.TaskID == taskID && slices.Contains(liveStatuses, order.Status) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (o *Orders) CountMerchantClaims(ctx context.Context, buyerID, merchantID int64, day time.Time) (int, error) {
	var n int
	err := o.s.do(ctx, func(st *state) error {
		for _, order := range st.orders {
			if order.BuyerID == buyerID && order.MerchantID == merchantID && order.ClaimDate.Equal(day) &&
				order.Status != domain.OrderCancelled && order.Status != domain.OrderRejected {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (o *Orders) Transition(ctx context.Context, id int64, from []domain.OrderStatus, to domain.OrderStatus, reason string, at time.Time) (*domain.Order, error) {
	var out *domain.Order
	err := o.s.do(ctx, func(st *state) error {
		order, ok := st.orders[id]
		if !ok || !slices.Contains(from, order.Status) {
			return nil
		}
		stamp := at
		switch to {
		case domain.OrderInProgress:
			order.StartedAt = &stamp
		case domain.OrderAwaitingReview:
			order.SubmittedAt = &stamp
		case domain.OrderApproved:
			order.ApprovedAt = &stamp
		case domain.OrderCompleted:
			order.CompletedAt = &stamp
		case domain.OrderCancelled:
			order.CancelledAt = &stamp
		case domain.OrderRejected:
			order.RejectedAt = &stamp
		default:
			return fmt.Errorf("%w: transition to %s", domain.ErrInvalidState, to)
		}
		order.Status = to
		if reason != "" {
			order.Reason = reason
		}
		st.orders[id] = order
		out = &order
		return nil
	})
	return out, err
}

func (o *Orders) AdvanceStep(ctx context.Context, id, buyerID int64, step int, status domain.OrderStatus, at time.Time) (*domain.Order, error) {
	var out *domain.Order
	err := o.s.do(ctx, func(st *state) error {
		order, ok := st.orders[id]
		if !ok || order.BuyerID != buyerID || order.CurrentStep != step-1 ||
			(order.Status != domain.OrderClaimed && order.Status != domain.OrderInProgress) {
			return nil
		}
		stamp := at
		order.CurrentStep = step
		order.Status = status
		if order.StartedAt == nil {
			order.StartedAt = &stamp
		}
		if status == domain.OrderAwaitingReview {
			order.SubmittedAt = &stamp
		}
		st.orders[id] = order
		out = &order
		return nil
	})
	return out, err
}

func (o *Orders) SaveStep(ctx context.Context, step *domain.OrderStep) error {
	return o.s.do(ctx, func(st *state) error {
		for _, existing := range st.steps[step.OrderID] {
			if existing.StepIndex == step.StepIndex {
				return domain.ErrInvalidStep
			}
		}
		st.steps[step.OrderID] = append(st.steps[step.OrderID], *step)
		return nil
	})
}

func (o *Orders) ListSteps(ctx context.Context, orderID int64) ([]domain.OrderStep, error) {
	var out []domain.OrderStep
	err := o.s.do(ctx, func(st *state) error {
		out = slices.Clone(st.steps[orderID])
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StepIndex < out[j].StepIndex })
	return out, err
}

func (o *Orders) ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]domain.Order, error) {
	out, err := o.filter(ctx, func(order domain.Order) bool { return order.BuyerID == buyerID })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (o *Orders) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Order, error) {
	out, err := o.filter(ctx, func(order domain.Order) bool {
		return (order.Status == domain.OrderClaimed || order.Status == domain.OrderInProgress) &&
			order.DeadlineAt.Before(now)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DeadlineAt.Before(out[j].DeadlineAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (o *Orders) filter(ctx context.Context, keep func(domain.Order) bool) ([]domain.Order, error) {
	var out []domain.Order
	err := o.s.do(ctx, func(st *state) error {
		for _, order := range st.orders {
			if keep(order) {
				out = append(out, order)
			}
		}
		return nil
	})
	return out, err
}
