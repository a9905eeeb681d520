package orderrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

const orderColumns = `id, order_no, task_id, buyer_id, merchant_id, principal, commission, silver_reward, frozen_amount,
		current_step, total_steps, status, reason, claim_date, deadline_at, claimed_at,
		started_at, submitted_at, approved_at, completed_at, cancelled_at, rejected_at`

// Statuses that still hold a slot and frozen funds.
var liveStatuses = []string{
	string(domain.OrderClaimed), string(domain.OrderInProgress),
	string(domain.OrderAwaitingReview), string(domain.OrderApproved),
}

var transitionColumn = map[domain.OrderStatus]string{
	domain.OrderInProgress:     "started_at",
	domain.OrderAwaitingReview: "submitted_at",
	domain.OrderApproved:       "approved_at",
	domain.OrderCompleted:      "completed_at",
	domain.OrderCancelled:      "cancelled_at",
	domain.OrderRejected:       "rejected_at",
}

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.OrderNo, &o.TaskID, &o.BuyerID, &o.MerchantID,
		&o.Principal, &o.Commission, &o.SilverReward, &o.FrozenAmount,
		&o.CurrentStep, &o.TotalSteps, &o.Status, &o.Reason, &o.ClaimDate, &o.DeadlineAt, &o.ClaimedAt,
		&o.StartedAt, &o.SubmittedAt, &o.ApprovedAt, &o.CompletedAt, &o.CancelledAt, &o.RejectedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	defer rows.Close()
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			zap.L().Error("can't scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// Create inserts a claimed order. A unique violation means the buyer
// already holds a live order for the task.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (order_no, task_id, buyer_id, merchant_id, principal, commission, silver_reward, frozen_amount,
		                    current_step, total_steps, status, claim_date, deadline_at, claimed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		order.OrderNo, order.TaskID, order.BuyerID, order.MerchantID,
		order.Principal, order.Commission, order.SilverReward, order.FrozenAmount,
		order.CurrentStep, order.TotalSteps, order.Status, order.ClaimDate, order.DeadlineAt, order.ClaimedAt,
	).Scan(&order.ID)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return domain.ErrDuplicateClaim
		}
		zap.L().Error("can't create order", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		zap.L().Error("can't get order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) HasOpenOrder(ctx context.Context, buyerID, taskID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE buyer_id = $1 AND task_id = $2 AND status = ANY($3))`
	var exists bool
	if err := r.db.QueryRow(ctx, query, buyerID, taskID, liveStatuses).Scan(&exists); err != nil {
		zap.L().Error("can't check open order", zap.Error(err))
		return false, err
	}
	return exists, nil
}

// CountMerchantClaims counts the buyer's orders against one merchant on a
// calendar day, ignoring cancelled and rejected ones.
func (r *Repository) CountMerchantClaims(ctx context.Context, buyerID, merchantID int64, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM orders
		WHERE buyer_id = $1 AND merchant_id = $2 AND claim_date = $3
		  AND status NOT IN ('CANCELLED', 'REJECTED')
	`
	var count int
	if err := r.db.QueryRow(ctx, query, buyerID, merchantID, day).Scan(&count); err != nil {
		zap.L().Error("can't count daily claims", zap.Error(err))
		return 0, err
	}
	return count, nil
}

// Transition moves the order to status to if it is currently in one of from,
// stamping the matching timestamp column. A non-empty reason replaces the
// stored one. It returns nil when nothing matched.
func (r *Repository) Transition(ctx context.Context, id int64, from []domain.OrderStatus, to domain.OrderStatus, reason string, at time.Time) (*domain.Order, error) {
	column, ok := transitionColumn[to]
	if !ok {
		return nil, fmt.Errorf("%w: transition to %s", domain.ErrInvalidState, to)
	}
	query := fmt.Sprintf(`
		UPDATE orders
		SET status = $1, %s = $2, reason = COALESCE(NULLIF($3, ''), reason)
		WHERE id = $4 AND status = ANY($5)
		RETURNING `+orderColumns, column)
	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}
	order, err := scanOrder(r.db.QueryRow(ctx, query, to, at, reason, id, statuses))
	if err != nil {
		zap.L().Error("can't transition order", zap.String("to", string(to)), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// AdvanceStep records that step number step was submitted. It only matches
// while the order belongs to buyerID, is CLAIMED or IN_PROGRESS and its
// current step is step-1.
func (r *Repository) AdvanceStep(ctx context.Context, id, buyerID int64, step int, status domain.OrderStatus, at time.Time) (*domain.Order, error) {
	var submittedAt *time.Time
	if status == domain.OrderAwaitingReview {
		submittedAt = &at
	}
	query := `
		UPDATE orders
		SET current_step = $1, status = $2,
		    started_at = COALESCE(started_at, $3),
		    submitted_at = COALESCE($4, submitted_at)
		WHERE id = $5 AND buyer_id = $6 AND current_step = $7
		  AND status IN ('CLAIMED', 'IN_PROGRESS')
		RETURNING ` + orderColumns
	order, err := scanOrder(r.db.QueryRow(ctx, query, step, status, at, submittedAt, id, buyerID, step-1))
	if err != nil {
		zap.L().Error("can't advance order step", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *Repository) SaveStep(ctx context.Context, step *domain.OrderStep) error {
	query := `
		INSERT INTO order_steps (order_id, step_index, payload, submitted_at)
		VALUES ($1, $2, $3, $4)
	`
	payload := step.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if _, err := r.db.Exec(ctx, query, step.OrderID, step.StepIndex, payload, step.SubmittedAt); err != nil {
		if pg.IsUniqueViolation(err) {
			return domain.ErrInvalidStep
		}
		zap.L().Error("can't save order step", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListSteps(ctx context.Context, orderID int64) ([]domain.OrderStep, error) {
	query := `
		SELECT order_id, step_index, payload, submitted_at
		FROM order_steps
		WHERE order_id = $1
		ORDER BY step_index
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		zap.L().Error("can't list order steps", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var steps []domain.OrderStep
	for rows.Next() {
		var s domain.OrderStep
		if err := rows.Scan(&s.OrderID, &s.StepIndex, &s.Payload, &s.SubmittedAt); err != nil {
			zap.L().Error("can't scan order step", zap.Error(err))
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE buyer_id = $1 ORDER BY claimed_at DESC, id DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, buyerID, limit)
	if err != nil {
		zap.L().Error("can't list buyer orders", zap.Error(err))
		return nil, err
	}
	return collectOrders(rows)
}

// FindExpired returns CLAIMED and IN_PROGRESS orders whose deadline passed.
func (r *Repository) FindExpired(ctx context.Context, now time.Time, limit int) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status IN ('CLAIMED', 'IN_PROGRESS') AND deadline_at < $1
		ORDER BY deadline_at
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		zap.L().Error("can't find expired orders", zap.Error(err))
		return nil, err
	}
	return collectOrders(rows)
}
