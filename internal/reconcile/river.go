package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

type ExpireOrderArgs struct {
	OrderID int64 `json:"order_id"`
}

func (ExpireOrderArgs) Kind() string { return "expire_order" }

// ExpireOrderWorker cancels an order when its deadline job fires.
type ExpireOrderWorker struct {
	river.WorkerDefaults[ExpireOrderArgs]
	orders Expirer
}

func NewExpireOrderWorker(orders Expirer) *ExpireOrderWorker {
	return &ExpireOrderWorker{orders: orders}
}

func (w *ExpireOrderWorker) Work(ctx context.Context, job *river.Job[ExpireOrderArgs]) error {
	order, err := w.orders.CancelExpired(ctx, job.Args.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return river.JobCancel(err)
		}
		return err
	}
	if order.Status == domain.OrderClaimed || order.Status == domain.OrderInProgress {
		// Fired early, e.g. clock skew between hosts.
		return river.JobSnooze(time.Until(order.DeadlineAt) + time.Second)
	}
	return nil
}

type jobInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
	InsertTx(ctx context.Context, tx pgx.Tx, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// RiverScheduler enqueues expire_order jobs. Inside a transaction the job is
// inserted with it, so a rolled back claim leaves no job behind.
type RiverScheduler struct {
	client jobInserter
}

func NewRiverScheduler(client jobInserter) *RiverScheduler {
	return &RiverScheduler{client: client}
}

func (s *RiverScheduler) ScheduleExpiry(ctx context.Context, orderID int64, at time.Time) error {
	args := ExpireOrderArgs{OrderID: orderID}
	opts := &river.InsertOpts{ScheduledAt: at}

	var err error
	if tx, ok := pg.TxFromContext(ctx); ok {
		_, err = s.client.InsertTx(ctx, tx, args, opts)
	} else {
		_, err = s.client.Insert(ctx, args, opts)
	}
	if err != nil {
		zap.L().Error("failed to schedule order expiry", zap.Int64("order", orderID), zap.Error(err))
		return err
	}
	return nil
}
