//go:generate mockgen -source=sweeper.go -destination=mock_sweeper.go -package=reconcile
package reconcile

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/taskmart/internal/config"
	"github.com/GlebRadaev/taskmart/internal/domain"
)

// Expirer is the part of the order state machine the reconciliation pass drives.
type Expirer interface {
	ListExpired(ctx context.Context, limit int) ([]domain.Order, error)
	CancelExpired(ctx context.Context, orderID int64) (*domain.Order, error)
}

// Sweeper periodically cancels orders left open past their deadline.
type Sweeper struct {
	orders     Expirer
	workerPool WorkerPoolI
	limit      int
	interval   time.Duration
	inFlight   sync.Map
}

func NewSweeper(cfg *config.Config, orders Expirer) *Sweeper {
	return &Sweeper{
		orders:     orders,
		workerPool: NewWorkerPool(cfg.ReconcileWorkers),
		limit:      cfg.ReconcileBatch,
		interval:   cfg.ReconcileInterval,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	zap.L().Info("reconciliation sweep started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.workerPool.Close()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping reconciliation sweep")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep cancels one batch of expired orders. Orders still being handled by
// the previous pass are skipped.
func (s *Sweeper) sweep(ctx context.Context) {
	orders, err := s.orders.ListExpired(ctx, s.limit)
	if err != nil {
		zap.L().Error("failed to fetch expired orders", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, order := range orders {
		if _, loaded := s.inFlight.LoadOrStore(order.ID, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddJob(ctx, func() error {
				defer s.inFlight.Delete(order.ID)
				_, err := s.orders.CancelExpired(ctx, order.ID)
				return err
			})
			if err != nil {
				s.inFlight.Delete(order.ID)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("error dispatching expired orders", zap.Error(err))
	}
}
