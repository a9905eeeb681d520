package service

import (
	"fmt"

	"github.com/GlebRadaev/taskmart/internal/config"
	"github.com/GlebRadaev/taskmart/internal/handlers/account"
	"github.com/GlebRadaev/taskmart/internal/handlers/admin"
	"github.com/GlebRadaev/taskmart/internal/handlers/orders"
	"github.com/GlebRadaev/taskmart/internal/handlers/tasks"
	"github.com/GlebRadaev/taskmart/internal/handlers/withdrawals"
	"github.com/GlebRadaev/taskmart/internal/reconcile"
	"github.com/GlebRadaev/taskmart/internal/repo"
	"github.com/GlebRadaev/taskmart/internal/service/claimservice"
	"github.com/GlebRadaev/taskmart/internal/service/ledgerservice"
	"github.com/GlebRadaev/taskmart/internal/service/orderservice"
	"github.com/GlebRadaev/taskmart/internal/service/withdrawalservice"
	"github.com/GlebRadaev/taskmart/pkg/gen"
)

type LedgerService interface {
	account.Service
	admin.LedgerService
}

type WithdrawalService interface {
	withdrawals.Service
	admin.WithdrawalService
}

// OrderService serves the order routes and is driven by expiry.
type OrderService interface {
	orders.Service
	reconcile.Expirer
}

type Services struct {
	TaskService       tasks.Service
	OrderService      OrderService
	LedgerService     LedgerService
	WithdrawalService WithdrawalService
}

// New wires the services over repos. scheduler may be nil, in which case
// expired orders are left to the periodic sweep.
func New(repos *repo.Repositories, cfg *config.Config, scheduler claimservice.Scheduler) (*Services, error) {
	orderNumbers, err := gen.NewSerial(cfg.SnowflakeNode, "T")
	if err != nil {
		return nil, fmt.Errorf("failed to create order number generator: %w", err)
	}
	withdrawalNumbers, err := gen.NewSerial(cfg.SnowflakeNode, "W")
	if err != nil {
		return nil, fmt.Errorf("failed to create withdrawal number generator: %w", err)
	}

	ledgerService := ledgerservice.New(repos.AccountRepo, repos.FinanceRepo, repos.TxManager)
	taskService := claimservice.New(repos.TaskRepo, repos.OrderRepo, ledgerService, scheduler, orderNumbers, repos.TxManager,
		claimservice.Config{
			OrderTTL:                 cfg.OrderTTL,
			SilverCashRate:           cfg.SilverCashRate,
			OneTaskPerMerchantPerDay: cfg.OneTaskPerMerchantPerDay,
		})
	orderService := orderservice.New(repos.OrderRepo, repos.TaskRepo, ledgerService, repos.TxManager)
	withdrawalService := withdrawalservice.New(repos.WithdrawalRepo, ledgerService, withdrawalNumbers, repos.TxManager,
		withdrawalservice.Config{
			MinCash:          cfg.MinCashWithdrawal,
			MinSilver:        cfg.MinSilverWithdrawal,
			CashFeeRate:      cfg.CashFeeRate,
			SilverFeeRate:    cfg.SilverFeeRate,
			BatchConcurrency: cfg.BatchReviewConcurrency,
		})

	return &Services{
		TaskService:       taskService,
		OrderService:      orderService,
		LedgerService:     ledgerService,
		WithdrawalService: withdrawalService,
	}, nil
}
