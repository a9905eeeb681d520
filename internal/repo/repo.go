package repo

import (
	"github.com/GlebRadaev/taskmart/internal/memstore"
	"github.com/GlebRadaev/taskmart/internal/pg"
	accountrepo "github.com/GlebRadaev/taskmart/internal/repo/account-repo"
	financerepo "github.com/GlebRadaev/taskmart/internal/repo/finance-repo"
	orderrepo "github.com/GlebRadaev/taskmart/internal/repo/order-repo"
	taskrepo "github.com/GlebRadaev/taskmart/internal/repo/task-repo"
	withdrawalrepo "github.com/GlebRadaev/taskmart/internal/repo/withdrawal-repo"
	"github.com/GlebRadaev/taskmart/internal/service/claimservice"
	"github.com/GlebRadaev/taskmart/internal/service/ledgerservice"
	"github.com/GlebRadaev/taskmart/internal/service/orderservice"
	"github.com/GlebRadaev/taskmart/internal/service/withdrawalservice"
)

// TaskRepo is used both when claiming slots and when orders give them back.
type TaskRepo interface {
	claimservice.TaskRepo
	orderservice.TaskRepo
}

type OrderRepo interface {
	claimservice.OrderRepo
	orderservice.Repo
}

type Repositories struct {
	AccountRepo    ledgerservice.AccountRepo
	FinanceRepo    ledgerservice.FinanceRepo
	TaskRepo       TaskRepo
	OrderRepo      OrderRepo
	WithdrawalRepo withdrawalservice.Repo
	TxManager      pg.TXManager
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		AccountRepo:    accountrepo.New(conn),
		FinanceRepo:    financerepo.New(conn),
		TaskRepo:       taskrepo.New(conn),
		OrderRepo:      orderrepo.New(conn),
		WithdrawalRepo: withdrawalrepo.New(conn),
		TxManager:      txManager,
	}
}

// NewInMemory backs every repository with one process-local store. The store
// is also the transaction manager.
func NewInMemory(store *memstore.Store) *Repositories {
	return &Repositories{
		AccountRepo:    store.Accounts(),
		FinanceRepo:    store.Finance(),
		TaskRepo:       store.Tasks(),
		OrderRepo:      store.Orders(),
		WithdrawalRepo: store.Withdrawals(),
		TxManager:      store,
	}
}
