// Package memstore keeps the whole ledger in process memory. It implements
// every repository the services need plus pg.TXManager, so the application
// can run without Postgres. Transactions are serialized by one mutex and
// rolled back by restoring a snapshot.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

type txKey struct{}

type state struct {
	accounts    map[domain.AccountRef]domain.Account
	records     []domain.FinanceRecord
	tasks       map[int64]domain.Task
	orders      map[int64]domain.Order
	steps       map[int64][]domain.OrderStep
	withdrawals map[int64]domain.Withdrawal
	seq         int64
}

func (s *state) clone() *state {
	steps := make(map[int64][]domain.OrderStep, len(s.steps))
	for id, list := range s.steps {
		steps[id] = slices.Clone(list)
	}
	return &state{
		accounts:    maps.Clone(s.accounts),
		records:     slices.Clone(s.records),
		tasks:       maps.Clone(s.tasks),
		orders:      maps.Clone(s.orders),
		steps:       steps,
		withdrawals: maps.Clone(s.withdrawals),
		seq:         s.seq,
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

type Store struct {
	mu sync.Mutex
	st *state
}

func New() *Store {
	return &Store{
		st: &state{
			accounts:    make(map[domain.AccountRef]domain.Account),
			tasks:       make(map[int64]domain.Task),
			orders:      make(map[int64]domain.Order),
			steps:       make(map[int64][]domain.OrderStep),
			withdrawals: make(map[int64]domain.Withdrawal),
		},
	}
}

var _ pg.TXManager = (*Store)(nil)

// Begin runs fn holding the store lock. Nested calls join the outer
// transaction; an error from the outermost fn discards all its writes.
func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// do runs fn against the state, locking unless ctx already holds the lock.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if ctx.Value(txKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.st)
}

func (s *Store) Accounts() *Accounts       { return &Accounts{s} }
func (s *Store) Finance() *Finance         { return &Finance{s} }
func (s *Store) Tasks() *Tasks             { return &Tasks{s} }
func (s *Store) Orders() *Orders           { return &Orders{s} }
func (s *Store) Withdrawals() *Withdrawals { return &Withdrawals{s} }
