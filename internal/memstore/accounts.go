package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type Accounts struct{ s *Store }

func (a *Accounts) Create(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	var out domain.Account
	err := a.s.do(ctx, func(st *state) error {
		acc, ok := st.accounts[ref]
		if !ok {
			now := time.Now()
			acc = domain.Account{Kind: ref.Kind, ID: ref.ID, CreatedAt: now, UpdatedAt: now}
			st.accounts[ref] = acc
		}
		out = acc
		return nil
	})
	return &out, err
}

func (a *Accounts) Get(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	var out *domain.Account
	err := a.s.do(ctx, func(st *state) error {
		if acc, ok := st.accounts[ref]; ok {
			out = &acc
		}
		return nil
	})
	return out, err
}

// GetForUpdate is Get: holding the store lock already excludes other writers.
func (a *Accounts) GetForUpdate(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	return a.Get(ctx, ref)
}

func (a *Accounts) AddToField(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal) (*domain.Account, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: field %q", domain.ErrInvalidInput, field)
	}
	var out *domain.Account
	err := a.s.do(ctx, func(st *state) error {
		acc, ok := st.accounts[ref]
		if !ok {
			return nil
		}
		next := acc.Value(field).Add(delta)
		if next.IsNegative() {
			return nil
		}
		setField(&acc, field, next)
		acc.UpdatedAt = time.Now()
		st.accounts[ref] = acc
		out = &acc
		return nil
	})
	return out, err
}

func (a *Accounts) Move(ctx context.Context, ref domain.AccountRef, from, to domain.Field, amount decimal.Decimal) (*domain.Account, error) {
	if !from.Valid() || !to.Valid() || from == to {
		return nil, fmt.Errorf("%w: move %q to %q", domain.ErrInvalidInput, from, to)
	}
	var out *domain.Account
	err := a.s.do(ctx, func(st *state) error {
		acc, ok := st.accounts[ref]
		if !ok || acc.Value(from).LessThan(amount) {
			return nil
		}
		setField(&acc, from, acc.Value(from).Sub(amount))
		setField(&acc, to, acc.Value(to).Add(amount))
		acc.UpdatedAt = time.Now()
		st.accounts[ref] = acc
		out = &acc
		return nil
	})
	return out, err
}

func setField(acc *domain.Account, field domain.Field, v decimal.Decimal) {
	switch field {
	case domain.FieldBalance:
		acc.Balance = v
	case domain.FieldFrozenBalance:
		acc.FrozenBalance = v
	case domain.FieldSilver:
		acc.Silver = v
	}
}

type Finance struct{ s *Store }

func (f *Finance) Append(ctx context.Context, record *domain.FinanceRecord) error {
	return f.s.do(ctx, func(st *state) error {
		record.ID = st.nextID()
		record.CreatedAt = time.Now()
		st.records = append(st.records, *record)
		return nil
	})
}

func (f *Finance) ListByOwner(ctx context.Context, ref domain.AccountRef, limit int) ([]domain.FinanceRecord, error) {
	var out []domain.FinanceRecord
	err := f.s.do(ctx, func(st *state) error {
		for _, rec := range slices.Backward(st.records) {
			if len(out) == limit {
				break
			}
			if rec.OwnerKind == ref.Kind && rec.OwnerID == ref.ID {
				out = append(out, rec)
			}
		}
		return nil
	})
	return out, err
}

func (f *Finance) SumByOwner(ctx context.Context, ref domain.AccountRef) (map[domain.Field]decimal.Decimal, error) {
	sums := map[domain.Field]decimal.Decimal{
		domain.FieldBalance:       decimal.Zero,
		domain.FieldFrozenBalance: decimal.Zero,
		domain.FieldSilver:        decimal.Zero,
	}
	err := f.s.do(ctx, func(st *state) error {
		for _, rec := range st.records {
			if rec.OwnerKind == ref.Kind && rec.OwnerID == ref.ID {
				sums[rec.Field] = sums[rec.Field].Add(rec.Amount)
			}
		}
		return nil
	})
	return sums, err
}
