package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type Withdrawals struct{ s *Store }

func (w *Withdrawals) Create(ctx context.Context, wd *domain.Withdrawal) error {
	return w.s.do(ctx, func(st *state) error {
		if wd.IdempotencyKey != "" {
			for _, existing := range st.withdrawals {
				if existing.Owner() == wd.Owner() && existing.IdempotencyKey == wd.IdempotencyKey {
					return domain.ErrIdempotencyConflict
				}
			}
		}
		wd.ID = st.nextID()
		wd.CreatedAt = time.Now()
		st.withdrawals[wd.ID] = *wd
		return nil
	})
}

func (w *Withdrawals) Get(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	err := w.s.do(ctx, func(st *state) error {
		if wd, ok := st.withdrawals[id]; ok {
			out = &wd
		}
		return nil
	})
	return out, err
}

func (w *Withdrawals) FindByIdempotencyKey(ctx context.Context, owner domain.AccountRef, key string) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	err := w.s.do(ctx, func(st *state) error {
		for _, wd := range st.withdrawals {
			if wd.Owner() == owner && wd.IdempotencyKey == key {
				out = &wd
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (w *Withdrawals) Review(ctx context.Context, id int64, to domain.WithdrawalStatus, adminID int64, remark string, at time.Time) (*domain.Withdrawal, error) {
	return w.update(ctx, id, domain.WithdrawalPending, func(wd *domain.Withdrawal) {
		wd.Status = to
		wd.ReviewedBy = &adminID
		wd.ReviewedAt = &at
		wd.Remark = remark
	})
}

func (w *Withdrawals) Complete(ctx context.Context, id, adminID int64, at time.Time) (*domain.Withdrawal, error) {
	return w.update(ctx, id, domain.WithdrawalApprovedPendingTransfer, func(wd *domain.Withdrawal) {
		wd.Status = domain.WithdrawalCompleted
		wd.CompletedBy = &adminID
		wd.CompletedAt = &at
	})
}

func (w *Withdrawals) ListByOwner(ctx context.Context, owner domain.AccountRef, limit int) ([]domain.Withdrawal, error) {
	out, err := w.filter(ctx, func(wd domain.Withdrawal) bool { return wd.Owner() == owner })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (w *Withdrawals) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error) {
	out, err := w.filter(ctx, func(wd domain.Withdrawal) bool { return wd.Status == status })
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (w *Withdrawals) update(ctx context.Context, id int64, from domain.WithdrawalStatus, apply func(wd *domain.Withdrawal)) (*domain.Withdrawal, error) {
	var out *domain.Withdrawal
	err := w.s.do(ctx, func(st *state) error {
		wd, ok := st.withdrawals[id]
		if !ok || wd.Status != from {
			return nil
		}
		apply(&wd)
		st.withdrawals[id] = wd
		out = &wd
		return nil
	})
	return out, err
}

func (w *Withdrawals) filter(ctx context.Context, keep func(domain.Withdrawal) bool) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	err := w.s.do(ctx, func(st *state) error {
		for _, wd := range st.withdrawals {
			if keep(wd) {
				out = append(out, wd)
			}
		}
		return nil
	})
	return out, err
}
