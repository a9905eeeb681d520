package withdrawalrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

const withdrawalColumns = `id, serial_no, owner_kind, owner_id, amount, fee, actual_amount, currency_type, status,
		bank_card_id, account_name, card_number, idempotency_key, remark,
		reviewed_by, reviewed_at, completed_by, completed_at, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.SerialNo, &w.OwnerKind, &w.OwnerID, &w.Amount, &w.Fee, &w.ActualAmount, &w.Currency, &w.Status,
		&w.BankCardID, &w.AccountName, &w.CardNumber, &w.IdempotencyKey, &w.Remark,
		&w.ReviewedBy, &w.ReviewedAt, &w.CompletedBy, &w.CompletedAt, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func collect(rows pgx.Rows) ([]domain.Withdrawal, error) {
	defer rows.Close()
	var withdrawals []domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			zap.L().Error("can't scan withdrawal row", zap.Error(err))
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}

func (r *Repository) Create(ctx context.Context, w *domain.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (serial_no, owner_kind, owner_id, amount, fee, actual_amount, currency_type, status,
		                         bank_card_id, account_name, card_number, idempotency_key, remark)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		w.SerialNo, w.OwnerKind, w.OwnerID, w.Amount, w.Fee, w.ActualAmount, w.Currency, w.Status,
		w.BankCardID, w.AccountName, w.CardNumber, w.IdempotencyKey, w.Remark,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return domain.ErrIdempotencyConflict
		}
		zap.L().Error("can't create withdrawal", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, id))
	if err != nil {
		zap.L().Error("can't get withdrawal", zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *Repository) FindByIdempotencyKey(ctx context.Context, owner domain.AccountRef, key string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE owner_kind = $1 AND owner_id = $2 AND idempotency_key = $3`
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, owner.Kind, owner.ID, key))
	if err != nil {
		zap.L().Error("can't find withdrawal by key", zap.Error(err))
		return nil, err
	}
	return w, nil
}

// Review decides a PENDING withdrawal. It returns nil when the withdrawal is
// missing or was already decided.
func (r *Repository) Review(ctx context.Context, id int64, to domain.WithdrawalStatus, adminID int64, remark string, at time.Time) (*domain.Withdrawal, error) {
	query := `
		UPDATE withdrawals
		SET status = $1, reviewed_by = $2, reviewed_at = $3, remark = $4
		WHERE id = $5 AND status = 'PENDING'
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, to, adminID, at, remark, id))
	if err != nil {
		zap.L().Error("can't review withdrawal", zap.Error(err))
		return nil, err
	}
	return w, nil
}

// Complete marks an approved withdrawal as paid out.
func (r *Repository) Complete(ctx context.Context, id int64, adminID int64, at time.Time) (*domain.Withdrawal, error) {
	query := `
		UPDATE withdrawals
		SET status = 'COMPLETED', completed_by = $1, completed_at = $2
		WHERE id = $3 AND status = 'APPROVED_PENDING_TRANSFER'
		RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(r.db.QueryRow(ctx, query, adminID, at, id))
	if err != nil {
		zap.L().Error("can't complete withdrawal", zap.Error(err))
		return nil, err
	}
	return w, nil
}

func (r *Repository) ListByOwner(ctx context.Context, owner domain.AccountRef, limit int) ([]domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE owner_kind = $1 AND owner_id = $2 ORDER BY id DESC LIMIT $3`
	rows, err := r.db.Query(ctx, query, owner.Kind, owner.ID, limit)
	if err != nil {
		zap.L().Error("can't list withdrawals", zap.Error(err))
		return nil, err
	}
	return collect(rows)
}

func (r *Repository) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE status = $1 ORDER BY id LIMIT $2`
	rows, err := r.db.Query(ctx, query, status, limit)
	if err != nil {
		zap.L().Error("can't list withdrawals by status", zap.Error(err))
		return nil, err
	}
	return collect(rows)
}
