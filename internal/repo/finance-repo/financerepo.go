package financerepo

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Append inserts a record. There is deliberately no update or delete.
func (r *Repository) Append(ctx context.Context, record *domain.FinanceRecord) error {
	query := `
		INSERT INTO finance_records (owner_kind, owner_id, field, amount, balance_after, finance_type, correlation_id, remark)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		record.OwnerKind, record.OwnerID, record.Field, record.Amount, record.BalanceAfter,
		record.FinanceType, record.CorrelationID, record.Remark,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		zap.L().Error("can't append finance record", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) ListByOwner(ctx context.Context, ref domain.AccountRef, limit int) ([]domain.FinanceRecord, error) {
	query := `
		SELECT id, owner_kind, owner_id, field, amount, balance_after, finance_type, correlation_id, remark, created_at
		FROM finance_records
		WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY id DESC
		LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, ref.Kind, ref.ID, limit)
	if err != nil {
		zap.L().Error("can't list finance records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []domain.FinanceRecord
	for rows.Next() {
		var rec domain.FinanceRecord
		err := rows.Scan(&rec.ID, &rec.OwnerKind, &rec.OwnerID, &rec.Field, &rec.Amount, &rec.BalanceAfter,
			&rec.FinanceType, &rec.CorrelationID, &rec.Remark, &rec.CreatedAt)
		if err != nil {
			zap.L().Error("can't scan finance record", zap.Error(err))
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SumByOwner totals the signed amounts per field for one account.
func (r *Repository) SumByOwner(ctx context.Context, ref domain.AccountRef) (map[domain.Field]decimal.Decimal, error) {
	query := `
		SELECT field, COALESCE(SUM(amount), 0)
		FROM finance_records
		WHERE owner_kind = $1 AND owner_id = $2
		GROUP BY field
	`
	rows, err := r.db.Query(ctx, query, ref.Kind, ref.ID)
	if err != nil {
		zap.L().Error("can't sum finance records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	sums := map[domain.Field]decimal.Decimal{
		domain.FieldBalance:       decimal.Zero,
		domain.FieldFrozenBalance: decimal.Zero,
		domain.FieldSilver:        decimal.Zero,
	}
	for rows.Next() {
		var field domain.Field
		var sum decimal.Decimal
		if err := rows.Scan(&field, &sum); err != nil {
			zap.L().Error("can't scan finance sum", zap.Error(err))
			return nil, err
		}
		sums[field] = sum
	}
	return sums, rows.Err()
}
