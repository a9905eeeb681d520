package accountrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

const accountColumns = `owner_kind, owner_id, balance, frozen_balance, silver, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.Kind, &a.ID, &a.Balance, &a.FrozenBalance, &a.Silver, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Create opens the account if it does not exist yet and returns its current state.
func (r *Repository) Create(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (owner_kind, owner_id)
		VALUES ($1, $2)
		ON CONFLICT (owner_kind, owner_id) DO UPDATE SET updated_at = accounts.updated_at
		RETURNING ` + accountColumns
	account, err := scanAccount(r.db.QueryRow(ctx, query, ref.Kind, ref.ID))
	if err != nil {
		zap.L().Error("can't create account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) Get(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_kind = $1 AND owner_id = $2`
	account, err := scanAccount(r.db.QueryRow(ctx, query, ref.Kind, ref.ID))
	if err != nil {
		zap.L().Error("can't get account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (r *Repository) GetForUpdate(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_kind = $1 AND owner_id = $2 FOR UPDATE`
	account, err := scanAccount(r.db.QueryRow(ctx, query, ref.Kind, ref.ID))
	if err != nil {
		zap.L().Error("can't lock account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

// AddToField applies delta to one field. It returns nil when the account is
// missing or the field would go negative.
func (r *Repository) AddToField(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal) (*domain.Account, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: field %q", domain.ErrInvalidInput, field)
	}
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s + $1, updated_at = NOW()
		WHERE owner_kind = $2 AND owner_id = $3 AND %[1]s + $1 >= 0
		RETURNING `+accountColumns, field)
	account, err := scanAccount(r.db.QueryRow(ctx, query, delta, ref.Kind, ref.ID))
	if err != nil {
		zap.L().Error("can't adjust account", zap.String("field", string(field)), zap.Error(err))
		return nil, err
	}
	return account, nil
}

// Move transfers amount between two fields of the same account in one
// statement. It returns nil when the source field holds less than amount.
func (r *Repository) Move(ctx context.Context, ref domain.AccountRef, from, to domain.Field, amount decimal.Decimal) (*domain.Account, error) {
	if !from.Valid() || !to.Valid() || from == to {
		return nil, fmt.Errorf("%w: move %q to %q", domain.ErrInvalidInput, from, to)
	}
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %[1]s = %[1]s - $1, %[2]s = %[2]s + $1, updated_at = NOW()
		WHERE owner_kind = $2 AND owner_id = $3 AND %[1]s >= $1
		RETURNING `+accountColumns, from, to)
	account, err := scanAccount(r.db.QueryRow(ctx, query, amount, ref.Kind, ref.ID))
	if err != nil {
		zap.L().Error("can't move funds", zap.String("from", string(from)), zap.String("to", string(to)), zap.Error(err))
		return nil, err
	}
	return account, nil
}
