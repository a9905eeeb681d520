//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice
package ledgerservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

const (
	defaultRecordsLimit = 100
	maxRecordsLimit     = 500
)

type AccountRepo interface {
	Create(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	Get(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	GetForUpdate(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)
	AddToField(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal) (*domain.Account, error)
	Move(ctx context.Context, ref domain.AccountRef, from domain.Field, to domain.Field, amount decimal.Decimal) (*domain.Account, error)
}

type FinanceRepo interface {
	Append(ctx context.Context, record *domain.FinanceRecord) error
	ListByOwner(ctx context.Context, ref domain.AccountRef, limit int) ([]domain.FinanceRecord, error)
	SumByOwner(ctx context.Context, ref domain.AccountRef) (map[domain.Field]decimal.Decimal, error)
}

// Service is the only writer of account balance fields. Every mutation
// appends finance records in the same transaction.
type Service struct {
	accounts  AccountRepo
	records   FinanceRepo
	txManager pg.TXManager
}

func New(accounts AccountRepo, records FinanceRepo, txManager pg.TXManager) *Service {
	return &Service{
		accounts:  accounts,
		records:   records,
		txManager: txManager,
	}
}

func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

func (s *Service) OpenAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	if !ref.Kind.Valid() || ref.ID <= 0 {
		return nil, fmt.Errorf("%w: account %s/%d", domain.ErrInvalidInput, ref.Kind, ref.ID)
	}
	account, err := s.accounts.Create(ctx, ref)
	if err != nil {
		zap.L().Error("failed to open account", zap.Error(err))
		return nil, err
	}
	return account, nil
}

func (s *Service) GetAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	account, err := s.accounts.Get(ctx, ref)
	if err != nil {
		zap.L().Error("failed to get account", zap.Error(err))
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s/%d", domain.ErrNotFound, ref.Kind, ref.ID)
	}
	return account, nil
}

// LockAccount takes a row lock on the account for the rest of the caller's
// transaction, opening the account first if it does not exist.
func (s *Service) LockAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	if _, err := s.accounts.Create(ctx, ref); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetForUpdate(ctx, ref)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s/%d", domain.ErrNotFound, ref.Kind, ref.ID)
	}
	return account, nil
}

// Adjust adds delta to one field and returns the new value.
func (s *Service) Adjust(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal,
	financeType domain.FinanceType, correlationID uuid.UUID, remark string) (decimal.Decimal, error) {
	if !field.Valid() || delta.IsZero() || !validAmount(delta.Abs()) {
		return decimal.Zero, fmt.Errorf("%w: adjust %s by %s", domain.ErrInvalidInput, field, delta)
	}
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}

	var value decimal.Decimal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accounts.AddToField(ctx, ref, field, delta)
		if err != nil {
			return err
		}
		if account == nil {
			return s.rejection(ctx, ref)
		}
		value = account.Value(field)
		return s.append(ctx, account, field, delta, financeType, correlationID, remark)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// Freeze moves amount from the merchant's balance to its frozen balance.
func (s *Service) Freeze(ctx context.Context, merchantID int64, amount decimal.Decimal, correlationID uuid.UUID, remark string) error {
	if !validAmount(amount) {
		return fmt.Errorf("%w: freeze %s", domain.ErrInvalidInput, amount)
	}
	ref := domain.Merchant(merchantID)
	return s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accounts.Move(ctx, ref, domain.FieldBalance, domain.FieldFrozenBalance, amount)
		if err != nil {
			return err
		}
		if account == nil {
			return s.rejection(ctx, ref)
		}
		if err := s.append(ctx, account, domain.FieldBalance, amount.Neg(), domain.FinanceTaskFreeze, correlationID, remark); err != nil {
			return err
		}
		return s.append(ctx, account, domain.FieldFrozenBalance, amount, domain.FinanceTaskFreeze, correlationID, remark)
	})
}

// Release takes Amount out of the merchant's frozen balance. A refund puts it
// back on the merchant's balance; a payout credits the buyer's commission and
// silver and treats the rest as spent principal.
func (s *Service) Release(ctx context.Context, r domain.Release) error {
	if r.Amount.IsNegative() || !r.Amount.Equal(r.Amount.Round(2)) {
		return fmt.Errorf("%w: release %s", domain.ErrInvalidInput, r.Amount)
	}
	if r.CorrelationID == uuid.Nil {
		r.CorrelationID = uuid.New()
	}
	merchant := domain.Merchant(r.MerchantID)

	switch r.Destination {
	case domain.ReleaseRefundToBalance:
		if !r.Amount.IsPositive() {
			return fmt.Errorf("%w: release %s", domain.ErrInvalidInput, r.Amount)
		}
		return s.txManager.Begin(ctx, func(ctx context.Context) error {
			account, err := s.accounts.Move(ctx, merchant, domain.FieldFrozenBalance, domain.FieldBalance, r.Amount)
			if err != nil {
				return err
			}
			if account == nil {
				return s.rejection(ctx, merchant)
			}
			if err := s.append(ctx, account, domain.FieldFrozenBalance, r.Amount.Neg(), domain.FinanceTaskRefund, r.CorrelationID, r.Remark); err != nil {
				return err
			}
			return s.append(ctx, account, domain.FieldBalance, r.Amount, domain.FinanceTaskRefund, r.CorrelationID, r.Remark)
		})

	case domain.ReleasePayout:
		if r.Commission.IsNegative() || r.Silver.IsNegative() || r.Commission.GreaterThan(r.Amount) {
			return fmt.Errorf("%w: payout of %s from %s", domain.ErrInvalidInput, r.Commission, r.Amount)
		}
		buyer := domain.Buyer(r.BuyerID)
		return s.txManager.Begin(ctx, func(ctx context.Context) error {
			// Buyer row first, merchant second: the claim path locks in the same order.
			credits := []struct {
				field domain.Field
				delta decimal.Decimal
				ft    domain.FinanceType
			}{
				{domain.FieldBalance, r.Commission, domain.FinanceTaskCommission},
				{domain.FieldSilver, r.Silver, domain.FinanceTaskSilverReward},
			}
			for _, c := range credits {
				if c.delta.IsZero() {
					continue
				}
				account, err := s.accounts.AddToField(ctx, buyer, c.field, c.delta)
				if err != nil {
					return err
				}
				if account == nil {
					return s.rejection(ctx, buyer)
				}
				if err := s.append(ctx, account, c.field, c.delta, c.ft, r.CorrelationID, r.Remark); err != nil {
					return err
				}
			}

			if r.Amount.IsZero() {
				return nil
			}
			account, err := s.accounts.AddToField(ctx, merchant, domain.FieldFrozenBalance, r.Amount.Neg())
			if err != nil {
				return err
			}
			if account == nil {
				return s.rejection(ctx, merchant)
			}
			return s.append(ctx, account, domain.FieldFrozenBalance, r.Amount.Neg(), domain.FinanceTaskPrincipalSpent, r.CorrelationID, r.Remark)
		})
	}
	return fmt.Errorf("%w: release destination %q", domain.ErrInvalidInput, r.Destination)
}

// AdminAdjust is a manual correction by an operator. The account is opened
// if needed; a debit below zero fails with ErrInsufficientFunds.
func (s *Service) AdminAdjust(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal, reason string, operatorID int64) (decimal.Decimal, error) {
	if reason == "" {
		return decimal.Zero, fmt.Errorf("%w: reason is required", domain.ErrInvalidInput)
	}
	if !ref.Kind.Valid() || ref.ID <= 0 {
		return decimal.Zero, fmt.Errorf("%w: account %s/%d", domain.ErrInvalidInput, ref.Kind, ref.ID)
	}

	var value decimal.Decimal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.accounts.Create(ctx, ref); err != nil {
			return err
		}
		v, err := s.Adjust(ctx, ref, field, delta, domain.FinanceAdminAdjustment, uuid.New(),
			fmt.Sprintf("%s (operator %d)", reason, operatorID))
		value = v
		return err
	})
	if err != nil {
		zap.L().Info("admin adjustment refused", zap.Int64("operator", operatorID), zap.Error(err))
		return decimal.Zero, err
	}
	zap.L().Info("admin adjustment applied",
		zap.String("kind", string(ref.Kind)), zap.Int64("owner", ref.ID),
		zap.String("field", string(field)), zap.String("delta", delta.String()), zap.Int64("operator", operatorID))
	return value, nil
}

// Recharge credits funds that arrived from outside the platform.
func (s *Service) Recharge(ctx context.Context, merchantID int64, amount decimal.Decimal, externalRef string) (decimal.Decimal, error) {
	if !validAmount(amount) {
		return decimal.Zero, fmt.Errorf("%w: recharge %s", domain.ErrInvalidInput, amount)
	}
	ref := domain.Merchant(merchantID)

	var value decimal.Decimal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.accounts.Create(ctx, ref); err != nil {
			return err
		}
		v, err := s.Adjust(ctx, ref, domain.FieldBalance, amount, domain.FinanceRecharge, uuid.New(), "recharge "+externalRef)
		value = v
		return err
	})
	if err != nil {
		zap.L().Error("failed to recharge", zap.Int64("merchant", merchantID), zap.Error(err))
		return decimal.Zero, err
	}
	return value, nil
}

func (s *Service) ListRecords(ctx context.Context, ref domain.AccountRef, limit int) ([]domain.FinanceRecord, error) {
	if limit <= 0 {
		limit = defaultRecordsLimit
	}
	if limit > maxRecordsLimit {
		limit = maxRecordsLimit
	}
	records, err := s.records.ListByOwner(ctx, ref, limit)
	if err != nil {
		zap.L().Error("failed to list finance records", zap.Error(err))
		return nil, err
	}
	return records, nil
}

// Reconcile reads an account and the per-field sums of its finance records
// in one transaction so both sides describe the same moment.
func (s *Service) Reconcile(ctx context.Context, ref domain.AccountRef) (*domain.Reconciliation, error) {
	var report domain.Reconciliation
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		account, err := s.accounts.GetForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("%w: account %s/%d", domain.ErrNotFound, ref.Kind, ref.ID)
		}
		sums, err := s.records.SumByOwner(ctx, ref)
		if err != nil {
			return err
		}
		report = domain.Reconciliation{Account: *account, Recorded: sums}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Balanced() {
		zap.L().Warn("account does not reconcile",
			zap.String("kind", string(ref.Kind)), zap.Int64("owner", ref.ID))
	}
	return &report, nil
}

// rejection explains why a conditional update matched no row.
func (s *Service) rejection(ctx context.Context, ref domain.AccountRef) error {
	account, err := s.accounts.Get(ctx, ref)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account %s/%d", domain.ErrNotFound, ref.Kind, ref.ID)
	}
	return domain.ErrInsufficientFunds
}

func (s *Service) append(ctx context.Context, account *domain.Account, field domain.Field, amount decimal.Decimal,
	financeType domain.FinanceType, correlationID uuid.UUID, remark string) error {
	return s.records.Append(ctx, &domain.FinanceRecord{
		OwnerKind:     account.Kind,
		OwnerID:       account.ID,
		Field:         field,
		Amount:        amount,
		BalanceAfter:  account.Value(field),
		FinanceType:   financeType,
		CorrelationID: correlationID,
		Remark:        remark,
	})
}
