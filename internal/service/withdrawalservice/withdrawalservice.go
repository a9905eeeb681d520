//go:generate mockgen -source=withdrawalservice.go -destination=mock_withdrawalservice.go -package=withdrawalservice
package withdrawalservice

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
	"github.com/GlebRadaev/taskmart/pkg/validate"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	maxBatchSize     = 500
)

type Repo interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	Get(ctx context.Context, id int64) (*domain.Withdrawal, error)
	FindByIdempotencyKey(ctx context.Context, owner domain.AccountRef, key string) (*domain.Withdrawal, error)
	Review(ctx context.Context, id int64, to domain.WithdrawalStatus, adminID int64, remark string, at time.Time) (*domain.Withdrawal, error)
	Complete(ctx context.Context, id int64, adminID int64, at time.Time) (*domain.Withdrawal, error)
	ListByOwner(ctx context.Context, owner domain.AccountRef, limit int) ([]domain.Withdrawal, error)
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error)
}

type Ledger interface {
	Adjust(ctx context.Context, ref domain.AccountRef, field domain.Field, delta decimal.Decimal, financeType domain.FinanceType, correlationID uuid.UUID, remark string) (decimal.Decimal, error)
}

type NumberGenerator interface {
	Next() string
}

type Config struct {
	MinCash          decimal.Decimal
	MinSilver        decimal.Decimal
	CashFeeRate      decimal.Decimal
	SilverFeeRate    decimal.Decimal
	BatchConcurrency int
}

type Service struct {
	repo      Repo
	ledger    Ledger
	numbers   NumberGenerator
	txManager pg.TXManager
	cfg       Config
	now       func() time.Time
}

func New(repo Repo, ledger Ledger, numbers NumberGenerator, txManager pg.TXManager, cfg Config) *Service {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	return &Service{
		repo:      repo,
		ledger:    ledger,
		numbers:   numbers,
		txManager: txManager,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Fee is the platform's cut of a withdrawal, rounded to cents.
func (s *Service) Fee(amount decimal.Decimal, currency domain.CurrencyType) decimal.Decimal {
	rate := s.cfg.CashFeeRate
	if currency == domain.CurrencySilver {
		rate = s.cfg.SilverFeeRate
	}
	return amount.Mul(rate).Round(2)
}

func (s *Service) minimum(currency domain.CurrencyType) decimal.Decimal {
	if currency == domain.CurrencySilver {
		return s.cfg.MinSilver
	}
	return s.cfg.MinCash
}

func (s *Service) check(req *domain.WithdrawalRequest) error {
	if !req.Owner.Kind.Valid() || req.Owner.ID <= 0 {
		return fmt.Errorf("%w: owner", domain.ErrInvalidInput)
	}
	if !req.Currency.Valid() {
		return fmt.Errorf("%w: currency %q", domain.ErrInvalidInput, req.Currency)
	}
	if !req.Amount.IsPositive() || !req.Amount.Equal(req.Amount.Round(2)) {
		return fmt.Errorf("%w: amount %s", domain.ErrInvalidInput, req.Amount)
	}
	if req.Payout.BankCardID <= 0 || req.Payout.AccountName == "" {
		return fmt.Errorf("%w: payout details are incomplete", domain.ErrInvalidInput)
	}
	if !validate.IsCardNumber(req.Payout.CardNumber) {
		return fmt.Errorf("%w: card number", domain.ErrInvalidInput)
	}
	req.Payout.CardNumber = validate.NormalizeCardNumber(req.Payout.CardNumber)
	if req.Amount.LessThan(s.minimum(req.Currency)) {
		return fmt.Errorf("%w: minimum is %s", domain.ErrBelowMinimum, s.minimum(req.Currency))
	}
	return nil
}

// Request debits the owner right away so the same funds cannot back two
// pending withdrawals. A repeated idempotency key returns the first
// withdrawal made with it.
func (s *Service) Request(ctx context.Context, req domain.WithdrawalRequest) (*domain.Withdrawal, error) {
	if err := s.check(&req); err != nil {
		return nil, err
	}

	var created *domain.Withdrawal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if req.IdempotencyKey != "" {
			existing, err := s.repo.FindByIdempotencyKey(ctx, req.Owner, req.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				created = existing
				return nil
			}
		}

		fee := s.Fee(req.Amount, req.Currency)
		w := &domain.Withdrawal{
			SerialNo:       s.numbers.Next(),
			OwnerKind:      req.Owner.Kind,
			OwnerID:        req.Owner.ID,
			Amount:         req.Amount,
			Fee:            fee,
			ActualAmount:   req.Amount.Sub(fee),
			Currency:       req.Currency,
			Status:         domain.WithdrawalPending,
			BankCardID:     req.Payout.BankCardID,
			AccountName:    req.Payout.AccountName,
			CardNumber:     req.Payout.CardNumber,
			IdempotencyKey: req.IdempotencyKey,
		}
		_, err := s.ledger.Adjust(ctx, req.Owner, req.Currency.Field(), req.Amount.Neg(),
			domain.FinanceWithdrawalDebit, uuid.New(), "withdrawal "+w.SerialNo)
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, w); err != nil {
			return err
		}
		created = w
		return nil
	})
	if errors.Is(err, domain.ErrIdempotencyConflict) {
		// Lost a race on the same key; the winner's row is committed now.
		existing, findErr := s.repo.FindByIdempotencyKey(ctx, req.Owner, req.IdempotencyKey)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, err
		}
		created, err = existing, nil
	}
	if err != nil {
		zap.L().Info("withdrawal refused",
			zap.String("kind", string(req.Owner.Kind)), zap.Int64("owner", req.Owner.ID), zap.Error(err))
		return nil, err
	}
	if !req.Matches(*created) {
		return nil, domain.ErrIdempotencyConflict
	}
	return created, nil
}

// Review decides a pending withdrawal. Only one decision can ever apply: a
// second review gets ErrAlreadyReviewed. Rejection refunds the owner.
func (s *Service) Review(ctx context.Context, id int64, decision domain.Decision, remark string, adminID int64) (*domain.Withdrawal, error) {
	to := domain.WithdrawalApprovedPendingTransfer
	switch decision {
	case domain.DecisionApprove:
	case domain.DecisionReject:
		to = domain.WithdrawalRejected
	default:
		return nil, fmt.Errorf("%w: decision %q", domain.ErrInvalidInput, decision)
	}

	var reviewed *domain.Withdrawal
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		w, err := s.repo.Review(ctx, id, to, adminID, remark, s.now())
		if err != nil {
			return err
		}
		if w == nil {
			current, err := s.repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if current == nil {
				return fmt.Errorf("%w: withdrawal %d", domain.ErrNotFound, id)
			}
			return domain.ErrAlreadyReviewed
		}
		reviewed = w
		if to != domain.WithdrawalRejected {
			return nil
		}
		_, err = s.ledger.Adjust(ctx, w.Owner(), w.Currency.Field(), w.Amount,
			domain.FinanceWithdrawalRefund, uuid.New(), "withdrawal "+w.SerialNo+" rejected")
		return err
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("withdrawal reviewed",
		zap.Int64("withdrawal", id), zap.String("status", string(reviewed.Status)), zap.Int64("admin", adminID))
	return reviewed, nil
}

// ConfirmPayment records that the bank transfer was made. Funds already left
// the ledger at request time.
func (s *Service) ConfirmPayment(ctx context.Context, id, adminID int64) (*domain.Withdrawal, error) {
	w, err := s.repo.Complete(ctx, id, adminID, s.now())
	if err != nil {
		zap.L().Error("failed to complete withdrawal", zap.Error(err))
		return nil, err
	}
	if w != nil {
		return w, nil
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: withdrawal %d", domain.ErrNotFound, id)
	}
	return nil, fmt.Errorf("%w: withdrawal is %s", domain.ErrInvalidState, current.Status)
}

// BatchReview reviews every id on its own; one failure does not stop the rest.
func (s *Service) BatchReview(ctx context.Context, ids []int64, decision domain.Decision, remark string, adminID int64) (domain.BatchResult, error) {
	if !decision.Valid() {
		return domain.BatchResult{}, fmt.Errorf("%w: decision %q", domain.ErrInvalidInput, decision)
	}
	if len(ids) == 0 || len(ids) > maxBatchSize {
		return domain.BatchResult{}, fmt.Errorf("%w: batch of %d ids", domain.ErrInvalidInput, len(ids))
	}

	var succeeded, failed atomic.Int64
	seen := make(map[int64]struct{}, len(ids))
	g := errgroup.Group{}
	g.SetLimit(s.cfg.BatchConcurrency)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			failed.Add(1)
			continue
		}
		seen[id] = struct{}{}
		g.Go(func() error {
			if _, err := s.Review(ctx, id, decision, remark, adminID); err != nil {
				zap.L().Info("batch review item failed", zap.Int64("withdrawal", id), zap.Error(err))
				failed.Add(1)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return domain.BatchResult{Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Withdrawal, error) {
	w, err := s.repo.Get(ctx, id)
	if err != nil {
		zap.L().Error("failed to get withdrawal", zap.Error(err))
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: withdrawal %d", domain.ErrNotFound, id)
	}
	if actor.Role != domain.RoleAdmin {
		if ref, ok := actor.Account(); !ok || ref != w.Owner() {
			return nil, domain.ErrForbidden
		}
	}
	return w, nil
}

func (s *Service) ListOwnerWithdrawals(ctx context.Context, owner domain.AccountRef, limit int) ([]domain.Withdrawal, error) {
	withdrawals, err := s.repo.ListByOwner(ctx, owner, clamp(limit))
	if err != nil {
		zap.L().Error("failed to list withdrawals", zap.Error(err))
		return nil, err
	}
	return withdrawals, nil
}

func (s *Service) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, limit int) ([]domain.Withdrawal, error) {
	if status == "" {
		status = domain.WithdrawalPending
	}
	withdrawals, err := s.repo.ListByStatus(ctx, status, clamp(limit))
	if err != nil {
		zap.L().Error("failed to list withdrawals by status", zap.Error(err))
		return nil, err
	}
	return withdrawals, nil
}

func clamp(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
