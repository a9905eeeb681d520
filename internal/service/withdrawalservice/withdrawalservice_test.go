package withdrawalservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockLedger, *MockNumberGenerator) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	ledger := NewMockLedger(ctrl)
	numbers := NewMockNumberGenerator(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()

	service := New(repo, ledger, numbers, txManager, Config{
		MinCash:          decimal.NewFromInt(10),
		MinSilver:        decimal.NewFromInt(10),
		CashFeeRate:      decimal.Zero,
		SilverFeeRate:    decimal.RequireFromString("0.05"),
		BatchConcurrency: 2,
	})
	service.now = func() time.Time { return fixedNow }
	return service, repo, ledger, numbers
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amount(s string) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		v, ok := x.(decimal.Decimal)
		return ok && v.Equal(dec(s))
	})
}

func request(amt string, currency domain.CurrencyType, key string) domain.WithdrawalRequest {
	return domain.WithdrawalRequest{
		Owner:    domain.Buyer(3),
		Amount:   dec(amt),
		Currency: currency,
		Payout: domain.PayoutDetails{
			BankCardID:  2,
			AccountName: "Ivan Petrov",
			CardNumber:  "4111 1111 1111 1111",
		},
		IdempotencyKey: key,
	}
}

func stored(req domain.WithdrawalRequest) *domain.Withdrawal {
	return &domain.Withdrawal{
		ID:             9,
		SerialNo:       "W1",
		OwnerKind:      req.Owner.Kind,
		OwnerID:        req.Owner.ID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         domain.WithdrawalPending,
		BankCardID:     req.Payout.BankCardID,
		AccountName:    req.Payout.AccountName,
		CardNumber:     "4111111111111111",
		IdempotencyKey: req.IdempotencyKey,
	}
}

func TestFee(t *testing.T) {
	service, _, _, _ := NewMock(t)

	assert.True(t, service.Fee(dec("20"), domain.CurrencySilver).Equal(dec("1")))
	assert.True(t, service.Fee(dec("10.33"), domain.CurrencySilver).Equal(dec("0.52")))
	assert.True(t, service.Fee(dec("20"), domain.CurrencyBalance).IsZero())
}

func TestRequest(t *testing.T) {
	tests := []struct {
		name          string
		req           domain.WithdrawalRequest
		prepareMock   func(repo *MockRepo, ledger *MockLedger, numbers *MockNumberGenerator)
		expectedError error
	}{
		{
			name: "Silver withdrawal debits silver",
			req:  request("20", domain.CurrencySilver, ""),
			prepareMock: func(repo *MockRepo, ledger *MockLedger, numbers *MockNumberGenerator) {
				numbers.EXPECT().Next().Return("W1")
				ledger.EXPECT().Adjust(gomock.Any(), domain.Buyer(3), domain.FieldSilver, amount("-20"),
					domain.FinanceWithdrawalDebit, gomock.Any(), "withdrawal W1").Return(decimal.Zero, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, w *domain.Withdrawal) error {
					assert.True(t, w.Fee.Equal(dec("1")))
					assert.True(t, w.ActualAmount.Equal(dec("19")))
					assert.Equal(t, "4111111111111111", w.CardNumber)
					w.ID = 9
					return nil
				})
			},
		},
		{
			name: "Not enough silver",
			req:  request("30", domain.CurrencySilver, ""),
			prepareMock: func(repo *MockRepo, ledger *MockLedger, numbers *MockNumberGenerator) {
				numbers.EXPECT().Next().Return("W2")
				ledger.EXPECT().Adjust(gomock.Any(), domain.Buyer(3), domain.FieldSilver, amount("-30"),
					domain.FinanceWithdrawalDebit, gomock.Any(), gomock.Any()).Return(decimal.Zero, domain.ErrInsufficientFunds)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name:          "Below minimum",
			req:           request("9.99", domain.CurrencyBalance, ""),
			expectedError: domain.ErrBelowMinimum,
		},
		{
			name: "Card fails Luhn check",
			req: func() domain.WithdrawalRequest {
				r := request("20", domain.CurrencyBalance, "")
				r.Payout.CardNumber = "4111111111111112"
				return r
			}(),
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "Unknown currency",
			req:           request("20", "GOLD", ""),
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "Fractional cents",
			req:           request("20.001", domain.CurrencyBalance, ""),
			expectedError: domain.ErrInvalidInput,
		},
		{
			name: "Repeated key returns the first withdrawal",
			req:  request("20", domain.CurrencyBalance, "key-1"),
			prepareMock: func(repo *MockRepo, _ *MockLedger, _ *MockNumberGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), domain.Buyer(3), "key-1").
					Return(stored(request("20", domain.CurrencyBalance, "key-1")), nil)
			},
		},
		{
			name: "Repeated key with a different amount",
			req:  request("25", domain.CurrencyBalance, "key-1"),
			prepareMock: func(repo *MockRepo, _ *MockLedger, _ *MockNumberGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), domain.Buyer(3), "key-1").
					Return(stored(request("20", domain.CurrencyBalance, "key-1")), nil)
			},
			expectedError: domain.ErrIdempotencyConflict,
		},
		{
			name: "Lost the race on the same key",
			req:  request("20", domain.CurrencyBalance, "key-2"),
			prepareMock: func(repo *MockRepo, ledger *MockLedger, numbers *MockNumberGenerator) {
				gomock.InOrder(
					repo.EXPECT().FindByIdempotencyKey(gomock.Any(), domain.Buyer(3), "key-2").Return(nil, nil),
					numbers.EXPECT().Next().Return("W3"),
					ledger.EXPECT().Adjust(gomock.Any(), domain.Buyer(3), domain.FieldBalance, amount("-20"),
						domain.FinanceWithdrawalDebit, gomock.Any(), gomock.Any()).Return(decimal.Zero, nil),
					repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domain.ErrIdempotencyConflict),
					repo.EXPECT().FindByIdempotencyKey(gomock.Any(), domain.Buyer(3), "key-2").
						Return(stored(request("20", domain.CurrencyBalance, "key-2")), nil),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, ledger, numbers := NewMock(t)
			if tt.prepareMock != nil {
				tt.prepareMock(repo, ledger, numbers)
			}

			w, err := service.Request(context.Background(), tt.req)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(9), w.ID)
			assert.Equal(t, domain.WithdrawalPending, w.Status)
		})
	}
}

func TestReview(t *testing.T) {
	tests := []struct {
		name          string
		decision      domain.Decision
		prepareMock   func(repo *MockRepo, ledger *MockLedger)
		expectedError error
		expectedState domain.WithdrawalStatus
	}{
		{
			name:     "Approve keeps funds debited",
			decision: domain.DecisionApprove,
			prepareMock: func(repo *MockRepo, _ *MockLedger) {
				w := stored(request("20", domain.CurrencyBalance, ""))
				w.Status = domain.WithdrawalApprovedPendingTransfer
				repo.EXPECT().Review(gomock.Any(), int64(9), domain.WithdrawalApprovedPendingTransfer, int64(1), "ok", fixedNow).Return(w, nil)
			},
			expectedState: domain.WithdrawalApprovedPendingTransfer,
		},
		{
			name:     "Reject refunds the owner",
			decision: domain.DecisionReject,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				w := stored(request("20", domain.CurrencySilver, ""))
				w.Status = domain.WithdrawalRejected
				repo.EXPECT().Review(gomock.Any(), int64(9), domain.WithdrawalRejected, int64(1), "ok", fixedNow).Return(w, nil)
				ledger.EXPECT().Adjust(gomock.Any(), domain.Buyer(3), domain.FieldSilver, amount("20"),
					domain.FinanceWithdrawalRefund, gomock.Any(), "withdrawal W1 rejected").Return(dec("20"), nil)
			},
			expectedState: domain.WithdrawalRejected,
		},
		{
			name:     "Second review",
			decision: domain.DecisionReject,
			prepareMock: func(repo *MockRepo, _ *MockLedger) {
				repo.EXPECT().Review(gomock.Any(), int64(9), domain.WithdrawalRejected, int64(1), "ok", fixedNow).Return(nil, nil)
				repo.EXPECT().Get(gomock.Any(), int64(9)).Return(stored(request("20", domain.CurrencyBalance, "")), nil)
			},
			expectedError: domain.ErrAlreadyReviewed,
		},
		{
			name:     "Missing withdrawal",
			decision: domain.DecisionApprove,
			prepareMock: func(repo *MockRepo, _ *MockLedger) {
				repo.EXPECT().Review(gomock.Any(), int64(9), gomock.Any(), int64(1), "ok", fixedNow).Return(nil, nil)
				repo.EXPECT().Get(gomock.Any(), int64(9)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:          "Unknown decision",
			decision:      "later",
			prepareMock:   func(*MockRepo, *MockLedger) {},
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, ledger, _ := NewMock(t)
			tt.prepareMock(repo, ledger)

			w, err := service.Review(context.Background(), 9, tt.decision, "ok", 1)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, w)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedState, w.Status)
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	t.Run("Approved withdrawal completed", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		w := stored(request("20", domain.CurrencyBalance, ""))
		w.Status = domain.WithdrawalCompleted
		repo.EXPECT().Complete(gomock.Any(), int64(9), int64(1), fixedNow).Return(w, nil)

		result, err := service.ConfirmPayment(context.Background(), 9, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalCompleted, result.Status)
	})

	t.Run("Still pending", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		repo.EXPECT().Complete(gomock.Any(), int64(9), int64(1), fixedNow).Return(nil, nil)
		repo.EXPECT().Get(gomock.Any(), int64(9)).Return(stored(request("20", domain.CurrencyBalance, "")), nil)

		_, err := service.ConfirmPayment(context.Background(), 9, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Missing", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		repo.EXPECT().Complete(gomock.Any(), int64(9), int64(1), fixedNow).Return(nil, nil)
		repo.EXPECT().Get(gomock.Any(), int64(9)).Return(nil, nil)

		_, err := service.ConfirmPayment(context.Background(), 9, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBatchReview(t *testing.T) {
	service, repo, _, _ := NewMock(t)

	approved := func(id int64) *domain.Withdrawal {
		w := stored(request("20", domain.CurrencyBalance, ""))
		w.ID = id
		w.Status = domain.WithdrawalApprovedPendingTransfer
		return w
	}
	repo.EXPECT().Review(gomock.Any(), int64(1), domain.WithdrawalApprovedPendingTransfer, int64(1), "", fixedNow).Return(approved(1), nil)
	repo.EXPECT().Review(gomock.Any(), int64(2), domain.WithdrawalApprovedPendingTransfer, int64(1), "", fixedNow).Return(approved(2), nil)
	repo.EXPECT().Review(gomock.Any(), int64(3), domain.WithdrawalApprovedPendingTransfer, int64(1), "", fixedNow).Return(nil, nil)
	repo.EXPECT().Get(gomock.Any(), int64(3)).Return(approved(3), nil)
	repo.EXPECT().Review(gomock.Any(), int64(4), gomock.Any(), int64(1), "", fixedNow).Return(nil, errors.New("db error"))

	result, err := service.BatchReview(context.Background(), []int64{1, 2, 3, 4, 2}, domain.DecisionApprove, "", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchResult{Succeeded: 2, Failed: 3}, result)

	_, err = service.BatchReview(context.Background(), nil, domain.DecisionApprove, "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = service.BatchReview(context.Background(), []int64{1}, "later", "", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGet(t *testing.T) {
	tests := []struct {
		name          string
		actor         domain.Actor
		expectedError error
	}{
		{"Owner", domain.Actor{ID: 3, Role: domain.RoleBuyer}, nil},
		{"Admin", domain.Actor{ID: 1, Role: domain.RoleAdmin}, nil},
		{"Merchant with the same id", domain.Actor{ID: 3, Role: domain.RoleMerchant}, domain.ErrForbidden},
		{"Other buyer", domain.Actor{ID: 4, Role: domain.RoleBuyer}, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, _ := NewMock(t)
			repo.EXPECT().Get(gomock.Any(), int64(9)).Return(stored(request("20", domain.CurrencyBalance, "")), nil)

			w, err := service.Get(context.Background(), tt.actor, 9)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(9), w.ID)
		})
	}
}

func TestListWithdrawals(t *testing.T) {
	service, repo, _, _ := NewMock(t)

	repo.EXPECT().ListByOwner(gomock.Any(), domain.Buyer(3), defaultListLimit).Return([]domain.Withdrawal{{ID: 9}}, nil)
	list, err := service.ListOwnerWithdrawals(context.Background(), domain.Buyer(3), 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	repo.EXPECT().ListByStatus(gomock.Any(), domain.WithdrawalPending, maxListLimit).Return(nil, nil)
	list, err = service.ListByStatus(context.Background(), "", 5000)
	require.NoError(t, err)
	assert.Empty(t, list)
}
