package ledgerservice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

func NewMock(t *testing.T) (*Service, *MockAccountRepo, *MockFinanceRepo, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	accounts := NewMockAccountRepo(ctrl)
	records := NewMockFinanceRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()
	return New(accounts, records, txManager), accounts, records, txManager
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// recordOf matches a finance record by field, signed amount and type.
func recordOf(field domain.Field, amount string, ft domain.FinanceType) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		r, ok := x.(*domain.FinanceRecord)
		return ok && r.Field == field && r.Amount.Equal(dec(amount)) && r.FinanceType == ft
	})
}

func TestOpenAccount(t *testing.T) {
	service, accounts, _, _ := NewMock(t)

	tests := []struct {
		name          string
		ref           domain.AccountRef
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Account opened",
			ref:  domain.Buyer(3),
			prepareMock: func() {
				accounts.EXPECT().Create(gomock.Any(), domain.Buyer(3)).Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3}, nil)
			},
		},
		{
			name:          "Unknown kind",
			ref:           domain.AccountRef{Kind: "ADMIN", ID: 1},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "Non-positive id",
			ref:           domain.Merchant(0),
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}
			account, err := service.OpenAccount(context.Background(), tt.ref)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, account)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.ref, account.Ref())
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	service, accounts, _, _ := NewMock(t)

	accounts.EXPECT().Get(gomock.Any(), domain.Buyer(3)).Return(nil, nil)
	_, err := service.GetAccount(context.Background(), domain.Buyer(3))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	accounts.EXPECT().Get(gomock.Any(), domain.Buyer(3)).Return(nil, errors.New("db error"))
	_, err = service.GetAccount(context.Background(), domain.Buyer(3))
	assert.EqualError(t, err, "db error")
}

func TestFreeze(t *testing.T) {
	service, accounts, records, _ := NewMock(t)
	merchant := domain.Merchant(7)

	tests := []struct {
		name          string
		amount        decimal.Decimal
		prepareMock   func()
		expectedError error
	}{
		{
			name:   "Funds frozen with a record per field",
			amount: dec("110"),
			prepareMock: func() {
				accounts.EXPECT().Move(gomock.Any(), merchant, domain.FieldBalance, domain.FieldFrozenBalance, dec("110")).
					Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7, FrozenBalance: dec("110")}, nil)
				records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldBalance, "-110", domain.FinanceTaskFreeze)).Return(nil)
				records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldFrozenBalance, "110", domain.FinanceTaskFreeze)).Return(nil)
			},
		},
		{
			name:   "Balance too low",
			amount: dec("110"),
			prepareMock: func() {
				accounts.EXPECT().Move(gomock.Any(), merchant, domain.FieldBalance, domain.FieldFrozenBalance, dec("110")).Return(nil, nil)
				accounts.EXPECT().Get(gomock.Any(), merchant).Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7}, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name:   "No account",
			amount: dec("1"),
			prepareMock: func() {
				accounts.EXPECT().Move(gomock.Any(), merchant, domain.FieldBalance, domain.FieldFrozenBalance, dec("1")).Return(nil, nil)
				accounts.EXPECT().Get(gomock.Any(), merchant).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:          "More than two decimals",
			amount:        dec("0.001"),
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:          "Zero amount",
			amount:        decimal.Zero,
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}
			err := service.Freeze(context.Background(), 7, tt.amount, uuid.New(), "order T1")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReleaseRefund(t *testing.T) {
	service, accounts, records, _ := NewMock(t)
	merchant := domain.Merchant(7)

	accounts.EXPECT().Move(gomock.Any(), merchant, domain.FieldFrozenBalance, domain.FieldBalance, dec("110")).
		Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7, Balance: dec("110")}, nil)
	records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldFrozenBalance, "-110", domain.FinanceTaskRefund)).Return(nil)
	records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldBalance, "110", domain.FinanceTaskRefund)).Return(nil)

	err := service.Release(context.Background(), domain.Release{
		MerchantID:  7,
		Amount:      dec("110"),
		Destination: domain.ReleaseRefundToBalance,
	})
	require.NoError(t, err)
}

func TestReleasePayout(t *testing.T) {
	service, accounts, records, _ := NewMock(t)
	buyer := domain.Buyer(3)
	merchant := domain.Merchant(7)

	gomock.InOrder(
		accounts.EXPECT().AddToField(gomock.Any(), buyer, domain.FieldBalance, dec("10")).
			Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3, Balance: dec("10")}, nil),
		records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldBalance, "10", domain.FinanceTaskCommission)).Return(nil),
		accounts.EXPECT().AddToField(gomock.Any(), buyer, domain.FieldSilver, dec("1")).
			Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3, Silver: dec("1")}, nil),
		records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldSilver, "1", domain.FinanceTaskSilverReward)).Return(nil),
		accounts.EXPECT().AddToField(gomock.Any(), merchant, domain.FieldFrozenBalance, dec("-110")).
			Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7}, nil),
		records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldFrozenBalance, "-110", domain.FinanceTaskPrincipalSpent)).Return(nil),
	)

	err := service.Release(context.Background(), domain.Release{
		MerchantID:  7,
		Amount:      dec("110"),
		Destination: domain.ReleasePayout,
		BuyerID:     3,
		Commission:  dec("10"),
		Silver:      dec("1"),
	})
	require.NoError(t, err)
}

func TestReleaseInvalid(t *testing.T) {
	service, _, _, _ := NewMock(t)

	tests := []struct {
		name    string
		release domain.Release
	}{
		{"Negative amount", domain.Release{MerchantID: 7, Amount: dec("-1"), Destination: domain.ReleaseRefundToBalance}},
		{"Zero refund", domain.Release{MerchantID: 7, Amount: decimal.Zero, Destination: domain.ReleaseRefundToBalance}},
		{"Commission above amount", domain.Release{MerchantID: 7, Amount: dec("5"), Destination: domain.ReleasePayout, Commission: dec("6")}},
		{"Unknown destination", domain.Release{MerchantID: 7, Amount: dec("5"), Destination: "ELSEWHERE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Release(context.Background(), tt.release)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestAdminAdjust(t *testing.T) {
	service, accounts, records, _ := NewMock(t)
	buyer := domain.Buyer(3)

	tests := []struct {
		name          string
		delta         decimal.Decimal
		reason        string
		prepareMock   func()
		expectedValue decimal.Decimal
		expectedError error
	}{
		{
			name:   "Credit opens the account",
			delta:  dec("25.50"),
			reason: "compensation",
			prepareMock: func() {
				accounts.EXPECT().Create(gomock.Any(), buyer).Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3}, nil)
				accounts.EXPECT().AddToField(gomock.Any(), buyer, domain.FieldBalance, dec("25.50")).
					Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3, Balance: dec("25.50")}, nil)
				records.EXPECT().Append(gomock.Any(), recordOf(domain.FieldBalance, "25.50", domain.FinanceAdminAdjustment)).Return(nil)
			},
			expectedValue: dec("25.50"),
		},
		{
			name:   "Debit below zero",
			delta:  dec("-5"),
			reason: "chargeback",
			prepareMock: func() {
				accounts.EXPECT().Create(gomock.Any(), buyer).Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3}, nil)
				accounts.EXPECT().AddToField(gomock.Any(), buyer, domain.FieldBalance, dec("-5")).Return(nil, nil)
				accounts.EXPECT().Get(gomock.Any(), buyer).Return(&domain.Account{Kind: domain.AccountBuyer, ID: 3}, nil)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
		{
			name:          "Missing reason",
			delta:         dec("1"),
			expectedError: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepareMock != nil {
				tt.prepareMock()
			}
			value, err := service.AdminAdjust(context.Background(), buyer, domain.FieldBalance, tt.delta, tt.reason, 1)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.True(t, tt.expectedValue.Equal(value))
			}
		})
	}
}

func TestRecharge(t *testing.T) {
	service, accounts, records, _ := NewMock(t)
	merchant := domain.Merchant(7)

	accounts.EXPECT().Create(gomock.Any(), merchant).Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7}, nil)
	accounts.EXPECT().AddToField(gomock.Any(), merchant, domain.FieldBalance, dec("110")).
		Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7, Balance: dec("110")}, nil)
	records.EXPECT().Append(gomock.Any(), gomock.Cond(func(x any) bool {
		r := x.(*domain.FinanceRecord)
		return r.FinanceType == domain.FinanceRecharge && r.Remark == "recharge pay-42" && r.BalanceAfter.Equal(dec("110"))
	})).Return(nil)

	value, err := service.Recharge(context.Background(), 7, dec("110"), "pay-42")
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("110")))

	_, err = service.Recharge(context.Background(), 7, dec("-1"), "pay-43")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListRecords(t *testing.T) {
	service, _, records, _ := NewMock(t)

	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{"Default limit", 0, defaultRecordsLimit},
		{"Explicit limit", 10, 10},
		{"Capped limit", 10000, maxRecordsLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records.EXPECT().ListByOwner(gomock.Any(), domain.Buyer(3), tt.expectedLimit).Return([]domain.FinanceRecord{{ID: 1}}, nil)
			list, err := service.ListRecords(context.Background(), domain.Buyer(3), tt.limit)
			assert.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestReconcile(t *testing.T) {
	service, accounts, records, _ := NewMock(t)
	merchant := domain.Merchant(7)

	accounts.EXPECT().GetForUpdate(gomock.Any(), merchant).
		Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7, Balance: dec("10"), FrozenBalance: dec("100")}, nil)
	records.EXPECT().SumByOwner(gomock.Any(), merchant).Return(map[domain.Field]decimal.Decimal{
		domain.FieldBalance:       dec("10"),
		domain.FieldFrozenBalance: dec("100"),
		domain.FieldSilver:        decimal.Zero,
	}, nil)

	report, err := service.Reconcile(context.Background(), merchant)
	require.NoError(t, err)
	assert.True(t, report.Balanced())

	accounts.EXPECT().GetForUpdate(gomock.Any(), merchant).
		Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7, Balance: dec("11")}, nil)
	records.EXPECT().SumByOwner(gomock.Any(), merchant).Return(map[domain.Field]decimal.Decimal{
		domain.FieldBalance:       dec("10"),
		domain.FieldFrozenBalance: decimal.Zero,
		domain.FieldSilver:        decimal.Zero,
	}, nil)

	report, err = service.Reconcile(context.Background(), merchant)
	require.NoError(t, err)
	assert.False(t, report.Balanced())

	accounts.EXPECT().GetForUpdate(gomock.Any(), merchant).Return(nil, nil)
	_, err = service.Reconcile(context.Background(), merchant)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
