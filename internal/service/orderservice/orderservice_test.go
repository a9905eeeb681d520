package orderservice

import (
	"context"
	"encoding/json"
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

func NewMock(t *testing.T) (*Service, *MockRepo, *MockTaskRepo, *MockLedger) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	tasks := NewMockTaskRepo(ctrl)
	ledger := NewMockLedger(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error { return fn(ctx) }).
		AnyTimes()

	service := New(repo, tasks, ledger, txManager)
	service.now = func() time.Time { return fixedNow }
	return service, repo, tasks, ledger
}

func order(status domain.OrderStatus, step int) *domain.Order {
	return &domain.Order{
		ID:           5,
		OrderNo:      "T1",
		TaskID:       1,
		BuyerID:      3,
		MerchantID:   7,
		Principal:    decimal.NewFromInt(100),
		Commission:   decimal.NewFromInt(10),
		SilverReward: decimal.NewFromInt(1),
		FrozenAmount: decimal.NewFromInt(110),
		CurrentStep:  step,
		TotalSteps:   2,
		Status:       status,
		DeadlineAt:   fixedNow.Add(time.Hour),
	}
}

var (
	buyer    = domain.Actor{ID: 3, Role: domain.RoleBuyer}
	merchant = domain.Actor{ID: 7, Role: domain.RoleMerchant}
	admin    = domain.Actor{ID: 1, Role: domain.RoleAdmin}
)

func TestSubmitStep(t *testing.T) {
	payload := json.RawMessage(`{"screenshot":"a.png"}`)

	tests := []struct {
		name          string
		buyerID       int64
		step          int
		payload       json.RawMessage
		prepareMock   func(repo *MockRepo)
		expectedError error
		expectedState domain.OrderStatus
	}{
		{
			name:    "First step starts the order",
			buyerID: 3,
			step:    1,
			payload: payload,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil)
				repo.EXPECT().AdvanceStep(gomock.Any(), int64(5), int64(3), 1, domain.OrderInProgress, fixedNow).
					Return(order(domain.OrderInProgress, 1), nil)
				repo.EXPECT().SaveStep(gomock.Any(), &domain.OrderStep{OrderID: 5, StepIndex: 1, Payload: payload, SubmittedAt: fixedNow}).
					Return(nil)
			},
			expectedState: domain.OrderInProgress,
		},
		{
			name:    "Last step sends to review",
			buyerID: 3,
			step:    2,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 1), nil)
				repo.EXPECT().AdvanceStep(gomock.Any(), int64(5), int64(3), 2, domain.OrderAwaitingReview, fixedNow).
					Return(order(domain.OrderAwaitingReview, 2), nil)
				repo.EXPECT().SaveStep(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedState: domain.OrderAwaitingReview,
		},
		{
			name:    "Skipping a step",
			buyerID: 3,
			step:    2,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil)
			},
			expectedError: domain.ErrInvalidStep,
		},
		{
			name:    "Step beyond the last",
			buyerID: 3,
			step:    3,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 2), nil)
			},
			expectedError: domain.ErrInvalidStep,
		},
		{
			name:    "Another buyer's order",
			buyerID: 4,
			step:    1,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil)
			},
			expectedError: domain.ErrForbidden,
		},
		{
			name:    "Order already in review",
			buyerID: 3,
			step:    3,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:    "Deadline passed",
			buyerID: 3,
			step:    1,
			prepareMock: func(repo *MockRepo) {
				o := order(domain.OrderClaimed, 0)
				o.DeadlineAt = fixedNow.Add(-time.Minute)
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(o, nil)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:    "Cancelled concurrently",
			buyerID: 3,
			step:    1,
			prepareMock: func(repo *MockRepo) {
				gomock.InOrder(
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil),
					repo.EXPECT().AdvanceStep(gomock.Any(), int64(5), int64(3), 1, domain.OrderInProgress, fixedNow).Return(nil, nil),
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderCancelled, 0), nil),
				)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:          "Payload is not JSON",
			buyerID:       3,
			step:          1,
			payload:       json.RawMessage(`{oops`),
			prepareMock:   func(repo *MockRepo) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:    "Missing order",
			buyerID: 3,
			step:    1,
			prepareMock: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(nil, nil)
			},
			expectedError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, _ := NewMock(t)
			tt.prepareMock(repo)

			result, err := service.SubmitStep(context.Background(), 5, tt.buyerID, tt.step, tt.payload)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedState, result.Status)
		})
	}
}

func TestReviewApprove(t *testing.T) {
	service, repo, _, ledger := NewMock(t)

	gomock.InOrder(
		repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil),
		repo.EXPECT().Transition(gomock.Any(), int64(5), []domain.OrderStatus{domain.OrderAwaitingReview}, domain.OrderApproved, "", fixedNow).
			Return(order(domain.OrderApproved, 2), nil),
		ledger.EXPECT().Release(gomock.Any(), gomock.Cond(func(x any) bool {
			r := x.(domain.Release)
			return r.Destination == domain.ReleasePayout && r.BuyerID == 3 && r.MerchantID == 7 &&
				r.Amount.Equal(decimal.NewFromInt(110)) && r.Commission.Equal(decimal.NewFromInt(10)) && r.Silver.Equal(decimal.NewFromInt(1))
		})).Return(nil),
		repo.EXPECT().Transition(gomock.Any(), int64(5), []domain.OrderStatus{domain.OrderApproved}, domain.OrderCompleted, "", fixedNow).
			Return(order(domain.OrderCompleted, 2), nil),
	)

	result, err := service.Review(context.Background(), 5, merchant, domain.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, result.Status)
}

func TestReviewReject(t *testing.T) {
	service, repo, tasks, ledger := NewMock(t)

	gomock.InOrder(
		repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil),
		repo.EXPECT().Transition(gomock.Any(), int64(5), gomock.Any(), domain.OrderRejected, "blurry photo", fixedNow).
			Return(order(domain.OrderRejected, 2), nil),
		tasks.EXPECT().ReleaseSlot(gomock.Any(), int64(1)).Return(&domain.Task{ID: 1}, nil),
		ledger.EXPECT().Release(gomock.Any(), gomock.Cond(func(x any) bool {
			r := x.(domain.Release)
			return r.Destination == domain.ReleaseRefundToBalance && r.MerchantID == 7 && r.Amount.Equal(decimal.NewFromInt(110))
		})).Return(nil),
	)

	result, err := service.Review(context.Background(), 5, admin, domain.DecisionReject, "blurry photo")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderRejected, result.Status)
}

func TestReviewRefused(t *testing.T) {
	tests := []struct {
		name          string
		reviewer      domain.Actor
		decision      domain.Decision
		prepareMock   func(repo *MockRepo, ledger *MockLedger)
		expectedError error
	}{
		{
			name:          "Unknown decision",
			reviewer:      merchant,
			decision:      "maybe",
			prepareMock:   func(*MockRepo, *MockLedger) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:     "Merchant of another task",
			reviewer: domain.Actor{ID: 8, Role: domain.RoleMerchant},
			decision: domain.DecisionApprove,
			prepareMock: func(repo *MockRepo, _ *MockLedger) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil)
			},
			expectedError: domain.ErrForbidden,
		},
		{
			name:     "Buyer cannot review",
			reviewer: buyer,
			decision: domain.DecisionApprove,
			prepareMock: func(repo *MockRepo, _ *MockLedger) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil)
			},
			expectedError: domain.ErrForbidden,
		},
		{
			name:     "Not awaiting review",
			reviewer: merchant,
			decision: domain.DecisionApprove,
			prepareMock: func(repo *MockRepo, _ *MockLedger) {
				gomock.InOrder(
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 1), nil),
					repo.EXPECT().Transition(gomock.Any(), int64(5), gomock.Any(), domain.OrderApproved, "", fixedNow).Return(nil, nil),
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 1), nil),
				)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:     "Payout fails",
			reviewer: merchant,
			decision: domain.DecisionApprove,
			prepareMock: func(repo *MockRepo, ledger *MockLedger) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil)
				repo.EXPECT().Transition(gomock.Any(), int64(5), gomock.Any(), domain.OrderApproved, "", fixedNow).
					Return(order(domain.OrderApproved, 2), nil)
				ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Return(domain.ErrInsufficientFunds)
			},
			expectedError: domain.ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, ledger := NewMock(t)
			tt.prepareMock(repo, ledger)

			result, err := service.Review(context.Background(), 5, tt.reviewer, tt.decision, "")
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, result)
		})
	}
}

func TestCancel(t *testing.T) {
	open := []domain.OrderStatus{domain.OrderClaimed, domain.OrderInProgress}

	tests := []struct {
		name          string
		buyerID       int64
		prepareMock   func(repo *MockRepo, tasks *MockTaskRepo, ledger *MockLedger)
		expectedError error
	}{
		{
			name:    "Cancel returns slot and funds",
			buyerID: 3,
			prepareMock: func(repo *MockRepo, tasks *MockTaskRepo, ledger *MockLedger) {
				gomock.InOrder(
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 1), nil),
					repo.EXPECT().Transition(gomock.Any(), int64(5), open, domain.OrderCancelled, "cancelled by buyer", fixedNow).
						Return(order(domain.OrderCancelled, 1), nil),
					tasks.EXPECT().ReleaseSlot(gomock.Any(), int64(1)).Return(&domain.Task{ID: 1}, nil),
					ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Return(nil),
				)
			},
		},
		{
			name:    "Already cancelled by expiry",
			buyerID: 3,
			prepareMock: func(repo *MockRepo, _ *MockTaskRepo, _ *MockLedger) {
				gomock.InOrder(
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil),
					repo.EXPECT().Transition(gomock.Any(), int64(5), open, domain.OrderCancelled, gomock.Any(), fixedNow).Return(nil, nil),
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderCancelled, 0), nil),
				)
			},
		},
		{
			name:    "Submitted orders cannot be cancelled",
			buyerID: 3,
			prepareMock: func(repo *MockRepo, _ *MockTaskRepo, _ *MockLedger) {
				gomock.InOrder(
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil),
					repo.EXPECT().Transition(gomock.Any(), int64(5), open, domain.OrderCancelled, gomock.Any(), fixedNow).Return(nil, nil),
					repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderAwaitingReview, 2), nil),
				)
			},
			expectedError: domain.ErrInvalidState,
		},
		{
			name:    "Another buyer",
			buyerID: 4,
			prepareMock: func(repo *MockRepo, _ *MockTaskRepo, _ *MockLedger) {
				repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil)
			},
			expectedError: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, tasks, ledger := NewMock(t)
			tt.prepareMock(repo, tasks, ledger)

			result, err := service.Cancel(context.Background(), 5, tt.buyerID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.OrderCancelled, result.Status)
		})
	}
}

func TestCancelExpired(t *testing.T) {
	t.Run("Expired order is cancelled", func(t *testing.T) {
		service, repo, tasks, ledger := NewMock(t)
		o := order(domain.OrderClaimed, 0)
		o.DeadlineAt = fixedNow.Add(-time.Second)

		repo.EXPECT().Get(gomock.Any(), int64(5)).Return(o, nil)
		repo.EXPECT().Transition(gomock.Any(), int64(5), gomock.Any(), domain.OrderCancelled, "expired", fixedNow).
			Return(order(domain.OrderCancelled, 0), nil)
		tasks.EXPECT().ReleaseSlot(gomock.Any(), int64(1)).Return(&domain.Task{ID: 1}, nil)
		ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Return(nil)

		result, err := service.CancelExpired(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderCancelled, result.Status)
	})

	t.Run("Not yet expired", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 1), nil)

		result, err := service.CancelExpired(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderInProgress, result.Status)
	})

	t.Run("Submitted before the deadline", func(t *testing.T) {
		service, repo, _, _ := NewMock(t)
		o := order(domain.OrderAwaitingReview, 2)
		o.DeadlineAt = fixedNow.Add(-time.Hour)
		repo.EXPECT().Get(gomock.Any(), int64(5)).Return(o, nil)

		result, err := service.CancelExpired(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderAwaitingReview, result.Status)
	})

	t.Run("Release fails", func(t *testing.T) {
		service, repo, tasks, ledger := NewMock(t)
		o := order(domain.OrderClaimed, 0)
		o.DeadlineAt = fixedNow.Add(-time.Second)

		repo.EXPECT().Get(gomock.Any(), int64(5)).Return(o, nil)
		repo.EXPECT().Transition(gomock.Any(), int64(5), gomock.Any(), domain.OrderCancelled, "expired", fixedNow).
			Return(order(domain.OrderCancelled, 0), nil)
		tasks.EXPECT().ReleaseSlot(gomock.Any(), int64(1)).Return(&domain.Task{ID: 1}, nil)
		ledger.EXPECT().Release(gomock.Any(), gomock.Any()).Return(errors.New("db error"))

		_, err := service.CancelExpired(context.Background(), 5)
		assert.EqualError(t, err, "db error")
	})
}

func TestGetOrder(t *testing.T) {
	tests := []struct {
		name          string
		actor         domain.Actor
		expectedError error
	}{
		{"Owner buyer", buyer, nil},
		{"Task merchant", merchant, nil},
		{"Admin", admin, nil},
		{"Other buyer", domain.Actor{ID: 4, Role: domain.RoleBuyer}, domain.ErrForbidden},
		{"Other merchant", domain.Actor{ID: 8, Role: domain.RoleMerchant}, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _, _ := NewMock(t)
			repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderClaimed, 0), nil)

			result, err := service.GetOrder(context.Background(), tt.actor, 5)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, int64(5), result.ID)
			}
		})
	}
}

func TestListSteps(t *testing.T) {
	service, repo, _, _ := NewMock(t)

	repo.EXPECT().Get(gomock.Any(), int64(5)).Return(order(domain.OrderInProgress, 1), nil)
	repo.EXPECT().ListSteps(gomock.Any(), int64(5)).Return([]domain.OrderStep{{OrderID: 5, StepIndex: 1}}, nil)

	steps, err := service.ListSteps(context.Background(), buyer, 5)
	require.NoError(t, err)
	assert.Len(t, steps, 1)
}

func TestListBuyerOrders(t *testing.T) {
	service, repo, _, _ := NewMock(t)

	repo.EXPECT().ListByBuyer(gomock.Any(), int64(3), defaultListLimit).Return([]domain.Order{*order(domain.OrderClaimed, 0)}, nil)
	orders, err := service.ListBuyerOrders(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	repo.EXPECT().ListByBuyer(gomock.Any(), int64(3), maxListLimit).Return(nil, errors.New("db error"))
	_, err = service.ListBuyerOrders(context.Background(), 3, 1000)
	assert.Error(t, err)
}

func TestListExpired(t *testing.T) {
	service, repo, _, _ := NewMock(t)

	repo.EXPECT().FindExpired(gomock.Any(), fixedNow, 100).Return([]domain.Order{*order(domain.OrderClaimed, 0)}, nil)
	orders, err := service.ListExpired(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
