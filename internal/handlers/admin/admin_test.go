package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/dto"
	"github.com/GlebRadaev/taskmart/pkg/auth"
)

const adminID = int64(100)

func NewMock(t *testing.T) (*AdminHandler, *MockLedgerService, *MockWithdrawalService) {
	ctrl := gomock.NewController(t)
	ledger := NewMockLedgerService(ctrl)
	withdrawals := NewMockWithdrawalService(ctrl)
	return New(ledger, withdrawals), ledger, withdrawals
}

func request(method, target, body string, params map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, auth.UserIDKey, adminID)
	ctx = context.WithValue(ctx, auth.RoleKey, auth.RoleAdmin)
	return r.WithContext(ctx)
}

func TestListWithdrawalsHandler(t *testing.T) {
	handler, _, withdrawals := NewMock(t)

	withdrawals.EXPECT().ListByStatus(gomock.Any(), domain.WithdrawalApprovedPendingTransfer, 0).
		Return([]domain.Withdrawal{{ID: 1}, {ID: 2}}, nil)

	w := httptest.NewRecorder()
	handler.ListWithdrawals(w, request(http.MethodGet, "/?status=approved_pending_transfer", "", nil))

	var body []dto.WithdrawalResponseDTO
	_ = json.NewDecoder(w.Body).Decode(&body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body, 2)
}

func TestReviewWithdrawalHandler(t *testing.T) {
	handler, _, withdrawals := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Rejected",
			body: `{"decision":"reject","remark":"wrong card"}`,
			prepareMock: func() {
				withdrawals.EXPECT().Review(gomock.Any(), int64(4), domain.DecisionReject, "wrong card", adminID).
					Return(&domain.Withdrawal{ID: 4, Status: domain.WithdrawalRejected}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already reviewed",
			body: `{"decision":"approve"}`,
			prepareMock: func() {
				withdrawals.EXPECT().Review(gomock.Any(), int64(4), domain.DecisionApprove, "", adminID).
					Return(nil, domain.ErrAlreadyReviewed)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Bad decision",
			body:         `{"decision":"later"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.ReviewWithdrawal(w, request(http.MethodPost, "/", tt.body, map[string]string{"id": "4"}))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestBatchReviewHandler(t *testing.T) {
	handler, _, withdrawals := NewMock(t)

	withdrawals.EXPECT().BatchReview(gomock.Any(), []int64{1, 2, 3}, domain.DecisionApprove, "", adminID).
		Return(domain.BatchResult{Succeeded: 2, Failed: 1}, nil)

	w := httptest.NewRecorder()
	handler.BatchReview(w, request(http.MethodPost, "/", `{"ids":[1,2,3],"decision":"approve"}`, nil))

	var body dto.BatchReviewResponseDTO
	_ = json.NewDecoder(w.Body).Decode(&body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.BatchReviewResponseDTO{Succeeded: 2, Failed: 1}, body)
}

func TestConfirmPaymentHandler(t *testing.T) {
	handler, _, withdrawals := NewMock(t)

	withdrawals.EXPECT().ConfirmPayment(gomock.Any(), int64(4), adminID).Return(nil, domain.ErrInvalidState)

	w := httptest.NewRecorder()
	handler.ConfirmPayment(w, request(http.MethodPost, "/", "", map[string]string{"id": "4"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOpenAccountHandler(t *testing.T) {
	handler, ledger, _ := NewMock(t)

	ledger.EXPECT().OpenAccount(gomock.Any(), domain.Merchant(7)).
		Return(&domain.Account{Kind: domain.AccountMerchant, ID: 7}, nil)

	w := httptest.NewRecorder()
	handler.OpenAccount(w, request(http.MethodPost, "/", `{"kind":"MERCHANT","id":7}`, nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAdjustHandler(t *testing.T) {
	handler, ledger, _ := NewMock(t)

	tests := []struct {
		name         string
		params       map[string]string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name:   "Debit",
			params: map[string]string{"kind": "buyer", "id": "3"},
			body:   `{"field":"silver","delta":"-2.5","reason":"duplicate reward"}`,
			prepareMock: func() {
				ledger.EXPECT().AdminAdjust(gomock.Any(), domain.Buyer(3), domain.FieldSilver, gomock.Any(), "duplicate reward", adminID).
					DoAndReturn(func(_ context.Context, _ domain.AccountRef, _ domain.Field, delta decimal.Decimal, _ string, _ int64) (decimal.Decimal, error) {
						assert.True(t, delta.Equal(decimal.RequireFromString("-2.5")))
						return decimal.RequireFromString("7.5"), nil
					})
			},
			expectedCode: http.StatusOK,
		},
		{
			name:   "Would go negative",
			params: map[string]string{"kind": "BUYER", "id": "3"},
			body:   `{"field":"balance","delta":"-100","reason":"x"}`,
			prepareMock: func() {
				ledger.EXPECT().AdminAdjust(gomock.Any(), domain.Buyer(3), domain.FieldBalance, gomock.Any(), "x", adminID).
					Return(decimal.Zero, domain.ErrInsufficientFunds)
			},
			expectedCode: http.StatusPaymentRequired,
		},
		{
			name:         "Unknown kind",
			params:       map[string]string{"kind": "bank", "id": "3"},
			body:         `{}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.Adjust(w, request(http.MethodPost, "/", tt.body, tt.params))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestRechargeHandler(t *testing.T) {
	handler, ledger, _ := NewMock(t)

	t.Run("Merchant", func(t *testing.T) {
		ledger.EXPECT().Recharge(gomock.Any(), int64(7), gomock.Any(), "pay_1").
			Return(decimal.NewFromInt(1000), nil)

		w := httptest.NewRecorder()
		handler.Recharge(w, request(http.MethodPost, "/", `{"amount":"1000","external_ref":"pay_1"}`,
			map[string]string{"kind": "merchant", "id": "7"}))

		var body dto.FieldValueResponseDTO
		_ = json.NewDecoder(w.Body).Decode(&body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, body.Value.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("Buyer", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Recharge(w, request(http.MethodPost, "/", `{"amount":"1"}`,
			map[string]string{"kind": "buyer", "id": "3"}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReconcileHandler(t *testing.T) {
	handler, ledger, _ := NewMock(t)

	ledger.EXPECT().Reconcile(gomock.Any(), domain.Merchant(7)).Return(&domain.Reconciliation{
		Account: domain.Account{Kind: domain.AccountMerchant, ID: 7, Balance: decimal.NewFromInt(10)},
		Recorded: map[domain.Field]decimal.Decimal{
			domain.FieldBalance:       decimal.NewFromInt(10),
			domain.FieldFrozenBalance: decimal.Zero,
			domain.FieldSilver:        decimal.Zero,
		},
	}, nil)

	w := httptest.NewRecorder()
	handler.Reconcile(w, request(http.MethodGet, "/", "", map[string]string{"kind": "MERCHANT", "id": "7"}))

	var body dto.ReconcileResponseDTO
	_ = json.NewDecoder(w.Body).Decode(&body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Balanced)
}
