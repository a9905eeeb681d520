package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/dto"
	"github.com/GlebRadaev/taskmart/pkg/auth"
)

func NewMock(t *testing.T) (*OrderHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	handler := New(service)
	return handler, service
}

func request(method, target, body string, actor domain.Actor, id string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, auth.UserIDKey, actor.ID)
	ctx = context.WithValue(ctx, auth.RoleKey, string(actor.Role))
	return r.WithContext(ctx)
}

var (
	buyer    = domain.Actor{ID: 5, Role: domain.RoleBuyer}
	merchant = domain.Actor{ID: 7, Role: domain.RoleMerchant}
)

func TestGetOrdersHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		target       string
		prepareMock  func()
		expectedCode int
		expectedLen  int
	}{
		{
			name:   "Successful retrieval",
			target: "/api/orders?limit=10",
			prepareMock: func() {
				service.EXPECT().ListBuyerOrders(gomock.Any(), int64(5), 10).
					Return([]domain.Order{{ID: 2}, {ID: 1}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedLen:  2,
		},
		{
			name:   "No orders",
			target: "/api/orders",
			prepareMock: func() {
				service.EXPECT().ListBuyerOrders(gomock.Any(), int64(5), 0).Return(nil, nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:   "Internal server error",
			target: "/api/orders",
			prepareMock: func() {
				service.EXPECT().ListBuyerOrders(gomock.Any(), int64(5), 0).Return(nil, errors.New("error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.GetOrders(w, request(http.MethodGet, tt.target, "", buyer, ""))
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var body []dto.OrderResponseDTO
				_ = json.NewDecoder(w.Body).Decode(&body)
				assert.Len(t, body, tt.expectedLen)
			}
		})
	}
}

func TestGetOrderHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		id           string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Owner",
			id:   "9",
			prepareMock: func() {
				service.EXPECT().GetOrder(gomock.Any(), buyer, int64(9)).Return(&domain.Order{ID: 9, BuyerID: 5}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Stranger",
			id:   "9",
			prepareMock: func() {
				service.EXPECT().GetOrder(gomock.Any(), buyer, int64(9)).Return(nil, domain.ErrForbidden)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Bad id",
			id:           "0",
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.GetOrder(w, request(http.MethodGet, "/", "", buyer, tt.id))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestGetStepsHandler(t *testing.T) {
	handler, service := NewMock(t)

	service.EXPECT().ListSteps(gomock.Any(), merchant, int64(9)).
		Return([]domain.OrderStep{{OrderID: 9, StepIndex: 1, Payload: json.RawMessage(`{"url":"x"}`)}}, nil)

	w := httptest.NewRecorder()
	handler.GetSteps(w, request(http.MethodGet, "/", "", merchant, "9"))

	var body []dto.OrderStepResponseDTO
	_ = json.NewDecoder(w.Body).Decode(&body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body, 1)
	assert.JSONEq(t, `{"url":"x"}`, string(body[0].Payload))
}

func TestSubmitStepHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Accepted",
			body: `{"step_index":1,"payload":{"screenshot":"a.png"}}`,
			prepareMock: func() {
				service.EXPECT().
					SubmitStep(gomock.Any(), int64(9), int64(5), 1, json.RawMessage(`{"screenshot":"a.png"}`)).
					Return(&domain.Order{ID: 9, CurrentStep: 1, Status: domain.OrderInProgress}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Skipped step",
			body: `{"step_index":3}`,
			prepareMock: func() {
				service.EXPECT().SubmitStep(gomock.Any(), int64(9), int64(5), 3, gomock.Any()).
					Return(nil, domain.ErrInvalidStep)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Invalid body",
			body:         `[`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.SubmitStep(w, request(http.MethodPost, "/", tt.body, buyer, "9"))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestCancelHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Cancelled",
			prepareMock: func() {
				service.EXPECT().Cancel(gomock.Any(), int64(9), int64(5)).
					Return(&domain.Order{ID: 9, Status: domain.OrderCancelled}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Already under review",
			prepareMock: func() {
				service.EXPECT().Cancel(gomock.Any(), int64(9), int64(5)).Return(nil, domain.ErrInvalidState)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.Cancel(w, request(http.MethodPost, "/", "", buyer, "9"))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}

func TestReviewHandler(t *testing.T) {
	handler, service := NewMock(t)

	tests := []struct {
		name         string
		body         string
		prepareMock  func()
		expectedCode int
	}{
		{
			name: "Approved",
			body: `{"decision":"approve"}`,
			prepareMock: func() {
				service.EXPECT().Review(gomock.Any(), int64(9), merchant, domain.DecisionApprove, "").
					Return(&domain.Order{ID: 9, Status: domain.OrderCompleted}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Reviewed twice",
			body: `{"decision":"reject","reason":"blurry"}`,
			prepareMock: func() {
				service.EXPECT().Review(gomock.Any(), int64(9), merchant, domain.DecisionReject, "blurry").
					Return(nil, domain.ErrInvalidState)
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "Unknown decision",
			body:         `{"decision":"maybe"}`,
			prepareMock:  func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			w := httptest.NewRecorder()
			handler.Review(w, request(http.MethodPost, "/", tt.body, merchant, "9"))
			assert.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
