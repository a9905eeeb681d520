package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

type insertCall struct {
	tx   pgx.Tx
	args river.JobArgs
	opts *river.InsertOpts
}

type fakeInserter struct {
	calls []insertCall
	err   error
}

func (f *fakeInserter) Insert(_ context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	f.calls = append(f.calls, insertCall{args: args, opts: opts})
	return &rivertype.JobInsertResult{}, f.err
}

func (f *fakeInserter) InsertTx(_ context.Context, tx pgx.Tx, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	f.calls = append(f.calls, insertCall{tx: tx, args: args, opts: opts})
	return &rivertype.JobInsertResult{}, f.err
}

func TestRiverScheduler_ScheduleExpiry(t *testing.T) {
	at := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)

	t.Run("Outside a transaction", func(t *testing.T) {
		client := &fakeInserter{}
		err := NewRiverScheduler(client).ScheduleExpiry(context.Background(), 5, at)
		require.NoError(t, err)
		require.Len(t, client.calls, 1)
		assert.Nil(t, client.calls[0].tx)
		assert.Equal(t, ExpireOrderArgs{OrderID: 5}, client.calls[0].args)
		assert.Equal(t, at, client.calls[0].opts.ScheduledAt)
	})

	t.Run("Joins the open transaction", func(t *testing.T) {
		conn, err := pgxmock.NewConn()
		require.NoError(t, err)
		conn.ExpectBegin()
		tx, err := conn.Begin(context.Background())
		require.NoError(t, err)

		client := &fakeInserter{}
		err = NewRiverScheduler(client).ScheduleExpiry(pg.ContextWithTx(context.Background(), tx), 5, at)
		require.NoError(t, err)
		require.Len(t, client.calls, 1)
		assert.Equal(t, tx, client.calls[0].tx)
	})

	t.Run("Insert fails", func(t *testing.T) {
		client := &fakeInserter{err: errors.New("queue down")}
		err := NewRiverScheduler(client).ScheduleExpiry(context.Background(), 5, at)
		assert.EqualError(t, err, "queue down")
	})
}

func TestExpireOrderWorker_Work(t *testing.T) {
	job := &river.Job[ExpireOrderArgs]{JobRow: &rivertype.JobRow{ID: 1}, Args: ExpireOrderArgs{OrderID: 5}}

	tests := []struct {
		name        string
		prepareMock func(orders *MockExpirer)
		check       func(t *testing.T, err error)
	}{
		{
			name: "Cancels the expired order",
			prepareMock: func(orders *MockExpirer) {
				orders.EXPECT().CancelExpired(gomock.Any(), int64(5)).Return(&domain.Order{ID: 5, Status: domain.OrderCancelled}, nil)
			},
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "Order already finished",
			prepareMock: func(orders *MockExpirer) {
				orders.EXPECT().CancelExpired(gomock.Any(), int64(5)).Return(&domain.Order{ID: 5, Status: domain.OrderAwaitingReview}, nil)
			},
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "Order gone",
			prepareMock: func(orders *MockExpirer) {
				orders.EXPECT().CancelExpired(gomock.Any(), int64(5)).Return(nil, domain.ErrNotFound)
			},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrNotFound) },
		},
		{
			name: "Fired before the deadline",
			prepareMock: func(orders *MockExpirer) {
				orders.EXPECT().CancelExpired(gomock.Any(), int64(5)).
					Return(&domain.Order{ID: 5, Status: domain.OrderInProgress, DeadlineAt: time.Now().Add(time.Minute)}, nil)
			},
			check: func(t *testing.T, err error) { assert.Error(t, err) },
		},
		{
			name: "Transient failure",
			prepareMock: func(orders *MockExpirer) {
				orders.EXPECT().CancelExpired(gomock.Any(), int64(5)).Return(nil, errors.New("db error"))
			},
			check: func(t *testing.T, err error) { assert.EqualError(t, err, "db error") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := NewMockExpirer(gomock.NewController(t))
			tt.prepareMock(orders)
			tt.check(t, NewExpireOrderWorker(orders).Work(context.Background(), job))
		})
	}
}
