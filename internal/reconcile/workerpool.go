package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type WorkerPoolI interface {
	AddJob(ctx context.Context, job Job) error
	Close()
}

type Job func() error

// WorkerPool runs jobs on a fixed number of goroutines.
type WorkerPool struct {
	pool chan Job
	once sync.Once
}

func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	wp := &WorkerPool{pool: make(chan Job, size)}

	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	for job := range wp.pool {
		if err := job(); err != nil {
			zap.L().Error("reconcile job failed", zap.Error(err))
		}
	}
}

// AddJob blocks until a worker slot is free or ctx is done.
func (wp *WorkerPool) AddJob(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.pool <- job:
		return nil
	}
}

func (wp *WorkerPool) Close() {
	wp.once.Do(func() { close(wp.pool) })
}
