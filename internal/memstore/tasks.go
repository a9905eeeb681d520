package memstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/GlebRadaev/taskmart/internal/domain"
)

type Tasks struct{ s *Store }

func (t *Tasks) Create(ctx context.Context, task *domain.Task) error {
	return t.s.do(ctx, func(st *state) error {
		now := time.Now()
		task.ID = st.nextID()
		task.CreatedAt, task.UpdatedAt = now, now
		st.tasks[task.ID] = *task
		return nil
	})
}

func (t *Tasks) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var out *domain.Task
	err := t.s.do(ctx, func(st *state) error {
		if task, ok := st.tasks[id]; ok {
			out = &task
		}
		return nil
	})
	return out, err
}

func (t *Tasks) GetForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	return t.Get(ctx, id)
}

func (t *Tasks) ListByMerchant(ctx context.Context, merchantID int64) ([]domain.Task, error) {
	var out []domain.Task
	err := t.s.do(ctx, func(st *state) error {
		for _, task := range st.tasks {
			if task.MerchantID == merchantID {
				out = append(out, task)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, err
}

func (t *Tasks) IncrementClaimed(ctx context.Context, id int64) (*domain.Task, error) {
	return t.update(ctx, id, func(task *domain.Task) bool {
		if task.Status != domain.TaskActive || !task.HasCapacity() {
			return false
		}
		task.ClaimedSlots++
		task.AutoClosed = task.ClaimedSlots >= task.TotalSlots
		if task.AutoClosed {
			task.Status = domain.TaskClosed
		}
		return true
	})
}

func (t *Tasks) ReleaseSlot(ctx context.Context, id int64) (*domain.Task, error) {
	return t.update(ctx, id, func(task *domain.Task) bool {
		if task.ClaimedSlots <= 0 {
			return false
		}
		task.ClaimedSlots--
		if task.Status == domain.TaskClosed && task.AutoClosed {
			task.Status = domain.TaskActive
		}
		task.AutoClosed = false
		return true
	})
}

func (t *Tasks) UpdateStatus(ctx context.Context, id, merchantID int64, from []domain.TaskStatus, to domain.TaskStatus) (*domain.Task, error) {
	return t.update(ctx, id, func(task *domain.Task) bool {
		if task.MerchantID != merchantID || !slices.Contains(from, task.Status) {
			return false
		}
		task.Status = to
		task.AutoClosed = false
		return true
	})
}

func (t *Tasks) update(ctx context.Context, id int64, apply func(task *domain.Task) bool) (*domain.Task, error) {
	var out *domain.Task
	err := t.s.do(ctx, func(st *state) error {
		task, ok := st.tasks[id]
		if !ok || !apply(&task) {
			return nil
		}
		task.UpdatedAt = time.Now()
		st.tasks[id] = task
		out = &task
		return nil
	})
	return out, err
}
