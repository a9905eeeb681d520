package taskrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/internal/pg"
)

const taskColumns = `id, merchant_id, title, total_slots, claimed_slots, step_count, principal, commission, silver_reward, status, auto_closed, created_at, updated_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.MerchantID, &t.Title, &t.TotalSlots, &t.ClaimedSlots, &t.StepCount,
		&t.Principal, &t.Commission, &t.SilverReward, &t.Status, &t.AutoClosed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (merchant_id, title, total_slots, step_count, principal, commission, silver_reward, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		task.MerchantID, task.Title, task.TotalSlots, task.StepCount,
		task.Principal, task.Commission, task.SilverReward, task.Status,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		zap.L().Error("can't create task", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		zap.L().Error("can't get task", zap.Error(err))
		return nil, err
	}
	return task, nil
}

func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		zap.L().Error("can't lock task", zap.Error(err))
		return nil, err
	}
	return task, nil
}

func (r *Repository) ListByMerchant(ctx context.Context, merchantID int64) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE merchant_id = $1 ORDER BY id DESC`
	rows, err := r.db.Query(ctx, query, merchantID)
	if err != nil {
		zap.L().Error("can't list tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			zap.L().Error("can't scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// IncrementClaimed takes one slot of an ACTIVE task and closes the task when
// the last slot is taken. It returns nil when no slot could be taken.
func (r *Repository) IncrementClaimed(ctx context.Context, id int64) (*domain.Task, error) {
	query := `
		UPDATE tasks
		SET claimed_slots = claimed_slots + 1,
		    status = CASE WHEN claimed_slots + 1 >= total_slots THEN 'CLOSED' ELSE status END,
		    auto_closed = claimed_slots + 1 >= total_slots,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'ACTIVE' AND claimed_slots < total_slots
		RETURNING ` + taskColumns
	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		zap.L().Error("can't take task slot", zap.Error(err))
		return nil, err
	}
	return task, nil
}

// ReleaseSlot gives a slot back. A task closed by running out of slots is
// reopened; a task the merchant closed stays closed.
func (r *Repository) ReleaseSlot(ctx context.Context, id int64) (*domain.Task, error) {
	query := `
		UPDATE tasks
		SET claimed_slots = claimed_slots - 1,
		    status = CASE WHEN status = 'CLOSED' AND auto_closed THEN 'ACTIVE' ELSE status END,
		    auto_closed = FALSE,
		    updated_at = NOW()
		WHERE id = $1 AND claimed_slots > 0
		RETURNING ` + taskColumns
	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		zap.L().Error("can't release task slot", zap.Error(err))
		return nil, err
	}
	return task, nil
}

// UpdateStatus moves a merchant's task to status to when it is currently in
// one of from. It returns nil when nothing matched.
func (r *Repository) UpdateStatus(ctx context.Context, id, merchantID int64, from []domain.TaskStatus, to domain.TaskStatus) (*domain.Task, error) {
	query := `
		UPDATE tasks
		SET status = $1, auto_closed = FALSE, updated_at = NOW()
		WHERE id = $2 AND merchant_id = $3 AND status = ANY($4)
		RETURNING ` + taskColumns
	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}
	task, err := scanTask(r.db.QueryRow(ctx, query, to, id, merchantID, statuses))
	if err != nil {
		zap.L().Error("can't update task status", zap.Error(err))
		return nil, err
	}
	return task, nil
}
