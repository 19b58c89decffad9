package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"choreboard/internal/model"
)

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListActive returns active tasks in display order. Ties on sort_order
// fall back to id ascending, which matters only for rows not yet
// renumbered.
func (r *TaskRepository) ListActive(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("active = ?", true).
		Order("sort_order, id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListRecurring(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("active = ? AND is_recurring = ?", true, true).
		Order("sort_order, id").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return tasks, nil
}

// FindByID fetches a task regardless of its active flag. Returns
// (nil, nil) when no such task exists.
func (r *TaskRepository) FindByID(ctx context.Context, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	return &task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task %d: %w", task.ID, err)
	}
	return nil
}

func (r *TaskRepository) SetSortOrder(ctx context.Context, taskID uint, sortOrder int) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("sort_order", sortOrder).Error; err != nil {
		return fmt.Errorf("set sort order of task %d: %w", taskID, err)
	}
	return nil
}

func (r *TaskRepository) Deactivate(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", taskID).
		Update("active", false).Error; err != nil {
		return fmt.Errorf("deactivate task %d: %w", taskID, err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Task{}, taskID).Error; err != nil {
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}
	return nil
}

// NextSortOrder returns the slot a newly appended task should take:
// max(existing)+1, or 0 when the board is empty.
func (r *TaskRepository) NextSortOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("active = ?", true).
		Select("MAX(sort_order)").
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}
