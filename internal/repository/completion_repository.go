package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"choreboard/internal/model"
)

// CompletionRepository handles the append-only completion log.
type CompletionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *CompletionRepository) WithTx(tx *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: tx}
}

func (r *CompletionRepository) Create(ctx context.Context, completion *model.Completion) error {
	if err := r.db.WithContext(ctx).Omit("Task").Create(completion).Error; err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

// Last returns the most recent completion of a task, or (nil, nil) if
// it has never been completed.
func (r *CompletionRepository) Last(ctx context.Context, taskID uint) (*model.Completion, error) {
	var completion model.Completion
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("completed_at DESC").
		First(&completion).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completion of task %d: %w", taskID, err)
	}
	return &completion, nil
}

// CompletedOn reports whether a task has a completion falling on the
// calendar day containing the given instant.
func (r *CompletionRepository) CompletedOn(ctx context.Context, taskID uint, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Completion{}).
		Where("task_id = ? AND completed_at >= ? AND completed_at < ?", taskID, start, end).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("completions of task %d on %s: %w", taskID, start.Format("2006-01-02"), err)
	}
	return count > 0, nil
}

// ListForTask returns a task's completions, most recent first.
func (r *CompletionRepository) ListForTask(ctx context.Context, taskID uint, limit int) ([]model.Completion, error) {
	var completions []model.Completion
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("list completions of task %d: %w", taskID, err)
	}
	return completions, nil
}

// DeleteForTask removes all completions of a task. Called alongside
// task deletion so the cascade does not depend on the sqlite
// foreign_keys pragma being active.
func (r *CompletionRepository) DeleteForTask(ctx context.Context, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Delete(&model.Completion{}).Error; err != nil {
		return fmt.Errorf("delete completions of task %d: %w", taskID, err)
	}
	return nil
}
