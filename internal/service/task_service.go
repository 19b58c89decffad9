package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"choreboard/internal/model"
	"choreboard/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title           string
	Description     string
	IsRecurring     bool
	RecurrenceType  string
	RecurrenceValue int
	RecurrenceDays  []string
	StartDate       *time.Time
	EndDate         *time.Time
	// Position optionally places the new task at a 1-based slot
	// instead of appending it.
	Position *int
}

// TaskUpdate carries a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title           *string
	Description     *string
	IsRecurring     *bool
	RecurrenceType  *string
	RecurrenceValue *int
	RecurrenceDays  []string
	StartDate       *time.Time
	EndDate         *time.Time
}

func (u TaskUpdate) empty() bool {
	return u.Title == nil && u.Description == nil && u.IsRecurring == nil &&
		u.RecurrenceType == nil && u.RecurrenceValue == nil && u.RecurrenceDays == nil &&
		u.StartDate == nil && u.EndDate == nil
}

// TaskService wraps task CRUD and completion recording.
type TaskService struct {
	db          *gorm.DB
	tasks       *repository.TaskRepository
	completions *repository.CompletionRepository
}

func NewTaskService(db *gorm.DB, tasks *repository.TaskRepository, completions *repository.CompletionRepository) *TaskService {
	return &TaskService{db: db, tasks: tasks, completions: completions}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	task := model.Task{
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		IsRecurring:     input.IsRecurring,
		RecurrenceType:  input.RecurrenceType,
		RecurrenceValue: input.RecurrenceValue,
		RecurrenceDays:  strings.Join(input.RecurrenceDays, ","),
		StartDate:       dayPtr(input.StartDate),
		EndDate:         dayPtr(input.EndDate),
		Active:          true,
	}

	if err := validateTask(&task); err != nil {
		return nil, err
	}
	if input.Position != nil && *input.Position < 1 {
		return nil, validationErrorf("position must be a positive integer, got %d", *input.Position)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		slot, err := tasks.NextSortOrder(ctx)
		if err != nil {
			return err
		}
		task.SortOrder = slot

		if err := tasks.Create(ctx, &task); err != nil {
			return err
		}
		if input.Position != nil {
			return placeTask(ctx, tasks, task.ID, *input.Position)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) ListActive(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListActive(ctx)
}

func (s *TaskService) ListRecurring(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListRecurring(ctx)
}

// UpdateTask applies the supplied fields to an existing task. An empty
// update is a no-op.
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint, update TaskUpdate) error {
	if update.empty() {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}

		if update.Title != nil {
			task.Title = strings.TrimSpace(*update.Title)
		}
		if update.Description != nil {
			task.Description = strings.TrimSpace(*update.Description)
		}
		if update.IsRecurring != nil {
			task.IsRecurring = *update.IsRecurring
		}
		if update.RecurrenceType != nil {
			task.RecurrenceType = *update.RecurrenceType
		}
		if update.RecurrenceValue != nil {
			task.RecurrenceValue = *update.RecurrenceValue
		}
		if update.RecurrenceDays != nil {
			task.RecurrenceDays = strings.Join(update.RecurrenceDays, ",")
		}
		if update.StartDate != nil {
			task.StartDate = dayPtr(update.StartDate)
		}
		if update.EndDate != nil {
			task.EndDate = dayPtr(update.EndDate)
		}

		if err := validateTask(task); err != nil {
			return err
		}
		return tasks.Save(ctx, task)
	})
}

// DeleteTask removes a task and its completion log.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.completions.WithTx(tx).DeleteForTask(ctx, taskID); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Delete(ctx, taskID)
	})
}

// CompleteTask logs a completion at the given instant. One-time tasks
// are deactivated in the same transaction, so readers never observe the
// completion without the deactivation. Reports false when the task does
// not exist.
func (s *TaskService) CompleteTask(ctx context.Context, taskID uint, now time.Time) (bool, error) {
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return nil
		}
		found = true

		completion := model.Completion{TaskID: taskID, CompletedAt: now}
		if err := s.completions.WithTx(tx).Create(ctx, &completion); err != nil {
			return err
		}
		if !task.IsRecurring {
			return tasks.Deactivate(ctx, taskID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// CompletionHistory returns a task's completions, most recent first.
// A non-positive limit falls back to 50.
func (s *TaskService) CompletionHistory(ctx context.Context, taskID uint, limit int) ([]model.Completion, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.completions.ListForTask(ctx, taskID, limit)
}

func validateTask(task *model.Task) error {
	if task.Title == "" {
		return validationErrorf("title is required")
	}
	if !task.IsRecurring {
		return nil
	}

	switch task.RecurrenceType {
	case model.RecurDays, model.RecurWeeks, model.RecurMonths:
		if task.RecurrenceValue < 1 {
			return validationErrorf("recurrence value must be a positive integer, got %d", task.RecurrenceValue)
		}
	case model.RecurWeekdays:
		days := task.WeekdaySet()
		if len(days) == 0 {
			return validationErrorf("weekday recurrence requires at least one weekday")
		}
		for _, day := range days {
			if !model.ValidWeekdayTag(day) {
				return validationErrorf("unknown weekday %q", day)
			}
		}
	case model.RecurNone:
		return validationErrorf("recurrence type is required for recurring tasks")
	default:
		return validationErrorf("unknown recurrence type %q", task.RecurrenceType)
	}
	return nil
}

// dayPtr truncates a timestamp to local midnight. Window bounds are
// calendar dates, never instants.
func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &day
}
