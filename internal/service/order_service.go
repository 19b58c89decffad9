package service

import (
	"context"

	"gorm.io/gorm"

	"choreboard/internal/model"
	"choreboard/internal/repository"
)

// OrderService maintains the display order of active tasks.
type OrderService struct {
	db    *gorm.DB
	tasks *repository.TaskRepository
}

func NewOrderService(db *gorm.DB, tasks *repository.TaskRepository) *OrderService {
	return &OrderService{db: db, tasks: tasks}
}

// Reorder renumbers active tasks to match the requested id sequence.
// Ids missing from the request keep their relative order after the
// requested ones; ids not on the board are ignored. An empty sequence
// is rejected.
func (s *OrderService) Reorder(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return validationErrorf("task order is required")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		active, err := tasks.ListActive(ctx)
		if err != nil {
			return err
		}

		byID := make(map[uint]model.Task, len(active))
		for _, task := range active {
			byID[task.ID] = task
		}

		ordered := make([]model.Task, 0, len(active))
		placed := make(map[uint]bool, len(ids))
		for _, id := range ids {
			task, ok := byID[id]
			if !ok || placed[id] {
				continue
			}
			placed[id] = true
			ordered = append(ordered, task)
		}
		for _, task := range active {
			if !placed[task.ID] {
				ordered = append(ordered, task)
			}
		}

		return renumber(ctx, tasks, ordered)
	})
}

// SetPosition moves a task to a 1-based slot among active tasks,
// clamping positions beyond the end of the list. Unknown or inactive
// ids are a no-op.
func (s *OrderService) SetPosition(ctx context.Context, taskID uint, position int) error {
	if position < 1 {
		return validationErrorf("position must be a positive integer, got %d", position)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return placeTask(ctx, s.tasks.WithTx(tx), taskID, position)
	})
}

func placeTask(ctx context.Context, tasks *repository.TaskRepository, taskID uint, position int) error {
	active, err := tasks.ListActive(ctx)
	if err != nil {
		return err
	}

	var moved *model.Task
	rest := make([]model.Task, 0, len(active))
	for _, task := range active {
		if task.ID == taskID {
			t := task
			moved = &t
			continue
		}
		rest = append(rest, task)
	}
	if moved == nil {
		return nil
	}

	index := position - 1
	if index > len(rest) {
		index = len(rest)
	}

	ordered := make([]model.Task, 0, len(active))
	ordered = append(ordered, rest[:index]...)
	ordered = append(ordered, *moved)
	ordered = append(ordered, rest[index:]...)

	return renumber(ctx, tasks, ordered)
}

// renumber assigns a dense 0..N-1 sort order matching the given
// sequence, writing only rows whose slot actually changed.
func renumber(ctx context.Context, tasks *repository.TaskRepository, ordered []model.Task) error {
	for i, task := range ordered {
		if task.SortOrder == i {
			continue
		}
		if err := tasks.SetSortOrder(ctx, task.ID, i); err != nil {
			return err
		}
	}
	return nil
}
