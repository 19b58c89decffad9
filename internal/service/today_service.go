package service

import (
	"context"
	"time"

	"choreboard/internal/model"
	"choreboard/internal/repository"
)

// TodayTask is a dashboard row: the task plus whether it has already
// been completed today. Rows already done today or not yet due are
// omitted from the list instead, so the flag stays false for every row
// returned; the dashboard JS still reads it.
type TodayTask struct {
	model.Task
	CompletedToday bool `json:"completed_today"`
}

// TodayService decides which tasks belong on today's dashboard.
// Evaluation is pure given the clock and the completion log; nothing is
// mutated.
type TodayService struct {
	tasks       *repository.TaskRepository
	completions *repository.CompletionRepository
}

func NewTodayService(tasks *repository.TaskRepository, completions *repository.CompletionRepository) *TodayService {
	return &TodayService{tasks: tasks, completions: completions}
}

// TasksForToday returns the dashboard list for the given instant, in
// display order.
func (s *TodayService) TasksForToday(ctx context.Context, now time.Time) ([]TodayTask, error) {
	active, err := s.tasks.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	today := dateOf(now)
	rows := make([]TodayTask, 0, len(active))

	for _, task := range active {
		if !withinWindow(task, today) {
			continue
		}

		// An active one-time task is by definition not yet done.
		if !task.IsRecurring {
			rows = append(rows, TodayTask{Task: task})
			continue
		}

		if task.RecurrenceType == model.RecurWeekdays {
			if !task.ScheduledOn(now.Weekday()) {
				continue
			}
			done, err := s.completions.CompletedOn(ctx, task.ID, now)
			if err != nil {
				return nil, err
			}
			if done {
				continue
			}
			rows = append(rows, TodayTask{Task: task})
			continue
		}

		last, err := s.completions.Last(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if last == nil {
			rows = append(rows, TodayTask{Task: task})
			continue
		}
		if !today.Before(nextDueDate(task, dateOf(last.CompletedAt))) {
			rows = append(rows, TodayTask{Task: task})
		}
	}

	return rows, nil
}

// withinWindow applies the task's optional active-date window,
// inclusive on both ends.
func withinWindow(task model.Task, today time.Time) bool {
	if task.StartDate != nil && today.Before(dateOf(*task.StartDate)) {
		return false
	}
	if task.EndDate != nil && today.After(dateOf(*task.EndDate)) {
		return false
	}
	return true
}

// nextDueDate computes when an interval-mode task comes due again,
// anchored on the date (not time) of its last completion so it becomes
// due at local midnight. Unrecognized types fall back to a 1-day
// interval.
func nextDueDate(task model.Task, lastDate time.Time) time.Time {
	interval := task.RecurrenceValue
	if interval < 1 {
		interval = 1
	}

	switch task.RecurrenceType {
	case model.RecurDays:
		return lastDate.AddDate(0, 0, interval)
	case model.RecurWeeks:
		return lastDate.AddDate(0, 0, 7*interval)
	case model.RecurMonths:
		// The day of month is clamped to 28 to dodge invalid dates
		// like Feb 30, at the cost of early due dates for tasks
		// completed at month end.
		month := int(lastDate.Month()) + interval
		year := lastDate.Year() + (month-1)/12
		month = (month-1)%12 + 1
		day := lastDate.Day()
		if day > 28 {
			day = 28
		}
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, lastDate.Location())
	default:
		return lastDate.AddDate(0, 0, 1)
	}
}

// dateOf truncates an instant to local midnight.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
