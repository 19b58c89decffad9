package model

import (
	"strings"
	"time"
)

// Recurrence types a task can carry. Interval types advance from the
// date of the last completion; RecurWeekdays matches fixed weekdays.
const (
	RecurNone     = ""
	RecurDays     = "days"
	RecurWeeks    = "weeks"
	RecurMonths   = "months"
	RecurWeekdays = "weekdays"
)

// Task represents a single chore on the board.
type Task struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"not null" json:"title"`
	Description     string `json:"description"`
	IsRecurring     bool   `gorm:"default:false" json:"is_recurring"`
	RecurrenceType  string `json:"recurrence_type"`
	RecurrenceValue int    `json:"recurrence_value"`
	// RecurrenceDays is a comma-separated weekday set, e.g. "tue,fri".
	RecurrenceDays string     `json:"recurrence_days"`
	StartDate      *time.Time `gorm:"type:date" json:"start_date"`
	EndDate        *time.Time `gorm:"type:date" json:"end_date"`
	SortOrder      int        `gorm:"index" json:"sort_order"`
	Active         bool       `gorm:"default:true" json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// Completion is an append-only record of a task being done.
type Completion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`

	Task Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Completion) TableName() string {
	return "completions"
}

var weekdayTags = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// WeekdayTag returns the short tag used in RecurrenceDays for a weekday.
func WeekdayTag(d time.Weekday) string {
	return weekdayTags[d]
}

// ValidWeekdayTag reports whether tag names a weekday.
func ValidWeekdayTag(tag string) bool {
	for _, t := range weekdayTags {
		if t == tag {
			return true
		}
	}
	return false
}

// WeekdaySet splits the stored RecurrenceDays value into tags,
// dropping empty entries and surrounding whitespace.
func (t Task) WeekdaySet() []string {
	if t.RecurrenceDays == "" {
		return nil
	}
	parts := strings.Split(t.RecurrenceDays, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, strings.ToLower(trimmed))
		}
	}
	return tags
}

// ScheduledOn reports whether a weekdays-mode task is scheduled on the
// given weekday.
func (t Task) ScheduledOn(d time.Weekday) bool {
	tag := WeekdayTag(d)
	for _, day := range t.WeekdaySet() {
		if day == tag {
			return true
		}
	}
	return false
}
