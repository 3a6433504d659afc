package storage

import (
	"strings"
	"time"
)

// Priority represents a task priority level
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ValidPriorities lists all valid priority values
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank returns a numeric weight for sorting (higher is more urgent)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Status filters tasks by completion state
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Task represents a single task owned by a user
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	Owner       string     `json:"owner"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overdue reports whether the task's due date has passed without completion.
// Derived, never stored.
func (t *Task) Overdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

// User represents a registered user. Tasks reference users by name.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// TaskUpdate describes a partial edit. A nil field is left unchanged.
// An empty DueDate string clears the due date.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *string
}

// FilterSpec selects tasks by status, priority, overdue state, and
// free-text query. All supplied predicates combine with AND.
type FilterSpec struct {
	Status   *Status
	Priority *Priority
	Overdue  bool
	Query    string
}

// Matches reports whether the task satisfies every supplied predicate.
func (f FilterSpec) Matches(t *Task, now time.Time) bool {
	if f.Status != nil {
		if *f.Status == StatusCompleted && !t.Completed {
			return false
		}
		if *f.Status == StatusPending && t.Completed {
			return false
		}
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Overdue && !t.Overdue(now) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Stats holds per-owner task counts
type Stats struct {
	Total     int
	Completed int
	Pending   int
}
