package commands

import (
	"fmt"
	"time"

	"taskdeck/storage"
)

func init() {
	Register(&Command{
		Name:        "/today",
		Description: "List your tasks due today",
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}

			today := dateOnly(time.Now())
			tomorrow := today.AddDate(0, 0, 1)

			listTasksInRange(owner, "today", today, tomorrow)
			return false
		},
	})

	Register(&Command{
		Name:        "/week",
		Description: "List your tasks due within the next 7 days",
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}

			today := dateOnly(time.Now())
			weekEnd := today.AddDate(0, 0, 7)

			listTasksInRange(owner, "this week", today, weekEnd)
			return false
		},
	})
}

// dateOnly extracts just the year, month, day as a comparable date in
// the local timezone, treating the due date as a calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// listTasksInRange lists pending tasks with due dates in [start, end)
func listTasksInRange(owner, label string, start, end time.Time) {
	tasks, err := GetStore().ListTasks(owner)
	if err != nil {
		fmt.Printf("Error listing tasks: %v\n", err)
		return
	}

	var filtered []*storage.Task
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		due := dateOnly(*t.DueDate)
		if !due.Before(start) && due.Before(end) {
			filtered = append(filtered, t)
		}
	}

	fmt.Printf("Tasks due %s:\n", label)
	if len(filtered) == 0 {
		fmt.Println("  No tasks due")
		return
	}

	sortTasks(filtered, "due")
	printTasks(filtered)
}
