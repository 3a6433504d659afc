package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"taskdeck/storage"
)

// splitSegments joins args back into one line and splits it on "|",
// trimming each segment. Lets multi-word values pass through the
// whitespace-tokenized command line.
func splitSegments(args []string) []string {
	joined := strings.Join(args, " ")
	parts := strings.Split(joined, "|")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		segments = append(segments, strings.TrimSpace(p))
	}
	return segments
}

// taskLine renders one task for list output
func taskLine(t *storage.Task) string {
	status := "[ ]"
	if t.Completed {
		status = "[✓]"
	}

	extras := []string{strings.ToLower(string(t.Priority))}
	if t.DueDate != nil {
		extras = append(extras, "due "+t.DueDate.Format(storage.DateLayout))
		if t.Overdue(time.Now()) {
			extras = append(extras, "overdue")
		}
	}

	return fmt.Sprintf("  %s [%d] %s (%s)", status, t.ID, t.Title, strings.Join(extras, ", "))
}

func printTasks(tasks []*storage.Task) {
	for _, t := range tasks {
		fmt.Println(taskLine(t))
	}
}

// sortTasks orders tasks by the given key; unknown keys keep insertion
// order.
func sortTasks(tasks []*storage.Task, key string) {
	switch key {
	case "due":
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i].DueDate, tasks[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case "priority":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		})
	case "created":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	case "title":
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	}
}

// persistWarning separates a failed snapshot write from real failures.
// The downgrade to a warning applies only when the mutation survived in
// memory, which the caller signals through applied; a backend that
// could not apply the change at all keeps its error.
func persistWarning(err error, applied bool) error {
	var perr *storage.PersistenceError
	if !errors.As(err, &perr) || !applied {
		return err
	}
	fmt.Printf("Warning: change kept in memory but not saved: %v\n", perr)
	return nil
}

// taskGone reports whether an id no longer resolves to a task. Used
// after a delete that hit a persistence error to tell a failed
// snapshot write from a delete that never happened.
func taskGone(id int) bool {
	_, err := GetStore().GetTask(id)
	var nferr *storage.NotFoundError
	return errors.As(err, &nferr)
}
