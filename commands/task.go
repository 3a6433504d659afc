package commands

import (
	"fmt"
	"strconv"
	"strings"

	"taskdeck/storage"
)

func init() {
	Register(&Command{
		Name:        "/add",
		Description: "Add a task: /add <title> | <description> | <due date> | <priority>",
		Params: []Param{
			{Name: "title", Description: "Task title, unique per user", Required: true},
			{Name: "description", Description: "Free-text description", Required: false},
			{Name: "due_date", Description: "Due date in YYYY-MM-DD format", Required: false},
			{Name: "priority", Description: "low, medium, or high (default medium)", Required: false},
		},
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}
			if len(args) == 0 {
				fmt.Println("Usage: /add <title> | <description> | <YYYY-MM-DD> | <low|medium|high>")
				return false
			}

			segments := splitSegments(args)
			title := segments[0]
			var description, dueDate string
			priority := "medium"
			if len(segments) > 1 {
				description = segments[1]
			}
			if len(segments) > 2 {
				dueDate = segments[2]
			}
			if len(segments) > 3 && segments[3] != "" {
				priority = segments[3]
			}

			task, err := GetStore().CreateTask(owner, title, description, dueDate, priority)
			if err = persistWarning(err, task != nil); err != nil {
				fmt.Printf("Error creating task: %v\n", err)
				return false
			}

			fmt.Printf("Created task: %s (ID: %d)\n", task.Title, task.ID)
			return false
		},
	})

	Register(&Command{
		Name:        "/tasks",
		Description: "List your tasks, optionally sorted",
		Params: []Param{
			{Name: "sort", Description: "Sort key: due, priority, created, or title", Required: false},
		},
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}

			tasks, err := GetStore().ListTasks(owner)
			if err != nil {
				fmt.Printf("Error listing tasks: %v\n", err)
				return false
			}

			fmt.Printf("Tasks for %s:\n", owner)
			if len(tasks) == 0 {
				fmt.Println("  No tasks yet. Add one with /add <title>")
				return false
			}

			if len(args) > 0 {
				sortTasks(tasks, strings.ToLower(args[0]))
			}
			printTasks(tasks)
			return false
		},
	})

	Register(&Command{
		Name:        "/show",
		Description: "Show a task's full details",
		Params: []Param{
			{Name: "task_id", Description: "The ID of the task to show", Required: true},
		},
		Handler: func(args []string) bool {
			id, ok := parseTaskID(args, "/show <task-id>")
			if !ok {
				return false
			}

			task, err := GetStore().GetTask(id)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			status := "pending"
			if task.Completed {
				status = "completed"
			}
			fmt.Printf("Task %d: %s\n", task.ID, task.Title)
			if task.Description != "" {
				fmt.Printf("  Description: %s\n", task.Description)
			}
			if task.DueDate != nil {
				fmt.Printf("  Due:         %s\n", task.DueDate.Format(storage.DateLayout))
			}
			fmt.Printf("  Priority:    %s\n", strings.ToLower(string(task.Priority)))
			fmt.Printf("  Status:      %s\n", status)
			fmt.Printf("  Owner:       %s\n", task.Owner)
			fmt.Printf("  Created:     %s\n", task.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Printf("  Updated:     %s\n", task.UpdatedAt.Format("2006-01-02 15:04"))
			return false
		},
	})

	Register(&Command{
		Name:        "/edit",
		Description: "Edit a task: /edit <id> field=value | field=value ...",
		Params: []Param{
			{Name: "task_id", Description: "The ID of the task to edit", Required: true},
			{Name: "fields", Description: "title=, desc=, due= (due=none clears), priority=", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) < 2 {
				fmt.Println("Usage: /edit <task-id> field=value | field=value")
				fmt.Println("Fields: title=, desc=, due= (due=none clears), priority=")
				return false
			}

			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("Error: task ID must be a number, got %q\n", args[0])
				return false
			}

			update, err := parseUpdate(splitSegments(args[1:]))
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			task, err := GetStore().EditTask(id, update)
			if err = persistWarning(err, task != nil); err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Updated task %d: %s\n", task.ID, task.Title)
			return false
		},
	})

	Register(&Command{
		Name:        "/del",
		Description: "Delete a task",
		Params: []Param{
			{Name: "task_id", Description: "The ID of the task to delete", Required: true},
		},
		Handler: func(args []string) bool {
			id, ok := parseTaskID(args, "/del <task-id>")
			if !ok {
				return false
			}

			if err := GetStore().DeleteTask(id); err != nil {
				if err = persistWarning(err, taskGone(id)); err != nil {
					fmt.Printf("Error: %v\n", err)
					return false
				}
			}

			fmt.Printf("Deleted task %d\n", id)
			return false
		},
	})

	Register(&Command{
		Name:        "/done",
		Description: "Mark a task as completed",
		Params: []Param{
			{Name: "task_id", Description: "The ID of the task to complete", Required: true},
		},
		Handler: setCompleted("/done <task-id>", true),
	})

	Register(&Command{
		Name:        "/undone",
		Description: "Mark a task as pending",
		Params: []Param{
			{Name: "task_id", Description: "The ID of the task to reopen", Required: true},
		},
		Handler: setCompleted("/undone <task-id>", false),
	})

	Register(&Command{
		Name:        "/toggle",
		Description: "Flip a task's completion state",
		Params: []Param{
			{Name: "task_id", Description: "The ID of the task to toggle", Required: true},
		},
		Handler: func(args []string) bool {
			id, ok := parseTaskID(args, "/toggle <task-id>")
			if !ok {
				return false
			}

			task, err := GetStore().ToggleComplete(id, nil)
			if err = persistWarning(err, task != nil); err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			state := "pending"
			if task.Completed {
				state = "completed"
			}
			fmt.Printf("Task %d is now %s\n", task.ID, state)
			return false
		},
	})
}

// setCompleted builds a handler that sets a task's completed flag to an
// explicit value.
func setCompleted(usage string, value bool) func(args []string) bool {
	return func(args []string) bool {
		id, ok := parseTaskID(args, usage)
		if !ok {
			return false
		}

		completed := value
		task, err := GetStore().ToggleComplete(id, &completed)
		if err = persistWarning(err, task != nil); err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}

		if task.Completed {
			fmt.Printf("Marked task %d as completed ✓\n", task.ID)
		} else {
			fmt.Printf("Marked task %d as pending\n", task.ID)
		}
		return false
	}
}

func parseTaskID(args []string, usage string) (int, bool) {
	if len(args) == 0 {
		fmt.Printf("Usage: %s\n", usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("Error: task ID must be a number, got %q\n", args[0])
		return 0, false
	}
	return id, true
}

// parseUpdate turns "field=value" segments into a partial update.
// due=none clears the due date.
func parseUpdate(segments []string) (storage.TaskUpdate, error) {
	var update storage.TaskUpdate
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		key, value, found := strings.Cut(seg, "=")
		if !found {
			return storage.TaskUpdate{}, fmt.Errorf("expected field=value, got %q", seg)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			v := value
			update.Title = &v
		case "desc", "description":
			v := value
			update.Description = &v
		case "due":
			v := value
			if strings.EqualFold(v, "none") {
				v = ""
			}
			update.DueDate = &v
		case "priority":
			v := value
			update.Priority = &v
		default:
			return storage.TaskUpdate{}, fmt.Errorf("unknown field %q (use title, desc, due, priority)", key)
		}
	}
	if update.Title == nil && update.Description == nil && update.DueDate == nil && update.Priority == nil {
		return storage.TaskUpdate{}, fmt.Errorf("no fields to update")
	}
	return update, nil
}
