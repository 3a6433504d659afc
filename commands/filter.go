package commands

import (
	"fmt"
	"strings"

	"taskdeck/storage"
)

func init() {
	Register(&Command{
		Name:        "/find",
		Description: "Search your tasks by title or description",
		Params: []Param{
			{Name: "text", Description: "Case-insensitive substring to search for", Required: true},
		},
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}
			if len(args) == 0 {
				fmt.Println("Usage: /find <text>")
				return false
			}

			query := strings.Join(args, " ")
			tasks, err := GetStore().Filter(owner, storage.FilterSpec{Query: query})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Tasks matching %q:\n", query)
			if len(tasks) == 0 {
				fmt.Println("  No tasks found")
				return false
			}
			printTasks(tasks)
			return false
		},
	})

	Register(&Command{
		Name:        "/filter",
		Description: "Filter tasks: /filter status=pending priority=high overdue=true",
		Params: []Param{
			{Name: "predicates", Description: "status=, priority=, overdue=true; combined with AND", Required: true},
		},
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}
			if len(args) == 0 {
				fmt.Println("Usage: /filter status=<completed|pending> priority=<low|medium|high> overdue=true")
				return false
			}

			spec, err := parseFilterSpec(args)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			tasks, err := GetStore().Filter(owner, spec)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Println("Matching tasks:")
			if len(tasks) == 0 {
				fmt.Println("  No tasks match")
				return false
			}
			printTasks(tasks)
			return false
		},
	})

	Register(&Command{
		Name:        "/overdue",
		Description: "List overdue tasks",
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}

			tasks, err := GetStore().Filter(owner, storage.FilterSpec{Overdue: true})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Println("Overdue tasks:")
			if len(tasks) == 0 {
				fmt.Println("  Nothing overdue")
				return false
			}
			printTasks(tasks)
			return false
		},
	})

	Register(&Command{
		Name:        "/stats",
		Description: "Show task counts for the session user",
		Handler: func(args []string) bool {
			owner, ok := requireUser()
			if !ok {
				return false
			}

			stats, err := GetStore().Stats(owner)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			fmt.Printf("Stats for %s:\n", owner)
			fmt.Printf("  Total:     %d\n", stats.Total)
			fmt.Printf("  Completed: %d\n", stats.Completed)
			fmt.Printf("  Pending:   %d\n", stats.Pending)
			return false
		},
	})
}

func parseFilterSpec(args []string) (storage.FilterSpec, error) {
	var spec storage.FilterSpec
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return storage.FilterSpec{}, fmt.Errorf("expected key=value, got %q", arg)
		}

		switch strings.ToLower(key) {
		case "status":
			status, err := storage.ParseStatus(value)
			if err != nil {
				return storage.FilterSpec{}, err
			}
			spec.Status = &status
		case "priority":
			priority, err := storage.ParsePriority(value)
			if err != nil {
				return storage.FilterSpec{}, err
			}
			spec.Priority = &priority
		case "overdue":
			spec.Overdue = strings.EqualFold(value, "true")
		case "text", "query":
			spec.Query = value
		default:
			return storage.FilterSpec{}, fmt.Errorf("unknown predicate %q (use status, priority, overdue, text)", key)
		}
	}
	return spec, nil
}
