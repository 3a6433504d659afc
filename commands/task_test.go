package commands

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"taskdeck/storage"
)

// setupTestStore wires a temporary store with two seeded users and a
// clean session.
func setupTestStore(t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.json")
	store := storage.NewJSONStore(path, log.New(io.Discard))
	for _, name := range []string{"user1", "user2"} {
		if _, err := store.AddUser(name, ""); err != nil {
			t.Fatalf("Failed to seed user %s: %v", name, err)
		}
	}

	SetStore(store)
	SetSessionUser("")
	t.Cleanup(func() { store.Close() })
}

// run executes a command and returns its captured output
func run(t *testing.T, input string) string {
	t.Helper()

	_, output, err := ExecuteWithOutput(input)
	if err != nil {
		return err.Error()
	}
	return output
}

func TestLoginFlow(t *testing.T) {
	setupTestStore(t)

	output := run(t, "/whoami")
	if !strings.Contains(output, "Not logged in") {
		t.Errorf("Expected not-logged-in message, got: %s", output)
	}

	output = run(t, "/login user1")
	if !strings.Contains(output, "Logged in as user1") {
		t.Errorf("Expected login message, got: %s", output)
	}

	output = run(t, "/whoami")
	if !strings.Contains(output, "user1") {
		t.Errorf("Expected session user, got: %s", output)
	}

	output = run(t, "/login nobody")
	if !strings.Contains(output, "user not found") {
		t.Errorf("Expected user not found, got: %s", output)
	}

	output = run(t, "/logout")
	if !strings.Contains(output, "Logged out from user1") {
		t.Errorf("Expected logout message, got: %s", output)
	}
}

func TestAddRequiresLogin(t *testing.T) {
	setupTestStore(t)

	output := run(t, "/add Buy milk")
	if !strings.Contains(output, "no user selected") {
		t.Errorf("Expected login hint, got: %s", output)
	}
}

func TestTaskLifecycle(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")

	// Create
	output := run(t, "/add Buy groceries | weekly shop | 2030-06-15 | high")
	if !strings.Contains(output, "Created task: Buy groceries (ID: 1)") {
		t.Errorf("Expected creation message, got: %s", output)
	}

	// List
	output = run(t, "/tasks")
	if !strings.Contains(output, "Buy groceries") || !strings.Contains(output, "[ ]") {
		t.Errorf("Expected pending task in list, got: %s", output)
	}
	if !strings.Contains(output, "due 2030-06-15") {
		t.Errorf("Expected due date in list, got: %s", output)
	}

	// Complete
	output = run(t, "/done 1")
	if !strings.Contains(output, "Marked task 1 as completed") {
		t.Errorf("Expected done message, got: %s", output)
	}
	output = run(t, "/tasks")
	if !strings.Contains(output, "[✓]") {
		t.Errorf("Expected checked status, got: %s", output)
	}

	// Reopen
	output = run(t, "/undone 1")
	if !strings.Contains(output, "Marked task 1 as pending") {
		t.Errorf("Expected undone message, got: %s", output)
	}

	// Toggle flips
	output = run(t, "/toggle 1")
	if !strings.Contains(output, "Task 1 is now completed") {
		t.Errorf("Expected toggle message, got: %s", output)
	}

	// Delete
	output = run(t, "/del 1")
	if !strings.Contains(output, "Deleted task 1") {
		t.Errorf("Expected deletion message, got: %s", output)
	}
	output = run(t, "/tasks")
	if strings.Contains(output, "Buy groceries") {
		t.Errorf("Deleted task should not appear, got: %s", output)
	}
}

func TestAddValidationMessages(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")

	run(t, "/add Report")
	output := run(t, "/add report")
	if !strings.Contains(output, "title already exists") {
		t.Errorf("Expected duplicate title error, got: %s", output)
	}

	output = run(t, "/add Bills | | 2024-02-30")
	if !strings.Contains(output, "valid date") {
		t.Errorf("Expected date error, got: %s", output)
	}

	output = run(t, "/add Bills | | 2030-01-01 | urgent")
	if !strings.Contains(output, "priority") {
		t.Errorf("Expected priority error, got: %s", output)
	}

	// Same title is fine for the other user
	run(t, "/login user2")
	output = run(t, "/add report")
	if !strings.Contains(output, "Created task") {
		t.Errorf("Expected creation for other owner, got: %s", output)
	}
}

func TestEditCommand(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")
	run(t, "/add Draft | first pass | 2030-01-01 | low")

	output := run(t, "/edit 1 title=Final draft | priority=high")
	if !strings.Contains(output, "Updated task 1: Final draft") {
		t.Errorf("Expected update message, got: %s", output)
	}

	output = run(t, "/show 1")
	if !strings.Contains(output, "Priority:    high") {
		t.Errorf("Expected high priority in details, got: %s", output)
	}
	if !strings.Contains(output, "first pass") {
		t.Errorf("Omitted description should survive, got: %s", output)
	}

	// due=none clears the date
	output = run(t, "/edit 1 due=none")
	if !strings.Contains(output, "Updated task") {
		t.Errorf("Expected update message, got: %s", output)
	}
	output = run(t, "/show 1")
	if strings.Contains(output, "Due:") {
		t.Errorf("Due date should be cleared, got: %s", output)
	}

	output = run(t, "/edit 999 title=Ghost")
	if !strings.Contains(output, "task not found") {
		t.Errorf("Expected not found error, got: %s", output)
	}

	output = run(t, "/edit 1 color=blue")
	if !strings.Contains(output, "unknown field") {
		t.Errorf("Expected unknown field error, got: %s", output)
	}
}

func TestFilterCommands(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")
	run(t, "/add Write report | quarterly numbers | | high")
	run(t, "/add Water plants | | | low")
	run(t, "/add Pay bills | | 2020-01-01 | high")
	run(t, "/done 2")

	output := run(t, "/filter status=pending priority=high")
	if !strings.Contains(output, "Write report") || !strings.Contains(output, "Pay bills") {
		t.Errorf("Expected both pending high tasks, got: %s", output)
	}
	if strings.Contains(output, "Water plants") {
		t.Errorf("Completed low task should not match, got: %s", output)
	}

	output = run(t, "/overdue")
	if !strings.Contains(output, "Pay bills") {
		t.Errorf("Expected overdue task, got: %s", output)
	}
	if strings.Contains(output, "Write report") {
		t.Errorf("Task without due date is not overdue, got: %s", output)
	}

	output = run(t, "/find quarterly")
	if !strings.Contains(output, "Write report") {
		t.Errorf("Expected description match, got: %s", output)
	}

	output = run(t, "/stats")
	if !strings.Contains(output, "Total:     3") ||
		!strings.Contains(output, "Completed: 1") ||
		!strings.Contains(output, "Pending:   2") {
		t.Errorf("Expected 3/1/2 stats, got: %s", output)
	}

	output = run(t, "/filter status=done")
	if !strings.Contains(output, "'completed' or 'pending'") {
		t.Errorf("Expected status error, got: %s", output)
	}
}

func TestTasksSorting(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")
	run(t, "/add Banana | | | low")
	run(t, "/add Apple | | | high")

	output := run(t, "/tasks title")
	apple := strings.Index(output, "Apple")
	banana := strings.Index(output, "Banana")
	if apple == -1 || banana == -1 || apple > banana {
		t.Errorf("Expected title sort, got: %s", output)
	}

	output = run(t, "/tasks priority")
	apple = strings.Index(output, "Apple")
	banana = strings.Index(output, "Banana")
	if apple > banana {
		t.Errorf("Expected high before low, got: %s", output)
	}
}

func TestUserCommands(t *testing.T) {
	setupTestStore(t)

	output := run(t, "/users")
	if !strings.Contains(output, "user1") || !strings.Contains(output, "user2") {
		t.Errorf("Expected seeded users, got: %s", output)
	}

	output = run(t, "/adduser carol carol@example.com")
	if !strings.Contains(output, "Added user: carol") {
		t.Errorf("Expected adduser message, got: %s", output)
	}

	output = run(t, "/adduser carol")
	if !strings.Contains(output, "already exists") {
		t.Errorf("Expected duplicate user error, got: %s", output)
	}

	output = run(t, "/adduser dave not-an-email")
	if !strings.Contains(output, "email") {
		t.Errorf("Expected email error, got: %s", output)
	}

	output = run(t, "/users")
	if !strings.Contains(output, "<carol@example.com>") {
		t.Errorf("Expected email in user list, got: %s", output)
	}
}

func TestScheduleCommands(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")

	output := run(t, "/today")
	if !strings.Contains(output, "No tasks due") {
		t.Errorf("Expected empty schedule, got: %s", output)
	}

	// A task due far in the future is not in this week
	run(t, "/add Later | | 2099-01-01 | low")
	output = run(t, "/week")
	if strings.Contains(output, "Later") {
		t.Errorf("Far-future task should not be due this week, got: %s", output)
	}
}

func TestCommandUsageMessages(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")

	tests := []struct {
		command  string
		expected string
	}{
		{"/add", "Usage: /add"},
		{"/show", "Usage: /show <task-id>"},
		{"/edit", "Usage: /edit <task-id>"},
		{"/del", "Usage: /del <task-id>"},
		{"/done", "Usage: /done <task-id>"},
		{"/undone", "Usage: /undone <task-id>"},
		{"/toggle", "Usage: /toggle <task-id>"},
		{"/find", "Usage: /find <text>"},
		{"/filter", "Usage: /filter"},
		{"/login", "Usage: /login <name>"},
		{"/adduser", "Usage: /adduser <name>"},
	}

	for _, tc := range tests {
		t.Run(tc.command, func(t *testing.T) {
			output := run(t, tc.command)
			if !strings.Contains(output, tc.expected) {
				t.Errorf("Expected usage message %q, got: %s", tc.expected, output)
			}
		})
	}
}

func TestBackendFailureReportsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	store, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if _, err := store.AddUser("user1", ""); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	SetStore(store)
	SetSessionUser("")
	run(t, "/login user1")
	run(t, "/add Draft | | | low")

	// With the database gone, mutations fail outright; that is an
	// error, never a kept-in-memory warning
	if err := store.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}

	for _, command := range []string{
		"/edit 1 title=Final",
		"/done 1",
		"/toggle 1",
		"/del 1",
		"/add Another | | | low",
	} {
		output := run(t, command)
		if !strings.Contains(output, "Error") {
			t.Errorf("%s should report an error, got: %s", command, output)
		}
		if strings.Contains(output, "Warning") {
			t.Errorf("%s must not claim the change was kept, got: %s", command, output)
		}
	}
}

func TestSnapshotWriteFailureWarnsButSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	store := storage.NewJSONStore(path, log.New(io.Discard))
	if _, err := store.AddUser("user1", ""); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	SetStore(store)
	SetSessionUser("")
	run(t, "/login user1")
	run(t, "/add Draft | | | low")

	// Replace the snapshot file with a directory so writes fail while
	// the in-memory store keeps working
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove snapshot: %v", err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("Failed to block snapshot path: %v", err)
	}

	output := run(t, "/edit 1 title=Final")
	if !strings.Contains(output, "Warning") || !strings.Contains(output, "Updated task 1") {
		t.Errorf("Expected warning plus success, got: %s", output)
	}

	output = run(t, "/del 1")
	if !strings.Contains(output, "Warning") || !strings.Contains(output, "Deleted task 1") {
		t.Errorf("Expected warning plus delete, got: %s", output)
	}
}

func TestNonNumericTaskID(t *testing.T) {
	setupTestStore(t)
	run(t, "/login user1")

	output := run(t, "/done abc")
	if !strings.Contains(output, "must be a number") {
		t.Errorf("Expected numeric id error, got: %s", output)
	}
}
