package storage

// Store defines the interface for task manager storage
// This allows swapping between the JSON snapshot and SQLite backends
type Store interface {
	// User operations
	AddUser(name, email string) (*User, error)
	ListUsers() ([]*User, error)
	GetUser(name string) (*User, error)

	// Task operations
	CreateTask(owner, title, description, dueDate, priority string) (*Task, error)
	EditTask(id int, update TaskUpdate) (*Task, error)
	DeleteTask(id int) error
	ToggleComplete(id int, completed *bool) (*Task, error)
	GetTask(id int) (*Task, error)
	ListTasks(owner string) ([]*Task, error)
	Filter(owner string, spec FilterSpec) ([]*Task, error)
	Stats(owner string) (Stats, error)

	// Lifecycle
	Close() error
}
