package storage

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// JSONStore implements Store using a JSON snapshot file. An empty
// filename disables persistence and keeps all state in memory.
type JSONStore struct {
	filename string
	logger   *log.Logger
	data     *snapshot
	mu       sync.RWMutex
}

type snapshot struct {
	Users      []*User `json:"users"`
	Tasks      []*Task `json:"tasks"`
	NextTaskID int     `json:"next_task_id"`
	NextUserID int     `json:"next_user_id"`
}

func emptySnapshot() *snapshot {
	return &snapshot{
		Users:      []*User{},
		Tasks:      []*Task{},
		NextTaskID: 1,
		NextUserID: 1,
	}
}

// NewJSONStore creates or opens a JSON-backed store. A missing file
// starts empty; a malformed file is logged and discarded rather than
// crashing the process.
func NewJSONStore(filename string, logger *log.Logger) *JSONStore {
	if logger == nil {
		logger = log.Default()
	}

	store := &JSONStore{
		filename: filename,
		logger:   logger,
		data:     emptySnapshot(),
	}

	if filename == "" {
		return store
	}

	if _, err := os.Stat(filename); err != nil {
		return store
	}
	if err := store.load(); err != nil {
		logger.Warn("discarding unreadable task file, starting empty",
			"path", filename, "err", err)
		store.data = emptySnapshot()
	}

	return store
}

func (s *JSONStore) load() error {
	raw, err := os.ReadFile(s.filename)
	if err != nil {
		return &PersistenceError{Op: "load", Path: s.filename, Err: err}
	}

	data := &snapshot{}
	if err := json.Unmarshal(raw, data); err != nil {
		return &PersistenceError{Op: "load", Path: s.filename, Err: err}
	}
	if err := data.check(); err != nil {
		return err
	}

	if data.Users == nil {
		data.Users = []*User{}
	}
	// Older snapshots predate the user counter; re-derive it.
	if data.NextUserID < 1 {
		data.NextUserID = 1
		for _, u := range data.Users {
			if u.ID >= data.NextUserID {
				data.NextUserID = u.ID + 1
			}
		}
	}
	s.data = data
	return nil
}

// check rejects snapshots missing required fields.
func (d *snapshot) check() error {
	if d.Tasks == nil {
		return &ValidationError{Field: "tasks", Reason: "missing required field"}
	}
	if d.NextTaskID < 1 {
		return &ValidationError{Field: "next_task_id", Reason: "must be at least 1"}
	}
	for _, t := range d.Tasks {
		if t.ID < 1 || t.ID >= d.NextTaskID {
			return &ValidationError{Field: "tasks", Reason: "task id out of counter range"}
		}
	}
	return nil
}

// save writes the full snapshot, replacing any prior content. The
// caller keeps its in-memory mutation even when save fails.
func (s *JSONStore) save() error {
	if s.filename == "" {
		return nil
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.filename, Err: err}
	}
	raw = append(raw, '\n')

	if err := os.WriteFile(s.filename, raw, 0644); err != nil {
		s.logger.Warn("task file not saved, change kept in memory",
			"path", s.filename, "err", err)
		return &PersistenceError{Op: "save", Path: s.filename, Err: err}
	}
	return nil
}

// AddUser registers a new user. Name must be unique case-insensitively;
// email, when given, must be well-formed and unique across all users.
func (s *JSONStore) AddUser(name, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	for _, u := range s.data.Users {
		if strings.EqualFold(u.Name, name) {
			return nil, &ValidationError{Field: "name", Reason: "user already exists"}
		}
	}
	if email != "" {
		if !IsValidEmail(email) {
			return nil, &ValidationError{Field: "email", Reason: "must contain one @ and a dot in the domain"}
		}
		for _, u := range s.data.Users {
			if strings.EqualFold(u.Email, email) {
				return nil, &ValidationError{Field: "email", Reason: "email already in use"}
			}
		}
	}

	user := &User{
		ID:    s.data.NextUserID,
		Name:  name,
		Email: email,
	}
	s.data.NextUserID++
	s.data.Users = append(s.data.Users, user)

	out := *user
	return &out, s.save()
}

// ListUsers returns all registered users
func (s *JSONStore) ListUsers() ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.data.Users))
	for _, u := range s.data.Users {
		out := *u
		users = append(users, &out)
	}
	return users, nil
}

// GetUser retrieves a user by name (case-insensitive)
func (s *JSONStore) GetUser(name string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findUser(name)
	if u == nil {
		return nil, &NotFoundError{Kind: "user", ID: name}
	}
	out := *u
	return &out, nil
}

func (s *JSONStore) findUser(name string) *User {
	for _, u := range s.data.Users {
		if strings.EqualFold(u.Name, name) {
			return u
		}
	}
	return nil
}

// CreateTask validates all fields, appends the task, assigns the next
// id, and persists the snapshot. The due date may be empty; priority
// must name one of the three levels.
func (s *JSONStore) CreateTask(owner, title, description, dueDate, priority string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(owner)
	if u == nil {
		return nil, &ValidationError{Field: "owner", Reason: "unknown user: " + owner}
	}
	owner = u.Name

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	if isDuplicateTitle(s.data.Tasks, owner, title, 0) {
		return nil, &ValidationError{Field: "title", Reason: "title already exists for this user"}
	}

	var due *time.Time
	if dueDate != "" {
		parsed, err := ParseDate(dueDate)
		if err != nil {
			return nil, err
		}
		due = &parsed
	}

	prio, err := ParsePriority(priority)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          s.data.NextTaskID,
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     due,
		Priority:    prio,
		Completed:   false,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.data.NextTaskID++
	s.data.Tasks = append(s.data.Tasks, task)

	out := *task
	return &out, s.save()
}

// EditTask applies a partial update. Every supplied field is validated
// before any is assigned, so a failing field rejects the whole edit.
func (s *JSONStore) EditTask(id int, update TaskUpdate) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(id)
	if task == nil {
		return nil, &NotFoundError{Kind: "task", ID: strconv.Itoa(id)}
	}

	// Validation phase: nothing is assigned until every field passes.
	var newTitle string
	if update.Title != nil {
		newTitle = strings.TrimSpace(*update.Title)
		if newTitle == "" {
			return nil, &ValidationError{Field: "title", Reason: "cannot be empty"}
		}
		if isDuplicateTitle(s.data.Tasks, task.Owner, newTitle, task.ID) {
			return nil, &ValidationError{Field: "title", Reason: "title already exists for this user"}
		}
	}

	var newDue *time.Time
	if update.DueDate != nil && *update.DueDate != "" {
		parsed, err := ParseDate(*update.DueDate)
		if err != nil {
			return nil, err
		}
		newDue = &parsed
	}

	var newPriority Priority
	if update.Priority != nil {
		parsed, err := ParsePriority(*update.Priority)
		if err != nil {
			return nil, err
		}
		newPriority = parsed
	}

	// Apply phase.
	if update.Title != nil {
		task.Title = newTitle
	}
	if update.Description != nil {
		task.Description = strings.TrimSpace(*update.Description)
	}
	if update.DueDate != nil {
		task.DueDate = newDue
	}
	if update.Priority != nil {
		task.Priority = newPriority
	}
	task.UpdatedAt = time.Now().UTC()

	out := *task
	return &out, s.save()
}

// DeleteTask removes a task and persists the snapshot
func (s *JSONStore) DeleteTask(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.data.Tasks {
		if t.ID == id {
			s.data.Tasks = append(s.data.Tasks[:i], s.data.Tasks[i+1:]...)
			return s.save()
		}
	}

	return &NotFoundError{Kind: "task", ID: strconv.Itoa(id)}
}

// ToggleComplete sets the completed flag to the given value, or flips
// the current value when completed is nil. UpdatedAt is refreshed even
// when the value does not change.
func (s *JSONStore) ToggleComplete(id int, completed *bool) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.findTask(id)
	if task == nil {
		return nil, &NotFoundError{Kind: "task", ID: strconv.Itoa(id)}
	}

	if completed != nil {
		task.Completed = *completed
	} else {
		task.Completed = !task.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	out := *task
	return &out, s.save()
}

// GetTask retrieves a task by id. No side effects.
func (s *JSONStore) GetTask(id int) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task := s.findTask(id)
	if task == nil {
		return nil, &NotFoundError{Kind: "task", ID: strconv.Itoa(id)}
	}
	out := *task
	return &out, nil
}

// ListTasks returns the owner's tasks in insertion order
func (s *JSONStore) ListTasks(owner string) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []*Task{}
	for _, t := range s.data.Tasks {
		if strings.EqualFold(t.Owner, owner) {
			out := *t
			tasks = append(tasks, &out)
		}
	}
	return tasks, nil
}

// Filter returns the owner's tasks matching every supplied predicate
func (s *JSONStore) Filter(owner string, spec FilterSpec) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	tasks := []*Task{}
	for _, t := range s.data.Tasks {
		if !strings.EqualFold(t.Owner, owner) {
			continue
		}
		if spec.Matches(t, now) {
			out := *t
			tasks = append(tasks, &out)
		}
	}
	return tasks, nil
}

// Stats counts the owner's total, completed, and pending tasks
func (s *JSONStore) Stats(owner string) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	for _, t := range s.data.Tasks {
		if !strings.EqualFold(t.Owner, owner) {
			continue
		}
		stats.Total++
		if t.Completed {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats, nil
}

func (s *JSONStore) findTask(id int) *Task {
	for _, t := range s.data.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Close flushes nothing; the snapshot is written on every mutation
func (s *JSONStore) Close() error {
	return nil
}
