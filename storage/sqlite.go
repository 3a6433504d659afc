package storage

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT    NOT NULL,
	email TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT    NOT NULL,
	description TEXT    NOT NULL DEFAULT '',
	due_date    TEXT,
	priority    TEXT    NOT NULL,
	completed   INTEGER NOT NULL DEFAULT 0,
	owner       TEXT    NOT NULL,
	created_at  TEXT    NOT NULL,
	updated_at  TEXT    NOT NULL
);`

// SQLiteStore implements Store using SQLite. It enforces the same
// validation rules as JSONStore; only the persistence mechanics differ.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "load", Path: path, Err: err}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) AddUser(name, email string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	existing, err := s.GetUser(name)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &ValidationError{Field: "name", Reason: "user already exists"}
	}
	if email != "" {
		if !IsValidEmail(email) {
			return nil, &ValidationError{Field: "email", Reason: "must contain one @ and a dot in the domain"}
		}
		var n int
		err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE lower(email)=lower(?)`, email).Scan(&n)
		if err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		if n > 0 {
			return nil, &ValidationError{Field: "email", Reason: "email already in use"}
		}
	}

	res, err := s.db.Exec(`INSERT INTO users (name, email) VALUES (?, ?)`, name, email)
	if err != nil {
		return nil, &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return &User{ID: int(id), Name: name, Email: email}, nil
}

func (s *SQLiteStore) ListUsers() ([]*User, error) {
	rows, err := s.db.Query(`SELECT id, name, email FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		u := &User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) GetUser(name string) (*User, error) {
	u := &User{}
	err := s.db.QueryRow(
		`SELECT id, name, email FROM users WHERE lower(name)=lower(?)`, name,
	).Scan(&u.ID, &u.Name, &u.Email)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "user", ID: name}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return u, nil
}

func (s *SQLiteStore) CreateTask(owner, title, description, dueDate, priority string) (*Task, error) {
	u, err := s.GetUser(owner)
	if err != nil {
		if isNotFound(err) {
			return nil, &ValidationError{Field: "owner", Reason: "unknown user: " + owner}
		}
		return nil, err
	}
	owner = u.Name

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	dup, err := s.titleExists(owner, title, 0)
	if err != nil {
		return nil, err
	}
	if dup {
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
	res, err := s.db.Exec(
		`INSERT INTO tasks (title, description, due_date, priority, completed, owner, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		title, strings.TrimSpace(description), dueText(due), string(prio), owner,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	return &Task{
		ID:          int(id),
		Title:       title,
		Description: strings.TrimSpace(description),
		DueDate:     due,
		Priority:    prio,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *SQLiteStore) EditTask(id int, update TaskUpdate) (*Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, &ValidationError{Field: "title", Reason: "cannot be empty"}
		}
		dup, err := s.titleExists(task.Owner, title, task.ID)
		if err != nil {
			return nil, err
		}
		if dup {
			return nil, &ValidationError{Field: "title", Reason: "title already exists for this user"}
		}
		task.Title = title
	}
	if update.DueDate != nil {
		if *update.DueDate == "" {
			task.DueDate = nil
		} else {
			parsed, err := ParseDate(*update.DueDate)
			if err != nil {
				return nil, err
			}
			task.DueDate = &parsed
		}
	}
	if update.Priority != nil {
		parsed, err := ParsePriority(*update.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = parsed
	}
	if update.Description != nil {
		task.Description = strings.TrimSpace(*update.Description)
	}
	task.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE tasks SET title=?, description=?, due_date=?, priority=?, updated_at=? WHERE id=?`,
		task.Title, task.Description, dueText(task.DueDate), string(task.Priority),
		task.UpdatedAt.Format(time.RFC3339Nano), task.ID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return task, nil
}

func (s *SQLiteStore) DeleteTask(id int) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	if n == 0 {
		return &NotFoundError{Kind: "task", ID: strconv.Itoa(id)}
	}
	return nil
}

func (s *SQLiteStore) ToggleComplete(id int, completed *bool) (*Task, error) {
	task, err := s.GetTask(id)
	if err != nil {
		return nil, err
	}

	if completed != nil {
		task.Completed = *completed
	} else {
		task.Completed = !task.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(
		`UPDATE tasks SET completed=?, updated_at=? WHERE id=?`,
		boolToInt(task.Completed), task.UpdatedAt.Format(time.RFC3339Nano), task.ID,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return task, nil
}

func (s *SQLiteStore) GetTask(id int) (*Task, error) {
	row := s.db.QueryRow(
		`SELECT id, title, description, due_date, priority, completed, owner, created_at, updated_at
		 FROM tasks WHERE id=?`, id,
	)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "task", ID: strconv.Itoa(id)}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return task, nil
}

func (s *SQLiteStore) ListTasks(owner string) ([]*Task, error) {
	rows, err := s.db.Query(
		`SELECT id, title, description, due_date, priority, completed, owner, created_at, updated_at
		 FROM tasks WHERE lower(owner)=lower(?) ORDER BY id ASC`, owner,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer rows.Close()

	tasks := []*Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) Filter(owner string, spec FilterSpec) ([]*Task, error) {
	tasks, err := s.ListTasks(owner)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	matched := []*Task{}
	for _, t := range tasks {
		if spec.Matches(t, now) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (s *SQLiteStore) Stats(owner string) (Stats, error) {
	var stats Stats
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(completed), 0) FROM tasks WHERE lower(owner)=lower(?)`, owner,
	).Scan(&stats.Total, &stats.Completed)
	if err != nil {
		return Stats{}, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	stats.Pending = stats.Total - stats.Completed
	return stats, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) titleExists(owner, title string, excludeID int) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE lower(owner)=lower(?) AND lower(title)=lower(?) AND id<>?`,
		owner, title, excludeID,
	).Scan(&n)
	if err != nil {
		return false, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var completed int
	var priority string
	var due sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &due, &priority,
		&completed, &t.Owner, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Completed = completed != 0
	t.Priority = Priority(priority)
	if due.Valid && due.String != "" {
		parsed, err := time.Parse(DateLayout, due.String)
		if err != nil {
			return nil, err
		}
		t.DueDate = &parsed
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = created
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt = updated
	return t, nil
}

func isNotFound(err error) bool {
	var nferr *NotFoundError
	return errors.As(err, &nferr)
}

func dueText(due *time.Time) any {
	if due == nil {
		return nil
	}
	return due.Format(DateLayout)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
