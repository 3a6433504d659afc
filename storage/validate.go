package storage

import (
	"strings"
	"time"
)

// DateLayout is the fixed calendar format for due dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a calendar date. Impossible
// dates like 2024-02-30 are rejected even though they match the
// pattern.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "due_date", Reason: "must be a valid date in YYYY-MM-DD format"}
	}
	return t, nil
}

// IsValidDate checks if a string is a valid calendar date
func IsValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ParsePriority parses a priority label case-insensitively. Unknown
// values are rejected, never coerced to a default.
func ParsePriority(s string) (Priority, error) {
	for _, p := range ValidPriorities {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "priority", Reason: "must be one of: low, medium, high"}
}

// IsValidPriority checks if a string is a valid priority label
func IsValidPriority(s string) bool {
	_, err := ParsePriority(s)
	return err == nil
}

// ParseStatus parses a status filter label case-insensitively
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case string(StatusCompleted):
		return StatusCompleted, nil
	case string(StatusPending):
		return StatusPending, nil
	}
	return "", &ValidationError{Field: "status", Reason: "must be 'completed' or 'pending'"}
}

// IsValidEmail checks that an address has exactly one @ and a dot in
// the domain part.
func IsValidEmail(s string) bool {
	if strings.Count(s, "@") != 1 {
		return false
	}
	at := strings.Index(s, "@")
	local, domain := s[:at], s[at+1:]
	if local == "" || domain == "" {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// isDuplicateTitle reports whether another task owned by owner already
// has the title under case-insensitive comparison. excludeID lets a
// rename-in-place skip comparing against itself.
func isDuplicateTitle(tasks []*Task, owner, title string, excludeID int) bool {
	lowered := strings.ToLower(title)
	for _, t := range tasks {
		if t.ID == excludeID {
			continue
		}
		if strings.EqualFold(t.Owner, owner) && strings.ToLower(t.Title) == lowered {
			return true
		}
	}
	return false
}
