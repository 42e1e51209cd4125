// Package todo defines the core domain model: the Task entity, the Repository
// storage contract and the Store that owns the live task collection.
// The Repository interface lets the Store run against a flat file, SQLite or
// memory without changing any other layer.
package todo

import (
	"strings"
	"time"
)

// Task is the central domain object.
type Task struct {
	ID        string
	Title     string
	Done      bool
	Category  string
	DueDate   *Date
	CreatedAt time.Time
}

func newTask(id, title, category string, due *Date, now time.Time) *Task {
	return &Task{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Category:  category,
		DueDate:   copyDate(due),
		CreatedAt: now,
	}
}

// Toggle flips the completion flag and nothing else.
func (t *Task) Toggle() {
	t.Done = !t.Done
}

// IsOverdue reports whether the task is open and its due date lies before today.
func (t *Task) IsOverdue() bool {
	return t.IsOverdueOn(Today())
}

// IsDueToday reports whether the task is due today, done or not.
func (t *Task) IsDueToday() bool {
	return t.IsDueTodayOn(Today())
}

func (t *Task) IsOverdueOn(today Date) bool {
	if t.DueDate == nil || t.Done {
		return false
	}
	return t.DueDate.Before(today)
}

func (t *Task) IsDueTodayOn(today Date) bool {
	return t.DueDate != nil && t.DueDate.Equal(today)
}

// Clone returns a deep copy, used by repositories with copy semantics.
func (t *Task) Clone() *Task {
	c := *t
	c.DueDate = copyDate(t.DueDate)
	return &c
}

func copyDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
