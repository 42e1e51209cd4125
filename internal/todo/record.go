package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Record is the persisted shape of a Task. DueDate is nil for "no deadline"
// and encodes as null (JSON, YAML) or is omitted (TOML).
type Record struct {
	ID        string  `json:"id" yaml:"id" toml:"id" validate:"required"`
	Title     string  `json:"title" yaml:"title" toml:"title" validate:"required"`
	Done      bool    `json:"done" yaml:"done" toml:"done"`
	Category  string  `json:"category" yaml:"category" toml:"category"`
	DueDate   *string `json:"due_date" yaml:"due_date" toml:"due_date,omitempty"`
	CreatedAt string  `json:"created_at" yaml:"created_at" toml:"created_at"`
}

var validate = validator.New()

// Timestamps written by older versions carry no zone and are local time.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Record returns the persisted form of t.
func (t *Task) Record() Record {
	r := Record{
		ID:        t.ID,
		Title:     t.Title,
		Done:      t.Done,
		Category:  t.Category,
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
	}
	if t.DueDate != nil {
		s := t.DueDate.String()
		r.DueDate = &s
	}
	return r
}

// FromRecord rebuilds a Task. A record without id or title is rejected with
// ErrInvalidRecord; a bad due date or timestamp falls back to none and now.
func FromRecord(r Record, now time.Time) (*Task, error) {
	r.ID = strings.TrimSpace(r.ID)
	r.Title = strings.TrimSpace(r.Title)
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	t := &Task{
		ID:        r.ID,
		Title:     r.Title,
		Done:      r.Done,
		Category:  r.Category,
		CreatedAt: now,
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if d, err := ParseDate(*r.DueDate); err == nil {
			t.DueDate = &d
		}
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.ParseInLocation(layout, r.CreatedAt, time.Local); err == nil {
			t.CreatedAt = ts
			break
		}
	}
	return t, nil
}
