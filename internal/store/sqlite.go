// Package store provides the todo.Repository implementations: a flat file
// (JSON, YAML or TOML), SQLite and memory.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MihkelHunter/mkToDo/internal/todo"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no CGO required
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	position   INTEGER PRIMARY KEY,
	id         TEXT    NOT NULL,
	title      TEXT    NOT NULL,
	done       INTEGER NOT NULL DEFAULT 0,
	category   TEXT    NOT NULL DEFAULT '',
	due_date   TEXT,
	created_at TEXT    NOT NULL
);`

// SQLiteRepository implements todo.Repository on a single SQLite table. Every
// Save replaces the table contents inside one transaction.
type SQLiteRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLite opens (or creates) a SQLite database at the given path.
func NewSQLite(path string, opts ...Option) (*SQLiteRepository, error) {
	o := buildOptions(opts)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteRepository{db: db, log: o.log}, nil
}

func (s *SQLiteRepository) Save(tasks []*todo.Task) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if _, err = tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.Prepare(
		`INSERT INTO tasks (position, id, title, done, category, due_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		r := t.Record()
		var due sql.NullString
		if r.DueDate != nil {
			due = sql.NullString{String: *r.DueDate, Valid: true}
		}
		if _, err = stmt.Exec(i, r.ID, r.Title, boolToInt(r.Done), r.Category, due, r.CreatedAt); err != nil {
			return fmt.Errorf("insert task %s: %w", r.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteRepository) Load() ([]*todo.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, title, done, category, due_date, created_at
		 FROM tasks ORDER BY position ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	tasks := []*todo.Task{}
	for rows.Next() {
		var r todo.Record
		var done int
		var due sql.NullString
		if err := rows.Scan(&r.ID, &r.Title, &done, &r.Category, &due, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Done = done != 0
		if due.Valid {
			r.DueDate = &due.String
		}
		t, err := todo.FromRecord(r, now)
		if err != nil {
			s.log.Warn("skipping invalid task row", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteRepository) Clear() error {
	return s.Save(nil)
}

func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
