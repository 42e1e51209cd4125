// Package coordinator is the single entry point for presentation code. Every
// mutation runs against the todo.Store, is persisted, and is then announced
// to the registered listeners.
package coordinator

import (
	"errors"

	"github.com/MihkelHunter/mkToDo/internal/todo"
	"go.uber.org/zap"
)

// Event names a state change. Listeners get only the name and re-query.
type Event string

const (
	TaskAdded     Event = "task_added"
	TaskDeleted   Event = "task_deleted"
	TaskToggled   Event = "task_toggled"
	TaskUpdated   Event = "task_updated"
	TasksImported Event = "tasks_imported"
)

// Listener is called synchronously after a successful mutation.
type Listener func(Event)

// Coordinator sequences mutate, persist and notify. One Coordinator lives as
// long as one session and is not safe for concurrent use.
type Coordinator struct {
	store     *todo.Store
	listeners []Listener
	log       *zap.Logger
	err       error
}

type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

func New(store *todo.Store, opts ...Option) *Coordinator {
	c := &Coordinator{store: store, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddListener registers l. Listeners are never removed.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Err returns the persistence error of the last mutation, or nil. A mutation
// that reports failure with Err() == nil was rejected (blank title, unknown
// id) rather than lost.
func (c *Coordinator) Err() error {
	return c.err
}

// commit persists the collection and, only once that succeeded, broadcasts
// ev. On a failed save the live collection is reloaded from the repository so
// memory never runs ahead of what is stored.
func (c *Coordinator) commit(ev Event) error {
	if err := c.store.Save(); err != nil {
		c.log.Error("persist tasks", zap.String("event", string(ev)), zap.Error(err))
		if lerr := c.store.Load(); lerr != nil {
			c.log.Error("reload after failed save", zap.Error(lerr))
		}
		c.err = err
		return err
	}
	for i, l := range c.listeners {
		c.dispatch(i, l, ev)
	}
	c.log.Debug("event dispatched",
		zap.String("event", string(ev)),
		zap.Int("listeners", len(c.listeners)),
	)
	return nil
}

func (c *Coordinator) dispatch(i int, l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("listener panicked",
				zap.String("event", string(ev)),
				zap.Int("listener", i),
				zap.Any("panic", r),
			)
		}
	}()
	l(ev)
}

// AddTask returns the new task, or nil when the title is blank or the task
// could not be saved.
func (c *Coordinator) AddTask(title, category string, due *todo.Date) *todo.Task {
	c.err = nil
	t, err := c.store.Add(title, category, due)
	if err != nil {
		c.rejected("add", err)
		return nil
	}
	if c.commit(TaskAdded) != nil {
		return nil
	}
	return t
}

// AddTypedTask is AddTask with a kind marker prepended to the title.
func (c *Coordinator) AddTypedTask(kind, title, category string, due *todo.Date) *todo.Task {
	c.err = nil
	t, err := c.store.AddTyped(kind, title, category, due)
	if err != nil {
		c.rejected("add typed", err)
		return nil
	}
	if c.commit(TaskAdded) != nil {
		return nil
	}
	return t
}

// ImportExternal appends external tasks and returns how many were imported.
// Nothing is saved or announced when none were, and 0 is returned when the
// save fails.
func (c *Coordinator) ImportExternal(items []todo.ExternalTask) int {
	c.err = nil
	n := c.store.Import(items)
	if n == 0 || c.commit(TasksImported) != nil {
		return 0
	}
	return n
}

func (c *Coordinator) DeleteTask(id string) bool {
	c.err = nil
	if !c.store.Delete(id) {
		return false
	}
	return c.commit(TaskDeleted) == nil
}

func (c *Coordinator) ToggleTask(id string) bool {
	c.err = nil
	if !c.store.Toggle(id) {
		return false
	}
	return c.commit(TaskToggled) == nil
}

// UpdateTask returns false for an unknown id, a blank title or a failed save.
func (c *Coordinator) UpdateTask(id string, p todo.Patch) bool {
	c.err = nil
	ok, err := c.store.Update(id, p)
	if err != nil {
		c.rejected("update", err)
		return false
	}
	if !ok {
		return false
	}
	return c.commit(TaskUpdated) == nil
}

func (c *Coordinator) rejected(op string, err error) {
	var verr *todo.ValidationError
	if !errors.As(err, &verr) {
		c.log.Error("unexpected store error", zap.String("op", op), zap.Error(err))
		c.err = err
		return
	}
	c.log.Debug("mutation rejected", zap.String("op", op), zap.String("field", verr.Field))
}

// Reads go straight to the store: no persistence, no events.

func (c *Coordinator) AllTasks() []*todo.Task  { return c.store.GetAll() }
func (c *Coordinator) OpenTasks() []*todo.Task { return c.store.GetOpen() }
func (c *Coordinator) DoneTasks() []*todo.Task { return c.store.GetDone() }

func (c *Coordinator) TaskByID(id string) *todo.Task { return c.store.GetByID(id) }

func (c *Coordinator) Categories() []string { return c.store.GetCategories() }

func (c *Coordinator) TasksByCategory(category string) []*todo.Task {
	return c.store.GetByCategory(category)
}

func (c *Coordinator) OverdueTasks() []*todo.Task  { return c.store.GetOverdue() }
func (c *Coordinator) DueTodayTasks() []*todo.Task { return c.store.GetDueToday() }

func (c *Coordinator) Statistics() todo.Stats { return c.store.Statistics() }
