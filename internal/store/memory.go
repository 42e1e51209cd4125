package store

import "github.com/MihkelHunter/mkToDo/internal/todo"

// MemoryRepository keeps the last saved snapshot in process. Save and Load
// both copy, so callers never share Task values with it.
type MemoryRepository struct {
	tasks []*todo.Task
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Save(tasks []*todo.Task) error {
	m.tasks = cloneAll(tasks)
	return nil
}

func (m *MemoryRepository) Load() ([]*todo.Task, error) {
	return cloneAll(m.tasks), nil
}

func (m *MemoryRepository) Clear() error {
	return m.Save(nil)
}

func cloneAll(tasks []*todo.Task) []*todo.Task {
	out := make([]*todo.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
