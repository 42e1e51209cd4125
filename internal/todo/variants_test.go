package todo_test

import (
	"testing"

	"github.com/MihkelHunter/mkToDo/internal/todo"
	"github.com/stretchr/testify/assert"
)

func TestTypedTitle(t *testing.T) {
	assert.Equal(t, "🔨 Meeting", todo.TypedTitle("work", "Meeting"))
	assert.Equal(t, "🛒 Milk", todo.TypedTitle("shopping", "Milk"))
	assert.Equal(t, "Meeting", todo.TypedTitle("unknown", "Meeting"))
}

func TestTaskKinds(t *testing.T) {
	assert.Equal(t, []string{"health", "personal", "shopping", "urgent", "work"}, todo.TaskKinds())
}

func TestExternalMapping(t *testing.T) {
	in := todo.FromExternal(todo.ExternalTask{Name: "API Task", Completed: 1, Tag: "Work"})
	assert.Equal(t, "API Task", in.Title)
	assert.True(t, in.Done)
	assert.Equal(t, "Work", in.Category)

	out := todo.ToExternal(&todo.Task{Title: "Local", Category: "Home"})
	assert.Equal(t, todo.ExternalTask{Name: "Local", Completed: 0, Tag: "Home"}, out)

	out = todo.ToExternal(&todo.Task{Title: "Finished", Done: true})
	assert.Equal(t, 1, out.Completed)
}
