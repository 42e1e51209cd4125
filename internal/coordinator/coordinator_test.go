package coordinator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/MihkelHunter/mkToDo/internal/coordinator"
	"github.com/MihkelHunter/mkToDo/internal/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Save(tasks []*todo.Task) error {
	return m.Called(tasks).Error(0)
}

func (m *mockRepo) Load() ([]*todo.Task, error) {
	args := m.Called()
	tasks, _ := args.Get(0).([]*todo.Task)
	return tasks, args.Error(1)
}

func (m *mockRepo) Clear() error {
	return m.Called().Error(0)
}

var now = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.Local)

func newCoordinator(t *testing.T, repo *mockRepo, opts ...coordinator.Option) *coordinator.Coordinator {
	t.Helper()
	s := todo.NewStore(repo, todo.WithClock(func() time.Time { return now }))
	return coordinator.New(s, opts...)
}

func recordEvents(c *coordinator.Coordinator) *[]coordinator.Event {
	var events []coordinator.Event
	c.AddListener(func(ev coordinator.Event) { events = append(events, ev) })
	return &events
}

func TestCoordinator_MutationsSaveAndNotify(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(nil)
	c := newCoordinator(t, repo)
	events := recordEvents(c)

	tsk := c.AddTask("Buy milk", "Shopping", nil)
	require.NotNil(t, tsk)
	require.True(t, c.ToggleTask(tsk.ID))
	title := "Buy oat milk"
	require.True(t, c.UpdateTask(tsk.ID, todo.Patch{Title: &title}))
	require.NotNil(t, c.AddTypedTask("work", "Standup", "", nil))
	assert.Equal(t, 1, c.ImportExternal([]todo.ExternalTask{{Name: "Imported"}}))
	require.True(t, c.DeleteTask(tsk.ID))

	assert.Equal(t, []coordinator.Event{
		coordinator.TaskAdded,
		coordinator.TaskToggled,
		coordinator.TaskUpdated,
		coordinator.TaskAdded,
		coordinator.TasksImported,
		coordinator.TaskDeleted,
	}, *events)
	repo.AssertNumberOfCalls(t, "Save", 6)
}

func TestCoordinator_EventNames(t *testing.T) {
	assert.Equal(t, coordinator.Event("task_added"), coordinator.TaskAdded)
	assert.Equal(t, coordinator.Event("task_deleted"), coordinator.TaskDeleted)
	assert.Equal(t, coordinator.Event("task_toggled"), coordinator.TaskToggled)
	assert.Equal(t, coordinator.Event("task_updated"), coordinator.TaskUpdated)
	assert.Equal(t, coordinator.Event("tasks_imported"), coordinator.TasksImported)
}

func TestCoordinator_SaveSeesMutation(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.MatchedBy(func(tasks []*todo.Task) bool {
		return len(tasks) == 1 && tasks[0].Title == "Report"
	})).Return(nil).Once()
	c := newCoordinator(t, repo)

	require.NotNil(t, c.AddTask("Report", "", nil))
	repo.AssertExpectations(t)
}

func TestCoordinator_FailedMutationsAreSilent(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(nil)
	c := newCoordinator(t, repo)
	tsk := c.AddTask("Existing", "", nil)
	require.NotNil(t, tsk)
	events := recordEvents(c)

	blank := "   "
	assert.Nil(t, c.AddTask("   ", "", nil))
	assert.Nil(t, c.AddTypedTask("work", "", "", nil))
	assert.False(t, c.DeleteTask("missing"))
	assert.False(t, c.ToggleTask("missing"))
	assert.False(t, c.UpdateTask("missing", todo.Patch{}))
	assert.False(t, c.UpdateTask(tsk.ID, todo.Patch{Title: &blank}))
	assert.Equal(t, 0, c.ImportExternal([]todo.ExternalTask{{Name: ""}, {Name: "  "}}))

	assert.Empty(t, *events)
	repo.AssertNumberOfCalls(t, "Save", 1)
	assert.Equal(t, "Existing", c.TaskByID(tsk.ID).Title)
}

func TestCoordinator_ListenersRunInOrder(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(nil)
	c := newCoordinator(t, repo)

	var calls []string
	c.AddListener(func(coordinator.Event) { calls = append(calls, "first") })
	c.AddListener(func(coordinator.Event) { calls = append(calls, "second") })

	c.AddTask("A", "", nil)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestCoordinator_ListenerSeesNewState(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(nil)
	c := newCoordinator(t, repo)

	var seen int
	c.AddListener(func(coordinator.Event) { seen = len(c.AllTasks()) })

	c.AddTask("A", "", nil)
	assert.Equal(t, 1, seen)
}

func TestCoordinator_PanickingListenerIsIsolated(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(nil)
	core, logs := observer.New(zapcore.ErrorLevel)
	c := newCoordinator(t, repo, coordinator.WithLogger(zap.New(core)))

	c.AddListener(func(coordinator.Event) { panic("boom") })
	events := recordEvents(c)

	assert.NotPanics(t, func() { c.AddTask("A", "", nil) })
	assert.Equal(t, []coordinator.Event{coordinator.TaskAdded}, *events)
	assert.Equal(t, 1, logs.FilterMessage("listener panicked").Len())
}

func TestCoordinator_SaveFailureIsNotAnnounced(t *testing.T) {
	diskFull := errors.New("read-only fs")
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(diskFull)
	repo.On("Load").Return([]*todo.Task{}, nil)
	core, logs := observer.New(zapcore.ErrorLevel)
	c := newCoordinator(t, repo, coordinator.WithLogger(zap.New(core)))
	events := recordEvents(c)

	tsk := c.AddTask("A", "", nil)

	assert.Nil(t, tsk)
	assert.ErrorIs(t, c.Err(), diskFull)
	assert.Empty(t, *events)
	assert.Empty(t, c.AllTasks(), "unsaved task must not stay in memory")
	entries := logs.FilterMessage("persist tasks").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "task_added", entries[0].ContextMap()["event"])
	repo.AssertCalled(t, "Load")
}

func TestCoordinator_SaveFailureRestoresStoredState(t *testing.T) {
	repo := &mockRepo{}
	stored := []*todo.Task{{ID: "keep1234", Title: "Stored", CreatedAt: now}}
	repo.On("Load").Return(stored, nil)
	repo.On("Save", mock.Anything).Return(errors.New("read-only fs"))
	s := todo.NewStore(repo, todo.WithClock(func() time.Time { return now }))
	require.NoError(t, s.Load())
	c := coordinator.New(s)
	events := recordEvents(c)

	assert.False(t, c.DeleteTask("keep1234"))
	assert.Error(t, c.Err())
	assert.Equal(t, 0, c.ImportExternal([]todo.ExternalTask{{Name: "X"}}))
	assert.Error(t, c.Err())

	assert.Empty(t, *events)
	require.Len(t, c.AllTasks(), 1)
	assert.Equal(t, "Stored", c.AllTasks()[0].Title)
}

func TestCoordinator_ErrResetsOnNextMutation(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(errors.New("read-only fs")).Once()
	repo.On("Save", mock.Anything).Return(nil)
	repo.On("Load").Return([]*todo.Task{}, nil)
	c := newCoordinator(t, repo)

	assert.Nil(t, c.AddTask("A", "", nil))
	require.Error(t, c.Err())

	assert.NotNil(t, c.AddTask("B", "", nil))
	assert.NoError(t, c.Err())

	assert.False(t, c.ToggleTask("missing"))
	assert.NoError(t, c.Err(), "not found is not a persistence failure")
}

func TestCoordinator_ReadsHaveNoSideEffects(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Save", mock.Anything).Return(nil)
	c := newCoordinator(t, repo)
	due := todo.DateOf(now)
	c.AddTask("Due today", "Work", &due)
	done := c.AddTask("Done", "Home", nil)
	c.ToggleTask(done.ID)
	events := recordEvents(c)

	assert.Len(t, c.AllTasks(), 2)
	assert.Len(t, c.OpenTasks(), 1)
	assert.Len(t, c.DoneTasks(), 1)
	assert.Equal(t, []string{"Home", "Work"}, c.Categories())
	assert.Len(t, c.TasksByCategory("Work"), 1)
	assert.Empty(t, c.OverdueTasks())
	assert.Len(t, c.DueTodayTasks(), 1)
	assert.Nil(t, c.TaskByID("missing"))

	st := c.Statistics()
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.Done)

	assert.Empty(t, *events)
	repo.AssertNumberOfCalls(t, "Save", 3)
}
