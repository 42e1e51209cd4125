package store_test

import (
	"testing"

	"github.com/MihkelHunter/mkToDo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_NeverSaved(t *testing.T) {
	got, err := store.NewMemory().Load()
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryRepository_Copies(t *testing.T) {
	repo := store.NewMemory()
	tasks := sampleTasks()
	require.NoError(t, repo.Save(tasks))

	tasks[0].Title = "changed after save"
	got, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got[0].Title)

	got[1].Done = false
	again, err := repo.Load()
	require.NoError(t, err)
	assert.True(t, again[1].Done)
}

func TestMemoryRepository_Clear(t *testing.T) {
	repo := store.NewMemory()
	require.NoError(t, repo.Save(sampleTasks()))
	require.NoError(t, repo.Clear())

	got, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}
