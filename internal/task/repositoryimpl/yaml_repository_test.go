package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskline/taskline/internal/task"
	"github.com/taskline/taskline/pkg/cerr"
	"github.com/taskline/taskline/pkg/storage"
)

func setup(t *testing.T) (*YAMLRepository, *AssignmentYAMLRepository) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewYAMLRepository(store), NewAssignmentYAMLRepository(store)
}

func newTask(id, projectID string) *task.Task {
	now := time.Now()
	return &task.Task{
		ID: id, ProjectID: projectID, Name: "Task " + id,
		Status: task.StatusInWork, Hours: 8,
		StartDate: now, Deadline: now.Add(72 * time.Hour),
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestTaskCreateGetUpdate(t *testing.T) {
	tasks, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, tasks.Create(ctx, newTask("t1", "p1")))

	err := tasks.Create(ctx, newTask("t1", "p1"))
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	got, err := tasks.Get(ctx, "t1")
	require.NoError(t, err)
	got.Status = task.StatusDone
	require.NoError(t, tasks.Update(ctx, got))

	got, err = tasks.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)

	err = tasks.Update(ctx, newTask("missing", "p1"))
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestTaskListByProject(t *testing.T) {
	tasks, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, tasks.Create(ctx, newTask("t1", "p1")))
	require.NoError(t, tasks.Create(ctx, newTask("t2", "p1")))
	require.NoError(t, tasks.Create(ctx, newTask("t3", "p2")))

	list, err := tasks.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	empty, err := tasks.ListByProject(ctx, "p3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAssignments(t *testing.T) {
	_, assignments := setup(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, assignments.Create(ctx, &task.Assignment{TaskID: "t1", UserID: 5, CreatedAt: now}))
	require.NoError(t, assignments.Create(ctx, &task.Assignment{TaskID: "t1", UserID: 6, CreatedAt: now}))
	require.NoError(t, assignments.Create(ctx, &task.Assignment{TaskID: "t2", UserID: 5, CreatedAt: now}))

	err := assignments.Create(ctx, &task.Assignment{TaskID: "t1", UserID: 5, CreatedAt: now})
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))

	byTask, err := assignments.ListByTask(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, byTask, 2)

	byUser, err := assignments.ListByUser(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, byUser, 2)
}
