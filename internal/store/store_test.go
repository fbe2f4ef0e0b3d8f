package store

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todozi/todozi/internal/apperror"
	"github.com/todozi/todozi/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	require.NoError(t, s.EnsureLayout())
	return s
}

func TestTaskRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	task, err := model.NewTask("Add login", "2h", model.PriorityHigh, "auth", model.TaskStatusTodo, now)
	require.NoError(t, err)
	require.NoError(t, s.SaveTask(task))

	got, err := s.GetTask("auth", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Action, got.Action)
	assert.Equal(t, task.Priority, got.Priority)
	assert.True(t, got.CreatedAt.Equal(task.CreatedAt))
}

func TestTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTask("auth", "missing-id")
	require.Error(t, err)
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))
}

func TestTaskMalformedJSONReportsSerializationError(t *testing.T) {
	s := newTestStore(t)
	path := s.taskPath("auth", "broken")
	require.NoError(t, ensureDir(s.tasksDir("auth")))
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	_, err := s.GetTask("auth", "broken")
	require.Error(t, err)
	assert.Equal(t, apperror.Serialization, apperror.KindOf(err))
}

func TestListTasksAcrossProjects(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	t1, _ := model.NewTask("a", "1h", model.PriorityLow, "p1", model.TaskStatusTodo, now)
	t2, _ := model.NewTask("b", "1h", model.PriorityLow, "p2", model.TaskStatusTodo, now)
	require.NoError(t, s.SaveTask(t1))
	require.NoError(t, s.SaveTask(t2))

	all, err := s.ListTasks("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyP1, err := s.ListTasks("p1")
	require.NoError(t, err)
	require.Len(t, onlyP1, 1)
	assert.Equal(t, "a", onlyP1[0].Action)
}

func TestProjectArchiveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	p, err := model.NewProject("demo", "a demo project", now)
	require.NoError(t, err)
	require.NoError(t, s.SaveProject(p))

	got, err := s.GetProject("demo")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusActive, got.Status)

	got.Archive(now)
	require.NoError(t, s.SaveProject(got))

	reloaded, err := s.GetProject("demo")
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusArchived, reloaded.Status)

	all, err := s.ListProjects()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestAssignmentLogRoundTrip(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	a := model.NewAgentAssignment("agent-1", "task-1", "proj-1", now)
	require.NoError(t, s.SaveAssignments([]*model.AgentAssignment{a}))

	got, err := s.LoadAssignments()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.AssignmentStatusAssigned, got[0].Status)
}

func TestLoadAssignmentsEmptyWhenAbsent(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LoadAssignments()
	require.NoError(t, err)
	assert.Empty(t, got)
}
