package unified

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

func TestCreateTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	projectID := b.AddProject(v2.Project{Name: "Work"})
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	created, err := api.CreateTask(ctx, TaskCreate{
		Title:     "  Write report  ",
		ProjectID: projectID,
		Content:   "quarterly numbers",
		DueDate:   &due,
		Priority:  ticktick.PriorityHigh,
		Tags:      []string{"Work", "urgent", "work"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Write report", created.Title)
	assert.Equal(t, []string{"work", "urgent"}, created.Tags)

	got, err := api.GetTask(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, projectID, got.ProjectID)
	assert.Equal(t, "Write report", got.Title)
	assert.Equal(t, "quarterly numbers", got.Content)
	assert.Equal(t, ticktick.PriorityHigh, got.Priority)
	assert.Equal(t, []string{"work", "urgent"}, got.Tags)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.Equal(t, ticktick.StatusActive, got.Status)
}

func TestCreateTaskDefaultsToInbox(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)

	created, err := api.CreateTask(context.Background(), TaskCreate{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Equal(t, fake.InboxID, created.ProjectID)
}

// signonWithoutInbox hides the inbox id from the session.
type signonWithoutInbox struct {
	*fake.V2
}

func (c signonWithoutInbox) Authenticate(ctx context.Context, username, password string) (*v2.Session, error) {
	s, err := c.V2.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.InboxID = ""
	return s, nil
}

func TestCreateTaskWithoutKnownInbox(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b, WithV2Factory(func(v2.Config) (V2Client, error) {
		return signonWithoutInbox{b.V2()}, nil
	}))

	_, err := api.CreateTask(context.Background(), TaskCreate{Title: "Buy milk"})
	assert.True(t, ticktick.IsConfiguration(err))
	assert.Empty(t, b.Calls())
}

func TestCreateTaskFallbackDropsTagsAndParent(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)
	parentID := b.AddTask(v2.Task{Title: "Parent"})
	b.Fail("v2", "create_task", fake.ServerError("v2", "create_task"))

	created, err := api.CreateTask(context.Background(), TaskCreate{
		Title:    "Child",
		Tags:     []string{"home"},
		ParentID: parentID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"v2.create_task", "v1.create_task"}, callNames(b))

	stored, ok := b.Task(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Child", stored.Title)
	assert.Empty(t, stored.Tags)
	assert.Empty(t, stored.ParentID)
}

func TestCreateTaskAckWithoutIDFallsBack(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)
	b.AckWithoutID(true)

	created, err := api.CreateTask(context.Background(), TaskCreate{Title: "Buy milk"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"v2.create_task", "v1.create_task"}, callNames(b))
}

func TestCreateTaskReadBackFailureKeepsWrite(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)
	b.Fail("v2", "get_task", fake.ServerError("v2", "get_task"))

	created, err := api.CreateTask(context.Background(), TaskCreate{Title: "Buy milk", Tags: []string{"home"}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"home"}, created.Tags)
	assert.Equal(t, []string{"v2.create_task", "v2.get_task"}, callNames(b))
	assert.Len(t, b.Tasks(), 1)
}

func TestCreateTaskValidation(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)

	tests := []struct {
		name string
		in   TaskCreate
	}{
		{name: "empty title", in: TaskCreate{Title: "   "}},
		{name: "bad priority", in: TaskCreate{Title: "x", Priority: 2}},
		{name: "bad project", in: TaskCreate{Title: "x", ProjectID: "nope"}},
		{name: "bad parent", in: TaskCreate{Title: "x", ParentID: "nope"}},
		{name: "too many tags", in: TaskCreate{Title: "x", Tags: make([]string, ticktick.MaxTagsPerTask+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := api.CreateTask(context.Background(), tt.in)
			assert.True(t, ticktick.IsValidation(err))
		})
	}
	assert.Empty(t, b.Calls())
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	id := b.AddTask(v2.Task{Title: "Draft", Tags: []string{"work"}})

	task, err := api.GetTask(ctx, id, "")
	require.NoError(t, err)
	task.Title = "Final"
	task.Priority = ticktick.PriorityMedium

	updated, err := api.UpdateTask(ctx, *task)
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.Equal(t, ticktick.PriorityMedium, updated.Priority)
	assert.Equal(t, []string{"work"}, updated.Tags)

	t.Run("falls back to the open API", func(t *testing.T) {
		b.Fail("v2", "update_task", fake.ServerError("v2", "update_task"))
		defer b.Heal()
		b.ResetCalls()

		updated.Title = "Published"
		out, err := api.UpdateTask(ctx, *updated)
		require.NoError(t, err)
		assert.Equal(t, "Published", out.Title)
		assert.Equal(t, []string{"v2.update_task", "v1.update_task"}, callNames(b))

		stored, _ := b.Task(id)
		assert.Equal(t, []string{"work"}, stored.Tags)
	})
}

func TestCompleteTaskIsIdempotent(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b.SetNow(func() time.Time { return first })
	later := first.Add(time.Hour)
	api := newTestAPI(t, b, WithClock(func() time.Time { return later }))
	id := b.AddTask(v2.Task{Title: "Laundry"})

	require.NoError(t, api.CompleteTask(ctx, id, fake.InboxID))
	task, err := api.GetTask(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, task.IsCompleted())
	require.NotNil(t, task.CompletedTime)
	assert.True(t, first.Equal(*task.CompletedTime))

	// Again on the open API, then on the fallback path.
	require.NoError(t, api.CompleteTask(ctx, id, fake.InboxID))
	b.Fail("v1", "complete_task", fake.ServerError("v1", "complete_task"))
	b.ResetCalls()
	require.NoError(t, api.CompleteTask(ctx, id, fake.InboxID))
	assert.Equal(t, []string{"v1.complete_task", "v2.get_task"}, callNames(b))

	stored, _ := b.Task(id)
	assert.Equal(t, int(ticktick.StatusCompleted), stored.Status)
	task, err = api.GetTask(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, first.Equal(*task.CompletedTime))
}

func TestCompleteTaskFallbackUsesClock(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	now := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	api := newTestAPI(t, b, WithClock(func() time.Time { return now }))
	id := b.AddTask(v2.Task{Title: "Laundry"})
	b.Fail("v1", "complete_task", fake.ServerError("v1", "complete_task"))

	require.NoError(t, api.CompleteTask(ctx, id, fake.InboxID))
	b.Heal()

	task, err := api.GetTask(ctx, id, "")
	require.NoError(t, err)
	assert.True(t, task.IsCompleted())
	require.NotNil(t, task.CompletedTime)
	assert.True(t, now.Equal(*task.CompletedTime))

	all, err := api.ListAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	id := b.AddTask(v2.Task{Title: "Old"})

	require.NoError(t, api.DeleteTask(ctx, id, fake.InboxID))
	_, ok := b.Task(id)
	assert.False(t, ok)

	_, err := api.GetTask(ctx, id, "")
	assert.True(t, ticktick.IsNotFound(err))
}

func TestListCompletedTasks(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	b.AddTask(v2.Task{Title: "early", Status: 2, CompletedTime: "2026-01-05T10:00:00.000+0000"})
	b.AddTask(v2.Task{Title: "late", Status: 2, CompletedTime: "2026-01-20T10:00:00.000+0000"})
	b.AddTask(v2.Task{Title: "outside", Status: 2, CompletedTime: "2026-02-20T10:00:00.000+0000"})
	b.AddTask(v2.Task{Title: "open"})

	tasks, err := api.ListCompletedTasks(ctx, from, to, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "late", tasks[0].Title)
	assert.Equal(t, "early", tasks[1].Title)

	tasks, err = api.ListCompletedTasks(ctx, from, to, 1)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	_, err = api.ListCompletedTasks(ctx, to, from, 0)
	assert.True(t, ticktick.IsValidation(err))
	_, err = api.ListCompletedTasks(ctx, from, to, ticktick.MaxListLimit+1)
	assert.True(t, ticktick.IsValidation(err))
}

func TestMoveTask(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	projectID := b.AddProject(v2.Project{Name: "Work"})
	id := b.AddTask(v2.Task{Title: "Report"})

	moved, err := api.MoveTask(ctx, id, fake.InboxID, projectID)
	require.NoError(t, err)
	assert.Equal(t, projectID, moved.ProjectID)

	_, err = api.MoveTask(ctx, id, fake.InboxID, projectID)
	assert.True(t, ticktick.IsNotFound(err))
}

func TestSetTaskParent(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	parentID := b.AddTask(v2.Task{Title: "Trip"})
	childID := b.AddTask(v2.Task{Title: "Book hotel"})
	grandchildID := b.AddTask(v2.Task{Title: "Compare prices"})

	child, err := api.SetTaskParent(ctx, childID, fake.InboxID, parentID)
	require.NoError(t, err)
	assert.Equal(t, parentID, child.ParentID)
	assert.True(t, child.IsSubtask())

	parent, err := api.GetTask(ctx, parentID, "")
	require.NoError(t, err)
	assert.Contains(t, parent.ChildIDs, childID)

	_, err = api.SetTaskParent(ctx, grandchildID, fake.InboxID, childID)
	require.NoError(t, err)

	t.Run("self", func(t *testing.T) {
		b.ResetCalls()
		_, err := api.SetTaskParent(ctx, parentID, fake.InboxID, parentID)
		assert.True(t, ticktick.IsValidation(err))
		assert.Empty(t, b.Calls())
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := api.SetTaskParent(ctx, parentID, fake.InboxID, grandchildID)
		assert.True(t, ticktick.IsValidation(err))
		stored, _ := b.Task(parentID)
		assert.Empty(t, stored.ParentID)
	})

	t.Run("reparent unlinks the old parent", func(t *testing.T) {
		otherID := b.AddTask(v2.Task{Title: "Other"})
		_, err := api.SetTaskParent(ctx, childID, fake.InboxID, otherID)
		require.NoError(t, err)

		old, _ := b.Task(parentID)
		assert.NotContains(t, old.ChildIDs, childID)
		other, _ := b.Task(otherID)
		assert.Contains(t, other.ChildIDs, childID)
	})
}

func TestCreatesCycle(t *testing.T) {
	tasks := []v2.Task{
		{ID: "a"},
		{ID: "b", ParentID: "a"},
		{ID: "c", ParentID: "b"},
	}
	assert.True(t, createsCycle(tasks, "a", "c"))
	assert.True(t, createsCycle(tasks, "b", "c"))
	assert.False(t, createsCycle(tasks, "c", "a"))
	assert.False(t, createsCycle(tasks, "d", "c"))
}

func TestSearchTasks(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	b.AddTask(v2.Task{Title: "Buy Milk"})
	b.AddTask(v2.Task{Title: "Call mom", Content: "about the milkshake"})
	b.AddTask(v2.Task{Title: "Groceries", Tags: []string{"milk-run"}})
	b.AddTask(v2.Task{Title: "Bread"})
	b.AddTask(v2.Task{Title: "Old milk", Status: 2})

	tasks, err := api.SearchTasks(ctx, "MILK")
	require.NoError(t, err)
	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(t, []string{"Buy Milk", "Call mom", "Groceries"}, titles)

	_, err = api.SearchTasks(ctx, "  ")
	assert.True(t, ticktick.IsValidation(err))
}
