package tasks_tools

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
	"github.com/teemow/tickfewer/internal/tools/batch"
	"github.com/teemow/tickfewer/internal/tools/tooltest"
)

func TestRegisterTasksTools(t *testing.T) {
	sc, _ := tooltest.New(t)

	tests := []struct {
		name     string
		readOnly bool
		want     int
	}{
		{name: "read only", readOnly: true, want: 4},
		{name: "read write", readOnly: false, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
			require.NoError(t, RegisterTasksTools(s, sc, tt.readOnly))
			names := tooltest.ToolNames(s)
			assert.Len(t, names, tt.want)
			assert.Contains(t, names, "ticktick_list_tasks")
			if tt.readOnly {
				assert.NotContains(t, names, "ticktick_delete_task")
			}
		})
	}

	assert.Error(t, RegisterTasksTools(nil, sc, true))
}

func TestToolDefinitions(t *testing.T) {
	for _, tl := range tools() {
		t.Run(tl.def.Name, func(t *testing.T) {
			assert.NotEmpty(t, tl.def.Description)
			assert.Contains(t, tl.def.InputSchema.Properties, "response_format")
		})
	}
}

func TestCreateTask(t *testing.T) {
	sc, b := tooltest.New(t)

	text, isErr := tooltest.Call(t, handleCreateTask(sc), map[string]any{
		"title":    "Buy milk",
		"due_date": "2026-10-20",
		"priority": "high",
		"tags":     []any{"Errands"},
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Created task")
	assert.Contains(t, text, "Buy milk")

	tasks := b.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, fake.InboxID, tasks[0].ProjectID)
	assert.Equal(t, int(ticktick.PriorityHigh), tasks[0].Priority)
	assert.Equal(t, []string{"errands"}, tasks[0].Tags)
	assert.True(t, tasks[0].IsAllDay)
}

func TestCreateTaskJSON(t *testing.T) {
	sc, b := tooltest.New(t)
	projectID := b.AddProject(v2.Project{Name: "Work"})

	text, isErr := tooltest.Call(t, handleCreateTask(sc), map[string]any{
		"title":           "Report",
		"project_id":      projectID,
		"response_format": "json",
	})
	require.False(t, isErr, text)

	var task model.Task
	require.NoError(t, json.Unmarshal([]byte(text), &task))
	assert.Equal(t, projectID, task.ProjectID)
	assert.Equal(t, "Report", task.Title)
	assert.NotEmpty(t, task.ID)
}

func TestCreateTaskValidation(t *testing.T) {
	sc, b := tooltest.New(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing title", args: map[string]any{}, want: "title"},
		{name: "bad priority", args: map[string]any{"title": "x", "priority": "urgent"}, want: "priority"},
		{name: "bad date", args: map[string]any{"title": "x", "due_date": "tomorrow"}, want: "due_date"},
		{name: "bad zone", args: map[string]any{"title": "x", "time_zone": "Mars/Olympus"}, want: "time_zone"},
		{
			name: "due before start",
			args: map[string]any{"title": "x", "start_date": "2026-10-20", "due_date": "2026-10-19"},
			want: "due_date",
		},
		{name: "bad format", args: map[string]any{"title": "x", "response_format": "xml"}, want: "response_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := tooltest.Call(t, handleCreateTask(sc), tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, "Invalid input")
			assert.Contains(t, text, tt.want)
		})
	}
	assert.Empty(t, b.Tasks())
}

func TestGetTask(t *testing.T) {
	sc, b := tooltest.New(t)
	id := b.AddTask(v2.Task{Title: "Read book", Content: "chapter 3"})

	text, isErr := tooltest.Call(t, handleGetTask(sc), map[string]any{"task_id": id})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Read book")
	assert.Contains(t, text, "chapter 3")

	text, isErr = tooltest.Call(t, handleGetTask(sc), map[string]any{"task_id": "ffffffffffffffffffffffff"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Not found")

	text, isErr = tooltest.Call(t, handleGetTask(sc), map[string]any{"task_id": "nope"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Invalid input")
}

func TestListTasksFilters(t *testing.T) {
	sc, b := tooltest.New(t)
	work := b.AddProject(v2.Project{Name: "Work"})
	yesterday := time.Now().Add(-48 * time.Hour).UTC().Format(model.V2DateLayout)

	b.AddTask(v2.Task{Title: "inbox task"})
	b.AddTask(v2.Task{Title: "work task", ProjectID: work, Tags: []string{"deep"}})
	b.AddTask(v2.Task{Title: "late task", ProjectID: work, DueDate: yesterday, Priority: int(ticktick.PriorityHigh)})
	b.AddTask(v2.Task{Title: "done task", Status: int(ticktick.StatusCompleted)})

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{name: "all active", args: map[string]any{}, want: []string{"inbox task", "work task", "late task"}},
		{name: "inbox alias", args: map[string]any{"project_id": "inbox"}, want: []string{"inbox task"}},
		{name: "project", args: map[string]any{"project_id": work}, want: []string{"work task", "late task"}},
		{name: "tag", args: map[string]any{"tag": "deep"}, want: []string{"work task"}},
		{name: "priority", args: map[string]any{"priority": "high"}, want: []string{"late task"}},
		{name: "overdue", args: map[string]any{"overdue": true}, want: []string{"late task"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			args["response_format"] = "json"
			text, isErr := tooltest.Call(t, handleListTasks(sc), args)
			require.False(t, isErr, text)

			var tasks []model.Task
			require.NoError(t, json.Unmarshal([]byte(text), &tasks))
			titles := make([]string, 0, len(tasks))
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}

	text, isErr := tooltest.Call(t, handleListTasks(sc), map[string]any{"limit": float64(1)})
	require.False(t, isErr)
	assert.Contains(t, text, "(1)")

	_, isErr = tooltest.Call(t, handleListTasks(sc), map[string]any{"limit": float64(ticktick.MaxListLimit + 1)})
	assert.True(t, isErr)
}

func TestListTasksUnavailable(t *testing.T) {
	sc, b := tooltest.New(t)
	b.FailAll("v2", fake.ServerError("v2", "sync"))

	text, isErr := tooltest.Call(t, handleListTasks(sc), map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "Service unavailable")
}

func TestUpdateTask(t *testing.T) {
	sc, b := tooltest.New(t)
	id := b.AddTask(v2.Task{Title: "draft", Content: "keep me", DueDate: "2026-10-20T00:00:00.000+0000", IsAllDay: true})

	text, isErr := tooltest.Call(t, handleUpdateTask(sc), map[string]any{
		"task_id":  id,
		"title":    "final",
		"priority": "medium",
		"due_date": "2026-11-02T09:30:00Z",
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Updated task")

	stored, ok := b.Task(id)
	require.True(t, ok)
	assert.Equal(t, "final", stored.Title)
	assert.Equal(t, "keep me", stored.Content)
	assert.Equal(t, int(ticktick.PriorityMedium), stored.Priority)
	require.NotNil(t, model.ParseDate(stored.DueDate))
	assert.True(t, model.ParseDate(stored.DueDate).Equal(time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC)))
	assert.False(t, stored.IsAllDay)

	text, isErr = tooltest.Call(t, handleUpdateTask(sc), map[string]any{"task_id": id, "start_date": "2026-12-01"})
	assert.True(t, isErr)
	assert.Contains(t, text, "start_date")
}

func TestCompleteTaskBatch(t *testing.T) {
	sc, b := tooltest.New(t)
	work := b.AddProject(v2.Project{Name: "Work"})
	first := b.AddTask(v2.Task{Title: "a"})
	second := b.AddTask(v2.Task{Title: "b", ProjectID: work})
	missing := "ffffffffffffffffffffffff"

	text, isErr := tooltest.Call(t, handleCompleteTask(sc), map[string]any{
		"task_id":         []any{first, second, missing},
		"response_format": "json",
	})
	require.False(t, isErr, text)

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(text), &br))
	assert.Equal(t, 3, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, missing, br.Results[2].ID)
	assert.Contains(t, br.Results[2].Error, "Not found")

	for _, id := range []string{first, second} {
		stored, ok := b.Task(id)
		require.True(t, ok)
		assert.Equal(t, int(ticktick.StatusCompleted), stored.Status)
	}
}

func TestCompleteTaskSingleFailure(t *testing.T) {
	sc, _ := tooltest.New(t)

	text, isErr := tooltest.Call(t, handleCompleteTask(sc), map[string]any{"task_id": "ffffffffffffffffffffffff"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Not found")
}

func TestDeleteTask(t *testing.T) {
	sc, b := tooltest.New(t)
	id := b.AddTask(v2.Task{Title: "gone"})

	text, isErr := tooltest.Call(t, handleDeleteTask(sc), map[string]any{"task_id": id, "project_id": "inbox"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Deleted 1 of 1")

	_, ok := b.Task(id)
	assert.False(t, ok)

	text, isErr = tooltest.Call(t, handleDeleteTask(sc), map[string]any{"task_id": []any{}})
	assert.True(t, isErr)
	assert.Contains(t, text, "task_id")
}

func TestMoveTask(t *testing.T) {
	sc, b := tooltest.New(t)
	work := b.AddProject(v2.Project{Name: "Work"})
	id := b.AddTask(v2.Task{Title: "move me"})

	text, isErr := tooltest.Call(t, handleMoveTask(sc), map[string]any{"task_id": id, "to_project_id": work})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Moved task")

	stored, _ := b.Task(id)
	assert.Equal(t, work, stored.ProjectID)

	text, isErr = tooltest.Call(t, handleMoveTask(sc), map[string]any{"task_id": id, "to_project_id": "inbox"})
	require.False(t, isErr, text)
	stored, _ = b.Task(id)
	assert.Equal(t, fake.InboxID, stored.ProjectID)
}

func TestMakeSubtask(t *testing.T) {
	sc, b := tooltest.New(t)
	parent := b.AddTask(v2.Task{Title: "parent"})
	child := b.AddTask(v2.Task{Title: "child"})

	text, isErr := tooltest.Call(t, handleMakeSubtask(sc), map[string]any{"task_id": child, "parent_id": parent})
	require.False(t, isErr, text)
	assert.Contains(t, text, parent)

	stored, _ := b.Task(child)
	assert.Equal(t, parent, stored.ParentID)

	text, isErr = tooltest.Call(t, handleMakeSubtask(sc), map[string]any{"task_id": parent, "parent_id": child})
	assert.True(t, isErr)
	assert.Contains(t, text, "Invalid input")
}

func TestCompletedTasks(t *testing.T) {
	sc, b := tooltest.New(t)
	recent := time.Now().Add(-24 * time.Hour).UTC().Format(model.V2DateLayout)
	old := time.Now().AddDate(0, 0, -30).UTC().Format(model.V2DateLayout)
	b.AddTask(v2.Task{Title: "recent", Status: int(ticktick.StatusCompleted), CompletedTime: recent})
	b.AddTask(v2.Task{Title: "old", Status: int(ticktick.StatusCompleted), CompletedTime: old})
	b.AddTask(v2.Task{Title: "open"})

	text, isErr := tooltest.Call(t, handleCompletedTasks(sc), map[string]any{})
	require.False(t, isErr, text)
	assert.Contains(t, text, "recent")
	assert.NotContains(t, text, "old")
	assert.NotContains(t, text, "open")

	text, isErr = tooltest.Call(t, handleCompletedTasks(sc), map[string]any{"days": float64(90)})
	require.False(t, isErr, text)
	assert.Contains(t, text, "old")

	_, isErr = tooltest.Call(t, handleCompletedTasks(sc), map[string]any{"days": float64(91)})
	assert.True(t, isErr)
}

func TestSearchTasks(t *testing.T) {
	sc, b := tooltest.New(t)
	b.AddTask(v2.Task{Title: "Plan holiday"})
	b.AddTask(v2.Task{Title: "Taxes", Content: "holiday receipts"})
	b.AddTask(v2.Task{Title: "Groceries"})

	text, isErr := tooltest.Call(t, handleSearchTasks(sc), map[string]any{"query": "HOLIDAY"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Plan holiday")
	assert.Contains(t, text, "Taxes")
	assert.NotContains(t, text, "Groceries")

	text, isErr = tooltest.Call(t, handleSearchTasks(sc), map[string]any{"query": "  "})
	assert.True(t, isErr)
	assert.Contains(t, text, "query")
}

func TestRegisteredHandlerRuns(t *testing.T) {
	sc, _ := tooltest.New(t)
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterTasksTools(s, sc, false))

	tool, ok := s.ListTools()["ticktick_search_tasks"]
	require.True(t, ok)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"query": "x"}
	res, err := tool.Handler(t.Context(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)
}
