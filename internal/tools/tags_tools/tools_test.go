package tags_tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
	"github.com/teemow/tickfewer/internal/tools/tooltest"
	"github.com/teemow/tickfewer/internal/unified"
)

type handlerFunc func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

func call(t *testing.T, h handlerFunc, sc *server.ServerContext, args map[string]any) (string, bool) {
	t.Helper()
	return tooltest.Call(t, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h(ctx, request, sc)
	}, args)
}

func TestRegisterTagsTools(t *testing.T) {
	sc, _ := tooltest.New(t)

	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterTagsTools(s, sc, true))
	assert.Equal(t, []string{"ticktick_list_tags"}, tooltest.ToolNames(s))

	s = mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterTagsTools(s, sc, false))
	assert.Len(t, tooltest.ToolNames(s), 5)
}

func TestListTags(t *testing.T) {
	sc, b := tooltest.New(t)
	b.AddTag(v2.Tag{Label: "Work"})
	b.AddTag(v2.Tag{Label: "meetings", Parent: "work"})

	text, isErr := call(t, handleListTags, sc, map[string]any{})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Tags (2)")
	assert.Contains(t, text, "  - **meetings**")

	text, isErr = call(t, handleListTags, sc, map[string]any{"response_format": "json"})
	require.False(t, isErr, text)
	var tags []model.Tag
	require.NoError(t, json.Unmarshal([]byte(text), &tags))
	assert.Len(t, tags, 2)
}

func TestCreateTag(t *testing.T) {
	sc, b := tooltest.New(t)

	text, isErr := call(t, handleCreateTag, sc, map[string]any{"label": "Deep Work", "color": "#112233"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "deep work")

	stored, ok := b.Tag("deep work")
	require.True(t, ok)
	assert.Equal(t, "Deep Work", stored.Label)

	text, isErr = call(t, handleCreateTag, sc, map[string]any{"label": "x", "color": "blue"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Invalid input")
}

func TestDeleteTag(t *testing.T) {
	sc, b := tooltest.New(t)
	b.AddTag(v2.Tag{Label: "urgent"})
	id := b.AddTask(v2.Task{Title: "a", Tags: []string{"urgent"}})

	text, isErr := call(t, handleDeleteTag, sc, map[string]any{"name": "urgent"})
	require.False(t, isErr, text)

	stored, _ := b.Task(id)
	assert.Empty(t, stored.Tags)

	text, isErr = call(t, handleDeleteTag, sc, map[string]any{"name": "urgent"})
	assert.True(t, isErr)
	assert.Contains(t, text, "Not found")
}

func TestRenameTag(t *testing.T) {
	sc, b := tooltest.New(t)
	b.AddTag(v2.Tag{Label: "wrk"})
	id := b.AddTask(v2.Task{Title: "a", Tags: []string{"wrk"}})

	text, isErr := call(t, handleRenameTag, sc, map[string]any{"name": "wrk", "new_label": "Work"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Renamed to Tag **Work**")

	stored, _ := b.Task(id)
	assert.Equal(t, []string{"work"}, stored.Tags)

	_, isErr = call(t, handleRenameTag, sc, map[string]any{"name": "work"})
	assert.True(t, isErr)
}

func TestMergeTags(t *testing.T) {
	sc, b := tooltest.New(t)
	b.AddTag(v2.Tag{Label: "urgent"})
	b.AddTag(v2.Tag{Label: "important"})
	b.AddTask(v2.Task{Title: "a", Tags: []string{"urgent"}})

	text, isErr := call(t, handleMergeTags, sc, map[string]any{
		"source":          "urgent",
		"target":          "important",
		"response_format": "json",
	})
	require.False(t, isErr, text)
	var result unified.MergeResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, 1, result.TasksUpdated)

	text, isErr = call(t, handleMergeTags, sc, map[string]any{"source": "urgent", "target": "important"})
	assert.True(t, isErr)
	assert.Contains(t, text, "source tag not found")
}

func TestTagsNeedPrivateAPI(t *testing.T) {
	sc, b := tooltest.New(t)
	b.FailAll("v2", fake.ServerError("v2", "sync"))

	text, isErr := call(t, handleListTags, sc, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "Service unavailable")
}
