package tasks_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/tools/common"
)

type tool struct {
	def     mcp.Tool
	handler func(sc *server.ServerContext) common.ToolHandler
	write   bool
}

func tools() []tool {
	return []tool{
		{def: getTaskTool(), handler: handleGetTask},
		{def: listTasksTool(), handler: handleListTasks},
		{def: completedTasksTool(), handler: handleCompletedTasks},
		{def: searchTasksTool(), handler: handleSearchTasks},
		{def: createTaskTool(), handler: handleCreateTask, write: true},
		{def: updateTaskTool(), handler: handleUpdateTask, write: true},
		{def: completeTaskTool(), handler: handleCompleteTask, write: true},
		{def: deleteTaskTool(), handler: handleDeleteTask, write: true},
		{def: moveTaskTool(), handler: handleMoveTask, write: true},
		{def: makeSubtaskTool(), handler: handleMakeSubtask, write: true},
	}
}

// RegisterTasksTools registers the task tools. Write tools are skipped in
// read-only mode.
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}
	for _, t := range tools() {
		if t.write && readOnly {
			continue
		}
		s.AddTool(t.def, common.InstrumentedToolHandler(t.def.Name, sc, t.handler(sc)))
	}
	return nil
}

// projectOf returns given, or the project of taskID when given is empty.
func projectOf(ctx context.Context, sc *server.ServerContext, taskID, given string) (string, error) {
	if given != "" {
		return inboxAlias(sc, given), nil
	}
	task, err := sc.API().GetTask(ctx, taskID, "")
	if err != nil {
		return "", err
	}
	return task.ProjectID, nil
}

// inboxAlias lets callers say "inbox" instead of the account's inbox id.
func inboxAlias(sc *server.ServerContext, projectID string) string {
	if projectID == "inbox" {
		if id := sc.API().InboxID(); id != "" {
			return id
		}
	}
	return projectID
}
