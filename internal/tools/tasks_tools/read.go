package tasks_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/tools/common"
	"github.com/teemow/tickfewer/internal/tools/render"
)

const (
	defaultListLimit     = 50
	defaultCompletedDays = 7
	maxCompletedDays     = 90
)

func getTaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_get_task",
		mcp.WithDescription("Get a task with all its details"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The 24 character id of the task"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project of the task. Optional, but lets the request succeed when the private API is down"),
		),
		common.ResponseFormatOption(),
	)
}

func handleGetTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		taskID, err := common.RequiredString(args, "task_id")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		projectID := inboxAlias(sc, common.StringArg(args, "project_id"))

		task, err := sc.API().GetTask(ctx, taskID, projectID)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, task, func() string { return render.Task(*task) })
	}
}

func listTasksTool() mcp.Tool {
	return mcp.NewTool("ticktick_list_tasks",
		mcp.WithDescription("List active tasks. Filters combine with AND."),
		mcp.WithString("project_id",
			mcp.Description("Only tasks in this project ('inbox' for the inbox)"),
		),
		mcp.WithString("tag",
			mcp.Description("Only tasks with this tag"),
		),
		mcp.WithString("priority",
			mcp.Description("Only tasks with this priority: none, low, medium or high"),
		),
		mcp.WithBoolean("due_today",
			mcp.Description("Only tasks due today"),
		),
		mcp.WithBoolean("overdue",
			mcp.Description("Only tasks whose due date has passed"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of tasks (1-%d, default %d)", ticktick.MaxListLimit, defaultListLimit)),
		),
		common.ResponseFormatOption(),
	)
}

// taskFilter selects tasks for ticktick_list_tasks.
type taskFilter struct {
	projectID   string
	tag         string
	priority    ticktick.Priority
	hasPriority bool
	dueToday    bool
	overdue     bool
}

func (f taskFilter) match(t model.Task, now time.Time) bool {
	if f.projectID != "" && t.ProjectID != f.projectID {
		return false
	}
	if f.tag != "" && !t.HasTag(f.tag) {
		return false
	}
	if f.hasPriority && t.Priority != f.priority {
		return false
	}
	if f.dueToday && !t.IsDueOn(now) {
		return false
	}
	if f.overdue && !t.IsOverdue(now) {
		return false
	}
	return true
}

func handleListTasks(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		limit, err := common.IntInRange(args, "limit", defaultListLimit, 1, ticktick.MaxListLimit)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		priority, hasPriority, err := common.PriorityArg(args, "priority")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		filter := taskFilter{
			projectID:   inboxAlias(sc, common.StringArg(args, "project_id")),
			tag:         common.StringArg(args, "tag"),
			priority:    priority,
			hasPriority: hasPriority,
			dueToday:    common.BoolArg(args, "due_today", false),
			overdue:     common.BoolArg(args, "overdue", false),
		}

		all, err := sc.API().ListAllTasks(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		now := time.Now()
		tasks := make([]model.Task, 0, len(all))
		for _, t := range all {
			if filter.match(t, now) {
				tasks = append(tasks, t)
			}
		}
		if len(tasks) > limit {
			tasks = tasks[:limit]
		}
		return render.Result(format, tasks, func() string { return render.Tasks("Tasks", tasks) })
	}
}

func completedTasksTool() mcp.Tool {
	return mcp.NewTool("ticktick_completed_tasks",
		mcp.WithDescription("List tasks completed recently, most recent first"),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("How many days to look back (1-%d, default %d)", maxCompletedDays, defaultCompletedDays)),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of tasks (1-%d)", ticktick.MaxListLimit)),
		),
		common.ResponseFormatOption(),
	)
}

func handleCompletedTasks(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		days, err := common.IntInRange(args, "days", defaultCompletedDays, 1, maxCompletedDays)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		limit, err := common.IntInRange(args, "limit", 0, 0, ticktick.MaxListLimit)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		to := time.Now()
		from := to.AddDate(0, 0, -days)
		tasks, err := sc.API().ListCompletedTasks(ctx, from, to, limit)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		title := fmt.Sprintf("Completed in the last %d day(s)", days)
		return render.Result(format, tasks, func() string { return render.Tasks(title, tasks) })
	}
}

func searchTasksTool() mcp.Tool {
	return mcp.NewTool("ticktick_search_tasks",
		mcp.WithDescription("Search active tasks by title, content, description or tag"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Text to look for, case insensitive (1-%d characters)", ticktick.MaxQueryLength)),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of tasks (1-%d, default %d)", ticktick.MaxListLimit, defaultListLimit)),
		),
		common.ResponseFormatOption(),
	)
}

func handleSearchTasks(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		query, err := common.RequiredString(args, "query")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		limit, err := common.IntInRange(args, "limit", defaultListLimit, 1, ticktick.MaxListLimit)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		tasks, err := sc.API().SearchTasks(ctx, query)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		if len(tasks) > limit {
			tasks = tasks[:limit]
		}
		title := fmt.Sprintf("Tasks matching %q", query)
		return render.Result(format, tasks, func() string { return render.Tasks(title, tasks) })
	}
}
