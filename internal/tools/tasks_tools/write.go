package tasks_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/tools/batch"
	"github.com/teemow/tickfewer/internal/tools/common"
	"github.com/teemow/tickfewer/internal/tools/render"
	"github.com/teemow/tickfewer/internal/unified"
)

func createTaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_create_task",
		mcp.WithDescription("Create a task. Without project_id the task goes to the inbox."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the task"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project to create the task in ('inbox' for the inbox)"),
		),
		mcp.WithString("content",
			mcp.Description("Notes of the task"),
		),
		mcp.WithString("desc",
			mcp.Description("Description shown for checklist tasks"),
		),
		mcp.WithString("start_date",
			mcp.Description("Start date, YYYY-MM-DD for all-day or RFC 3339"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date, YYYY-MM-DD for all-day or RFC 3339"),
		),
		mcp.WithString("time_zone",
			mcp.Description("IANA time zone of the dates, for example Europe/Berlin"),
		),
		mcp.WithString("priority",
			mcp.Description("none, low, medium or high"),
		),
		mcp.WithArray("tags",
			mcp.Description("Tags of the task"),
			mcp.WithStringItems(),
		),
		mcp.WithString("parent_id",
			mcp.Description("Create the task as a subtask of this task"),
		),
		mcp.WithArray("reminders",
			mcp.Description("Reminder triggers, for example TRIGGER:-PT30M"),
			mcp.WithStringItems(),
		),
		mcp.WithString("repeat_flag",
			mcp.Description("Recurrence rule, for example RRULE:FREQ=WEEKLY;INTERVAL=1"),
		),
		common.ResponseFormatOption(),
	)
}

func handleCreateTask(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		in, err := taskCreateFromArgs(sc, args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		task, err := sc.API().CreateTask(ctx, in)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, task, func() string {
			return "Created task\n\n" + render.Task(*task)
		})
	}
}

func taskCreateFromArgs(sc *server.ServerContext, args map[string]any) (unified.TaskCreate, error) {
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return unified.TaskCreate{}, err
	}
	in := unified.TaskCreate{
		Title:      title,
		ProjectID:  inboxAlias(sc, common.StringArg(args, "project_id")),
		Content:    common.StringArg(args, "content"),
		Desc:       common.StringArg(args, "desc"),
		TimeZone:   common.StringArg(args, "time_zone"),
		ParentID:   common.StringArg(args, "parent_id"),
		RepeatFlag: common.StringArg(args, "repeat_flag"),
	}
	if in.TimeZone != "" {
		if _, err := time.LoadLocation(in.TimeZone); err != nil {
			return unified.TaskCreate{}, ticktick.NewValidationError("time_zone", "unknown time zone %q", in.TimeZone)
		}
	}

	var startAllDay, dueAllDay bool
	if in.StartDate, startAllDay, err = common.DateArg(args, "start_date"); err != nil {
		return unified.TaskCreate{}, err
	}
	if in.DueDate, dueAllDay, err = common.DateArg(args, "due_date"); err != nil {
		return unified.TaskCreate{}, err
	}
	if in.StartDate != nil && in.DueDate != nil && in.DueDate.Before(*in.StartDate) {
		return unified.TaskCreate{}, ticktick.NewValidationError("due_date", "must not be before start_date")
	}
	in.IsAllDay = (in.StartDate != nil || in.DueDate != nil) &&
		(in.StartDate == nil || startAllDay) && (in.DueDate == nil || dueAllDay)

	if in.Priority, _, err = common.PriorityArg(args, "priority"); err != nil {
		return unified.TaskCreate{}, err
	}
	if in.Tags, err = common.StringSliceArg(args, "tags"); err != nil {
		return unified.TaskCreate{}, err
	}
	if in.Reminders, err = common.StringSliceArg(args, "reminders"); err != nil {
		return unified.TaskCreate{}, err
	}
	return in, nil
}

func updateTaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_update_task",
		mcp.WithDescription("Update a task. Only the given fields change."),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task to update"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project of the task, looked up when omitted"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("content",
			mcp.Description("New notes"),
		),
		mcp.WithString("desc",
			mcp.Description("New description"),
		),
		mcp.WithString("start_date",
			mcp.Description("New start date, YYYY-MM-DD for all-day or RFC 3339"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date, YYYY-MM-DD for all-day or RFC 3339"),
		),
		mcp.WithString("priority",
			mcp.Description("none, low, medium or high"),
		),
		mcp.WithArray("tags",
			mcp.Description("Replaces all tags of the task"),
			mcp.WithStringItems(),
		),
		common.ResponseFormatOption(),
	)
}

func handleUpdateTask(sc *server.ServerContext) common.ToolHandler {
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

		current, err := sc.API().GetTask(ctx, taskID, inboxAlias(sc, common.StringArg(args, "project_id")))
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		task := *current
		if err := applyUpdate(&task, args); err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		updated, err := sc.API().UpdateTask(ctx, task)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, updated, func() string {
			return "Updated task\n\n" + render.Task(*updated)
		})
	}
}

// applyUpdate copies the supplied arguments onto t.
func applyUpdate(t *model.Task, args map[string]any) error {
	if v := common.OptionalString(args, "title"); v != nil {
		t.Title = *v
	}
	if v := common.OptionalString(args, "content"); v != nil {
		t.Content = *v
	}
	if v := common.OptionalString(args, "desc"); v != nil {
		t.Desc = *v
	}

	for _, field := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &t.StartDate},
		{"due_date", &t.DueDate},
	} {
		d, dateOnly, err := common.DateArg(args, field.name)
		if err != nil {
			return err
		}
		if d != nil {
			*field.dst = d
			t.IsAllDay = dateOnly
		}
	}
	if t.StartDate != nil && t.DueDate != nil && t.DueDate.Before(*t.StartDate) {
		return ticktick.NewValidationError("due_date", "must not be before start_date")
	}

	if p, set, err := common.PriorityArg(args, "priority"); err != nil {
		return err
	} else if set {
		t.Priority = p
	}
	if _, ok := args["tags"]; ok {
		tags, err := common.StringSliceArg(args, "tags")
		if err != nil {
			return err
		}
		t.Tags = tags
	}
	return nil
}

func completeTaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_complete_task",
		mcp.WithDescription(fmt.Sprintf("Mark one or more tasks completed (at most %d per call)", batch.MaxItems)),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("A task id, or a JSON array of task ids"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project of the tasks, looked up per task when omitted"),
		),
		common.ResponseFormatOption(),
	)
}

func handleCompleteTask(sc *server.ServerContext) common.ToolHandler {
	return batchHandler(sc, "Completed", func(ctx context.Context, taskID, projectID string) (string, error) {
		if err := sc.API().CompleteTask(ctx, taskID, projectID); err != nil {
			return "", err
		}
		return "completed", nil
	})
}

func deleteTaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_delete_task",
		mcp.WithDescription(fmt.Sprintf("Delete one or more tasks (at most %d per call)", batch.MaxItems)),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("A task id, or a JSON array of task ids"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project of the tasks, looked up per task when omitted"),
		),
		common.ResponseFormatOption(),
	)
}

func handleDeleteTask(sc *server.ServerContext) common.ToolHandler {
	return batchHandler(sc, "Deleted", func(ctx context.Context, taskID, projectID string) (string, error) {
		if err := sc.API().DeleteTask(ctx, taskID, projectID); err != nil {
			return "", err
		}
		return "deleted", nil
	})
}

// batchHandler applies fn to every id in task_id. The call is an error only
// when every id failed.
func batchHandler(sc *server.ServerContext, action string, fn func(ctx context.Context, taskID, projectID string) (string, error)) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		ids, err := batch.ParseStringOrArray(args["task_id"], "task_id")
		if err != nil {
			return common.ErrorResult(ctx, ticktick.NewValidationError("task_id", "%v", err)), nil
		}
		given := common.StringArg(args, "project_id")

		var lastErr error
		results := batch.ProcessBatch(ctx, ids, func(ctx context.Context, id string) (string, error) {
			projectID, err := projectOf(ctx, sc, id, given)
			if err == nil {
				var msg string
				if msg, err = fn(ctx, id, projectID); err == nil {
					return msg, nil
				}
			}
			lastErr = err
			return "", err
		}, common.Message)

		if summary := batch.Summarize(results); summary.Successful == 0 && lastErr != nil {
			if len(ids) == 1 {
				return common.ErrorResult(ctx, lastErr), nil
			}
			// Records the failure category for instrumentation.
			_ = common.ErrorResult(ctx, lastErr)
			return mcp.NewToolResultError(batch.FormatMarkdown(action, results)), nil
		}
		if format == render.FormatJSON {
			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}
		return mcp.NewToolResultText(batch.FormatMarkdown(action, results)), nil
	}
}

func moveTaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_move_task",
		mcp.WithDescription("Move a task to another project"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task to move"),
		),
		mcp.WithString("to_project_id",
			mcp.Required(),
			mcp.Description("Destination project ('inbox' for the inbox)"),
		),
		mcp.WithString("from_project_id",
			mcp.Description("Current project of the task, looked up when omitted"),
		),
		common.ResponseFormatOption(),
	)
}

func handleMoveTask(sc *server.ServerContext) common.ToolHandler {
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
		to, err := common.RequiredString(args, "to_project_id")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		from, err := projectOf(ctx, sc, taskID, common.StringArg(args, "from_project_id"))
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		task, err := sc.API().MoveTask(ctx, taskID, from, inboxAlias(sc, to))
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, task, func() string {
			return "Moved task\n\n" + render.Task(*task)
		})
	}
}

func makeSubtaskTool() mcp.Tool {
	return mcp.NewTool("ticktick_make_subtask",
		mcp.WithDescription("Make a task a subtask of another task in the same project"),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("The task that becomes the subtask"),
		),
		mcp.WithString("parent_id",
			mcp.Required(),
			mcp.Description("The new parent task"),
		),
		mcp.WithString("project_id",
			mcp.Description("Project of the task, looked up when omitted"),
		),
		common.ResponseFormatOption(),
	)
}

func handleMakeSubtask(sc *server.ServerContext) common.ToolHandler {
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
		parentID, err := common.RequiredString(args, "parent_id")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		projectID, err := projectOf(ctx, sc, taskID, common.StringArg(args, "project_id"))
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		task, err := sc.API().SetTaskParent(ctx, taskID, projectID, parentID)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, task, func() string {
			return "Updated subtask\n\n" + render.Task(*task)
		})
	}
}
