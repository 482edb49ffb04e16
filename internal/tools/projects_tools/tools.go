package projects_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/tools/common"
	"github.com/teemow/tickfewer/internal/tools/render"
	"github.com/teemow/tickfewer/internal/unified"
)

// RegisterProjectsTools registers the project and folder tools.
func RegisterProjectsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	add := func(tool mcp.Tool, handler common.ToolHandler) {
		s.AddTool(tool, common.InstrumentedToolHandler(tool.Name, sc, handler))
	}

	add(mcp.NewTool("ticktick_list_projects",
		mcp.WithDescription("List all projects, grouped by folder. The inbox is listed first."),
		common.ResponseFormatOption(),
	), handleListProjects(sc))

	add(mcp.NewTool("ticktick_get_project",
		mcp.WithDescription("Get a project, optionally with its open tasks"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project id ('inbox' for the inbox)"),
		),
		mcp.WithBoolean("include_tasks",
			mcp.Description("Also list the open tasks of the project (default false)"),
		),
		common.ResponseFormatOption(),
	), handleGetProject(sc))

	add(mcp.NewTool("ticktick_list_folders",
		mcp.WithDescription("List the folders that group projects"),
		common.ResponseFormatOption(),
	), handleListFolders(sc))

	if readOnly {
		return nil
	}

	add(mcp.NewTool("ticktick_create_project",
		mcp.WithDescription("Create a project"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the project"),
		),
		mcp.WithString("color",
			mcp.Description("Hex color such as #F18181"),
		),
		mcp.WithString("kind",
			mcp.Description("TASK (default) or NOTE"),
			mcp.Enum(string(ticktick.KindTask), string(ticktick.KindNote)),
		),
		mcp.WithString("view_mode",
			mcp.Description("list (default), kanban or timeline"),
			mcp.Enum(string(ticktick.ViewList), string(ticktick.ViewKanban), string(ticktick.ViewTimeline)),
		),
		mcp.WithString("folder_id",
			mcp.Description("Folder to put the project in"),
		),
		common.ResponseFormatOption(),
	), handleCreateProject(sc))

	add(mcp.NewTool("ticktick_delete_project",
		mcp.WithDescription("Delete a project and all of its tasks. This cannot be undone."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("The project to delete"),
		),
		common.ResponseFormatOption(),
	), handleDeleteProject(sc))

	add(mcp.NewTool("ticktick_create_folder",
		mcp.WithDescription("Create a folder for projects"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the folder"),
		),
		common.ResponseFormatOption(),
	), handleCreateFolder(sc))

	add(mcp.NewTool("ticktick_delete_folder",
		mcp.WithDescription("Delete a folder. Its projects are kept and move out of the folder."),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("The folder to delete"),
		),
		common.ResponseFormatOption(),
	), handleDeleteFolder(sc))

	return nil
}

func projectID(sc *server.ServerContext, args map[string]any) (string, error) {
	id, err := common.RequiredString(args, "project_id")
	if err != nil {
		return "", err
	}
	if id == "inbox" && sc.API().InboxID() != "" {
		return sc.API().InboxID(), nil
	}
	return id, nil
}

func handleListProjects(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := common.ResponseFormat(request.GetArguments())
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		listed, err := sc.API().ListProjects(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		projects := listed
		if inboxID := sc.API().InboxID(); inboxID != "" {
			projects = append([]model.Project{model.NewInboxProject(inboxID)}, listed...)
		}
		// Folders only come from the private API; list the projects flat
		// when it is down.
		groups, err := sc.API().ListProjectGroups(ctx)
		if err != nil {
			sc.Logger().Warn("listing projects without folders", logging.Err(err))
			groups = nil
		}

		out := struct {
			Projects []model.Project      `json:"projects"`
			Folders  []model.ProjectGroup `json:"folders,omitempty"`
		}{projects, groups}
		return render.Result(format, out, func() string { return render.Projects(projects, groups) })
	}
}

func handleGetProject(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		id, err := projectID(sc, args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		if common.BoolArg(args, "include_tasks", false) {
			data, err := sc.API().GetProjectWithData(ctx, id)
			if err != nil {
				return common.ErrorResult(ctx, err), nil
			}
			return render.Result(format, data, func() string { return render.ProjectData(*data) })
		}

		project, err := sc.API().GetProject(ctx, id)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, project, func() string { return render.Project(*project) })
	}
}

func handleListFolders(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := common.ResponseFormat(request.GetArguments())
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		groups, err := sc.API().ListProjectGroups(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, groups, func() string { return render.Folders(groups) })
	}
}

func handleCreateProject(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		name, err := common.RequiredString(args, "name")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		kind, err := ticktick.ParseProjectKind(common.StringArg(args, "kind"))
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		view, err := ticktick.ParseViewMode(common.StringArg(args, "view_mode"))
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		project, err := sc.API().CreateProject(ctx, unified.ProjectCreate{
			Name:     name,
			Color:    common.StringArg(args, "color"),
			Kind:     kind,
			ViewMode: view,
			GroupID:  common.StringArg(args, "folder_id"),
		})
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, project, func() string {
			return "Created project\n\n" + render.Project(*project)
		})
	}
}

func handleDeleteProject(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		id, err := projectID(sc, args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		if err := sc.API().DeleteProject(ctx, id); err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return deleted(format, "project", id)
	}
}

func handleCreateFolder(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		name, err := common.RequiredString(args, "name")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		folder, err := sc.API().CreateProjectGroup(ctx, name)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, folder, func() string {
			return fmt.Sprintf("Created folder **%s** (`%s`)", folder.Name, folder.ID)
		})
	}
}

func handleDeleteFolder(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		id, err := common.RequiredString(args, "folder_id")
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		if err := sc.API().DeleteProjectGroup(ctx, id); err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return deleted(format, "folder", id)
	}
}

func deleted(format render.Format, kind, id string) (*mcp.CallToolResult, error) {
	out := map[string]string{"id": id, "status": "deleted"}
	return render.Result(format, out, func() string {
		return fmt.Sprintf("Deleted %s `%s`", kind, id)
	})
}
