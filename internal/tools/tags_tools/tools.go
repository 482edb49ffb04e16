package tags_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/tools/common"
	"github.com/teemow/tickfewer/internal/tools/render"
)

// RegisterTagsTools registers the tag tools with the MCP server
func RegisterTagsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	listTagsTool := mcp.NewTool("ticktick_list_tags",
		mcp.WithDescription("List all tags, with nested tags under their parent"),
		common.ResponseFormatOption(),
	)
	s.AddTool(listTagsTool, common.InstrumentedToolHandler(listTagsTool.Name, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListTags(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createTagTool := mcp.NewTool("ticktick_create_tag",
		mcp.WithDescription("Create a tag"),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Display label of the tag; the name is its lowercase form"),
		),
		mcp.WithString("color",
			mcp.Description("Hex color such as #F18181"),
		),
		mcp.WithString("parent",
			mcp.Description("Name of the parent tag for a nested tag"),
		),
		common.ResponseFormatOption(),
	)
	s.AddTool(createTagTool, common.InstrumentedToolHandler(createTagTool.Name, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateTag(ctx, request, sc)
		}))

	deleteTagTool := mcp.NewTool("ticktick_delete_tag",
		mcp.WithDescription("Delete a tag. Tasks keep existing but lose the tag."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the tag to delete"),
		),
		common.ResponseFormatOption(),
	)
	s.AddTool(deleteTagTool, common.InstrumentedToolHandler(deleteTagTool.Name, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteTag(ctx, request, sc)
		}))

	renameTagTool := mcp.NewTool("ticktick_rename_tag",
		mcp.WithDescription("Rename a tag and update every task that uses it"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Current name of the tag"),
		),
		mcp.WithString("new_label",
			mcp.Required(),
			mcp.Description("New label; must not collide with another tag"),
		),
		common.ResponseFormatOption(),
	)
	s.AddTool(renameTagTool, common.InstrumentedToolHandler(renameTagTool.Name, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRenameTag(ctx, request, sc)
		}))

	mergeTagsTool := mcp.NewTool("ticktick_merge_tags",
		mcp.WithDescription("Merge one tag into another. Tasks with the source tag get the target tag and the source tag is deleted."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Tag to merge away"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Tag to keep"),
		),
		common.ResponseFormatOption(),
	)
	s.AddTool(mergeTagsTool, common.InstrumentedToolHandler(mergeTagsTool.Name, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleMergeTags(ctx, request, sc)
		}))

	return nil
}

func handleListTags(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	format, err := common.ResponseFormat(request.GetArguments())
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	tags, err := sc.API().ListTags(ctx)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	return render.Result(format, tags, func() string { return render.Tags(tags) })
}

func handleCreateTag(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	format, err := common.ResponseFormat(args)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	label, err := common.RequiredString(args, "label")
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}

	tag, err := sc.API().CreateTag(ctx, label, common.StringArg(args, "color"), common.StringArg(args, "parent"))
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	return render.Result(format, tag, func() string { return "Created " + render.Tag(*tag) })
}

func handleDeleteTag(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	format, err := common.ResponseFormat(args)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}

	if err := sc.API().DeleteTag(ctx, name); err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	out := map[string]string{"name": name, "status": "deleted"}
	return render.Result(format, out, func() string { return fmt.Sprintf("Deleted tag `%s`", name) })
}

func handleRenameTag(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	format, err := common.ResponseFormat(args)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	newLabel, err := common.RequiredString(args, "new_label")
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}

	tag, err := sc.API().RenameTag(ctx, name, newLabel)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	return render.Result(format, tag, func() string { return "Renamed to " + render.Tag(*tag) })
}

func handleMergeTags(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	format, err := common.ResponseFormat(args)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	source, err := common.RequiredString(args, "source")
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	target, err := common.RequiredString(args, "target")
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}

	result, err := sc.API().MergeTags(ctx, source, target)
	if err != nil {
		return common.ErrorResult(ctx, err), nil
	}
	return render.Result(format, result, func() string { return render.Merge(*result) })
}
