package account_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/tools/common"
	"github.com/teemow/tickfewer/internal/tools/render"
)

const (
	defaultFocusDays = 30
	maxFocusDays     = 365
)

// RegisterAccountTools registers the account tools. They never write, so
// readOnly does not change the set.
func RegisterAccountTools(s *mcpserver.MCPServer, sc *server.ServerContext, _ bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	for _, t := range []struct {
		tool    mcp.Tool
		handler common.ToolHandler
	}{
		{profileTool(), handleGetProfile(sc)},
		{statusTool(), handleGetStatus(sc)},
		{statisticsTool(), handleGetStatistics(sc)},
		{focusTool("ticktick_focus_heatmap", "Focus time per day"), handleFocusHeatmap(sc)},
		{focusTool("ticktick_focus_by_tag", "Focus time per tag"), handleFocusByTag(sc)},
		{syncTool(), handleSync(sc)},
	} {
		s.AddTool(t.tool, common.InstrumentedToolHandler(t.tool.Name, sc, t.handler))
	}
	return nil
}

func profileTool() mcp.Tool {
	return mcp.NewTool("ticktick_get_profile",
		mcp.WithDescription("Get the profile of the signed-in user"),
		common.ResponseFormatOption(),
	)
}

func statusTool() mcp.Tool {
	return mcp.NewTool("ticktick_get_status",
		mcp.WithDescription("Get the account status: user id, inbox id and subscription"),
		common.ResponseFormatOption(),
	)
}

func statisticsTool() mcp.Tool {
	return mcp.NewTool("ticktick_get_statistics",
		mcp.WithDescription("Get productivity statistics: score, level, completed tasks and pomodoros"),
		common.ResponseFormatOption(),
	)
}

func focusTool(name, what string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(fmt.Sprintf("%s. Give start_date and end_date, or days to look back from today.", what)),
		mcp.WithString("start_date",
			mcp.Description("First day (YYYY-MM-DD)"),
		),
		mcp.WithString("end_date",
			mcp.Description("Last day (YYYY-MM-DD)"),
		),
		mcp.WithNumber("days",
			mcp.Description(fmt.Sprintf("Days to look back (1-%d, default %d)", maxFocusDays, defaultFocusDays)),
		),
		common.ResponseFormatOption(),
	)
}

func syncTool() mcp.Tool {
	return mcp.NewTool("ticktick_sync",
		mcp.WithDescription("Run a full sync of the account and summarize what it holds"),
		mcp.WithBoolean("include_raw",
			mcp.Description("Return the complete sync payload instead of the summary (json only, can be large)"),
		),
		common.ResponseFormatOption(),
	)
}

func handleGetProfile(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := common.ResponseFormat(request.GetArguments())
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		user, err := sc.API().GetUserProfile(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, user, func() string { return render.User(*user) })
	}
}

func handleGetStatus(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := common.ResponseFormat(request.GetArguments())
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		status, err := sc.API().GetUserStatus(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, status, func() string { return render.Status(*status) })
	}
}

func handleGetStatistics(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, err := common.ResponseFormat(request.GetArguments())
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		stats, err := sc.API().GetUserStatistics(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, stats, func() string { return render.Statistics(*stats) })
	}
}

func handleFocusHeatmap(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		start, end, err := common.DateRange(args, time.Now(), defaultFocusDays, maxFocusDays)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		days, err := sc.API().GetFocusHeatmap(ctx, start, end)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, days, func() string { return render.FocusHeatmap(days) })
	}
}

func handleFocusByTag(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		start, end, err := common.DateRange(args, time.Now(), defaultFocusDays, maxFocusDays)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		byTag, err := sc.API().GetFocusByTag(ctx, start, end)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		return render.Result(format, byTag, func() string { return render.FocusByTag(byTag) })
	}
}

func handleSync(sc *server.ServerContext) common.ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, err := common.ResponseFormat(args)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}
		raw, err := sc.API().SyncAll(ctx)
		if err != nil {
			return common.ErrorResult(ctx, err), nil
		}

		if common.BoolArg(args, "include_raw", false) {
			text, err := render.JSON(raw)
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(text), nil
		}
		summary := render.SummarizeSync(raw)
		return render.Result(format, summary, func() string { return render.Sync(summary) })
	}
}
