package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/server"
)

// ToolHandler is the signature of every MCP tool handler.
type ToolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler wraps a tool handler with tracing, metrics and
// audit logging. Error results built with ErrorResult are logged with their
// category.
//
// Usage:
//
//	s.AddTool(myTool, common.InstrumentedToolHandler("my_tool", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Get metrics and audit logger (may be nil if not configured)
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// If no instrumentation configured, just call the handler
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		ctx, span := instrumentation.StartToolSpan(ctx, toolName)
		defer span.End()

		start := time.Now()
		args := request.GetArguments()
		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx).
			WithArguments(args)
		if user := sc.Username(); user != "" {
			invocation.WithUser(user)
		}
		resourceType, resourceID := resourceFromArgs(args)
		if resourceID != "" {
			invocation.WithResource(resourceType, resourceID)
		}

		ctx, failure := withFailureRecorder(ctx)
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err, CategoryUnexpected)
			instrumentation.SetSpanError(span, err)
			sc.Logger().Debug("tool call failed", logging.Tool(toolName), logging.Status(status), logging.Err(err))
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.CompleteWithError(failure.err, failure.category)
			instrumentation.SetSpanError(span, failure.err)
			sc.Logger().Debug("tool call failed", logging.Tool(toolName), logging.Status(failure.category), logging.Err(failure.err))
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		metrics.RecordToolInvocationWithResource(ctx, toolName, status, resourceID, duration)
		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}

// resourceFromArgs returns the entity a call targets, preferring the most
// specific id present.
func resourceFromArgs(args map[string]any) (string, string) {
	for _, key := range []struct{ arg, kind string }{
		{"task_id", "task"},
		{"project_id", "project"},
		{"folder_id", "folder"},
		{"name", "tag"},
	} {
		if v, ok := args[key.arg].(string); ok && v != "" {
			return key.kind, v
		}
	}
	return "", ""
}
