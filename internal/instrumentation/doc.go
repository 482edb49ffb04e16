// Package instrumentation provides OpenTelemetry instrumentation for the
// tickfewer MCP server.
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Upstream API Metrics:
//   - upstream_requests_total: Counter of upstream attempts by upstream, operation, status
//   - upstream_request_duration_seconds: Histogram of upstream attempt durations
//   - upstream_fallbacks_total: Counter of operations served by the fallback upstream
//   - unified_init_total: Counter of unified API initializations by result
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for MCP tool invocations (tool.<name>) and for every
// upstream attempt (upstream.<v1|v2>.<operation>), so a fallback shows up as
// two sibling client spans under the tool span.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: tickfewer)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordUpstreamOperation(ctx, instrumentation.UpstreamV2,
//		"get_task", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
