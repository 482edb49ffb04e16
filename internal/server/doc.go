// Package server provides the MCP server context, the streamable HTTP
// transport and the health and metrics endpoints for tickfewer.
//
// # Key Components
//
// ServerContext owns the unified API shared by every tool handler together
// with the metrics recorder and audit logger used by the instrumented
// handler wrapper. Shutdown cancels the context and closes the API.
//
// HTTPServer exposes the MCP server on /mcp using the streamable HTTP
// transport. When a HealthChecker is configured it also serves:
//   - /healthz: liveness, always ok while the process runs
//   - /readyz: readiness, ok only once both upstreams are verified
//   - /healthz/detailed: uptime, API state and mode
//
// MetricsServer serves Prometheus metrics on a dedicated address so that
// operational data stays off the MCP listener.
package server
