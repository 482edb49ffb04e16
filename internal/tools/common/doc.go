// Package common provides shared utilities for MCP tool implementations:
// the instrumented handler wrapper, argument parsing and the mapping of
// unified API errors to caller-facing messages.
package common
