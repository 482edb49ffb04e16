// Package cmd implements the command-line interface for tickfewer.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - verify: Check the credentials of both TickTick APIs
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all MCP tools
//
// Configuration is read from an optional YAML file, a .env file and the
// environment, in increasing precedence. Command flags override all of them.
package cmd
