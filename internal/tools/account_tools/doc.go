// Package account_tools provides read-only MCP tools for the account:
// profile, subscription status, productivity statistics, focus time and a
// full sync. These tools are always registered.
package account_tools
