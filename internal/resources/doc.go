// Package resources provides MCP resources for the signed-in TickTick
// account. Resources are read-only JSON documents that MCP clients can fetch
// without calling a tool: the profile, the account status and the project
// list.
package resources
