// Package tags_tools provides the MCP tools for tags.
//
// Tags are identified by their lowercased name; the label keeps the casing
// the user chose. Renaming and merging rewrite every active task that
// carries the tag. All tag operations need the private API.
package tags_tools
