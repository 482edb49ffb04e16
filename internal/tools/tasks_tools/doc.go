// Package tasks_tools provides the MCP tools for tasks.
//
// # Available Tools
//
// Read tools (always registered):
//   - ticktick_get_task: Get one task
//   - ticktick_list_tasks: List active tasks with optional filters
//   - ticktick_completed_tasks: List tasks completed in the last days
//   - ticktick_search_tasks: Search active tasks by text or tag
//
// Write tools (registered with --yolo):
//   - ticktick_create_task: Create a task, in the inbox by default
//   - ticktick_update_task: Change selected fields of a task
//   - ticktick_complete_task: Complete one task or many
//   - ticktick_delete_task: Delete one task or many
//   - ticktick_move_task: Move a task to another project
//   - ticktick_make_subtask: Make a task the subtask of another
//
// Every tool accepts response_format (markdown or json). Tools that need a
// project id look it up from the task when it is not given.
package tasks_tools
