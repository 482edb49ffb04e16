// Package projects_tools provides the MCP tools for projects and the folders
// that group them.
//
// Read tools:
//   - ticktick_list_projects, ticktick_get_project, ticktick_list_folders
//
// Write tools (registered with --yolo):
//   - ticktick_create_project, ticktick_delete_project
//   - ticktick_create_folder, ticktick_delete_folder
//
// Deleting a project deletes its tasks. The inbox cannot be deleted.
package projects_tools
