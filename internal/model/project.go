package model

import (
	"strings"

	"github.com/teemow/tickfewer/internal/ticktick"
	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// Project is the canonical task list.
type Project struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Color      string               `json:"color,omitempty"`
	Kind       ticktick.ProjectKind `json:"kind"`
	ViewMode   ticktick.ViewMode    `json:"view_mode"`
	GroupID    string               `json:"group_id,omitempty"`
	Closed     bool                 `json:"closed,omitempty"`
	SortOrder  int64                `json:"sort_order,omitempty"`
	Permission string               `json:"permission,omitempty"`
}

// IsInbox reports whether p is the user's inbox.
func (p Project) IsInbox() bool {
	return strings.HasPrefix(p.ID, "inbox")
}

// NewInboxProject synthesizes the inbox, which neither upstream lists.
func NewInboxProject(inboxID string) Project {
	return Project{
		ID:       inboxID,
		Name:     "Inbox",
		Kind:     ticktick.KindTask,
		ViewMode: ticktick.ViewList,
	}
}

// Column is a kanban column of a project.
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sort_order,omitempty"`
}

// ProjectGroup is a folder of projects.
type ProjectGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sort_order,omitempty"`
	ShowAll   bool   `json:"show_all,omitempty"`
}

// ProjectData is a project with its open tasks and columns.
type ProjectData struct {
	Project Project  `json:"project"`
	Tasks   []Task   `json:"tasks"`
	Columns []Column `json:"columns,omitempty"`
}

func kindOrDefault(kind string) ticktick.ProjectKind {
	if k, err := ticktick.ParseProjectKind(kind); err == nil {
		return k
	}
	return ticktick.KindTask
}

func viewModeOrDefault(mode string) ticktick.ViewMode {
	if m, err := ticktick.ParseViewMode(mode); err == nil {
		return m
	}
	return ticktick.ViewList
}

// ProjectFromV1 converts an open API project.
func ProjectFromV1(in v1.Project) Project {
	return Project{
		ID:         in.ID,
		Name:       in.Name,
		Color:      in.Color,
		Kind:       kindOrDefault(in.Kind),
		ViewMode:   viewModeOrDefault(in.ViewMode),
		GroupID:    in.GroupID,
		Closed:     in.Closed,
		SortOrder:  in.SortOrder,
		Permission: in.Permission,
	}
}

// ProjectFromV2 converts a private API project.
func ProjectFromV2(in v2.Project) Project {
	return Project{
		ID:         in.ID,
		Name:       in.Name,
		Color:      in.Color,
		Kind:       kindOrDefault(in.Kind),
		ViewMode:   viewModeOrDefault(in.ViewMode),
		GroupID:    in.GroupID,
		Closed:     in.Closed,
		SortOrder:  in.SortOrder,
		Permission: in.Permission,
	}
}

// ToV1 converts to an open API creation body.
func (p Project) ToV1() v1.ProjectInput {
	return v1.ProjectInput{
		Name:      p.Name,
		Color:     p.Color,
		SortOrder: p.SortOrder,
		ViewMode:  string(p.ViewMode),
		Kind:      string(p.Kind),
	}
}

// ToV2 converts to the private API shape.
func (p Project) ToV2() v2.Project {
	return v2.Project{
		ID:         p.ID,
		Name:       p.Name,
		Color:      p.Color,
		SortOrder:  p.SortOrder,
		Closed:     p.Closed,
		GroupID:    p.GroupID,
		ViewMode:   string(p.ViewMode),
		Permission: p.Permission,
		Kind:       string(p.Kind),
		InAll:      true,
	}
}

// ColumnFromV1 converts an open API column.
func ColumnFromV1(in v1.Column) Column {
	return Column{ID: in.ID, ProjectID: in.ProjectID, Name: in.Name, SortOrder: in.SortOrder}
}

// ProjectDataFromV1 converts an open API project data bundle.
func ProjectDataFromV1(in v1.ProjectData) ProjectData {
	tasks := make([]Task, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		tasks = append(tasks, TaskFromV1(t))
	}
	columns := make([]Column, 0, len(in.Columns))
	for _, c := range in.Columns {
		columns = append(columns, ColumnFromV1(c))
	}
	return ProjectData{
		Project: ProjectFromV1(in.Project),
		Tasks:   tasks,
		Columns: emptyToNil(columns),
	}
}

// ProjectGroupFromV2 converts a private API folder.
func ProjectGroupFromV2(in v2.ProjectGroup) ProjectGroup {
	return ProjectGroup{ID: in.ID, Name: in.Name, SortOrder: in.SortOrder, ShowAll: in.ShowAll}
}
