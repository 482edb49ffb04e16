package unified

import (
	"context"
	"strings"

	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
)

// ProjectCreate describes a new project.
type ProjectCreate struct {
	Name     string
	Color    string
	Kind     ticktick.ProjectKind
	ViewMode ticktick.ViewMode
	// GroupID places the project in a folder. The open API ignores it.
	GroupID string
}

func (in *ProjectCreate) normalize() error {
	if err := ticktick.ValidateTitle("name", in.Name); err != nil {
		return err
	}
	if err := ticktick.ValidateColor(in.Color); err != nil {
		return err
	}
	kind, err := ticktick.ParseProjectKind(string(in.Kind))
	if err != nil {
		return err
	}
	mode, err := ticktick.ParseViewMode(string(in.ViewMode))
	if err != nil {
		return err
	}
	if in.GroupID != "" {
		if err := ticktick.ValidateFolderID("folder_id", in.GroupID); err != nil {
			return err
		}
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Kind = kind
	in.ViewMode = mode
	return nil
}

// ListProjects returns every project except the inbox.
func (a *API) ListProjects(ctx context.Context) ([]model.Project, error) {
	return run(ctx, a, OpListProjects, call[[]model.Project]{
		v2: func(ctx context.Context, c V2Client) ([]model.Project, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]model.Project, 0, len(state.ProjectProfiles))
			for _, p := range state.ProjectProfiles {
				out = append(out, model.ProjectFromV2(p))
			}
			return out, nil
		},
		v1: func(ctx context.Context, c V1Client) ([]model.Project, error) {
			projects, err := c.GetProjects(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]model.Project, 0, len(projects))
			for _, p := range projects {
				out = append(out, model.ProjectFromV1(p))
			}
			return out, nil
		},
	})
}

// GetProject returns one project.
func (a *API) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
		return nil, err
	}
	return run(ctx, a, OpGetProject, call[*model.Project]{
		resource: "project",
		id:       projectID,
		v1: func(ctx context.Context, c V1Client) (*model.Project, error) {
			p, err := c.GetProject(ctx, projectID)
			if err != nil {
				return nil, err
			}
			out := model.ProjectFromV1(*p)
			return &out, nil
		},
		v2: func(ctx context.Context, c V2Client) (*model.Project, error) {
			return findProjectV2(ctx, c, projectID)
		},
	})
}

func findProjectV2(ctx context.Context, c V2Client, projectID string) (*model.Project, error) {
	state, err := c.Sync(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range state.ProjectProfiles {
		if p.ID == projectID {
			out := model.ProjectFromV2(p)
			return &out, nil
		}
	}
	return nil, &ticktick.NotFoundError{Resource: "project", ID: projectID}
}

// GetProjectWithData returns a project with its open tasks and columns.
func (a *API) GetProjectWithData(ctx context.Context, projectID string) (*model.ProjectData, error) {
	if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
		return nil, err
	}
	return run(ctx, a, OpGetProjectWithData, call[*model.ProjectData]{
		resource: "project",
		id:       projectID,
		v1: func(ctx context.Context, c V1Client) (*model.ProjectData, error) {
			data, err := c.GetProjectWithData(ctx, projectID)
			if err != nil {
				return nil, err
			}
			out := model.ProjectDataFromV1(*data)
			return &out, nil
		},
	})
}

// CreateProject creates a project and returns it as stored.
func (a *API) CreateProject(ctx context.Context, in ProjectCreate) (*model.Project, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	project := model.Project{
		Name:     in.Name,
		Color:    in.Color,
		Kind:     in.Kind,
		ViewMode: in.ViewMode,
		GroupID:  in.GroupID,
	}

	return run(ctx, a, OpCreateProject, call[*model.Project]{
		resource: "folder",
		id:       in.GroupID,
		v2: func(ctx context.Context, c V2Client) (*model.Project, error) {
			ack, err := c.CreateProject(ctx, project.ToV2())
			if err != nil {
				return nil, err
			}
			id := ack.FirstID()
			if id == "" {
				return nil, errNoAckID
			}
			stored, err := findProjectV2(ctx, c, id)
			if err != nil {
				// The write went through; a second write on the fallback
				// would duplicate it.
				a.logger.Warn("could not read back created project", logging.Operation(OpCreateProject), logging.Err(err))
				created := project
				created.ID = id
				return &created, nil
			}
			return stored, nil
		},
		v1: func(ctx context.Context, c V1Client) (*model.Project, error) {
			if project.GroupID != "" {
				a.logger.Warn("project created outside its folder, the open API cannot place it",
					logging.Operation(OpCreateProject))
			}
			created, err := c.CreateProject(ctx, project.ToV1())
			if err != nil {
				return nil, err
			}
			out := model.ProjectFromV1(*created)
			return &out, nil
		},
	})
}

// DeleteProject deletes a project together with its tasks.
func (a *API) DeleteProject(ctx context.Context, projectID string) error {
	if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
		return err
	}
	if strings.HasPrefix(projectID, "inbox") {
		return ticktick.NewValidationError("project_id", "the inbox cannot be deleted")
	}
	_, err := run(ctx, a, OpDeleteProject, call[struct{}]{
		resource: "project",
		id:       projectID,
		v2: func(ctx context.Context, c V2Client) (struct{}, error) {
			return struct{}{}, c.DeleteProject(ctx, projectID)
		},
		v1: func(ctx context.Context, c V1Client) (struct{}, error) {
			return struct{}{}, c.DeleteProject(ctx, projectID)
		},
	})
	return err
}

// ListProjectGroups returns every folder.
func (a *API) ListProjectGroups(ctx context.Context) ([]model.ProjectGroup, error) {
	return run(ctx, a, OpListFolders, call[[]model.ProjectGroup]{
		v2: func(ctx context.Context, c V2Client) ([]model.ProjectGroup, error) {
			return listGroupsV2(ctx, c)
		},
	})
}

func listGroupsV2(ctx context.Context, c V2Client) ([]model.ProjectGroup, error) {
	state, err := c.Sync(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ProjectGroup, 0, len(state.ProjectGroups))
	for _, g := range state.ProjectGroups {
		out = append(out, model.ProjectGroupFromV2(g))
	}
	return out, nil
}

// CreateProjectGroup creates a folder. If the new folder is not yet visible
// in the listing a minimal folder with the acknowledged id is returned.
func (a *API) CreateProjectGroup(ctx context.Context, name string) (*model.ProjectGroup, error) {
	if err := ticktick.ValidateTitle("name", name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	return run(ctx, a, OpCreateFolder, call[*model.ProjectGroup]{
		v2: func(ctx context.Context, c V2Client) (*model.ProjectGroup, error) {
			ack, err := c.CreateProjectGroup(ctx, name)
			if err != nil {
				return nil, err
			}
			id := ack.FirstID()
			if id == "" {
				return nil, errNoAckID
			}
			groups, err := listGroupsV2(ctx, c)
			if err != nil {
				a.logger.Warn("could not read back created folder", logging.Operation(OpCreateFolder), logging.Err(err))
			}
			for _, g := range groups {
				if g.ID == id {
					return &g, nil
				}
			}
			return &model.ProjectGroup{ID: id, Name: name}, nil
		},
	})
}

// DeleteProjectGroup deletes a folder. Its projects stay, outside any folder.
func (a *API) DeleteProjectGroup(ctx context.Context, groupID string) error {
	if err := ticktick.ValidateFolderID("folder_id", groupID); err != nil {
		return err
	}
	_, err := run(ctx, a, OpDeleteFolder, call[struct{}]{
		resource: "folder",
		id:       groupID,
		v2: func(ctx context.Context, c V2Client) (struct{}, error) {
			return struct{}{}, c.DeleteProjectGroup(ctx, groupID)
		},
	})
	return err
}
