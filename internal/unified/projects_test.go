package unified

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)

	created, err := api.CreateProject(ctx, ProjectCreate{Name: " Garden ", Color: "#00AA00", ViewMode: "kanban"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Garden", created.Name)
	assert.Equal(t, ticktick.KindTask, created.Kind)
	assert.Equal(t, ticktick.ViewKanban, created.ViewMode)
	assert.Equal(t, []string{"v2.create_project", "v2.sync"}, callNames(b))

	got, err := api.GetProject(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garden", got.Name)
	assert.Equal(t, "#00AA00", got.Color)
}

func TestCreateProjectFallback(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)
	b.Fail("v2", "create_project", fake.ServerError("v2", "create_project"))

	created, err := api.CreateProject(context.Background(), ProjectCreate{Name: "Garden"})
	require.NoError(t, err)
	assert.Equal(t, []string{"v2.create_project", "v1.create_project"}, callNames(b))

	stored, ok := b.Project(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Garden", stored.Name)
}

func TestCreateProjectValidation(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)

	tests := []ProjectCreate{
		{Name: ""},
		{Name: "x", Color: "green"},
		{Name: "x", Kind: "CALENDAR"},
		{Name: "x", ViewMode: "grid"},
		{Name: "x", GroupID: "folder"},
	}
	for _, in := range tests {
		_, err := api.CreateProject(context.Background(), in)
		assert.True(t, ticktick.IsValidation(err), "%+v", in)
	}
	assert.Empty(t, b.Calls())
}

func TestGetProjectNotFound(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)

	_, err := api.GetProject(context.Background(), "ffffffffffffffffffffffff")
	var nf *ticktick.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "project", nf.Resource)
	assert.Equal(t, []string{"v1.get_project"}, callNames(b))
}

func TestGetProjectWithData(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	projectID := b.AddProject(v2.Project{Name: "Work"})
	b.AddTask(v2.Task{ProjectID: projectID, Title: "open"})
	b.AddTask(v2.Task{ProjectID: projectID, Title: "done", Status: 2})
	b.AddTask(v2.Task{Title: "elsewhere"})

	data, err := api.GetProjectWithData(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, "Work", data.Project.Name)
	require.Len(t, data.Tasks, 1)
	assert.Equal(t, "open", data.Tasks[0].Title)

	inbox, err := api.GetProjectWithData(ctx, fake.InboxID)
	require.NoError(t, err)
	require.Len(t, inbox.Tasks, 1)
	assert.Equal(t, "elsewhere", inbox.Tasks[0].Title)

	b.Fail("v1", "get_project_with_data", fake.ServerError("v1", "get_project_with_data"))
	_, err = api.GetProjectWithData(ctx, projectID)
	assert.True(t, ticktick.IsUnavailable(err))
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)
	projectID := b.AddProject(v2.Project{Name: "Old"})
	taskID := b.AddTask(v2.Task{ProjectID: projectID, Title: "gone too"})

	require.NoError(t, api.DeleteProject(ctx, projectID))
	_, ok := b.Project(projectID)
	assert.False(t, ok)
	_, ok = b.Task(taskID)
	assert.False(t, ok)

	err := api.DeleteProject(ctx, fake.InboxID)
	assert.True(t, ticktick.IsValidation(err))

	err = api.DeleteProject(ctx, projectID)
	assert.True(t, ticktick.IsNotFound(err))
}

func TestProjectGroups(t *testing.T) {
	ctx := context.Background()
	b := fake.New()
	api := newTestAPI(t, b)

	folder, err := api.CreateProjectGroup(ctx, "Personal")
	require.NoError(t, err)
	assert.NotEmpty(t, folder.ID)
	assert.Equal(t, "Personal", folder.Name)

	project, err := api.CreateProject(ctx, ProjectCreate{Name: "Garden", GroupID: folder.ID})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, project.GroupID)

	groups, err := api.ListProjectGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, folder.ID, groups[0].ID)

	require.NoError(t, api.DeleteProjectGroup(ctx, folder.ID))

	groups, err = api.ListProjectGroups(ctx)
	require.NoError(t, err)
	assert.Empty(t, groups)

	projects, err := api.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)
	assert.Empty(t, projects[0].GroupID)

	err = api.DeleteProjectGroup(ctx, folder.ID)
	assert.True(t, ticktick.IsNotFound(err))
}

func TestCreateProjectGroupListingFailure(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)
	b.Fail("v2", "sync", fake.ServerError("v2", "sync"))

	folder, err := api.CreateProjectGroup(context.Background(), "Personal")
	require.NoError(t, err)
	assert.NotEmpty(t, folder.ID)
	assert.Equal(t, "Personal", folder.Name)

	_, ok := b.Group(folder.ID)
	assert.True(t, ok)
}
