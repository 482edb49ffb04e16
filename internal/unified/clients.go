package unified

import (
	"context"
	"time"

	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// V1Client is what the unified API needs from the open API client.
type V1Client interface {
	Verify(ctx context.Context) error
	Close() error

	GetProjects(ctx context.Context) ([]v1.Project, error)
	GetProject(ctx context.Context, projectID string) (*v1.Project, error)
	GetProjectWithData(ctx context.Context, projectID string) (*v1.ProjectData, error)
	CreateProject(ctx context.Context, input v1.ProjectInput) (*v1.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	GetTask(ctx context.Context, projectID, taskID string) (*v1.Task, error)
	CreateTask(ctx context.Context, task v1.Task) (*v1.Task, error)
	UpdateTask(ctx context.Context, task v1.Task) (*v1.Task, error)
	CompleteTask(ctx context.Context, projectID, taskID string) error
	DeleteTask(ctx context.Context, projectID, taskID string) error
}

// V2Client is what the unified API needs from the private API client.
type V2Client interface {
	Authenticate(ctx context.Context, username, password string) (*v2.Session, error)
	Verify(ctx context.Context) error
	Close() error

	Sync(ctx context.Context) (*v2.SyncState, error)

	GetTask(ctx context.Context, taskID string) (*v2.Task, error)
	BatchTasks(ctx context.Context, req v2.BatchTaskRequest) (*v2.BatchResponse, error)
	CreateTask(ctx context.Context, task v2.Task) (*v2.BatchResponse, error)
	UpdateTaskFields(ctx context.Context, task v2.Task) (*v2.BatchResponse, error)
	DeleteTask(ctx context.Context, projectID, taskID string) error
	MoveTask(ctx context.Context, taskID, fromProjectID, toProjectID string) error
	SetTaskParent(ctx context.Context, taskID, projectID, parentID string) error
	CompletedTasks(ctx context.Context, from, to time.Time, limit int) ([]v2.Task, error)

	CreateProject(ctx context.Context, project v2.Project) (*v2.BatchResponse, error)
	DeleteProject(ctx context.Context, projectID string) error
	CreateProjectGroup(ctx context.Context, name string) (*v2.BatchResponse, error)
	DeleteProjectGroup(ctx context.Context, groupID string) error

	CreateTag(ctx context.Context, tag v2.Tag) (*v2.BatchResponse, error)
	UpdateTags(ctx context.Context, tags []v2.Tag) (*v2.BatchResponse, error)
	RenameTag(ctx context.Context, oldName, newLabel string) error
	DeleteTag(ctx context.Context, name string) error

	UserProfile(ctx context.Context) (*v2.UserProfile, error)
	UserStatus(ctx context.Context) (*v2.UserStatus, error)
	UserStatistics(ctx context.Context) (*v2.UserStatistics, error)
	FocusHeatmap(ctx context.Context, start, end time.Time) ([]v2.FocusDay, error)
	FocusByTag(ctx context.Context, start, end time.Time) (map[string]int64, error)
}

// V1Factory constructs the open API client.
type V1Factory func(ctx context.Context, cfg v1.Config) (V1Client, error)

// V2Factory constructs the private API client, unauthenticated.
type V2Factory func(cfg v2.Config) (V2Client, error)

func defaultV1Factory(ctx context.Context, cfg v1.Config) (V1Client, error) {
	client, err := v1.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func defaultV2Factory(cfg v2.Config) (V2Client, error) {
	client, err := v2.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var (
	_ V1Client = (*v1.Client)(nil)
	_ V2Client = (*v2.Client)(nil)
)
