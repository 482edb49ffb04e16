package unified

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

func callNames(b *fake.Backend) []string {
	var out []string
	for _, c := range b.Calls() {
		out = append(out, c.String())
	}
	return out
}

func TestEveryOperationHasAPolicy(t *testing.T) {
	ops := []string{
		OpListTasks, OpGetTask, OpCreateTask, OpUpdateTask, OpCompleteTask, OpDeleteTask,
		OpCompletedTasks, OpMoveTask, OpSetTaskParent, OpSearchTasks,
		OpListProjects, OpGetProject, OpGetProjectWithData, OpCreateProject, OpDeleteProject,
		OpListFolders, OpCreateFolder, OpDeleteFolder,
		OpListTags, OpCreateTag, OpDeleteTag, OpRenameTag, OpMergeTags,
		OpUserProfile, OpUserStatus, OpUserStatistics, OpFocusHeatmap, OpFocusByTag, OpSyncAll,
	}
	for _, op := range ops {
		p, ok := policies[op]
		if assert.True(t, ok, op) {
			assert.NotEmpty(t, p.primary, op)
			assert.NotEqual(t, p.primary, p.fallback, op)
		}
	}
}

func TestRouting(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		fail      map[string]error
		run       func(api *API, b *fake.Backend, taskID, projectID string) error
		wantCalls []string
		check     func(t *testing.T, err error)
	}{
		{
			name: "get task served by the private API",
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				_, err := api.GetTask(ctx, taskID, projectID)
				return err
			},
			wantCalls: []string{"v2.get_task"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "get task falls back when the private API is down",
			fail: map[string]error{"v2.get_task": fake.ServerError("v2", "get_task")},
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				task, err := api.GetTask(ctx, taskID, projectID)
				if err == nil && task.ID != taskID {
					t.Errorf("got task %s", task.ID)
				}
				return err
			},
			wantCalls: []string{"v2.get_task", "v1.get_task"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "get task not found on the private API falls through",
			fail: map[string]error{"v2.get_task": fake.NotFound("v2", "get_task")},
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				_, err := api.GetTask(ctx, taskID, projectID)
				return err
			},
			wantCalls: []string{"v2.get_task", "v1.get_task"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "get task without project id has no fallback",
			fail: map[string]error{"v2.get_task": fake.NotFound("v2", "get_task")},
			run: func(api *API, _ *fake.Backend, taskID, _ string) error {
				_, err := api.GetTask(ctx, taskID, "")
				return err
			},
			wantCalls: []string{"v2.get_task"},
			check: func(t *testing.T, err error) {
				var nf *ticktick.NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, "task", nf.Resource)
			},
		},
		{
			name: "both upstreams down",
			fail: map[string]error{
				"v2.get_task": fake.ServerError("v2", "get_task"),
				"v1.get_task": fake.ServerError("v1", "get_task"),
			},
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				_, err := api.GetTask(ctx, taskID, projectID)
				return err
			},
			wantCalls: []string{"v2.get_task", "v1.get_task"},
			check: func(t *testing.T, err error) {
				assert.True(t, ticktick.IsUnavailable(err))
				assert.False(t, ticktick.IsNotFound(err))
				assert.Contains(t, err.Error(), "v2 get_task")
				assert.Contains(t, err.Error(), "v1 get_task")
			},
		},
		{
			name: "authentication failure is final",
			fail: map[string]error{"v2.delete_task": fake.AuthError("v2", "delete_task")},
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				return api.DeleteTask(ctx, taskID, projectID)
			},
			wantCalls: []string{"v2.delete_task"},
			check: func(t *testing.T, err error) {
				var ae *ticktick.AuthenticationError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "v2", ae.Upstream)
			},
		},
		{
			name: "not found on a write is final",
			run: func(api *API, _ *fake.Backend, _, projectID string) error {
				return api.DeleteTask(ctx, "ffffffffffffffffffffffff", projectID)
			},
			wantCalls: []string{"v2.delete_task"},
			check:     func(t *testing.T, err error) { assert.True(t, ticktick.IsNotFound(err)) },
		},
		{
			name: "complete task prefers the open API",
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				return api.CompleteTask(ctx, taskID, projectID)
			},
			wantCalls: []string{"v1.complete_task"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "complete task falls back to a status update",
			fail: map[string]error{"v1.complete_task": fake.ServerError("v1", "complete_task")},
			run: func(api *API, _ *fake.Backend, taskID, projectID string) error {
				return api.CompleteTask(ctx, taskID, projectID)
			},
			wantCalls: []string{"v1.complete_task", "v2.get_task", "v2.update_task"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "private-only operation has no fallback",
			fail: map[string]error{"v2.sync": fake.ServerError("v2", "sync")},
			run: func(api *API, _ *fake.Backend, _, _ string) error {
				_, err := api.ListAllTasks(ctx)
				return err
			},
			wantCalls: []string{"v2.sync"},
			check: func(t *testing.T, err error) {
				var ue *ticktick.UpstreamUnavailableError
				require.ErrorAs(t, err, &ue)
				assert.Equal(t, OpListTasks, ue.Operation)
			},
		},
		{
			name: "list projects falls back to the open API",
			fail: map[string]error{"v2.sync": fake.ServerError("v2", "sync")},
			run: func(api *API, _ *fake.Backend, _, _ string) error {
				projects, err := api.ListProjects(ctx)
				if err == nil && len(projects) != 1 {
					t.Errorf("got %d projects", len(projects))
				}
				return err
			},
			wantCalls: []string{"v2.sync", "v1.get_projects"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "get project falls back to the sync snapshot",
			fail: map[string]error{"v1.get_project": fake.ServerError("v1", "get_project")},
			run: func(api *API, _ *fake.Backend, _, projectID string) error {
				p, err := api.GetProject(ctx, projectID)
				if err == nil && p.Name != "Work" {
					t.Errorf("got project %q", p.Name)
				}
				return err
			},
			wantCalls: []string{"v1.get_project", "v2.sync"},
			check:     func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "validation happens before any call",
			run: func(api *API, _ *fake.Backend, _, _ string) error {
				_, err := api.GetTask(ctx, "not-an-id", "")
				return err
			},
			wantCalls: nil,
			check:     func(t *testing.T, err error) { assert.True(t, ticktick.IsValidation(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := fake.New()
			projectID := b.AddProject(v2.Project{Name: "Work", Kind: "TASK", ViewMode: "list"})
			taskID := b.AddTask(v2.Task{ProjectID: projectID, Title: "Write report"})
			api := newTestAPI(t, b)
			for key, err := range tt.fail {
				upstream, op, _ := strings.Cut(key, ".")
				b.Fail(upstream, op, err)
			}

			err := tt.run(api, b, taskID, projectID)
			tt.check(t, err)
			assert.Equal(t, tt.wantCalls, callNames(b))
		})
	}
}

func TestFallbackRecordsOneAttemptPerUpstream(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)
	b.FailAll("v2", fake.ServerError("v2", "*"))
	b.FailAll("v1", fake.ServerError("v1", "*"))

	_, err := api.CreateTask(context.Background(), TaskCreate{Title: "Buy milk"})
	require.Error(t, err)
	assert.True(t, ticktick.IsUnavailable(err))
	assert.Equal(t, []string{"v2.create_task", "v1.create_task"}, callNames(b))
	assert.Empty(t, b.Tasks())
}

func TestCancelledCallerSkipsFallback(t *testing.T) {
	b := fake.New()
	api := newTestAPI(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.FailAll("v2", context.Canceled)

	_, err := api.CreateTask(ctx, TaskCreate{Title: "Buy milk"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ticktick.IsUnavailable(err))
	assert.Equal(t, []string{"v2.create_task"}, callNames(b))
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		fallsThough bool
		want        func(t *testing.T, got error)
	}{
		{
			name: "server error may fall back",
			err:  fake.ServerError("v2", "op"),
			want: func(t *testing.T, got error) { assert.Nil(t, got) },
		},
		{
			name: "validation is final",
			err:  ticktick.NewValidationError("f", "bad"),
			want: func(t *testing.T, got error) { assert.True(t, ticktick.IsValidation(got)) },
		},
		{
			name: "auth becomes AuthenticationError",
			err:  fake.AuthError("v1", "op"),
			want: func(t *testing.T, got error) {
				var ae *ticktick.AuthenticationError
				require.ErrorAs(t, got, &ae)
				assert.Equal(t, "v1", ae.Upstream)
			},
		},
		{
			name: "not found becomes NotFoundError",
			err:  fake.NotFound("v1", "op"),
			want: func(t *testing.T, got error) {
				var nf *ticktick.NotFoundError
				require.ErrorAs(t, got, &nf)
				assert.Equal(t, "task", nf.Resource)
				assert.Equal(t, "abc", nf.ID)
			},
		},
		{
			name:        "not found may fall through",
			err:         fake.NotFound("v2", "op"),
			fallsThough: true,
			want:        func(t *testing.T, got error) { assert.Nil(t, got) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, terminal(tt.err, "task", "abc", "v1", tt.fallsThough))
		})
	}
}
