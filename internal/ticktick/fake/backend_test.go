package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/ticktick"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

func TestDeleteTagStripsTasks(t *testing.T) {
	b := New()
	b.AddTag(v2.Tag{Label: "Urgent"})
	id := b.AddTask(v2.Task{Title: "Pay rent", Tags: []string{"URGENT", "home"}})

	require.NoError(t, b.V2().DeleteTag(context.Background(), "urgent"))

	task, ok := b.Task(id)
	require.True(t, ok)
	assert.Equal(t, []string{"home"}, task.Tags)
	_, ok = b.Tag("urgent")
	assert.False(t, ok)

	err := b.V2().DeleteTag(context.Background(), "urgent")
	assert.True(t, ticktick.IsNotFound(err))
}

func TestRenameTagRewritesTasks(t *testing.T) {
	b := New()
	b.AddTag(v2.Tag{Label: "work"})
	id := b.AddTask(v2.Task{Title: "Report", Tags: []string{"work"}})

	require.NoError(t, b.V2().RenameTag(context.Background(), "work", "Office"))

	tag, ok := b.Tag("office")
	require.True(t, ok)
	assert.Equal(t, "Office", tag.Label)
	task, _ := b.Task(id)
	assert.Equal(t, []string{"office"}, task.Tags)
}

func TestDeleteGroupDetachesProjects(t *testing.T) {
	b := New()
	group := b.AddGroup(v2.ProjectGroup{Name: "Personal"})
	project := b.AddProject(v2.Project{Name: "Home", GroupID: group})

	require.NoError(t, b.V2().DeleteProjectGroup(context.Background(), group))

	p, ok := b.Project(project)
	require.True(t, ok)
	assert.Empty(t, p.GroupID)
}

func TestDeleteProjectDeletesTasks(t *testing.T) {
	b := New()
	project := b.AddProject(v2.Project{Name: "Temp"})
	task := b.AddTask(v2.Task{Title: "x", ProjectID: project})

	require.NoError(t, b.V1().DeleteProject(context.Background(), project))

	_, ok := b.Task(task)
	assert.False(t, ok)
}

func TestSetParentLinksBothWays(t *testing.T) {
	b := New()
	parent := b.AddTask(v2.Task{Title: "Trip"})
	child := b.AddTask(v2.Task{Title: "Book flights"})

	require.NoError(t, b.V2().SetTaskParent(context.Background(), child, InboxID, parent))

	c, _ := b.Task(child)
	p, _ := b.Task(parent)
	assert.Equal(t, parent, c.ParentID)
	assert.Equal(t, []string{child}, p.ChildIDs)
}

func TestViewsShareState(t *testing.T) {
	b := New()
	id := b.AddTask(v2.Task{Title: "Shared"})

	require.NoError(t, b.V1().CompleteTask(context.Background(), InboxID, id))

	task, err := b.V2().GetTask(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int(ticktick.StatusCompleted), task.Status)
	assert.NotEmpty(t, task.CompletedTime)

	state, err := b.V2().Sync(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.SyncTaskBean.Update, "sync lists active tasks only")
}

func TestFailureInjectionAndCalls(t *testing.T) {
	b := New()
	b.Fail("v2", "sync", ServerError("v2", "sync"))

	_, err := b.V2().Sync(context.Background())
	require.Error(t, err)
	_, err = b.V1().GetProjects(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Call{{"v2", "sync"}, {"v1", "get_projects"}}, b.Calls())

	b.Heal()
	_, err = b.V2().Sync(context.Background())
	assert.NoError(t, err)

	b.FailAll("v1", AuthError("v1", "any"))
	assert.True(t, ticktick.IsAuthentication(b.V1().Verify(context.Background())))
}
