package fake

import (
	"context"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// V1 serves the open API view of a Backend.
type V1 struct {
	b *Backend
}

func toV1Task(t *v2.Task) v1.Task {
	return model.TaskFromV2(cloneTask(t)).ToV1()
}

func toV1Project(p v2.Project) v1.Project {
	return v1.Project{
		ID:         p.ID,
		Name:       p.Name,
		Color:      p.Color,
		SortOrder:  p.SortOrder,
		Closed:     p.Closed,
		GroupID:    p.GroupID,
		ViewMode:   p.ViewMode,
		Permission: p.Permission,
		Kind:       p.Kind,
	}
}

func (c *V1) Verify(ctx context.Context) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return c.b.record("v1", "verify")
}

func (c *V1) Close() error {
	return nil
}

func (c *V1) GetProjects(ctx context.Context) ([]v1.Project, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "get_projects"); err != nil {
		return nil, err
	}
	projects := c.b.projectList()
	out := make([]v1.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, toV1Project(p))
	}
	return out, nil
}

func (c *V1) GetProject(ctx context.Context, projectID string) (*v1.Project, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "get_project"); err != nil {
		return nil, err
	}
	p, ok := c.b.projects[projectID]
	if !ok {
		return nil, NotFound("v1", "get_project")
	}
	out := toV1Project(*p)
	return &out, nil
}

func (c *V1) GetProjectWithData(ctx context.Context, projectID string) (*v1.ProjectData, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "get_project_with_data"); err != nil {
		return nil, err
	}

	var project v1.Project
	switch p, ok := c.b.projects[projectID]; {
	case ok:
		project = toV1Project(*p)
	case projectID == InboxID:
		project = v1.Project{ID: InboxID, Name: "Inbox", Kind: string(ticktick.KindTask)}
	default:
		return nil, NotFound("v1", "get_project_with_data")
	}

	data := &v1.ProjectData{Project: project, Tasks: []v1.Task{}}
	for _, t := range c.b.taskList(func(t *v2.Task) bool {
		return t.ProjectID == projectID && t.Status == int(ticktick.StatusActive)
	}) {
		data.Tasks = append(data.Tasks, toV1Task(&t))
	}
	return data, nil
}

func (c *V1) CreateProject(ctx context.Context, input v1.ProjectInput) (*v1.Project, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "create_project"); err != nil {
		return nil, err
	}
	p := &v2.Project{
		ID:        c.b.newID(),
		Name:      input.Name,
		Color:     input.Color,
		SortOrder: input.SortOrder,
		ViewMode:  input.ViewMode,
		Kind:      input.Kind,
	}
	c.b.projects[p.ID] = p
	out := toV1Project(*p)
	return &out, nil
}

func (c *V1) DeleteProject(ctx context.Context, projectID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "delete_project"); err != nil {
		return err
	}
	if _, ok := c.b.projects[projectID]; !ok {
		return NotFound("v1", "delete_project")
	}
	c.b.deleteProject(projectID)
	return nil
}

// lookup returns the task only when it lives in projectID, as the open
// API addresses tasks by both ids.
func (c *V1) lookup(op, projectID, taskID string) (*v2.Task, error) {
	t, ok := c.b.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return nil, NotFound("v1", op)
	}
	return t, nil
}

func (c *V1) GetTask(ctx context.Context, projectID, taskID string) (*v1.Task, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "get_task"); err != nil {
		return nil, err
	}
	t, err := c.lookup("get_task", projectID, taskID)
	if err != nil {
		return nil, err
	}
	out := toV1Task(t)
	return &out, nil
}

func (c *V1) CreateTask(ctx context.Context, task v1.Task) (*v1.Task, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "create_task"); err != nil {
		return nil, err
	}
	if task.ProjectID != "" && !c.b.projectExists(task.ProjectID) {
		return nil, NotFound("v1", "create_task")
	}
	task.ID = ""
	id := c.b.addTask(model.TaskFromV1(task).ToV2())
	out := toV1Task(c.b.tasks[id])
	return &out, nil
}

// UpdateTask replaces the fields the open API knows about. Tags and parent
// links are kept.
func (c *V1) UpdateTask(ctx context.Context, task v1.Task) (*v1.Task, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "update_task"); err != nil {
		return nil, err
	}
	t, err := c.lookup("update_task", task.ProjectID, task.ID)
	if err != nil {
		return nil, err
	}
	in := model.TaskFromV1(task).ToV2()
	t.Title = in.Title
	t.Content = in.Content
	t.Desc = in.Desc
	t.IsAllDay = in.IsAllDay
	t.StartDate = in.StartDate
	t.DueDate = in.DueDate
	t.TimeZone = in.TimeZone
	t.Reminders = in.Reminders
	t.RepeatFlag = in.RepeatFlag
	t.Priority = in.Priority
	t.Status = in.Status
	t.Items = in.Items
	t.Etag = c.b.etag()
	out := toV1Task(t)
	return &out, nil
}

func (c *V1) CompleteTask(ctx context.Context, projectID, taskID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "complete_task"); err != nil {
		return err
	}
	t, err := c.lookup("complete_task", projectID, taskID)
	if err != nil {
		return err
	}
	c.b.complete(t)
	return nil
}

func (c *V1) DeleteTask(ctx context.Context, projectID, taskID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v1", "delete_task"); err != nil {
		return err
	}
	if _, err := c.lookup("delete_task", projectID, taskID); err != nil {
		return err
	}
	c.b.deleteTask(taskID)
	return nil
}
