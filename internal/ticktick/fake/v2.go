package fake

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// V2 serves the private API view of a Backend.
type V2 struct {
	b *Backend
}

func (c *V2) Authenticate(ctx context.Context, username, password string) (*v2.Session, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "signon"); err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	return &v2.Session{
		Token:    "fake-session",
		UserID:   c.b.status.UserID,
		InboxID:  c.b.status.InboxID,
		Username: username,
		Pro:      c.b.status.Pro,
	}, nil
}

func (c *V2) Verify(ctx context.Context) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	return c.b.record("v2", "verify")
}

func (c *V2) Close() error {
	return nil
}

// Sync returns active tasks only, like the real full sync.
func (c *V2) Sync(ctx context.Context) (*v2.SyncState, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "sync"); err != nil {
		return nil, err
	}
	state := &v2.SyncState{
		InboxID:         c.b.status.InboxID,
		CheckPoint:      int64(c.b.counter),
		ProjectProfiles: c.b.projectList(),
		ProjectGroups:   c.b.groupList(),
		SyncTaskBean: v2.SyncTaskBean{Update: c.b.taskList(func(t *v2.Task) bool {
			return t.Status == int(ticktick.StatusActive)
		})},
		Tags: c.b.tagList(),
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &state.Raw); err != nil {
		return nil, err
	}
	return state, nil
}

func (c *V2) GetTask(ctx context.Context, taskID string) (*v2.Task, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "get_task"); err != nil {
		return nil, err
	}
	t, ok := c.b.tasks[taskID]
	if !ok {
		return nil, NotFound("v2", "get_task")
	}
	out := cloneTask(t)
	return &out, nil
}

func (c *V2) BatchTasks(ctx context.Context, req v2.BatchTaskRequest) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "batch_tasks"); err != nil {
		return nil, err
	}
	return c.batchTasks(req)
}

func (c *V2) CreateTask(ctx context.Context, task v2.Task) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "create_task"); err != nil {
		return nil, err
	}
	return c.batchTasks(v2.BatchTaskRequest{Add: []v2.Task{task}})
}

func (c *V2) UpdateTaskFields(ctx context.Context, task v2.Task) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "update_task"); err != nil {
		return nil, err
	}
	if _, ok := c.b.tasks[task.ID]; !ok {
		return nil, NotFound("v2", "update_task")
	}
	return c.batchTasks(v2.BatchTaskRequest{Update: []v2.Task{task}})
}

func (c *V2) DeleteTask(ctx context.Context, projectID, taskID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "delete_task"); err != nil {
		return err
	}
	if _, ok := c.b.tasks[taskID]; !ok {
		return NotFound("v2", "delete_task")
	}
	_, err := c.batchTasks(v2.BatchTaskRequest{Delete: []v2.TaskRef{{TaskID: taskID, ProjectID: projectID}}})
	return err
}

func (c *V2) batchTasks(req v2.BatchTaskRequest) (*v2.BatchResponse, error) {
	resp := &v2.BatchResponse{ID2Etag: map[string]string{}, ID2Error: map[string]string{}}

	for _, t := range req.Add {
		if t.ProjectID != "" && !c.b.projectExists(t.ProjectID) {
			resp.ID2Error[t.ID] = "PROJECT_NOT_FOUND"
			continue
		}
		id := c.b.addTask(t)
		if !c.b.ackWithoutID {
			resp.ID2Etag[id] = c.b.tasks[id].Etag
		}
	}

	for _, in := range req.Update {
		t, ok := c.b.tasks[in.ID]
		if !ok {
			resp.ID2Error[in.ID] = "TASK_NOT_FOUND"
			continue
		}
		mergeTask(t, in)
		t.Etag = c.b.etag()
		resp.ID2Etag[t.ID] = t.Etag
	}

	for _, ref := range req.Delete {
		if _, ok := c.b.tasks[ref.TaskID]; !ok {
			resp.ID2Error[ref.TaskID] = "TASK_NOT_FOUND"
			continue
		}
		c.b.deleteTask(ref.TaskID)
	}

	if len(resp.ID2Error) > 0 {
		return resp, &ticktick.APIError{Upstream: "v2", Op: "batch_tasks", Kind: ticktick.KindAPI, Body: "partial failure"}
	}
	return resp, nil
}

// mergeTask applies the fields present in an update, mirroring the
// partial-update semantics of the batch endpoint.
func mergeTask(t *v2.Task, in v2.Task) {
	if in.Title != "" {
		t.Title = in.Title
	}
	if in.Content != "" {
		t.Content = in.Content
	}
	if in.Desc != "" {
		t.Desc = in.Desc
	}
	if in.StartDate != "" {
		t.StartDate = in.StartDate
	}
	if in.DueDate != "" {
		t.DueDate = in.DueDate
	}
	if in.TimeZone != "" {
		t.TimeZone = in.TimeZone
	}
	if in.RepeatFlag != "" {
		t.RepeatFlag = in.RepeatFlag
	}
	if in.CompletedTime != "" {
		t.CompletedTime = in.CompletedTime
	}
	if in.Tags != nil {
		t.Tags = ticktick.NormalizeTags(in.Tags)
	}
	if in.Reminders != nil {
		t.Reminders = slices.Clone(in.Reminders)
	}
	if in.Items != nil {
		t.Items = slices.Clone(in.Items)
	}
	t.IsAllDay = in.IsAllDay
	t.Priority = in.Priority
	t.Status = in.Status
}

func (c *V2) MoveTask(ctx context.Context, taskID, fromProjectID, toProjectID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "move_task"); err != nil {
		return err
	}
	t, ok := c.b.tasks[taskID]
	if !ok || t.ProjectID != fromProjectID || !c.b.projectExists(toProjectID) {
		return NotFound("v2", "move_task")
	}
	t.ProjectID = toProjectID
	return nil
}

func (c *V2) SetTaskParent(ctx context.Context, taskID, projectID, parentID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "set_task_parent"); err != nil {
		return err
	}
	t, ok := c.b.tasks[taskID]
	if !ok || t.ProjectID != projectID {
		return NotFound("v2", "set_task_parent")
	}
	if parentID != "" {
		if _, ok := c.b.tasks[parentID]; !ok {
			return NotFound("v2", "set_task_parent")
		}
	}
	if t.ParentID != "" {
		c.b.unlinkChild(t.ParentID, taskID)
	}
	t.ParentID = parentID
	if parentID != "" {
		c.b.linkChild(parentID, taskID)
	}
	return nil
}

func (c *V2) CompletedTasks(ctx context.Context, from, to time.Time, limit int) ([]v2.Task, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "completed_tasks"); err != nil {
		return nil, err
	}
	tasks := c.b.taskList(func(t *v2.Task) bool {
		if t.Status != int(ticktick.StatusCompleted) {
			return false
		}
		done := model.ParseDate(t.CompletedTime)
		return done != nil && !done.Before(from) && !done.After(to)
	})
	sort.SliceStable(tasks, func(i, j int) bool {
		return model.ParseDate(tasks[i].CompletedTime).After(*model.ParseDate(tasks[j].CompletedTime))
	})
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (c *V2) CreateProject(ctx context.Context, project v2.Project) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "create_project"); err != nil {
		return nil, err
	}
	if project.GroupID != "" {
		if _, ok := c.b.groups[project.GroupID]; !ok {
			return nil, &ticktick.APIError{Upstream: "v2", Op: "create_project", Kind: ticktick.KindAPI, Body: "group not found"}
		}
	}
	project.ID = c.b.newID()
	project.Etag = c.b.etag()
	c.b.projects[project.ID] = &project
	return c.ack(project.ID, project.Etag), nil
}

func (c *V2) DeleteProject(ctx context.Context, projectID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "delete_project"); err != nil {
		return err
	}
	if _, ok := c.b.projects[projectID]; !ok {
		return NotFound("v2", "delete_project")
	}
	c.b.deleteProject(projectID)
	return nil
}

func (c *V2) CreateProjectGroup(ctx context.Context, name string) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "create_project_group"); err != nil {
		return nil, err
	}
	g := &v2.ProjectGroup{ID: c.b.newID(), Name: name, ShowAll: true, Etag: c.b.etag()}
	c.b.groups[g.ID] = g
	return c.ack(g.ID, g.Etag), nil
}

// DeleteProjectGroup removes the folder and detaches its projects.
func (c *V2) DeleteProjectGroup(ctx context.Context, groupID string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "delete_project_group"); err != nil {
		return err
	}
	if _, ok := c.b.groups[groupID]; !ok {
		return NotFound("v2", "delete_project_group")
	}
	delete(c.b.groups, groupID)
	for _, p := range c.b.projects {
		if p.GroupID == groupID {
			p.GroupID = ""
		}
	}
	return nil
}

func (c *V2) CreateTag(ctx context.Context, tag v2.Tag) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "create_tag"); err != nil {
		return nil, err
	}
	if tag.Name == "" {
		tag.Name = tag.Label
	}
	tag.Name = strings.ToLower(tag.Name)
	if _, exists := c.b.tags[tag.Name]; exists {
		return nil, &ticktick.APIError{Upstream: "v2", Op: "create_tag", StatusCode: 409, Kind: ticktick.KindAPI, Body: "tag already exists"}
	}
	tag.Etag = c.b.etag()
	c.b.tags[tag.Name] = &tag
	return c.ack(tag.Name, tag.Etag), nil
}

func (c *V2) UpdateTags(ctx context.Context, tags []v2.Tag) (*v2.BatchResponse, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "update_tags"); err != nil {
		return nil, err
	}
	resp := &v2.BatchResponse{ID2Etag: map[string]string{}, ID2Error: map[string]string{}}
	for _, in := range tags {
		t, ok := c.b.tags[strings.ToLower(in.Name)]
		if !ok {
			resp.ID2Error[in.Name] = "TAG_NOT_FOUND"
			continue
		}
		if in.Label != "" {
			t.Label = in.Label
		}
		t.Color = in.Color
		t.Parent = in.Parent
		t.SortOrder = in.SortOrder
		t.Etag = c.b.etag()
		resp.ID2Etag[t.Name] = t.Etag
	}
	if len(resp.ID2Error) > 0 {
		return resp, &ticktick.APIError{Upstream: "v2", Op: "update_tags", Kind: ticktick.KindAPI, Body: "partial failure"}
	}
	return resp, nil
}

// RenameTag moves the tag to the key derived from newLabel and rewrites
// every task that carried it.
func (c *V2) RenameTag(ctx context.Context, oldName, newLabel string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "rename_tag"); err != nil {
		return err
	}
	oldName = strings.ToLower(oldName)
	t, ok := c.b.tags[oldName]
	if !ok {
		return NotFound("v2", "rename_tag")
	}
	delete(c.b.tags, oldName)
	t.Name = strings.ToLower(newLabel)
	t.Label = newLabel
	t.Etag = c.b.etag()
	c.b.tags[t.Name] = t
	c.b.replaceTag(oldName, t.Name)
	return nil
}

// DeleteTag removes the tag and strips it from every task.
func (c *V2) DeleteTag(ctx context.Context, name string) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "delete_tag"); err != nil {
		return err
	}
	name = strings.ToLower(name)
	if _, ok := c.b.tags[name]; !ok {
		return NotFound("v2", "delete_tag")
	}
	delete(c.b.tags, name)
	c.b.replaceTag(name, "")
	return nil
}

func (c *V2) UserProfile(ctx context.Context) (*v2.UserProfile, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "user_profile"); err != nil {
		return nil, err
	}
	p := c.b.profile
	return &p, nil
}

func (c *V2) UserStatus(ctx context.Context) (*v2.UserStatus, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "user_status"); err != nil {
		return nil, err
	}
	s := c.b.status
	return &s, nil
}

func (c *V2) UserStatistics(ctx context.Context) (*v2.UserStatistics, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "user_statistics"); err != nil {
		return nil, err
	}
	s := c.b.statistics
	return &s, nil
}

func (c *V2) FocusHeatmap(ctx context.Context, start, end time.Time) ([]v2.FocusDay, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "focus_heatmap"); err != nil {
		return nil, err
	}
	first, last := start.Format("20060102"), end.Format("20060102")
	out := make([]v2.FocusDay, 0, len(c.b.focusDays))
	for _, d := range c.b.focusDays {
		if d.Day != "" && (d.Day < first || d.Day > last) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *V2) FocusByTag(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if err := c.b.record("v2", "focus_by_tag"); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(c.b.focusByTag))
	for k, v := range c.b.focusByTag {
		out[k] = v
	}
	return out, nil
}

func (c *V2) ack(id, etag string) *v2.BatchResponse {
	resp := &v2.BatchResponse{ID2Etag: map[string]string{}, ID2Error: map[string]string{}}
	if !c.b.ackWithoutID {
		resp.ID2Etag[id] = etag
	}
	return resp
}
