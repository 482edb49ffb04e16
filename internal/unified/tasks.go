package unified

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/model"
	"github.com/teemow/tickfewer/internal/ticktick"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// DefaultCompletedLimit is used when ListCompletedTasks gets no limit.
const DefaultCompletedLimit = 100

// errNoAckID is a write acknowledgment that does not say what was created.
var errNoAckID = errors.New("write acknowledged without an id")

// TaskCreate describes a new task. Only Title is required; an empty
// ProjectID means the inbox.
type TaskCreate struct {
	Title      string
	ProjectID  string
	Content    string
	Desc       string
	StartDate  *time.Time
	DueDate    *time.Time
	TimeZone   string
	IsAllDay   bool
	Priority   ticktick.Priority
	Tags       []string
	ParentID   string
	Reminders  []string
	RepeatFlag string
}

func (in TaskCreate) validate() error {
	if err := ticktick.ValidateTitle("title", in.Title); err != nil {
		return err
	}
	if err := ticktick.ValidateContent(in.Content); err != nil {
		return err
	}
	if err := ticktick.ValidatePriority(in.Priority); err != nil {
		return err
	}
	if err := ticktick.ValidateTags(in.Tags); err != nil {
		return err
	}
	if err := ticktick.ValidateReminders(in.Reminders); err != nil {
		return err
	}
	if in.ProjectID != "" {
		if err := ticktick.ValidateProjectID("project_id", in.ProjectID); err != nil {
			return err
		}
	}
	if in.ParentID != "" {
		if err := ticktick.ValidateTaskID("parent_id", in.ParentID); err != nil {
			return err
		}
	}
	return nil
}

func (in TaskCreate) task(projectID string) model.Task {
	return model.Task{
		ProjectID:  projectID,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Desc:       in.Desc,
		StartDate:  in.StartDate,
		DueDate:    in.DueDate,
		TimeZone:   in.TimeZone,
		IsAllDay:   in.IsAllDay,
		Status:     ticktick.StatusActive,
		Priority:   in.Priority,
		Tags:       ticktick.NormalizeTags(in.Tags),
		ParentID:   in.ParentID,
		Reminders:  in.Reminders,
		RepeatFlag: in.RepeatFlag,
	}
}

func tasksFromV2(in []v2.Task) []model.Task {
	out := make([]model.Task, 0, len(in))
	for _, t := range in {
		out = append(out, model.TaskFromV2(t))
	}
	return out
}

func readTaskV2(ctx context.Context, c V2Client, taskID string) (*model.Task, error) {
	t, err := c.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task := model.TaskFromV2(*t)
	return &task, nil
}

// ListAllTasks returns every active task of the account.
func (a *API) ListAllTasks(ctx context.Context) ([]model.Task, error) {
	return run(ctx, a, OpListTasks, call[[]model.Task]{
		v2: func(ctx context.Context, c V2Client) ([]model.Task, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			return tasksFromV2(state.SyncTaskBean.Update), nil
		},
	})
}

// GetTask returns a task. The open API can only serve it when projectID is
// known, so without one a private API failure is final.
func (a *API) GetTask(ctx context.Context, taskID, projectID string) (*model.Task, error) {
	if err := ticktick.ValidateTaskID("task_id", taskID); err != nil {
		return nil, err
	}
	c := call[*model.Task]{
		resource: "task",
		id:       taskID,
		v2: func(ctx context.Context, c V2Client) (*model.Task, error) {
			return readTaskV2(ctx, c, taskID)
		},
	}
	if projectID != "" {
		if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
			return nil, err
		}
		c.v1 = func(ctx context.Context, c V1Client) (*model.Task, error) {
			t, err := c.GetTask(ctx, projectID, taskID)
			if err != nil {
				return nil, err
			}
			task := model.TaskFromV1(*t)
			return &task, nil
		}
	}
	return run(ctx, a, OpGetTask, c)
}

// CreateTask creates a task and returns it as stored. When the private API
// is down the open API creates it without tags or parent.
func (a *API) CreateTask(ctx context.Context, in TaskCreate) (*model.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	projectID := in.ProjectID
	if projectID == "" {
		projectID = a.InboxID()
		if projectID == "" {
			return nil, &ticktick.ConfigurationError{Msg: "no project given and the inbox id is unknown"}
		}
	}
	task := in.task(projectID)

	return run(ctx, a, OpCreateTask, call[*model.Task]{
		resource: "project",
		id:       projectID,
		v2: func(ctx context.Context, c V2Client) (*model.Task, error) {
			ack, err := c.CreateTask(ctx, task.ToV2())
			if err != nil {
				return nil, err
			}
			id := ack.FirstID()
			if id == "" {
				return nil, errNoAckID
			}
			stored, err := readTaskV2(ctx, c, id)
			if err != nil {
				// The write went through; a second write on the fallback
				// would duplicate it.
				a.logger.Warn("could not read back created task", logging.Operation(OpCreateTask), logging.Err(err))
				created := task
				created.ID = id
				return &created, nil
			}
			return stored, nil
		},
		v1: func(ctx context.Context, c V1Client) (*model.Task, error) {
			if len(task.Tags) > 0 || task.ParentID != "" {
				a.logger.Warn("task created without tags and parent, the open API cannot store them",
					logging.Operation(OpCreateTask),
					"dropped_tags", len(task.Tags),
					"dropped_parent", task.ParentID != "")
			}
			created, err := c.CreateTask(ctx, task.ToV1())
			if err != nil {
				return nil, err
			}
			out := model.TaskFromV1(*created)
			return &out, nil
		},
	})
}

// UpdateTask writes every field of task and returns the stored result.
func (a *API) UpdateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := ticktick.ValidateTaskID("task_id", task.ID); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateProjectID("project_id", task.ProjectID); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateTitle("title", task.Title); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateContent(task.Content); err != nil {
		return nil, err
	}
	if err := ticktick.ValidatePriority(task.Priority); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateTags(task.Tags); err != nil {
		return nil, err
	}
	task.Tags = ticktick.NormalizeTags(task.Tags)

	return run(ctx, a, OpUpdateTask, call[*model.Task]{
		resource: "task",
		id:       task.ID,
		v2: func(ctx context.Context, c V2Client) (*model.Task, error) {
			if _, err := c.UpdateTaskFields(ctx, task.ToV2()); err != nil {
				return nil, err
			}
			return readTaskV2(ctx, c, task.ID)
		},
		v1: func(ctx context.Context, c V1Client) (*model.Task, error) {
			updated, err := c.UpdateTask(ctx, task.ToV1())
			if err != nil {
				return nil, err
			}
			out := model.TaskFromV1(*updated)
			return &out, nil
		},
	})
}

// CompleteTask marks a task completed. Completing a completed task is a no-op.
func (a *API) CompleteTask(ctx context.Context, taskID, projectID string) error {
	if err := ticktick.ValidateTaskID("task_id", taskID); err != nil {
		return err
	}
	if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
		return err
	}
	_, err := run(ctx, a, OpCompleteTask, call[struct{}]{
		resource: "task",
		id:       taskID,
		v1: func(ctx context.Context, c V1Client) (struct{}, error) {
			return struct{}{}, c.CompleteTask(ctx, projectID, taskID)
		},
		v2: func(ctx context.Context, c V2Client) (struct{}, error) {
			t, err := c.GetTask(ctx, taskID)
			if err != nil {
				return struct{}{}, err
			}
			if t.Status == int(ticktick.StatusCompleted) {
				return struct{}{}, nil
			}
			t.Status = int(ticktick.StatusCompleted)
			t.CompletedTime = a.now().UTC().Format(model.V2DateLayout)
			_, err = c.UpdateTaskFields(ctx, *t)
			return struct{}{}, err
		},
	})
	return err
}

// DeleteTask deletes a task.
func (a *API) DeleteTask(ctx context.Context, taskID, projectID string) error {
	if err := ticktick.ValidateTaskID("task_id", taskID); err != nil {
		return err
	}
	if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
		return err
	}
	_, err := run(ctx, a, OpDeleteTask, call[struct{}]{
		resource: "task",
		id:       taskID,
		v2: func(ctx context.Context, c V2Client) (struct{}, error) {
			return struct{}{}, c.DeleteTask(ctx, projectID, taskID)
		},
		v1: func(ctx context.Context, c V1Client) (struct{}, error) {
			return struct{}{}, c.DeleteTask(ctx, projectID, taskID)
		},
	})
	return err
}

// ListCompletedTasks returns tasks completed between from and to, most
// recent first. A limit of 0 means DefaultCompletedLimit.
func (a *API) ListCompletedTasks(ctx context.Context, from, to time.Time, limit int) ([]model.Task, error) {
	if to.Before(from) {
		return nil, ticktick.NewValidationError("to", "must not be before from")
	}
	if limit == 0 {
		limit = DefaultCompletedLimit
	}
	if limit < 1 || limit > ticktick.MaxListLimit {
		return nil, ticktick.NewValidationError("limit", "must be between 1 and %d", ticktick.MaxListLimit)
	}
	return run(ctx, a, OpCompletedTasks, call[[]model.Task]{
		v2: func(ctx context.Context, c V2Client) ([]model.Task, error) {
			tasks, err := c.CompletedTasks(ctx, from, to, limit)
			if err != nil {
				return nil, err
			}
			return tasksFromV2(tasks), nil
		},
	})
}

// MoveTask moves a task to another project and returns it.
func (a *API) MoveTask(ctx context.Context, taskID, fromProjectID, toProjectID string) (*model.Task, error) {
	if err := ticktick.ValidateTaskID("task_id", taskID); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateProjectID("from_project_id", fromProjectID); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateProjectID("to_project_id", toProjectID); err != nil {
		return nil, err
	}
	return run(ctx, a, OpMoveTask, call[*model.Task]{
		resource: "task",
		id:       taskID,
		v2: func(ctx context.Context, c V2Client) (*model.Task, error) {
			if err := c.MoveTask(ctx, taskID, fromProjectID, toProjectID); err != nil {
				return nil, err
			}
			return readTaskV2(ctx, c, taskID)
		},
	})
}

// SetTaskParent makes taskID a subtask of parentID and returns the subtask.
// A task cannot become its own ancestor.
func (a *API) SetTaskParent(ctx context.Context, taskID, projectID, parentID string) (*model.Task, error) {
	if err := ticktick.ValidateTaskID("task_id", taskID); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateProjectID("project_id", projectID); err != nil {
		return nil, err
	}
	if err := ticktick.ValidateTaskID("parent_id", parentID); err != nil {
		return nil, err
	}
	if taskID == parentID {
		return nil, ticktick.NewValidationError("parent_id", "a task cannot be its own parent")
	}

	return run(ctx, a, OpSetTaskParent, call[*model.Task]{
		resource: "task",
		id:       taskID,
		v2: func(ctx context.Context, c V2Client) (*model.Task, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			if createsCycle(state.SyncTaskBean.Update, taskID, parentID) {
				return nil, ticktick.NewValidationError("parent_id", "task %s is a descendant of %s", parentID, taskID)
			}
			if err := c.SetTaskParent(ctx, taskID, projectID, parentID); err != nil {
				return nil, err
			}
			return readTaskV2(ctx, c, taskID)
		},
	})
}

// createsCycle reports whether taskID is parentID or one of its ancestors.
func createsCycle(tasks []v2.Task, taskID, parentID string) bool {
	parents := make(map[string]string, len(tasks))
	for _, t := range tasks {
		parents[t.ID] = t.ParentID
	}
	seen := map[string]bool{}
	for id := parentID; id != "" && !seen[id]; id = parents[id] {
		if id == taskID {
			return true
		}
		seen[id] = true
	}
	return false
}

// SearchTasks returns active tasks whose title, content, description or
// tags contain query, ignoring case.
func (a *API) SearchTasks(ctx context.Context, query string) ([]model.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ticktick.NewValidationError("query", "must not be empty")
	}
	if len([]rune(query)) > ticktick.MaxQueryLength {
		return nil, ticktick.NewValidationError("query", "must be at most %d characters", ticktick.MaxQueryLength)
	}
	needle := strings.ToLower(query)

	return run(ctx, a, OpSearchTasks, call[[]model.Task]{
		v2: func(ctx context.Context, c V2Client) ([]model.Task, error) {
			state, err := c.Sync(ctx)
			if err != nil {
				return nil, err
			}
			var out []model.Task
			for _, t := range tasksFromV2(state.SyncTaskBean.Update) {
				if matches(t, needle) {
					out = append(out, t)
				}
			}
			return out, nil
		},
	})
}

func matches(t model.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Content), needle) ||
		strings.Contains(strings.ToLower(t.Desc), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(tag, needle) {
			return true
		}
	}
	return false
}
