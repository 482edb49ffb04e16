package v2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/ticktick"
)

const (
	// DefaultBaseURL is the private API root.
	DefaultBaseURL = "https://api.ticktick.com/api/v2"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:123.0) Gecko/20100101 Firefox/123.0"

	// defaultSyncTimeout bounds a shared sync fetch when no timeout is set.
	defaultSyncTimeout = 30 * time.Second

	completedTimeLayout = "2006-01-02 15:04:05"
	focusDayLayout      = "20060102"
)

// Config holds what is needed to talk to the private API.
type Config struct {
	// DeviceID identifies this client to the service. A random one is
	// generated when empty.
	DeviceID string

	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int

	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client is a private API client. It must be authenticated before use.
type Client struct {
	transport *ticktick.Transport
	logger    logging.Logger
	device    string

	mu      sync.RWMutex
	session *Session

	syncGroup   singleflight.Group
	syncTimeout time.Duration
}

// NewDeviceID returns a 24 hex digit id derived from a random UUID.
func NewDeviceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

// NewClient builds an unauthenticated client.
func NewClient(cfg Config) (*Client, error) {
	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = NewDeviceID()
	}

	device, err := json.Marshal(map[string]any{
		"platform":  "web",
		"os":        "macOS 10.15",
		"device":    "Firefox 123.0",
		"name":      "",
		"version":   6070,
		"id":        deviceID,
		"channel":   "website",
		"campaign":  "",
		"websocket": "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode device descriptor: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = ticktick.NewHTTPClient(cfg.Timeout)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	syncTimeout := cfg.Timeout
	if syncTimeout <= 0 {
		syncTimeout = defaultSyncTimeout
	}

	c := &Client{
		logger:      logger,
		device:      string(device),
		syncTimeout: syncTimeout,
	}
	c.transport = &ticktick.Transport{
		Upstream:   "v2",
		BaseURL:    baseURL,
		HTTPClient: httpClient,
		Limiter:    ticktick.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		Decorate:   c.decorate,
	}
	return c, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Device", c.device)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "OAuth "+token)
		req.AddCookie(&http.Cookie{Name: "t", Value: token})
	}
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// Session returns the current session, or nil before Authenticate.
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Authenticate signs on with username and password and keeps the session.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	query := url.Values{"wc": {"true"}, "remember": {"true"}}
	body := map[string]string{"username": username, "password": password}

	var session Session
	if err := c.transport.Do(ctx, "signon", http.MethodPost, "/user/signon", query, body, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, &ticktick.APIError{Upstream: "v2", Op: "signon", Kind: ticktick.KindAuth, Body: "no session token in response"}
	}

	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	c.logger.Debug("signed on to private API",
		logging.KeyUserHash, logging.AnonymizeEmail(username),
		"session_token", logging.SanitizeToken(session.Token))

	s := session
	return &s, nil
}

// Verify makes one cheap authenticated call.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.UserStatus(ctx)
	return err
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.Close()
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if c.token() == "" {
		return &ticktick.APIError{Upstream: "v2", Op: op, Kind: ticktick.KindAuth, Body: "not signed on"}
	}
	return c.transport.Do(ctx, op, method, path, query, body, out)
}

// Sync fetches the full account state. Concurrent callers share one request,
// which runs detached from any single caller so that one caller giving up
// does not fail the others. Each caller still returns when its own ctx ends.
func (c *Client) Sync(ctx context.Context) (*SyncState, error) {
	ch := c.syncGroup.DoChan("sync", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.syncTimeout)
		defer cancel()
		return c.fetchSync(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*SyncState), nil
	}
}

func (c *Client) fetchSync(ctx context.Context) (*SyncState, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "sync", http.MethodGet, "/batch/check/0", nil, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &SyncState{Raw: map[string]any{}}, nil
	}
	state, err := decodeSync(raw)
	if err != nil {
		return nil, &ticktick.APIError{Upstream: "v2", Op: "sync", Kind: ticktick.KindAPI, Err: err}
	}
	return state, nil
}

// GetTask returns a task by id alone.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := c.do(ctx, "get_task", http.MethodGet, "/task/"+url.PathEscape(taskID), nil, nil, &task); err != nil {
		return nil, err
	}
	if task.ID == "" {
		return nil, &ticktick.APIError{Upstream: "v2", Op: "get_task", StatusCode: http.StatusNotFound, Kind: ticktick.KindNotFound}
	}
	return &task, nil
}

// BatchTasks applies adds, updates and deletes. Per-item failures reported
// in id2error are returned as an error along with the response.
func (c *Client) BatchTasks(ctx context.Context, req BatchTaskRequest) (*BatchResponse, error) {
	return c.batch(ctx, "batch_tasks", "/batch/task", req)
}

// CreateTask adds one task. The new id is the response's FirstID.
func (c *Client) CreateTask(ctx context.Context, task Task) (*BatchResponse, error) {
	return c.BatchTasks(ctx, BatchTaskRequest{Add: []Task{task}})
}

// UpdateTaskFields sends task as a batch update. Only the fields set on
// task are changed.
func (c *Client) UpdateTaskFields(ctx context.Context, task Task) (*BatchResponse, error) {
	return c.BatchTasks(ctx, BatchTaskRequest{Update: []Task{task}})
}

// DeleteTask deletes one task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	_, err := c.BatchTasks(ctx, BatchTaskRequest{Delete: []TaskRef{{TaskID: taskID, ProjectID: projectID}}})
	return err
}

// MoveTask moves a task to another project.
func (c *Client) MoveTask(ctx context.Context, taskID, fromProjectID, toProjectID string) error {
	moves := []TaskMove{{TaskID: taskID, FromProjectID: fromProjectID, ToProjectID: toProjectID}}
	_, err := c.batch(ctx, "move_task", "/batch/taskProject", moves)
	return err
}

// SetTaskParent makes taskID a subtask of parentID.
func (c *Client) SetTaskParent(ctx context.Context, taskID, projectID, parentID string) error {
	parents := []TaskParent{{TaskID: taskID, ProjectID: projectID, ParentID: parentID}}
	_, err := c.batch(ctx, "set_task_parent", "/batch/taskParent", parents)
	return err
}

// CompletedTasks lists tasks completed between from and to.
func (c *Client) CompletedTasks(ctx context.Context, from, to time.Time, limit int) ([]Task, error) {
	query := url.Values{
		"from":  {from.Format(completedTimeLayout)},
		"to":    {to.Format(completedTimeLayout)},
		"limit": {strconv.Itoa(limit)},
	}
	var tasks []Task
	if err := c.do(ctx, "completed_tasks", http.MethodGet, "/project/all/completed", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// BatchProjects applies project adds, updates and deletes.
func (c *Client) BatchProjects(ctx context.Context, req BatchProjectRequest) (*BatchResponse, error) {
	return c.batch(ctx, "batch_projects", "/batch/project", req)
}

// CreateProject adds one project.
func (c *Client) CreateProject(ctx context.Context, project Project) (*BatchResponse, error) {
	return c.BatchProjects(ctx, BatchProjectRequest{Add: []Project{project}})
}

// DeleteProject deletes one project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	_, err := c.BatchProjects(ctx, BatchProjectRequest{Delete: []string{projectID}})
	return err
}

// CreateProjectGroup adds a folder.
func (c *Client) CreateProjectGroup(ctx context.Context, name string) (*BatchResponse, error) {
	req := BatchProjectGroupRequest{Add: []ProjectGroup{{Name: name, ShowAll: true}}}
	return c.batch(ctx, "create_project_group", "/batch/projectGroup", req)
}

// DeleteProjectGroup deletes a folder. Its projects are kept.
func (c *Client) DeleteProjectGroup(ctx context.Context, groupID string) error {
	req := BatchProjectGroupRequest{Delete: []string{groupID}}
	_, err := c.batch(ctx, "delete_project_group", "/batch/projectGroup", req)
	return err
}

// CreateTag adds a tag.
func (c *Client) CreateTag(ctx context.Context, tag Tag) (*BatchResponse, error) {
	return c.batch(ctx, "create_tag", "/batch/tag", BatchTagRequest{Add: []Tag{tag}})
}

// UpdateTags updates existing tags.
func (c *Client) UpdateTags(ctx context.Context, tags []Tag) (*BatchResponse, error) {
	return c.batch(ctx, "update_tags", "/batch/tag", BatchTagRequest{Update: tags})
}

// RenameTag changes a tag's label. The service derives the new name.
func (c *Client) RenameTag(ctx context.Context, oldName, newLabel string) error {
	return c.do(ctx, "rename_tag", http.MethodPut, "/tag/rename", nil, TagRename{Name: oldName, NewName: newLabel}, nil)
}

// DeleteTag deletes a tag and strips it from tasks.
func (c *Client) DeleteTag(ctx context.Context, name string) error {
	return c.do(ctx, "delete_tag", http.MethodDelete, "/tag", url.Values{"name": {name}}, nil, nil)
}

// UserProfile returns the account profile.
func (c *Client) UserProfile(ctx context.Context) (*UserProfile, error) {
	var profile UserProfile
	if err := c.do(ctx, "user_profile", http.MethodGet, "/user/profile", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UserStatus returns subscription details.
func (c *Client) UserStatus(ctx context.Context) (*UserStatus, error) {
	var status UserStatus
	if err := c.do(ctx, "user_status", http.MethodGet, "/user/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// UserStatistics returns the productivity summary.
func (c *Client) UserStatistics(ctx context.Context) (*UserStatistics, error) {
	var stats UserStatistics
	if err := c.do(ctx, "user_statistics", http.MethodGet, "/statistics/general", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// FocusHeatmap returns focus time per day between start and end inclusive.
func (c *Client) FocusHeatmap(ctx context.Context, start, end time.Time) ([]FocusDay, error) {
	path := fmt.Sprintf("/pomodoros/statistics/heatmap/%s/%s", start.Format(focusDayLayout), end.Format(focusDayLayout))
	var days []FocusDay
	if err := c.do(ctx, "focus_heatmap", http.MethodGet, path, nil, nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// FocusByTag returns focus seconds per tag between start and end inclusive.
func (c *Client) FocusByTag(ctx context.Context, start, end time.Time) (map[string]int64, error) {
	path := fmt.Sprintf("/pomodoros/statistics/dist/%s/%s", start.Format(focusDayLayout), end.Format(focusDayLayout))
	var dist FocusDistribution
	if err := c.do(ctx, "focus_by_tag", http.MethodGet, path, nil, nil, &dist); err != nil {
		return nil, err
	}
	if dist.TagDurations == nil {
		return map[string]int64{}, nil
	}
	return dist.TagDurations, nil
}

func (c *Client) batch(ctx context.Context, op, path string, body any) (*BatchResponse, error) {
	var resp BatchResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.ID2Error) > 0 {
		parts := make([]string, 0, len(resp.ID2Error))
		for id, msg := range resp.ID2Error {
			parts = append(parts, id+": "+msg)
		}
		return &resp, &ticktick.APIError{Upstream: "v2", Op: op, Kind: ticktick.KindAPI, Body: strings.Join(parts, "; ")}
	}
	return &resp, nil
}
