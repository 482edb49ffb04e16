package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/ticktick"
)

const (
	// DefaultBaseURL is the open API root.
	DefaultBaseURL = "https://api.ticktick.com/open/v1"

	authURL  = "https://ticktick.com/oauth/authorize"
	tokenURL = "https://ticktick.com/oauth/token"
)

// Scopes requested for the open API.
var Scopes = []string{"tasks:read", "tasks:write"}

// Config holds what is needed to talk to the open API.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccessToken  string
	// RefreshToken lets the token source renew an expired access token.
	RefreshToken string

	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int

	// HTTPClient is the base client the OAuth2 transport wraps.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client is an open API client.
type Client struct {
	transport *ticktick.Transport
	logger    logging.Logger
}

// NewClient builds a client. It does not contact the server; call Verify
// to check the token.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("client id and client secret are required")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("access token is required")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	base := cfg.HTTPClient
	if base == nil {
		base = ticktick.NewHTTPClient(cfg.Timeout)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	token := &oauth2.Token{
		AccessToken:  cfg.AccessToken,
		RefreshToken: cfg.RefreshToken,
		TokenType:    "Bearer",
	}
	var source oauth2.TokenSource
	if cfg.RefreshToken != "" {
		source = oauthConfig.TokenSource(ctx, token)
	} else {
		source = oauth2.StaticTokenSource(token)
	}

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = base.Timeout

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	logger.Debug("open API client created",
		"base_url", baseURL,
		"access_token", logging.SanitizeToken(cfg.AccessToken))

	return &Client{
		transport: &ticktick.Transport{
			Upstream:   "v1",
			BaseURL:    baseURL,
			HTTPClient: httpClient,
			Limiter:    ticktick.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		},
		logger: logger,
	}, nil
}

// Verify makes one cheap authenticated call.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.GetProjects(ctx)
	return err
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.Close()
	return nil
}

// GetProjects lists the user's projects. The inbox is not included.
func (c *Client) GetProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.transport.Do(ctx, "get_projects", http.MethodGet, "/project", nil, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var project Project
	if err := c.transport.Do(ctx, "get_project", http.MethodGet, "/project/"+url.PathEscape(projectID), nil, nil, &project); err != nil {
		return nil, err
	}
	if project.ID == "" {
		return nil, c.notFound("get_project")
	}
	return &project, nil
}

// GetProjectWithData returns a project with its undone tasks and columns.
func (c *Client) GetProjectWithData(ctx context.Context, projectID string) (*ProjectData, error) {
	var data ProjectData
	path := fmt.Sprintf("/project/%s/data", url.PathEscape(projectID))
	if err := c.transport.Do(ctx, "get_project_with_data", http.MethodGet, path, nil, nil, &data); err != nil {
		return nil, err
	}
	if data.Project.ID == "" {
		return nil, c.notFound("get_project_with_data")
	}
	return &data, nil
}

// CreateProject creates a project and returns it as stored.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	var project Project
	if err := c.transport.Do(ctx, "create_project", http.MethodPost, "/project", nil, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// DeleteProject deletes a project and its tasks.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.transport.Do(ctx, "delete_project", http.MethodDelete, "/project/"+url.PathEscape(projectID), nil, nil, nil)
}

// GetTask returns a task. The open API needs the owning project id.
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*Task, error) {
	var task Task
	path := fmt.Sprintf("/project/%s/task/%s", url.PathEscape(projectID), url.PathEscape(taskID))
	if err := c.transport.Do(ctx, "get_task", http.MethodGet, path, nil, nil, &task); err != nil {
		return nil, err
	}
	// A missing task comes back as an empty 200.
	if task.ID == "" {
		return nil, c.notFound("get_task")
	}
	return &task, nil
}

// CreateTask creates a task and returns it as stored.
func (c *Client) CreateTask(ctx context.Context, task Task) (*Task, error) {
	var created Task
	if err := c.transport.Do(ctx, "create_task", http.MethodPost, "/task", nil, task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask replaces a task's fields. ID and ProjectID must be set.
func (c *Client) UpdateTask(ctx context.Context, task Task) (*Task, error) {
	if task.ID == "" || task.ProjectID == "" {
		return nil, errors.New("task id and project id are required for an update")
	}
	var updated Task
	if err := c.transport.Do(ctx, "update_task", http.MethodPost, "/task/"+url.PathEscape(task.ID), nil, task, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CompleteTask marks a task completed.
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	path := fmt.Sprintf("/project/%s/task/%s/complete", url.PathEscape(projectID), url.PathEscape(taskID))
	return c.transport.Do(ctx, "complete_task", http.MethodPost, path, nil, nil, nil)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, projectID, taskID string) error {
	path := fmt.Sprintf("/project/%s/task/%s", url.PathEscape(projectID), url.PathEscape(taskID))
	return c.transport.Do(ctx, "delete_task", http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) notFound(op string) error {
	return &ticktick.APIError{Upstream: "v1", Op: op, StatusCode: http.StatusNotFound, Kind: ticktick.KindNotFound}
}
