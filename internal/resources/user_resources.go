package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tickfewer/internal/server"
)

// Resource URIs.
const (
	ProfileURI  = "ticktick://profile"
	StatusURI   = "ticktick://status"
	ProjectsURI = "ticktick://projects"
)

// RegisterUserResources registers resources describing the signed-in
// TickTick account.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return fmt.Errorf("server and server context are required")
	}

	profileResource := mcp.NewResource(
		ProfileURI,
		"TickTick Profile",
		mcp.WithResourceDescription("Profile of the signed-in TickTick user"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProfile(ctx, request, sc)
	})

	statusResource := mcp.NewResource(
		StatusURI,
		"TickTick Account Status",
		mcp.WithResourceDescription("User id, inbox id and subscription of the account"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(statusResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleStatus(ctx, request, sc)
	})

	projectsResource := mcp.NewResource(
		ProjectsURI,
		"TickTick Projects",
		mcp.WithResourceDescription("All projects of the account, without the inbox"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(projectsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProjects(ctx, request, sc)
	})

	return nil
}

func handleProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	profile, err := sc.API().GetUserProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return jsonContents(request.Params.URI, profile)
}

func handleStatus(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	status, err := sc.API().GetUserStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get account status: %w", err)
	}
	return jsonContents(request.Params.URI, status)
}

func handleProjects(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	projects, err := sc.API().ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return jsonContents(request.Params.URI, projects)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
