// Package tooltest runs MCP tool handlers against the in-memory fake
// upstreams.
package tooltest

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/tickfewer/internal/config"
	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	"github.com/teemow/tickfewer/internal/unified/unifiedtest"
)

// Handler is the signature of a tool handler.
type Handler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// New returns a server context around a ready API backed by a fresh fake
// account. Write tools are enabled.
func New(t *testing.T) (*server.ServerContext, *fake.Backend) {
	t.Helper()
	b := fake.New()
	cfg := config.Default()
	cfg.V2.Username = fake.Username
	sc := server.NewServerContext(context.Background(), unifiedtest.Ready(t, b),
		server.WithConfig(cfg),
		server.WithReadOnly(false),
	)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc, b
}

// Call invokes h with args and returns the text of the result and whether it
// is an error result. A Go error from the handler fails the test.
func Call(t *testing.T, h Handler, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res == nil || len(res.Content) == 0 {
		t.Fatal("handler returned an empty result")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("result content is %T, want text", res.Content[0])
	}
	return text.Text, res.IsError
}

// ToolNames returns the names of the tools registered on s.
func ToolNames(s *mcpserver.MCPServer) []string {
	tools := s.ListTools()
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	return names
}
