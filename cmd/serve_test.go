package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/tickfewer/internal/config"
	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/ticktick"
	"github.com/teemow/tickfewer/internal/ticktick/fake"
	"github.com/teemow/tickfewer/internal/tools/tooltest"
	"github.com/teemow/tickfewer/internal/unified/unifiedtest"
)

func TestRegisterAllTools(t *testing.T) {
	tests := []struct {
		name      string
		readOnly  bool
		wantCount int
		present   []string
		absent    []string
	}{
		{
			name:      "read-only",
			readOnly:  true,
			wantCount: 14,
			present:   []string{"ticktick_list_tasks", "ticktick_list_tags", "ticktick_get_status"},
			absent:    []string{"ticktick_create_task", "ticktick_merge_tags", "ticktick_delete_folder"},
		},
		{
			name:      "yolo",
			readOnly:  false,
			wantCount: 28,
			present:   []string{"ticktick_create_task", "ticktick_merge_tags", "ticktick_delete_folder"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, _ := tooltest.New(t)
			mcpSrv, err := newMCPServer(sc, tt.readOnly)
			require.NoError(t, err)

			names := tooltest.ToolNames(mcpSrv)
			assert.Len(t, names, tt.wantCount)
			for _, name := range tt.present {
				assert.Contains(t, names, name)
			}
			for _, name := range tt.absent {
				assert.NotContains(t, names, name)
			}
		})
	}
}

func TestRunServeRejectsUnknownTransport(t *testing.T) {
	err := runServe(serveOptions{transport: "sse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported transport type: sse")
}

func TestRunServeFailsWithoutPrivateAPICredentials(t *testing.T) {
	for _, key := range []string{
		config.EnvConfigFile, config.EnvClientID, config.EnvClientSecret, config.EnvAccessToken,
		config.EnvUsername, config.EnvPassword,
	} {
		t.Setenv(key, "")
	}

	err := runServe(serveOptions{
		transport: transportStdio,
		source:    configSource{envFile: filepath.Join(t.TempDir(), ".env")},
	})
	require.Error(t, err)
	assert.True(t, ticktick.IsConfiguration(err), "got %v", err)
	assert.Contains(t, err.Error(), "failed to initialize TickTick APIs")
	assert.Contains(t, err.Error(), "V2 credentials not provided")
	assert.Contains(t, err.Error(), "V1 initialization failed")
}

func TestLoadConfigTimeoutFlag(t *testing.T) {
	t.Setenv(config.EnvTimeout, "45")
	noEnv := filepath.Join(t.TempDir(), ".env")

	cfg, err := loadConfig(configSource{envFile: noEnv})
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, time.Duration(cfg.Timeout))

	cfg, err = loadConfig(configSource{envFile: noEnv, timeout: 5 * time.Second, timeoutSet: true})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, time.Duration(cfg.Timeout))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(configSource{path: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestRunVerify(t *testing.T) {
	t.Run("both upstreams answer", func(t *testing.T) {
		api := unifiedtest.New(fake.New())
		t.Cleanup(func() { _ = api.Close() })

		var out bytes.Buffer
		require.NoError(t, runVerify(context.Background(), &out, api))
		assert.Contains(t, out.String(), "Open API (v1):    ok")
		assert.Contains(t, out.String(), "Private API (v2): ok")
		assert.Contains(t, out.String(), fake.InboxID)
	})

	t.Run("open api rejects the token", func(t *testing.T) {
		b := fake.New()
		b.FailAll(instrumentation.UpstreamV1, errors.New("401 unauthorized"))
		api := unifiedtest.New(b)
		t.Cleanup(func() { _ = api.Close() })

		var out bytes.Buffer
		err := runVerify(context.Background(), &out, api)
		require.Error(t, err)
		assert.Contains(t, out.String(), "not usable")
		assert.Contains(t, out.String(), "V1 authentication verification failed")
	})
}

func TestGetCategoryFromToolName(t *testing.T) {
	tests := map[string]string{
		"ticktick_create_task":   "Task Tools",
		"ticktick_search_tasks":  "Task Tools",
		"ticktick_make_subtask":  "Task Tools",
		"ticktick_list_projects": "Project Tools",
		"ticktick_delete_folder": "Project Tools",
		"ticktick_merge_tags":    "Tag Tools",
		"ticktick_focus_by_tag":  "Account Tools",
		"ticktick_sync":          "Account Tools",
		"ticktick_get_status":    "Account Tools",
	}
	for name, want := range tests {
		assert.Equal(t, want, getCategoryFromToolName(name), name)
	}
}

func TestGenerateToolsMarkdown(t *testing.T) {
	sc, _ := tooltest.New(t)
	mcpSrv, err := newMCPServer(sc, false)
	require.NoError(t, err)

	tools := make([]mcp.Tool, 0)
	for _, st := range mcpSrv.ListTools() {
		tools = append(tools, st.Tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	md := generateToolsMarkdown(tools)
	assert.True(t, strings.HasPrefix(md, "# MCP Tools Reference"))
	assert.Contains(t, md, "- [Task Tools](#task-tools)")
	assert.Contains(t, md, "### ticktick_create_task")
	assert.Contains(t, md, "- `title` (required): ")
	assert.Less(t, strings.Index(md, "## Account Tools"), strings.Index(md, "## Tag Tools"))
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "tickfewer version 1.2.3\n", out.String())
}
