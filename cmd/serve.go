package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/tickfewer/internal/config"
	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/resources"
	"github.com/teemow/tickfewer/internal/server"
	"github.com/teemow/tickfewer/internal/tools/account_tools"
	"github.com/teemow/tickfewer/internal/tools/projects_tools"
	"github.com/teemow/tickfewer/internal/tools/tags_tools"
	"github.com/teemow/tickfewer/internal/tools/tasks_tools"
	"github.com/teemow/tickfewer/internal/unified"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	transport        string
	httpAddr         string
	debugMode        bool
	yolo             bool
	disableStreaming bool
	source           configSource
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP (Model Context Protocol) server to expose TickTick tasks,
projects, tags and account data to AI assistants.

Both TickTick APIs are required: the open API (TICKTICK_CLIENT_ID,
TICKTICK_CLIENT_SECRET, TICKTICK_ACCESS_TOKEN) and the private API
(TICKTICK_USERNAME, TICKTICK_PASSWORD). Run "tickfewer verify" to check them.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP on /mcp with health endpoints

By default only read tools are registered. Use --yolo to enable tools that
create, change or delete data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment fallbacks apply only where the flag was not given.
			if !cmd.Flags().Changed("metrics-enabled") {
				if v := os.Getenv("METRICS_ENABLED"); v != "" {
					opts.metrics.Enabled = v == "true"
				}
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					opts.metrics.Addr = addr
				}
			}
			if !cmd.Flags().Changed("config") {
				opts.source.path = os.Getenv(config.EnvConfigFile)
			}
			opts.source.timeoutSet = cmd.Flags().Changed("timeout")
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (create, update, complete, delete)")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Answer /mcp with plain JSON instead of SSE streams")
	addConfigFlags(cmd, &opts.source)

	// Metrics server flags
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// newLogger logs to stderr, which keeps stdout free for the stdio transport.
func newLogger(debugMode bool) *slog.Logger {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runServe(opts serveOptions) error {
	switch opts.transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(opts.debugMode)
	slog.SetDefault(logger)

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(opts.metrics, provider)
		if err != nil {
			return err
		}
		logger.Info("metrics server started", "addr", metricsServer.Addr())
	}

	cfg, err := loadConfig(opts.source)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		// Initialization reports the same problems as a ConfigurationError;
		// this only makes them visible before the first upstream call.
		logger.Warn("configuration is incomplete", logging.Err(err))
	}

	adapter := logging.NewSlogAdapter(logger)
	api := unified.New(cfg.Unified(adapter),
		unified.WithLogger(adapter),
		unified.WithMetrics(provider.Metrics()),
	)

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo
	serverContext := server.NewServerContext(shutdownCtx, api,
		server.WithLogger(adapter),
		server.WithReadOnly(readOnly),
		server.WithConfig(cfg),
	)

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", logging.Err(err))
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", logging.Err(err))
		}
	}()

	// Both APIs are required; refuse to serve rather than fail on first use.
	if err := serverContext.Initialize(shutdownCtx); err != nil {
		return fmt.Errorf("failed to initialize TickTick APIs: %w", err)
	}

	if readOnly {
		logger.Info("starting server in READ-ONLY mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with WRITE operations enabled (--yolo flag is set)")
	}

	mcpSrv, err := newMCPServer(serverContext, readOnly)
	if err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch opts.transport {
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts, provider)
	default:
		return runStdioServer(mcpSrv)
	}
}

func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Wait for metrics server to be ready or fail
	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

// newMCPServer creates the MCP server with every tool group and resource
// registered.
func newMCPServer(sc *server.ServerContext, readOnly bool) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("tickfewer", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Tasks",
			register: func() error {
				return tasks_tools.RegisterTasksTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Projects",
			register: func() error {
				return projects_tools.RegisterProjectsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Tags",
			register: func() error {
				return tags_tools.RegisterTagsTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "Account",
			register: func() error {
				return account_tools.RegisterAccountTools(mcpSrv, sc, readOnly)
			},
		},
		{
			name: "User Resources",
			register: func() error {
				return resources.RegisterUserResources(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions, provider *instrumentation.Provider) error {
	healthChecker := server.NewHealthChecker(sc)
	httpSrv := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		DisableStreaming: opts.disableStreaming,
		HealthChecker:    healthChecker,
		Metrics:          provider.Metrics(),
	})

	logger := sc.Logger()
	logger.Info("starting tickfewer MCP server",
		"transport", opts.transport,
		"addr", opts.httpAddr,
		"endpoint", "/mcp")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpSrv.Start(opts.httpAddr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
