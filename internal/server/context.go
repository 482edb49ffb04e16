package server

import (
	"context"
	"sync"

	"github.com/teemow/tickfewer/internal/config"
	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/unified"
)

// ServerContext holds the state shared by every tool handler: the unified
// API, the loaded configuration and the instrumentation hooks.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	api      *unified.API
	cfg      *config.Config
	logger   logging.Logger
	readOnly bool

	mu          sync.RWMutex
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	shutdown    bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the logger used by handlers.
func WithLogger(logger logging.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithReadOnly controls whether write tools are exposed.
func WithReadOnly(readOnly bool) Option {
	return func(sc *ServerContext) {
		sc.readOnly = readOnly
	}
}

// WithConfig records the configuration the API was built from.
func WithConfig(cfg *config.Config) Option {
	return func(sc *ServerContext) {
		sc.cfg = cfg
	}
}

// NewServerContext creates a server context around api. The API is not
// initialized here; call Initialize once the transport is ready.
func NewServerContext(ctx context.Context, api *unified.API, opts ...Option) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		api:      api,
		logger:   logging.DefaultLogger(),
		readOnly: true,
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// API returns the unified API.
func (sc *ServerContext) API() *unified.API {
	return sc.api
}

// Config returns the configuration, which may be nil in tests.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Username returns the private API account name, or "" when unknown.
func (sc *ServerContext) Username() string {
	if sc.cfg == nil {
		return ""
	}
	return sc.cfg.V2.Username
}

// Logger returns the handler logger.
func (sc *ServerContext) Logger() logging.Logger {
	return sc.logger
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Initialize signs on to both upstreams. Errors are returned as-is and
// also leave the API in its failed state, which every tool then reports.
func (sc *ServerContext) Initialize(ctx context.Context) error {
	if err := sc.api.Initialize(ctx); err != nil {
		sc.logger.Error("upstream initialization failed", logging.Err(err))
		return err
	}
	return nil
}

// SetMetrics sets the metrics recorder used by instrumented handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when metrics are disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool invocations.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the server context and closes the unified API.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	if sc.shutdown {
		sc.mu.Unlock()
		return nil
	}
	sc.shutdown = true
	sc.mu.Unlock()

	sc.cancel()
	return sc.api.Close()
}
