package unified

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/ticktick"
	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
)

// State is the lifecycle state of an API.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Config carries the settings of both upstream clients.
type Config struct {
	V1 v1.Config
	V2 v2.Config

	// Username and Password sign on to the private API.
	Username string
	Password string
}

// Option customizes an API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(a *API) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics records upstream calls, fallbacks and initialization results.
func WithMetrics(metrics *instrumentation.Metrics) Option {
	return func(a *API) {
		a.metrics = metrics
	}
}

// WithV1Factory replaces how the open API client is built.
func WithV1Factory(f V1Factory) Option {
	return func(a *API) {
		a.newV1 = f
	}
}

// WithV2Factory replaces how the private API client is built.
func WithV2Factory(f V2Factory) Option {
	return func(a *API) {
		a.newV2 = f
	}
}

// WithClock replaces the clock used for completion times.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		a.now = now
	}
}

// API is the single entry point to tasks, projects, folders, tags and
// account data. Every operation is routed to a primary upstream and, where
// the routing policy allows, retried once on the other.
type API struct {
	cfg     Config
	logger  logging.Logger
	metrics *instrumentation.Metrics
	newV1   V1Factory
	newV2   V2Factory
	now     func() time.Time

	mu       sync.RWMutex
	state    State
	router   *Router
	inboxID  string
	initErr  error
	initDone chan struct{}
}

// New returns an uninitialized API. Call Initialize before any operation.
func New(cfg Config, opts ...Option) *API {
	a := &API{
		cfg:    cfg,
		logger: logging.DefaultLogger(),
		newV1:  defaultV1Factory,
		newV2:  defaultV2Factory,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current lifecycle state.
func (a *API) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Ready reports whether operations can be served.
func (a *API) Ready() bool {
	return a.State() == StateReady
}

// Router returns the router, or nil unless the API is ready.
func (a *API) Router() *Router {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != StateReady {
		return nil
	}
	return a.router
}

// InboxID returns the inbox id learned at sign-on, or "" when unknown.
func (a *API) InboxID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.inboxID
}

// Initialize builds both clients, signs on to the private API and verifies
// both. Both upstreams are required; every problem found is reported in one
// ConfigurationError. A failed API cannot be initialized again. Concurrent
// callers wait for the initialization in progress. The upstream calls run
// without holding the state lock, so State and Ready stay responsive.
func (a *API) Initialize(ctx context.Context) error {
	a.mu.Lock()
	switch a.state {
	case StateReady:
		a.mu.Unlock()
		return nil
	case StateFailed:
		a.mu.Unlock()
		return &ticktick.ConfigurationError{Msg: "initialization already failed, create a new API to retry", Err: a.initErr}
	case StateClosed:
		a.mu.Unlock()
		return &ticktick.ConfigurationError{Msg: "unified API is closed"}
	case StateInitializing:
		done := a.initDone
		a.mu.Unlock()
		select {
		case <-done:
			return a.Initialize(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a.state = StateInitializing
	done := make(chan struct{})
	a.initDone = done
	a.mu.Unlock()
	defer close(done)

	router, inboxID, problems := a.connect(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateClosed {
		_ = router.close()
		return &ticktick.ConfigurationError{Msg: "unified API is closed"}
	}

	if len(problems) > 0 {
		_ = router.close()
		a.state = StateFailed
		a.initErr = &ticktick.ConfigurationError{
			Msg: "both upstream APIs are required",
			Err: errors.New(strings.Join(problems, "; ")),
		}
		a.metrics.RecordInit(ctx, instrumentation.InitResultFailed)
		a.logger.Error("unified API initialization failed", logging.Err(a.initErr))
		return a.initErr
	}

	a.router = router
	a.inboxID = inboxID
	a.state = StateReady
	a.metrics.RecordInit(ctx, instrumentation.InitResultReady)
	a.logger.Info("unified API ready",
		logging.KeyUserHash, logging.AnonymizeEmail(a.cfg.Username),
		"inbox_known", inboxID != "")
	return nil
}

// connect builds and verifies both clients and returns every problem found.
// The router is returned even when problems were found so it can be closed.
func (a *API) connect(ctx context.Context) (*Router, string, []string) {
	var problems []string

	var v1c V1Client
	if c, err := a.newV1(ctx, a.cfg.V1); err != nil {
		problems = append(problems, "V1 initialization failed: "+err.Error())
	} else {
		v1c = c
	}

	var v2c V2Client
	var inboxID string
	if a.cfg.Username == "" || a.cfg.Password == "" {
		problems = append(problems, "V2 credentials not provided")
	} else if c, err := a.newV2(a.cfg.V2); err != nil {
		problems = append(problems, "V2 initialization failed: "+err.Error())
	} else if session, err := c.Authenticate(ctx, a.cfg.Username, a.cfg.Password); err != nil {
		problems = append(problems, "V2 initialization failed: "+err.Error())
		_ = c.Close()
	} else {
		v2c = c
		inboxID = session.InboxID
	}

	router := newRouter(v1c, v2c, a.logger)
	verified := router.VerifyClients(ctx)
	if !verified[instrumentation.UpstreamV1] {
		problems = append(problems, "V1 authentication verification failed")
	}
	if !verified[instrumentation.UpstreamV2] {
		problems = append(problems, "V2 authentication verification failed")
	}
	return router, inboxID, problems
}

// Close releases both clients. Close is idempotent; after it every
// operation fails with a ConfigurationError.
func (a *API) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateClosed {
		return nil
	}
	var err error
	if a.router != nil {
		err = a.router.close()
	}
	a.router = nil
	a.state = StateClosed
	return err
}

// readyRouter returns the router or the ConfigurationError explaining why
// the API cannot serve requests.
func (a *API) readyRouter() (*Router, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	switch a.state {
	case StateReady:
		return a.router, nil
	case StateFailed:
		return nil, &ticktick.ConfigurationError{Msg: "unified API failed to initialize", Err: a.initErr}
	case StateClosed:
		return nil, &ticktick.ConfigurationError{Msg: "unified API is closed"}
	}
	return nil, &ticktick.ConfigurationError{Msg: "unified API is not initialized"}
}
