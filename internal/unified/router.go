package unified

import (
	"context"
	"errors"

	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
)

// Router knows which upstream clients are usable. It is built once during
// initialization and never changes afterwards.
type Router struct {
	v1     V1Client
	v2     V2Client
	logger logging.Logger
}

func newRouter(v1c V1Client, v2c V2Client, logger logging.Logger) *Router {
	return &Router{v1: v1c, v2: v2c, logger: logger}
}

// HasV1 reports whether the open API client was constructed.
func (r *Router) HasV1() bool {
	return r != nil && r.v1 != nil
}

// HasV2 reports whether the private API client was constructed and signed on.
func (r *Router) HasV2() bool {
	return r != nil && r.v2 != nil
}

// IsFullyConfigured reports whether both upstreams are available.
func (r *Router) IsFullyConfigured() bool {
	return r.HasV1() && r.HasV2()
}

func (r *Router) has(upstream string) bool {
	switch upstream {
	case instrumentation.UpstreamV1:
		return r.HasV1()
	case instrumentation.UpstreamV2:
		return r.HasV2()
	}
	return false
}

// VerifyClients makes one authenticated call per configured client, one
// after the other. Unconfigured clients are reported as false.
func (r *Router) VerifyClients(ctx context.Context) map[string]bool {
	result := map[string]bool{
		instrumentation.UpstreamV1: false,
		instrumentation.UpstreamV2: false,
	}
	if r.HasV1() {
		if err := r.v1.Verify(ctx); err != nil {
			r.logger.Warn("upstream verification failed", logging.Upstream(instrumentation.UpstreamV1), logging.Err(err))
		} else {
			result[instrumentation.UpstreamV1] = true
		}
	}
	if r.HasV2() {
		if err := r.v2.Verify(ctx); err != nil {
			r.logger.Warn("upstream verification failed", logging.Upstream(instrumentation.UpstreamV2), logging.Err(err))
		} else {
			result[instrumentation.UpstreamV2] = true
		}
	}
	return result
}

func (r *Router) close() error {
	var errs []error
	if r.v1 != nil {
		if err := r.v1.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.v2 != nil {
		if err := r.v2.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
