package unified

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/ticktick"
)

// Operation identifiers. They name routing policies, spans and metrics.
const (
	OpListTasks      = "list_tasks"
	OpGetTask        = "get_task"
	OpCreateTask     = "create_task"
	OpUpdateTask     = "update_task"
	OpCompleteTask   = "complete_task"
	OpDeleteTask     = "delete_task"
	OpCompletedTasks = "completed_tasks"
	OpMoveTask       = "move_task"
	OpSetTaskParent  = "set_task_parent"
	OpSearchTasks    = "search_tasks"

	OpListProjects       = "list_projects"
	OpGetProject         = "get_project"
	OpGetProjectWithData = "get_project_with_data"
	OpCreateProject      = "create_project"
	OpDeleteProject      = "delete_project"

	OpListFolders  = "list_folders"
	OpCreateFolder = "create_folder"
	OpDeleteFolder = "delete_folder"

	OpListTags  = "list_tags"
	OpCreateTag = "create_tag"
	OpDeleteTag = "delete_tag"
	OpRenameTag = "rename_tag"
	OpMergeTags = "merge_tags"

	OpUserProfile    = "user_profile"
	OpUserStatus     = "user_status"
	OpUserStatistics = "user_statistics"
	OpFocusHeatmap   = "focus_heatmap"
	OpFocusByTag     = "focus_by_tag"
	OpSyncAll        = "sync_all"
)

// policy routes one operation.
type policy struct {
	primary  string
	fallback string
	// fallbackOnNotFound lets a not-found from the primary reach the
	// fallback. Only lookups by id where the upstreams index differently
	// need it.
	fallbackOnNotFound bool
}

var (
	v2Only = policy{primary: instrumentation.UpstreamV2}
	v1Only = policy{primary: instrumentation.UpstreamV1}
	v2ToV1 = policy{primary: instrumentation.UpstreamV2, fallback: instrumentation.UpstreamV1}
	v1ToV2 = policy{primary: instrumentation.UpstreamV1, fallback: instrumentation.UpstreamV2}
)

var policies = map[string]policy{
	OpGetTask:      {primary: instrumentation.UpstreamV2, fallback: instrumentation.UpstreamV1, fallbackOnNotFound: true},
	OpCreateTask:   v2ToV1,
	OpUpdateTask:   v2ToV1,
	OpCompleteTask: v1ToV2,
	OpDeleteTask:   v2ToV1,

	OpListTasks:      v2Only,
	OpCompletedTasks: v2Only,
	OpMoveTask:       v2Only,
	OpSetTaskParent:  v2Only,
	OpSearchTasks:    v2Only,

	OpListProjects:       v2ToV1,
	OpGetProject:         v1ToV2,
	OpGetProjectWithData: v1Only,
	OpCreateProject:      v2ToV1,
	OpDeleteProject:      v2ToV1,

	OpListFolders:  v2Only,
	OpCreateFolder: v2Only,
	OpDeleteFolder: v2Only,

	OpListTags:  v2Only,
	OpCreateTag: v2Only,
	OpDeleteTag: v2Only,
	OpRenameTag: v2Only,
	OpMergeTags: v2Only,

	OpUserProfile:    v2Only,
	OpUserStatus:     v2Only,
	OpUserStatistics: v2Only,
	OpFocusHeatmap:   v2Only,
	OpFocusByTag:     v2Only,
	OpSyncAll:        v2Only,
}

// call holds the per-upstream implementations of one invocation. A nil
// implementation means the upstream cannot serve this particular call.
type call[T any] struct {
	resource string
	id       string
	v1       func(ctx context.Context, c V1Client) (T, error)
	v2       func(ctx context.Context, c V2Client) (T, error)
}

// run executes c according to the policy of op: the primary first, then at
// most one fallback attempt. Attempts never overlap.
func run[T any](ctx context.Context, a *API, op string, c call[T]) (T, error) {
	var zero T

	router, err := a.readyRouter()
	if err != nil {
		return zero, err
	}
	p, ok := policies[op]
	if !ok {
		return zero, fmt.Errorf("no routing policy for operation %q", op)
	}

	var causes []error
	var primaryErr error

	if fn := c.bind(router, p.primary); fn != nil {
		result, err := attempt(ctx, a, op, p.primary, false, fn)
		if err == nil {
			return result, nil
		}
		if final := terminal(err, c.resource, c.id, p.primary, p.fallbackOnNotFound); final != nil {
			return zero, final
		}
		primaryErr = err
		causes = append(causes, err)
	} else {
		causes = append(causes, fmt.Errorf("%s client not available for %s", p.primary, op))
	}

	// The caller gave up; a fallback would fail the same way.
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	fn := c.bind(router, p.fallback)
	if p.fallback == "" || fn == nil {
		// A not-found that had nowhere to fall through to is still a not-found.
		if primaryErr != nil && ticktick.IsNotFound(primaryErr) {
			return zero, terminal(primaryErr, c.resource, c.id, p.primary, false)
		}
		return zero, &ticktick.UpstreamUnavailableError{Operation: op, Err: errors.Join(causes...)}
	}

	a.logger.Warn("primary upstream failed, trying fallback",
		logging.Operation(op),
		logging.Upstream(p.primary),
		logging.Fallback(p.fallback),
		logging.Err(errors.Join(causes...)))
	a.metrics.RecordFallback(ctx, op, p.primary, p.fallback)

	result, err := attempt(ctx, a, op, p.fallback, true, fn)
	if err == nil {
		return result, nil
	}
	if final := terminal(err, c.resource, c.id, p.fallback, false); final != nil {
		return zero, final
	}
	causes = append(causes, err)

	return zero, &ticktick.UpstreamUnavailableError{Operation: op, Err: errors.Join(causes...)}
}

// bind returns the implementation for upstream, or nil when the router
// lacks that client or the call has no implementation for it.
func (c call[T]) bind(router *Router, upstream string) func(context.Context) (T, error) {
	switch upstream {
	case instrumentation.UpstreamV1:
		if c.v1 == nil || !router.HasV1() {
			return nil
		}
		return func(ctx context.Context) (T, error) { return c.v1(ctx, router.v1) }
	case instrumentation.UpstreamV2:
		if c.v2 == nil || !router.HasV2() {
			return nil
		}
		return func(ctx context.Context) (T, error) { return c.v2(ctx, router.v2) }
	}
	return nil
}

// terminal returns the error to surface immediately, or nil when the
// failure may be passed on to a fallback.
func terminal(err error, resource, id, upstream string, notFoundFallsThrough bool) error {
	switch {
	case ticktick.IsValidation(err), ticktick.IsConfiguration(err):
		return err
	case ticktick.IsAuthentication(err):
		var ae *ticktick.AuthenticationError
		if errors.As(err, &ae) {
			return ae
		}
		return &ticktick.AuthenticationError{Upstream: upstream, Err: err}
	case ticktick.IsNotFound(err):
		if notFoundFallsThrough {
			return nil
		}
		var nf *ticktick.NotFoundError
		if errors.As(err, &nf) {
			return nf
		}
		return &ticktick.NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return nil
}

func attempt[T any](ctx context.Context, a *API, op, upstream string, fallback bool, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := instrumentation.StartUpstreamSpan(ctx, upstream, op, fallback)
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		a.metrics.RecordUpstreamOperation(ctx, upstream, op, instrumentation.StatusError, duration)
		a.logger.Debug("upstream call failed",
			logging.Operation(op),
			logging.Upstream(upstream),
			logging.Err(err))
		return result, err
	}

	instrumentation.SetSpanSuccess(span)
	a.metrics.RecordUpstreamOperation(ctx, upstream, op, instrumentation.StatusSuccess, duration)
	return result, nil
}
