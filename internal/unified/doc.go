// Package unified is the single API the tools use to reach the account. It
// owns both upstream clients and decides, per operation, which one to call.
//
// # Routing
//
// Every operation has a fixed policy: a primary upstream and optionally a
// fallback. The primary is tried first. Validation, configuration and
// authentication failures are returned at once, as is not-found except for
// GetTask, whose upstreams index tasks differently. Any other failure is
// retried once on the fallback when the policy names one and the call can be
// expressed there. When nothing succeeds the caller gets an
// UpstreamUnavailableError joining every attempt's cause. Attempts are
// sequential and each is traced and counted.
//
// # Lifecycle
//
// An API starts uninitialized. Initialize requires both upstreams: it builds
// the open API client, signs on to the private API, verifies both and
// reports every problem in one ConfigurationError. A failed API stays
// failed; build a new one to retry. Close releases the clients.
//
// # Writes
//
// Private API writes acknowledge ids, not entities, so CreateTask and
// CreateProject read the new entity back. Tag rename and merge are checked
// against a sync snapshot first so that missing tags surface as
// NotFoundError with the side that was missing.
package unified
