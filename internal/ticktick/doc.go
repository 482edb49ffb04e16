// Package ticktick holds what the upstream clients, the canonical model and
// the unified API share: the error taxonomy, the enumerations of the
// upstream wire format and argument validation.
//
// # Errors
//
// Upstream clients return *APIError classified as auth, not found or generic.
// The unified layer turns those into the user-facing taxonomy:
// ConfigurationError, AuthenticationError, NotFoundError, ValidationError and
// UpstreamUnavailableError. Use the Is* helpers rather than type switches,
// since errors are wrapped with %w on their way up.
package ticktick
