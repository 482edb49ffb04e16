package ticktick

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed upstream call. Upstream clients report
// exactly these three kinds; the unified layer never looks at status codes.
type ErrorKind string

const (
	KindAuth     ErrorKind = "auth"
	KindNotFound ErrorKind = "not_found"
	KindAPI      ErrorKind = "api"
)

// APIError is returned by the v1 and v2 clients for any failed request.
type APIError struct {
	Upstream   string
	Op         string
	StatusCode int
	Kind       ErrorKind
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Upstream, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": HTTP %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch status {
	case 401, 403:
		return KindAuth
	case 404:
		return KindNotFound
	default:
		return KindAPI
	}
}

// ConfigurationError means the unified API is not usable: it was used before
// Initialize, after Close, or could not reach full dual-upstream configuration.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// AuthenticationError means an upstream rejected the configured credentials.
type AuthenticationError struct {
	Upstream string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s authentication failed: %v", e.Upstream, e.Err)
	}
	return e.Upstream + " authentication failed"
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NotFoundError means the targeted entity does not exist. Role distinguishes
// the endpoints of a two-sided operation such as a tag merge ("source", "target").
type NotFoundError struct {
	Resource string
	ID       string
	Role     string
	Err      error
}

func (e *NotFoundError) Error() string {
	msg := e.Resource + " not found"
	if e.Role != "" {
		msg = e.Role + " " + msg
	}
	if e.ID != "" {
		msg += ": " + e.ID
	}
	return msg
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError means a caller-supplied argument failed a structural check.
// It is always raised before any upstream call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// UpstreamUnavailableError means no usable upstream could complete Operation.
// Err joins the failure of every attempted upstream.
type UpstreamUnavailableError struct {
	Operation string
	Err       error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not %s: %v", strings.ReplaceAll(e.Operation, "_", " "), e.Err)
	}
	return "could not " + strings.ReplaceAll(e.Operation, "_", " ")
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsUnavailable reports whether err is an UpstreamUnavailableError.
func IsUnavailable(err error) bool {
	var target *UpstreamUnavailableError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError or a not-found APIError.
// An UpstreamUnavailableError is never reported as not-found even if one of
// its joined causes was.
func IsNotFound(err error) bool {
	if IsUnavailable(err) {
		return false
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsAuthentication reports whether err is an AuthenticationError or an
// auth-kind APIError.
func IsAuthentication(err error) bool {
	if IsUnavailable(err) {
		return false
	}
	var ae *AuthenticationError
	if errors.As(err, &ae) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}
