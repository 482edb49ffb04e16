package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/tickfewer/internal/config"
	"github.com/teemow/tickfewer/internal/ticktick"
)

// Error categories reported to callers and recorded in the audit log.
const (
	CategoryAuthentication = "authentication"
	CategoryNotFound       = "not_found"
	CategoryValidation     = "validation"
	CategoryConfiguration  = "configuration"
	CategoryUnavailable    = "unavailable"
	CategoryUnexpected     = "unexpected"
)

// Category classifies err. Authentication and not-found take precedence over
// configuration because a failed initialization wraps the upstream cause.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case ticktick.IsValidation(err):
		return CategoryValidation
	case ticktick.IsUnavailable(err):
		return CategoryUnavailable
	case ticktick.IsConfiguration(err):
		return CategoryConfiguration
	case ticktick.IsAuthentication(err):
		return CategoryAuthentication
	case ticktick.IsNotFound(err):
		return CategoryNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryUnavailable
	}
	return CategoryUnexpected
}

// Message returns the text shown to the caller for err.
func Message(err error) string {
	switch Category(err) {
	case CategoryAuthentication:
		return fmt.Sprintf("Authentication failed: %v\n\nCheck %s for the open API and %s / %s for the private API, then restart the server.",
			err, config.EnvAccessToken, config.EnvUsername, config.EnvPassword)
	case CategoryNotFound:
		return fmt.Sprintf("Not found: %v", err)
	case CategoryValidation:
		return fmt.Sprintf("Invalid input: %v", err)
	case CategoryConfiguration:
		return fmt.Sprintf("Server is not configured: %v\n\nBoth APIs are required. Run `tickfewer verify` to check the credentials.", err)
	case CategoryUnavailable:
		return fmt.Sprintf("Service unavailable: %v\n\nNo upstream API could complete the request. Try again later.", err)
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}

// ErrorResult turns err into a tool error result. Handlers return it with a
// nil error so that the caller sees the message.
func ErrorResult(ctx context.Context, err error) *mcp.CallToolResult {
	if f, ok := ctx.Value(failureKey{}).(*failure); ok {
		f.err = err
		f.category = Category(err)
	}
	return mcp.NewToolResultError(Message(err))
}

type failureKey struct{}

// failure is filled in by ErrorResult for the instrumented wrapper.
type failure struct {
	err      error
	category string
}

func withFailureRecorder(ctx context.Context) (context.Context, *failure) {
	f := &failure{category: CategoryUnexpected}
	return context.WithValue(ctx, failureKey{}, f), f
}
