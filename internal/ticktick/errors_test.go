package ticktick

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{404, KindNotFound},
		{400, KindAPI},
		{500, KindAPI},
		{503, KindAPI},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	apiNotFound := &APIError{Upstream: "v2", Op: "get_task", StatusCode: 404, Kind: KindNotFound}
	apiAuth := &APIError{Upstream: "v1", Op: "get_projects", StatusCode: 401, Kind: KindAuth}
	apiGeneric := &APIError{Upstream: "v2", Op: "sync", StatusCode: 500, Kind: KindAPI}

	tests := []struct {
		name           string
		err            error
		notFound       bool
		authentication bool
		validation     bool
		configuration  bool
		unavailable    bool
	}{
		{name: "api not found", err: apiNotFound, notFound: true},
		{name: "wrapped api not found", err: fmt.Errorf("fetch: %w", apiNotFound), notFound: true},
		{name: "api auth", err: apiAuth, authentication: true},
		{name: "api generic", err: apiGeneric},
		{name: "not found", err: &NotFoundError{Resource: "tag", ID: "urgent", Role: "source"}, notFound: true},
		{name: "authentication", err: &AuthenticationError{Upstream: "v2"}, authentication: true},
		{name: "validation", err: NewValidationError("priority", "bad"), validation: true},
		{name: "configuration", err: &ConfigurationError{Msg: "not initialized"}, configuration: true},
		{
			name:        "unavailable hides joined not found",
			err:         &UpstreamUnavailableError{Operation: "get_task", Err: errors.Join(apiNotFound, apiGeneric)},
			unavailable: true,
		},
		{name: "plain", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err), "IsNotFound")
			assert.Equal(t, tt.authentication, IsAuthentication(tt.err), "IsAuthentication")
			assert.Equal(t, tt.validation, IsValidation(tt.err), "IsValidation")
			assert.Equal(t, tt.configuration, IsConfiguration(tt.err), "IsConfiguration")
			assert.Equal(t, tt.unavailable, IsUnavailable(tt.err), "IsUnavailable")
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "source tag not found",
			err:  &NotFoundError{Resource: "tag", ID: "urgent", Role: "source"},
			want: "source tag not found: urgent",
		},
		{
			name: "task not found",
			err:  &NotFoundError{Resource: "task", ID: "abc"},
			want: "task not found: abc",
		},
		{
			name: "unavailable",
			err:  &UpstreamUnavailableError{Operation: "create_task", Err: errors.New("timeout")},
			want: "could not create task: timeout",
		},
		{
			name: "api error",
			err:  &APIError{Upstream: "v2", Op: "sync", StatusCode: 500, Body: "oops"},
			want: "v2 sync: HTTP 500: oops",
		},
		{
			name: "configuration with cause",
			err:  &ConfigurationError{Msg: "both upstream APIs are required", Err: errors.New("V2 credentials not provided")},
			want: "both upstream APIs are required: V2 credentials not provided",
		},
		{
			name: "validation",
			err:  NewValidationError("color", "must be a hex color"),
			want: "color: must be a hex color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
