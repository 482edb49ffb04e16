// Package unifiedtest builds unified APIs backed by the in-memory fake
// upstreams for use in tests of the packages layered on top.
package unifiedtest

import (
	"context"
	"testing"

	"github.com/teemow/tickfewer/internal/ticktick/fake"
	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
	"github.com/teemow/tickfewer/internal/unified"
)

// Password is the sign-on password used with fake.Username.
const Password = "secret"

// Options wires both client factories to b.
func Options(b *fake.Backend) []unified.Option {
	return []unified.Option{
		unified.WithV1Factory(func(context.Context, v1.Config) (unified.V1Client, error) { return b.V1(), nil }),
		unified.WithV2Factory(func(v2.Config) (unified.V2Client, error) { return b.V2(), nil }),
	}
}

// New returns an uninitialized API backed by b.
func New(b *fake.Backend, opts ...unified.Option) *unified.API {
	cfg := unified.Config{Username: fake.Username, Password: Password}
	return unified.New(cfg, append(Options(b), opts...)...)
}

// Ready returns an initialized API backed by b. The calls made during
// initialization are cleared and the API is closed when the test ends.
func Ready(t testing.TB, b *fake.Backend, opts ...unified.Option) *unified.API {
	t.Helper()
	api := New(b, opts...)
	if err := api.Initialize(context.Background()); err != nil {
		t.Fatalf("initializing unified API: %v", err)
	}
	b.ResetCalls()
	t.Cleanup(func() { _ = api.Close() })
	return api
}
