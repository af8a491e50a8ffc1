// Package runtime provides a context type that holds the logger and the
// integration registry for use throughout the application. This avoids
// passing multiple parameters.
package runtime

import (
	"context"

	"repopush.dev/repopush/internal/config"
	"repopush.dev/repopush/internal/output"
)

// Context provides access to output and configuration for commands
type Context struct {
	context.Context
	Splog    *output.Splog
	Registry *config.Registry
}

// NewContext creates a new context. A nil registry is replaced by the default one.
func NewContext(ctx context.Context, splog *output.Splog, registry *config.Registry) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if splog == nil {
		splog = output.NewSplog()
	}
	if registry == nil {
		registry = config.DefaultRegistry()
	}
	return &Context{Context: ctx, Splog: splog, Registry: registry}
}

type contextKey struct{}

// WithContext stores rc in ctx so commands can retrieve it with GetContext
func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// GetContext returns the runtime context stored in ctx. When none was stored
// it loads the registry from its default location.
func GetContext(ctx context.Context) (*Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if rc, ok := ctx.Value(contextKey{}).(*Context); ok {
		return rc, nil
	}

	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	registry, err := config.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return NewContext(ctx, output.NewSplog(), registry), nil
}
