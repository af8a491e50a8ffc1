// Package runtime carries per-invocation state (logger, integration
// registry and the command's context.Context) from the CLI into actions.
package runtime
