// Package actions provides high-level business logic for CLI commands.
//
// Each action corresponds to a repopush command (push, integrations)
// and orchestrates operations across the config, commitset, and github packages.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Splog, the integration registry and the request context
//   - Actions are stateless; the remote branch is the only state
//   - Actions handle user interaction through the tui package
package actions
