// Package tui provides the interactive terminal pieces of repopush.
//
// It handles:
//   - Detecting whether a TTY is available
//   - Confirmation prompts (using survey)
//   - Spinners around slow remote calls (using bubbletea)
package tui
