// Package utils provides small helpers for the CLI: opening URLs in a
// browser and reading a commit message from standard input.
package utils
