package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinMarker is the message value that means "read it from stdin"
const StdinMarker = "-"

// ResolveMessage returns message, or the trimmed content of stdin when
// message is "-". Reading from an interactive terminal is refused instead
// of blocking.
func ResolveMessage(message string, stdin *os.File) (string, error) {
	if message != StdinMarker {
		return message, nil
	}

	stat, err := stdin.Stat()
	if err != nil {
		return "", err
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("--message - needs the message piped on stdin")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read message from stdin: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}
