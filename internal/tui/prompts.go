package tui

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrInteractiveDisabled is returned when interactive prompts are disabled via REPOPUSH_NO_INTERACTIVE
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (REPOPUSH_NO_INTERACTIVE is set)")

// ErrCanceled is returned when the user aborts a prompt or spinner
var ErrCanceled = errors.New("canceled")

// checkInteractiveAllowed returns an error if interactive mode is disabled
func checkInteractiveAllowed() error {
	if os.Getenv("REPOPUSH_NO_INTERACTIVE") != "" {
		return ErrInteractiveDisabled
	}
	if !IsTTY() {
		return fmt.Errorf("%w: no terminal available", ErrInteractiveDisabled)
	}
	return nil
}

// PromptConfirm prompts the user for yes/no confirmation
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	var confirmed bool
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return false, ErrCanceled
		}
		return false, err
	}

	return confirmed, nil
}
