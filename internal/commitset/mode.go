package commitset

import (
	"fmt"
	"strings"

	"repopush.dev/repopush/internal/errors"
)

// Action is the decision taken for a single local file
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionSkip   Action = "skip"
)

// Valid reports whether a is one of the known decisions
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionSkip:
		return true
	}
	return false
}

// Mode selects how actions are decided. The zero value is auto mode, in
// which each file is compared with the remote. An explicit mode forces the
// same action for every file. Auto is not an Action, so it can never end up
// in a commit set.
type Mode struct {
	explicit Action
}

// Auto returns the mode that compares every file with the remote
func Auto() Mode {
	return Mode{}
}

// Explicit returns a mode that forces action for every file
func Explicit(action Action) Mode {
	return Mode{explicit: action}
}

// IsAuto reports whether m compares files with the remote
func (m Mode) IsAuto() bool {
	return m.explicit == ""
}

// Action returns the forced action and true for explicit modes
func (m Mode) Action() (Action, bool) {
	return m.explicit, !m.IsAuto()
}

func (m Mode) String() string {
	if m.IsAuto() {
		return "auto"
	}
	return string(m.explicit)
}

// validate rejects explicit modes built from unknown actions
func (m Mode) validate() error {
	if m.IsAuto() || m.explicit.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %q", errors.ErrInvalidMode, string(m.explicit))
}

// ParseMode parses "auto", "create", "update", "delete" or "skip".
// An empty string is auto.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return Auto(), nil
	}
	m := Explicit(Action(s))
	if err := m.validate(); err != nil {
		return Auto(), err
	}
	return m, nil
}

// Set implements pflag.Value
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value
func (m *Mode) Type() string {
	return "mode"
}
