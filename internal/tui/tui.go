package tui

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// IsTTY returns true if we can use a TTY for interactive TUI
func IsTTY() bool {
	// First check if stdin/stdout are terminals
	if !((isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
		(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))) {
		return false
	}
	// Also try to open /dev/tty to verify it's actually available
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// spinnerDoneMsg carries the result of the wrapped work
type spinnerDoneMsg struct {
	err error
}

// spinnerModel shows a spinner with a title until the work finishes. Ctrl+C
// cancels the work but the spinner keeps running until the work returns.
type spinnerModel struct {
	title    string
	spinner  spinner.Model
	cancel   context.CancelFunc
	err      error
	done     bool
	canceled bool
}

func newSpinnerModel(title string, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return spinnerModel{title: title, spinner: s, cancel: cancel}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC && !m.canceled {
			m.canceled = true
			m.cancel()
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case spinnerDoneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	if m.canceled {
		return m.spinner.View() + " Canceling " + m.title + "...\n"
	}
	return m.spinner.View() + " " + m.title + "\n"
}

// spinnerRun is one piece of work running behind a spinner program
type spinnerRun struct {
	program *tea.Program
	cancel  context.CancelFunc
	done    chan error
}

// startSpinner starts work on a child of ctx and prepares the spinner
// program that reports on it
func startSpinner(ctx context.Context, title string, work func(context.Context) error, opts ...tea.ProgramOption) *spinnerRun {
	ctx, cancel := context.WithCancel(ctx)
	r := &spinnerRun{
		program: tea.NewProgram(newSpinnerModel(title, cancel), opts...),
		cancel:  cancel,
		done:    make(chan error, 1),
	}
	go func() {
		err := work(ctx)
		r.done <- err
		r.program.Send(spinnerDoneMsg{err: err})
	}()
	return r
}

// wait runs the spinner until the work has returned. Work that finished
// despite a cancel keeps its result; work stopped by the cancel reports
// ErrCanceled.
func (r *spinnerRun) wait() error {
	defer r.cancel()

	final, err := r.program.Run()
	if err != nil {
		r.cancel()
		<-r.done
		return err
	}

	workErr := <-r.done
	if result, ok := final.(spinnerModel); ok && result.canceled && errors.Is(workErr, context.Canceled) {
		return ErrCanceled
	}
	return workErr
}

// RunWithSpinner runs work while showing a spinner. Without a TTY, work runs
// directly with no output. Ctrl+C cancels the context passed to work and
// waits for work to return, so the result always reflects what work did.
func RunWithSpinner(ctx context.Context, title string, work func(context.Context) error) error {
	if !IsTTY() {
		return work(ctx)
	}
	return startSpinner(ctx, title, work, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout)).wait()
}
