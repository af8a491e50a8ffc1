package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"repopush.dev/repopush/internal/github"
)

// actionOrder fixes the order of actions in summaries
var actionOrder = []string{github.ActionCreate, github.ActionUpdate, github.ActionDelete, "skip"}

// ColorAction colors text with the color assigned to action
func ColorAction(action, text string) string {
	color, ok := ACTION_COLORS[action]
	if !ok {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// FormatActionLine renders one planned action as "<symbol> <action> <path>"
func FormatActionLine(action, path string) string {
	symbol, ok := ActionSymbols[action]
	if !ok {
		symbol = "?"
	}
	return fmt.Sprintf("%s %s %s", ColorAction(action, symbol), ColorAction(action, fmt.Sprintf("%-6s", action)), path)
}

// FormatPlan renders every wire action on its own line, in order
func FormatPlan(actions []github.CommitAction) string {
	var b strings.Builder
	for _, a := range actions {
		b.WriteString(FormatActionLine(a.Action, a.FilePath))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatSummary renders counts per action, e.g. "2 create, 1 update".
// Actions with a zero count are omitted.
func FormatSummary(counts map[string]int) string {
	parts := make([]string, 0, len(counts))
	seen := make(map[string]bool, len(actionOrder))
	for _, action := range actionOrder {
		seen[action] = true
		if n := counts[action]; n > 0 {
			parts = append(parts, ColorAction(action, fmt.Sprintf("%d %s", n, action)))
		}
	}

	// Unknown actions go last, sorted for stable output
	var extra []string
	for action, n := range counts {
		if !seen[action] && n > 0 {
			extra = append(extra, action)
		}
	}
	sort.Strings(extra)
	for _, action := range extra {
		parts = append(parts, fmt.Sprintf("%d %s", counts[action], action))
	}

	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// CountActions tallies wire actions by action
func CountActions(actions []github.CommitAction) map[string]int {
	counts := make(map[string]int)
	for _, a := range actions {
		counts[a.Action]++
	}
	return counts
}

// ColorDim makes text dim/gray
func ColorDim(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(text)
}

// ColorBranchName colors a branch name
func ColorBranchName(branchName string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Render(branchName)
}

// ColorMagenta colors text magenta
func ColorMagenta(text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("5")).
		Render(text)
}
