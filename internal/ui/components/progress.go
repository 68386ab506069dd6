package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dailytutor/internal/ui/theme"
)

// StepIndicator shows the lesson steps with the current one highlighted.
type StepIndicator struct {
	Labels  []string
	Current int
}

// NewStepIndicator creates a step indicator.
func NewStepIndicator(labels []string, current int) StepIndicator {
	return StepIndicator{Labels: labels, Current: current}
}

// View renders the indicator as "● done ─ ◉ current ─ ○ next".
func (s StepIndicator) View() string {
	done := lipgloss.NewStyle().Foreground(theme.Secondary)
	current := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	next := lipgloss.NewStyle().Foreground(theme.TextDim)
	sep := lipgloss.NewStyle().Foreground(theme.Border).Render(" ─ ")

	parts := make([]string, 0, len(s.Labels))
	for i, label := range s.Labels {
		switch {
		case i < s.Current:
			parts = append(parts, done.Render("● "+label))
		case i == s.Current:
			parts = append(parts, current.Render("◉ "+label))
		default:
			parts = append(parts, next.Render("○ "+label))
		}
	}
	return strings.Join(parts, sep)
}
