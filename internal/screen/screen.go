package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dailytutor/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is implemented by screens that own timers or in-flight work. The
// router calls Close when the screen leaves the stack.
type Closer interface {
	Close()
}

// EscHandler is implemented by screens that want Esc for themselves instead
// of the global "back" binding.
type EscHandler interface {
	HandlesEsc() bool
}

// StatsProvider is implemented by screens that know the learner's current
// counters for the header.
type StatsProvider interface {
	HeaderStats() (layout.HeaderStats, bool)
}
