// Package reveal provides a Bubble Tea component that reveals an already
// fetched block of text one character at a time.
package reveal

import (
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// DefaultInterval is the delay between two revealed characters.
const DefaultInterval = 18 * time.Millisecond

// Caret is drawn after the revealed prefix while a reveal is running.
const Caret = "▍"

// caretPeriod is the number of ticks the caret stays in one blink state.
const caretPeriod = 8

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg advances a running reveal by one character.
type TickMsg struct {
	Time time.Time
	ID   int
	tag  int
}

// DoneMsg is sent exactly once when a reveal reaches the end of its text.
type DoneMsg struct {
	ID   int
	Text string
}

// Model is the reveal state. Use New to create one.
type Model struct {
	Interval   time.Duration
	CaretStyle lipgloss.Style

	id     int
	tag    int
	full   []rune
	shown  int
	ticks  int
	active bool
}

// Option configures a Model in New.
type Option func(*Model)

// WithInterval sets the per-character delay.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.Interval = d
		}
	}
}

// WithCaretStyle sets the caret style.
func WithCaretStyle(s lipgloss.Style) Option {
	return func(m *Model) {
		m.CaretStyle = s
	}
}

// New returns an idle revealer.
func New(opts ...Option) Model {
	m := Model{
		Interval: DefaultInterval,
		id:       nextID(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// ID returns the revealer's unique ID.
func (m Model) ID() int {
	return m.id
}

// Start begins revealing text, cancelling any reveal already running.
func (m Model) Start(text string) (Model, tea.Cmd) {
	m.tag++
	m.full = []rune(text)
	m.shown = 0
	m.ticks = 0
	m.active = true
	return m, m.tick()
}

// Stop cancels the running reveal, keeping whatever was already shown.
// Pending ticks become no-ops and no DoneMsg is sent.
func (m Model) Stop() Model {
	m.tag++
	m.active = false
	return m
}

// Skip shows the rest of the text immediately and completes the reveal.
// It is a no-op when no reveal is running.
func (m Model) Skip() (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	m.tag++
	m.shown = len(m.full)
	return m.finish()
}

// Active reports whether a reveal is in progress.
func (m Model) Active() bool {
	return m.active
}

// Text returns the revealed prefix.
func (m Model) Text() string {
	return string(m.full[:m.shown])
}

// Full returns the complete text of the current or last reveal.
func (m Model) Full() string {
	return string(m.full)
}

// Update handles tick messages addressed to this revealer.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok {
		return m, nil
	}
	if tick.ID != m.id || tick.tag != m.tag || !m.active {
		return m, nil
	}

	m.ticks++
	if m.shown < len(m.full) {
		m.shown++
	}
	if m.shown >= len(m.full) {
		return m.finish()
	}
	return m, m.tick()
}

// View renders the revealed prefix with a blinking caret while active.
func (m Model) View() string {
	text := m.Text()
	if !m.active {
		return text
	}
	if (m.ticks/caretPeriod)%2 == 0 {
		return text + m.CaretStyle.Render(Caret)
	}
	return text + " "
}

func (m Model) finish() (Model, tea.Cmd) {
	m.active = false
	done := DoneMsg{ID: m.id, Text: string(m.full)}
	return m, func() tea.Msg { return done }
}

func (m Model) tick() tea.Cmd {
	id, tag := m.id, m.tag
	return tea.Tick(m.Interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, ID: id, tag: tag}
	})
}
