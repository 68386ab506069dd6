package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dailytutor/internal/router"
	"github.com/abhisek/dailytutor/internal/screen"
	"github.com/abhisek/dailytutor/internal/screens/home"
	"github.com/abhisek/dailytutor/internal/screens/session"
	"github.com/abhisek/dailytutor/internal/screens/welcome"
	sess "github.com/abhisek/dailytutor/internal/session"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	// NewEngine builds a fresh session engine for every session screen.
	NewEngine func() *sess.Engine

	// Sessions backs the home streak and the history screen. May be nil.
	Sessions store.SessionRepo

	// Mode names the backend shown on the home screen.
	Mode string

	// SkipWelcome starts directly on the home screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the welcome or home screen.
func newAppModel(opts Options) AppModel {
	homeFactory := func() screen.Screen {
		return home.New(func() screen.Screen {
			return session.New(opts.NewEngine())
		}, opts.Sessions, opts.Mode)
	}

	var initial screen.Screen
	if opts.SkipWelcome {
		initial = homeFactory()
	} else {
		initial = welcome.New(homeFactory)
	}
	return AppModel{
		router: router.New(initial),
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscHandler); ok && h.HandlesEsc() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render lays out header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	stats := layout.HeaderStats{SessionsLeft: -1}
	if active != nil {
		title = active.Title()
		if p, ok := active.(screen.StatsProvider); ok {
			if s, ok := p.HeaderStats(); ok {
				stats = s
			}
		}
	}

	header := layout.RenderHeader(title, stats, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Выход"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Назад"},
			{Key: "Ctrl+C", Description: "Выход"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Выбор"},
		{Key: "Enter", Description: "Открыть"},
		{Key: "Ctrl+C", Description: "Выход"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m)
	_, err := p.Run()
	m.router.CloseAll()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
