package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dailytutor/internal/reveal"
	"github.com/abhisek/dailytutor/internal/router"
	"github.com/abhisek/dailytutor/internal/screen"
	"github.com/abhisek/dailytutor/internal/ui/theme"
)

// Tagline is typed out under the banner.
const Tagline = "Одна тема в день. Объяснение, пример и задача."

const taglineInterval = 45 * time.Millisecond

// WelcomeScreen types out the tagline, then waits for a key before handing
// over to the home screen.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	tagline      reveal.Model
	typed        bool
	transitioned bool
}

var (
	_ screen.Screen = (*WelcomeScreen)(nil)
	_ screen.Closer = (*WelcomeScreen)(nil)
)

// New creates a WelcomeScreen that will transition to the screen produced by homeFactory.
func New(homeFactory func() screen.Screen) *WelcomeScreen {
	tagline := reveal.New(
		reveal.WithInterval(taglineInterval),
		reveal.WithCaretStyle(theme.Caret),
	)
	return &WelcomeScreen{
		homeFactory: homeFactory,
		tagline:     tagline,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	var cmd tea.Cmd
	w.tagline, cmd = w.tagline.Start(Tagline)
	return cmd
}

// Close stops the typing animation.
func (w *WelcomeScreen) Close() {
	w.tagline = w.tagline.Stop()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reveal.TickMsg:
		var cmd tea.Cmd
		w.tagline, cmd = w.tagline.Update(msg)
		return w, cmd

	case reveal.DoneMsg:
		if msg.ID == w.tagline.ID() {
			w.typed = true
		}
		return w, nil

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	w.tagline = w.tagline.Stop()
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	tagline := lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Render(w.tagline.View())

	content := RenderBanner(width) + "\n\n" + tagline
	if w.typed {
		content += "\n\n" + lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("нажми любую клавишу")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
