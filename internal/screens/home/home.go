package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/dailytutor/internal/router"
	"github.com/abhisek/dailytutor/internal/screen"
	"github.com/abhisek/dailytutor/internal/screens/history"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/ui/components"
	"github.com/abhisek/dailytutor/internal/ui/layout"
	"github.com/abhisek/dailytutor/internal/ui/theme"
)

type statsLoadedMsg struct {
	Streak    int
	DoneToday bool
	Err       error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	menu      components.Menu
	sessions  store.SessionRepo
	mode      string
	streak    int
	doneToday bool
	now       func() time.Time
}

var (
	_ screen.Screen        = (*HomeScreen)(nil)
	_ screen.StatsProvider = (*HomeScreen)(nil)
)

// New creates the home screen. newSession builds a fresh session screen
// every time the learner starts one. mode names the backend in use.
func New(newSession func() screen.Screen, sessions store.SessionRepo, mode string) *HomeScreen {
	items := []components.MenuItem{
		{Label: "Начать занятие", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: newSession()}
			}
		}},
		{Label: "История занятий", Disabled: sessions == nil, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(sessions)}
			}
		}},
		{Label: "Выход", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		menu:     components.NewMenu(items),
		sessions: sessions,
		mode:     mode,
		now:      time.Now,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	if h.sessions == nil {
		return nil
	}
	repo, now := h.sessions, h.now()
	return func() tea.Msg {
		ctx := context.Background()
		streak, err := repo.Streak(ctx, now)
		if err != nil {
			return statsLoadedMsg{Err: err}
		}
		recent, err := repo.Recent(ctx, 1)
		if err != nil {
			return statsLoadedMsg{Streak: streak, Err: err}
		}
		doneToday := len(recent) > 0 && sameDay(recent[0].FinishedAt, now)
		return statsLoadedMsg{Streak: streak, DoneToday: doneToday}
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err == nil {
			h.streak = msg.Streak
			h.doneToday = msg.DoneToday
		}
		return h, nil

	case router.ResumedMsg:
		return h, h.loadStats()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) HeaderStats() (layout.HeaderStats, bool) {
	return layout.HeaderStats{Streak: h.streak, SessionsLeft: -1}, true
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("dailytutor"))
	sections = append(sections, theme.Subtitle.Width(width).Render(h.now().Format("02.01.2006")))

	status := "Сегодняшнее занятие ещё впереди"
	if h.doneToday {
		status = "Сегодня ты уже позанимался. Так держать!"
	}
	stats := fmt.Sprintf("★ Серия: %d дн.   %s", h.streak, status)
	sections = append(sections, lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Accent).
		Render(stats))

	menu := theme.Card.Render(strings.TrimRight(h.menu.View(), "\n"))
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))

	if h.mode != "" {
		sections = append(sections, theme.Subtitle.Width(width).Render("режим: "+h.mode))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Главная"
}
