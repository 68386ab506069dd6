package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dailytutor/internal/router"
	"github.com/abhisek/dailytutor/internal/screen"
	"github.com/abhisek/dailytutor/internal/ui/layout"
)

type stubScreen struct {
	title     string
	handleEsc bool
	gotEsc    bool
	closed    bool
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		s.gotEsc = true
	}
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "body of " + s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) HandlesEsc() bool     { return s.handleEsc }
func (s *stubScreen) Close()               { s.closed = true }
func (s *stubScreen) HeaderStats() (layout.HeaderStats, bool) {
	return layout.HeaderStats{Streak: 4, SessionsLeft: 1}, true
}

func modelWith(screens ...*stubScreen) AppModel {
	r := router.New(screens[0])
	for _, s := range screens[1:] {
		r.Push(s)
	}
	return AppModel{router: r}
}

func escKey() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEscape}
}

func TestEscPopsWhenScreenDoesNotHandleIt(t *testing.T) {
	top := &stubScreen{title: "top"}
	m := modelWith(&stubScreen{title: "base"}, top)

	_, cmd := m.Update(escKey())
	if cmd == nil {
		t.Fatal("expected a pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if top.gotEsc {
		t.Error("esc should not reach the screen")
	}
}

func TestEscForwardedToHandlingScreen(t *testing.T) {
	top := &stubScreen{title: "top", handleEsc: true}
	m := modelWith(&stubScreen{title: "base"}, top)

	m.Update(escKey())
	if !top.gotEsc {
		t.Error("esc should reach a screen that handles it")
	}
}

func TestCtrlCClosesScreens(t *testing.T) {
	base, top := &stubScreen{title: "base"}, &stubScreen{title: "top"}
	m := modelWith(base, top)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !base.closed || !top.closed {
		t.Error("all screens should be closed on quit")
	}
}

func TestViewShowsHeaderStats(t *testing.T) {
	m := modelWith(&stubScreen{title: "Занятие"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	content := updated.(AppModel).render()
	if !strings.Contains(content, "body of Занятие") {
		t.Error("screen body missing")
	}
	if !strings.Contains(content, "★ 4") {
		t.Error("streak missing from the header")
	}
}
