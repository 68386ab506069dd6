package session

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dailytutor/internal/lesson"
	"github.com/abhisek/dailytutor/internal/quota"
	"github.com/abhisek/dailytutor/internal/router"
	"github.com/abhisek/dailytutor/internal/screen"
	sess "github.com/abhisek/dailytutor/internal/session"
	"github.com/abhisek/dailytutor/internal/ui/components"
	"github.com/abhisek/dailytutor/internal/ui/layout"
)

const answerCharLimit = 500

// SessionScreen hosts one tutoring session engine.
type SessionScreen struct {
	engine *sess.Engine
	input  components.TextInput

	// paywall is the last paywall trigger raised, shown until dismissed.
	paywall quota.Trigger

	showingQuitConfirm bool
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.Closer          = (*SessionScreen)(nil)
	_ screen.EscHandler      = (*SessionScreen)(nil)
	_ screen.StatsProvider   = (*SessionScreen)(nil)
)

// New creates a session screen around engine.
func New(engine *sess.Engine) *SessionScreen {
	return &SessionScreen{
		engine: engine,
		input:  components.NewTextInput("Твой ответ", answerCharLimit, 60),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.engine.Init(), s.input.Init())
}

func (s *SessionScreen) Title() string {
	return "Занятие"
}

// Close tears the engine down when the screen leaves the stack.
func (s *SessionScreen) Close() {
	s.engine.Teardown()
}

// HandlesEsc keeps Esc inside the screen while a session is in progress so
// it can ask for confirmation.
func (s *SessionScreen) HandlesEsc() bool {
	return s.inProgress() || s.paywall != ""
}

func (s *SessionScreen) HeaderStats() (layout.HeaderStats, bool) {
	if s.engine.SessionAllowed() == nil {
		return layout.HeaderStats{Streak: s.engine.Streak(), SessionsLeft: -1}, true
	}
	return layout.HeaderStats{
		Streak:       s.engine.Streak(),
		SessionsLeft: s.engine.SessionsLeft(),
		Unlimited:    s.engine.Unlimited(),
	}, true
}

func (s *SessionScreen) inProgress() bool {
	switch s.engine.Phase() {
	case sess.PhaseRunning, sess.PhaseVerifying, sess.PhaseCorrectAnimation:
		return true
	}
	return false
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Завершить"},
			{Key: "N", Description: "Продолжить"},
		}
	}
	if s.paywall != "" {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Понятно"},
		}
	}

	e := s.engine
	switch e.Phase() {
	case sess.PhaseReady:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Начать"},
			{Key: "Esc", Description: "Назад"},
		}
	case sess.PhaseRunning:
		if e.AwaitingAnswer() && !e.Revealing() {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Отправить ответ"},
				{Key: "Esc", Description: "Выйти"},
			}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Дальше"},
			{Key: "Esc", Description: "Выйти"},
		}
	case sess.PhaseVerifying:
		if e.AwaitingChoice() && !e.Revealing() {
			return []layout.KeyHint{
				{Key: "R", Description: "Ответить ещё раз"},
				{Key: "S", Description: "Показать решение"},
				{Key: "Esc", Description: "Выйти"},
			}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Дальше"},
			{Key: "Esc", Description: "Выйти"},
		}
	case sess.PhaseDone:
		return []layout.KeyHint{
			{Key: "N", Description: "Ещё занятие"},
			{Key: "Esc", Description: "В меню"},
		}
	}
	return nil
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sess.PaywallMsg:
		s.paywall = msg.Trigger
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	cmd := s.engine.Update(msg)
	if s.engine.AwaitingAnswer() {
		var icmd tea.Cmd
		s.input, icmd = s.input.Update(msg)
		cmd = tea.Batch(cmd, icmd)
	}
	return s, cmd
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y", "н", "Н":
			s.showingQuitConfirm = false
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "т", "Т", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	// The paywall notice swallows the first key.
	if s.paywall != "" {
		switch key {
		case "enter", "esc", " ", "space":
			s.paywall = ""
		}
		return s, nil
	}

	if key == "esc" {
		if s.inProgress() {
			s.showingQuitConfirm = true
			return s, nil
		}
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	e := s.engine
	switch e.Phase() {
	case sess.PhaseReady:
		if key == "enter" {
			return s, e.StartSession()
		}

	case sess.PhaseRunning:
		if e.AwaitingAnswer() {
			return s.handleAnswerKey(msg)
		}
		switch key {
		case "enter", " ", "space", "right":
			return s, e.GoNext()
		}

	case sess.PhaseVerifying:
		switch key {
		case "enter", " ", "space", "right":
			return s, e.GoNext()
		case "r", "R", "к", "К":
			if e.AwaitingChoice() && !e.Revealing() {
				return s, tea.Batch(e.RetryAnswer(), s.input.Reset())
			}
		case "s", "S", "ы", "Ы":
			if e.AwaitingChoice() && !e.Revealing() {
				return s, e.RevealSolution()
			}
		}

	case sess.PhaseDone:
		switch key {
		case "n", "N", "т", "Т", "enter":
			return s, tea.Batch(e.AnotherSession(), s.input.Reset())
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// handleAnswerKey feeds the answer input. Enter first finishes revealing the
// task, then submits.
func (s *SessionScreen) handleAnswerKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	e := s.engine
	if msg.String() != "enter" {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	if e.Revealing() {
		return s, e.SkipReveal()
	}
	if s.input.Blank() {
		return s, nil
	}
	return s, e.SubmitAnswer(s.input.Value())
}

// stepLabels names the lesson steps for the indicator.
func stepLabels() []string {
	labels := make([]string, lesson.StepCount)
	for i := range labels {
		labels[i] = lesson.Kind(i).String()
	}
	return labels
}
