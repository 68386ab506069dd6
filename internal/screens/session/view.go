package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/dailytutor/internal/quota"
	sess "github.com/abhisek/dailytutor/internal/session"
	"github.com/abhisek/dailytutor/internal/ui/components"
	"github.com/abhisek/dailytutor/internal/ui/layout"
	"github.com/abhisek/dailytutor/internal/ui/theme"
	"github.com/abhisek/dailytutor/internal/verdict"
)

func (s *SessionScreen) View(width, height int) string {
	if s.showingQuitConfirm {
		return renderQuitConfirm(width)
	}

	var body string
	switch s.engine.Phase() {
	case sess.PhaseReady:
		body = s.renderReady(width)
	case sess.PhaseRunning:
		body = s.renderStep(width)
	case sess.PhaseVerifying:
		body = s.renderVerifying(width)
	case sess.PhaseCorrectAnimation:
		body = s.renderCorrect(width, height)
	case sess.PhaseDone:
		body = s.renderDone(width)
	}

	if s.paywall != "" {
		body = renderPaywall(s.paywall, width) + "\n\n" + body
	}
	return body
}

func centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

func (s *SessionScreen) renderReady(width int) string {
	e := s.engine
	t := e.Preview()

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centered(width, theme.Subtitle, "Тема на сегодня"))
	b.WriteString("\n\n")
	b.WriteString(centered(width, theme.Title, t.Topic))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.Subtitle, fmt.Sprintf("%s · %d из %d", t.Subject, t.Ordinal, t.TotalInCatalog)))
	b.WriteString("\n\n")

	if days, ok := e.DaysToExam(); ok {
		var line string
		switch {
		case days > 0:
			line = fmt.Sprintf("До экзамена %d дн.", days)
		case days == 0:
			line = "Экзамен сегодня. Удачи!"
		default:
			line = "Экзамен уже прошёл"
		}
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Accent), line))
		b.WriteString("\n\n")
	}

	allowed := e.SessionAllowed()
	switch {
	case allowed == nil && e.LimitsFailed():
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			"Не удалось проверить лимиты. Вернись в меню и попробуй снова."))
	case allowed == nil:
		b.WriteString(centered(width, theme.Hint, "Проверяем доступные занятия…"))
	case e.Unlimited():
		b.WriteString(centered(width, theme.Hint, "Занятия без ограничений"))
		b.WriteString("\n\n")
		b.WriteString(centered(width, lipgloss.NewStyle(), components.Button{Key: "Enter", Label: "Начать", Active: true}.View()))
	case *allowed:
		b.WriteString(centered(width, theme.Hint, fmt.Sprintf("Осталось занятий сегодня: %d", e.SessionsLeft())))
		b.WriteString("\n\n")
		b.WriteString(centered(width, lipgloss.NewStyle(), components.Button{Key: "Enter", Label: "Начать", Active: true}.View()))
	default:
		b.WriteString(centered(width, theme.Hint, "На сегодня занятия закончились"))
	}
	return b.String()
}

func (s *SessionScreen) sessionHeader(width int) string {
	e := s.engine
	indicator := components.NewStepIndicator(stepLabels(), e.StepIndex())
	if e.Phase() != sess.PhaseRunning {
		indicator.Current = len(indicator.Labels)
	}

	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  " + e.Topic().Topic)
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(formatElapsed(e.Elapsed()))
	if n, ok := e.QuestionsLeft(); ok {
		right = lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("вопросов: %d  ", n)) + right
	}
	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 2; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteString("\n")
	b.WriteString("  " + indicator.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-2, 0))))
	b.WriteString("\n\n")
	return b.String()
}

func (s *SessionScreen) renderStep(width int) string {
	e := s.engine
	rw := layout.ReadingWidth(width)

	var b strings.Builder
	b.WriteString(s.sessionHeader(width))

	if !e.StepLoaded() {
		b.WriteString(indent(theme.Loader.Render(e.LoaderPhrase())))
		return b.String()
	}

	b.WriteString(indent(theme.Body.Render(layout.Wrap(e.StepText(), rw))))
	b.WriteString("\n\n")

	if e.AwaitingAnswer() && !e.Revealing() {
		if e.Retries() > 0 {
			b.WriteString(indent(theme.Hint.Render("Попробуй ещё раз:")))
			b.WriteString("\n")
		}
		b.WriteString(indent(s.input.View()))
	}
	return b.String()
}

func (s *SessionScreen) renderVerifying(width int) string {
	e := s.engine
	rw := layout.ReadingWidth(width)

	var b strings.Builder
	b.WriteString(s.sessionHeader(width))

	b.WriteString(indent(theme.Hint.Render(layout.Wrap(e.TaskText(), rw))))
	b.WriteString("\n\n")
	b.WriteString(indent(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Твой ответ: ") +
		theme.Body.Render(e.Answer())))
	b.WriteString("\n\n")

	if feedback := e.FeedbackText(); feedback != "" {
		label := theme.Incorrect.Render("✗ Есть ошибка")
		if e.Outcome().Verdict == verdict.Correct {
			label = theme.Correct.Render("✓ Верно")
		}
		b.WriteString(indent(label))
		b.WriteString("\n")
		b.WriteString(indent(theme.Body.Render(layout.Wrap(feedback, rw))))
		b.WriteString("\n\n")
	}

	if solution := e.SolutionText(); solution != "" {
		b.WriteString(indent(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("Решение")))
		b.WriteString("\n")
		b.WriteString(indent(theme.Body.Render(layout.Wrap(solution, rw))))
		b.WriteString("\n\n")
	}

	switch {
	case e.Loading():
		b.WriteString(indent(theme.Loader.Render(e.LoaderPhrase())))
	case e.Revealing():
	case e.AwaitingChoice():
		b.WriteString(indent(components.ButtonRow(
			components.Button{Key: "R", Label: "Ответить ещё раз", Active: true},
			components.Button{Key: "S", Label: "Показать решение"},
		)))
	case e.CanAdvance():
		b.WriteString(indent(components.Button{Key: "Enter", Label: "Завершить занятие", Active: true}.View()))
	}
	return b.String()
}

func (s *SessionScreen) renderCorrect(width, height int) string {
	msg := "✓ Задание решено!"
	if s.engine.SolutionRevealed() {
		msg = "✓ Разобрались!"
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Correct.Render(msg))
}

func (s *SessionScreen) renderDone(width int) string {
	e := s.engine

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centered(width, theme.Title, "Занятие завершено"))
	b.WriteString("\n")
	b.WriteString(centered(width, theme.Subtitle, e.Topic().Topic))
	b.WriteString("\n\n")

	rows := []string{
		fmt.Sprintf("Время:          %s", formatElapsed(e.Elapsed())),
		fmt.Sprintf("Серия:          %d дн.", e.Streak()),
		fmt.Sprintf("Попыток ответа: %d", e.Retries()+1),
	}
	switch {
	case e.Unlimited():
		rows = append(rows, "Занятия:        без ограничений")
	default:
		rows = append(rows, fmt.Sprintf("Занятий осталось: %d", e.SessionsLeft()))
	}
	if n, ok := e.QuestionsLeft(); ok {
		rows = append(rows, fmt.Sprintf("Вопросов к ИИ:  %d", n))
	}

	card := theme.Card.Render(strings.Join(rows, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
	return b.String()
}

var paywallText = map[quota.Trigger]string{
	quota.TriggerSessionLimit: "Бесплатное занятие на сегодня уже пройдено.\nС подпиской можно заниматься без ограничений.",
	quota.TriggerAILimit:      "На сегодня закончились вопросы к ИИ.\nЗавтра лимит обновится, а с подпиской он больше.",
	quota.TriggerAfterSession: "Отличная работа!\nС подпиской можно разбирать несколько тем в день.",
}

func renderPaywall(trigger quota.Trigger, width int) string {
	text, ok := paywallText[trigger]
	if !ok {
		text = "Доступно по подписке."
	}
	box := theme.Paywall.Render(text + "\n\n" + theme.Hint.Render("Enter — понятно"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Прервать занятие?"))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Незавершённое занятие не попадёт в историю."))
	b.WriteString("\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Error), "[Y] Да, выйти"))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] Нет, продолжить"))
	return b.String()
}

func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
