package session

import (
	"time"

	"github.com/abhisek/dailytutor/internal/lesson"
	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/abhisek/dailytutor/internal/verdict"
)

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Dead reports whether Teardown was called.
func (e *Engine) Dead() bool { return e.dead }

// Preview is the topic the next session would cover.
func (e *Engine) Preview() topic.Topic { return e.preview }

// Topic is the topic of the current or last session.
func (e *Engine) Topic() topic.Topic { return e.topic }

// LimitsFailed reports that the last limits load failed.
func (e *Engine) LimitsFailed() bool { return e.limitsFailed }

// StepIndex is the zero-based current step.
func (e *Engine) StepIndex() int { return e.step }

// StepKind is the kind of the current step.
func (e *Engine) StepKind() lesson.Kind { return e.steps[e.step].Kind }

// StepLoaded reports whether the current step's text has arrived.
func (e *Engine) StepLoaded() bool { return e.loaded }

// StepText is the current step's text as far as it has been revealed.
func (e *Engine) StepText() string {
	return e.render(targetStep, e.content[e.step])
}

// TaskText is the full task statement, once loaded.
func (e *Engine) TaskText() string { return e.content[lesson.StepCount-1] }

// Revealing reports whether text is still being revealed.
func (e *Engine) Revealing() bool { return e.revealer.Active() }

// Loading reports whether a request is in flight.
func (e *Engine) Loading() bool { return e.loaderActive }

// LoaderPhrase is the phrase shown while a request is in flight.
func (e *Engine) LoaderPhrase() string {
	if !e.loaderActive || len(e.loaderPhrases) == 0 {
		return ""
	}
	return e.loaderPhrases[e.loaderIdx]
}

// Answer is the last submitted answer.
func (e *Engine) Answer() string { return e.answer }

// Outcome is the classification of the last verification.
func (e *Engine) Outcome() verdict.Outcome { return e.outcome }

// FeedbackText is the verification text as far as it has been revealed.
func (e *Engine) FeedbackText() string {
	return e.render(targetFeedback, e.feedback)
}

// SolutionText is the worked solution as far as it has been revealed.
func (e *Engine) SolutionText() string {
	return e.render(targetSolution, e.solution)
}

// SolutionRevealed reports whether the learner asked for the solution.
func (e *Engine) SolutionRevealed() bool { return e.solutionRevealed }

// CanAdvance reports whether GoNext will finish the task.
func (e *Engine) CanAdvance() bool { return e.phase == PhaseVerifying && e.canAdvance }

// AwaitingAnswer reports whether SubmitAnswer is accepted.
func (e *Engine) AwaitingAnswer() bool {
	return !e.dead && e.phase == PhaseRunning && e.step == lesson.StepCount-1 && e.loaded
}

// AwaitingChoice reports whether the learner must pick between retrying and
// revealing the solution.
func (e *Engine) AwaitingChoice() bool { return e.awaitingChoice() }

func (e *Engine) awaitingChoice() bool {
	return !e.dead &&
		e.phase == PhaseVerifying &&
		!e.verifying &&
		!e.solutionPending &&
		!e.canAdvance &&
		e.outcome.Verdict != verdict.Correct
}

// Retries counts answers resubmitted after an incorrect verdict.
func (e *Engine) Retries() int { return e.retries }

// Elapsed is the session duration so far, or its final value once Done.
func (e *Engine) Elapsed() time.Duration { return e.elapsed }

// Streak is the day streak computed after the session was saved.
func (e *Engine) Streak() int { return e.streak }

// Saved reports whether the finished session was persisted.
func (e *Engine) Saved() bool { return e.saved }

// SessionsLeft is the optimistic count of sessions left today.
func (e *Engine) SessionsLeft() int { return e.deps.Gate.SessionsLeft() }

// Unlimited reports whether sessions are not capped for this learner.
func (e *Engine) Unlimited() bool { return e.deps.Gate.Unlimited() }

// QuestionsLeft is the last remaining-questions count from the backend.
func (e *Engine) QuestionsLeft() (int, bool) { return e.deps.Gate.QuestionsLeft() }

// DaysToExam returns the whole days until the cached exam date.
func (e *Engine) DaysToExam() (int, bool) {
	if e.profile.ExamDate.IsZero() {
		return 0, false
	}
	return daysBetween(e.deps.Now(), e.profile.ExamDate), true
}

func daysBetween(from, to time.Time) int {
	y, m, d := from.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = to.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func (e *Engine) render(target revealTarget, full string) string {
	if e.revealTarget == target && e.revealer.Active() {
		return e.revealer.View()
	}
	return full
}
