// Package session drives one tutoring session from the ready screen through
// the three lesson steps, answer verification and the summary.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/dailytutor/internal/asker"
	"github.com/abhisek/dailytutor/internal/lesson"
	"github.com/abhisek/dailytutor/internal/quota"
	"github.com/abhisek/dailytutor/internal/reveal"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/abhisek/dailytutor/internal/tutorapi"
	"github.com/abhisek/dailytutor/internal/verdict"
)

// Request purposes recorded with every backend call.
const (
	PurposeStep     = "step"
	PurposeVerify   = "verify"
	PurposeSolution = "solution"
)

// Requester sends tutoring requests. *asker.Client satisfies it.
type Requester interface {
	Ask(ctx context.Context, purpose string, req tutorapi.AskRequest) (asker.Result, error)
	Verify(ctx context.Context, purpose string, req tutorapi.AskRequest) (asker.Result, error)
}

// ProfileSource reads the cached learner profile.
type ProfileSource interface {
	Get(ctx context.Context) (store.Profile, error)
}

// Timings holds every delay the engine schedules.
type Timings struct {
	Reveal           time.Duration
	LoaderRotation   time.Duration
	Elapsed          time.Duration
	CorrectAnimation time.Duration
	PaywallDelay     time.Duration
}

// DefaultTimings returns the production timings.
func DefaultTimings() Timings {
	return Timings{
		Reveal:           reveal.DefaultInterval,
		LoaderRotation:   1800 * time.Millisecond,
		Elapsed:          time.Second,
		CorrectAnimation: 950 * time.Millisecond,
		PaywallDelay:     2 * time.Second,
	}
}

// Deps are the engine's collaborators. Requester, Gate and Catalog are
// required; the rest may be nil.
type Deps struct {
	Requester  Requester
	Gate       *quota.Gate
	Catalog    *topic.Catalog
	Counter    topic.DailyCounter
	Profile    ProfileSource
	Sessions   store.SessionRepo
	Classifier *verdict.Classifier
	Now        func() time.Time
}

// Engine is the session state machine. All methods must be called from the
// Bubble Tea event loop.
type Engine struct {
	deps    Deps
	timings Timings

	gen  int
	dead bool

	phase Phase

	// Ready
	readyLoaded  bool
	limitsFailed bool
	profile      store.Profile
	offset       int
	offsetDay    string
	preview      topic.Topic

	// Running and later
	sessionID string
	topic     topic.Topic
	steps     [lesson.StepCount]lesson.Step
	step      int
	content   [lesson.StepCount]string
	loaded    bool
	retries   int

	answer           string
	verifying        bool
	feedback         string
	outcome          verdict.Outcome
	solution         string
	solutionPending  bool
	solutionRevealed bool
	canAdvance       bool

	revealer     reveal.Model
	revealTarget revealTarget

	loaderActive  bool
	loaderTag     int
	loaderPhrases []string
	loaderIdx     int

	elapsedTag int
	startedAt  time.Time
	finishedAt time.Time
	elapsed    time.Duration

	animTag    int
	paywallTag int

	streak int
	saved  bool
}

// New returns an engine in the Ready phase. Call Init to load limits and
// today's topic.
func New(deps Deps, timings Timings) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Classifier == nil {
		deps.Classifier = verdict.New()
	}
	e := &Engine{
		deps:    deps,
		timings: timings,
		phase:   PhaseReady,
	}
	e.revealer = reveal.New(reveal.WithInterval(timings.Reveal))
	e.preview = topic.Select(deps.Catalog, "", deps.Now(), 0)
	return e
}

// Init loads quota limits and the ready-screen data.
func (e *Engine) Init() tea.Cmd {
	if e.dead {
		return nil
	}
	e.deps.Gate.Unset()
	e.limitsFailed = false
	e.readyLoaded = false
	return tea.Batch(e.loadLimits(), e.loadReady())
}

// Teardown stops every timer and marks the engine dead. Later messages are
// ignored.
func (e *Engine) Teardown() {
	e.dead = true
	e.gen++
	e.stopTimers()
}

func (e *Engine) loadLimits() tea.Cmd {
	gen, gate := e.gen, e.deps.Gate
	return func() tea.Msg {
		state, err := gate.Fetch(context.Background())
		return limitsLoadedMsg{gen: gen, state: state, err: err}
	}
}

func (e *Engine) loadReady() tea.Cmd {
	gen, deps := e.gen, e.deps
	return func() tea.Msg {
		ctx := context.Background()
		dayKey := topic.DayKey(deps.Now())
		msg := readyLoadedMsg{gen: gen, dayKey: dayKey}
		if deps.Profile != nil {
			if p, err := deps.Profile.Get(ctx); err == nil {
				msg.profile = p
			}
		}
		if deps.Counter != nil {
			if n, err := deps.Counter.Get(ctx, dayKey); err == nil {
				msg.offset = n
			}
		}
		return msg
	}
}

// SessionAllowed is nil while limits or the ready data load, and after
// loading limits failed.
func (e *Engine) SessionAllowed() *bool {
	if !e.readyLoaded {
		return nil
	}
	return e.deps.Gate.SessionAllowed()
}

// StartSession leaves Ready and enters the first step.
func (e *Engine) StartSession() tea.Cmd {
	// The topic depends on the cached profile and today's rotation counter.
	if e.dead || e.phase != PhaseReady || !e.readyLoaded {
		return nil
	}
	ok, trigger := e.deps.Gate.StartDecision()
	if !ok {
		if trigger == "" {
			return nil
		}
		return paywall(trigger)
	}

	now := e.deps.Now()
	if day := topic.DayKey(now); day != e.offsetDay {
		e.offsetDay, e.offset = day, 0
	}
	e.topic = topic.Select(e.deps.Catalog, e.profile.ExamSubject, now, e.offset)
	e.offset++
	e.deps.Gate.NoteSessionStarted()

	e.gen++
	e.sessionID = uuid.NewString()
	e.steps = lesson.BuildSteps(e.topic)
	e.content = [lesson.StepCount]string{}
	e.retries = 0
	e.answer = ""
	e.feedback = ""
	e.solution = ""
	e.outcome = verdict.Outcome{}
	e.verifying = false
	e.solutionPending = false
	e.solutionRevealed = false
	e.canAdvance = false
	e.streak = 0
	e.saved = false
	e.startedAt = now
	e.finishedAt = time.Time{}
	e.elapsed = 0

	return tea.Batch(
		e.incrementCounter(now),
		e.consumeSession(),
		e.startElapsed(),
		e.enterStep(0),
	)
}

func (e *Engine) incrementCounter(now time.Time) tea.Cmd {
	counter := e.deps.Counter
	if counter == nil {
		return nil
	}
	return func() tea.Msg {
		if err := counter.Increment(context.Background(), topic.DayKey(now)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to advance topic rotation: %v\n", err)
		}
		return nil
	}
}

func (e *Engine) consumeSession() tea.Cmd {
	gate := e.deps.Gate
	return func() tea.Msg {
		if err := gate.ConsumeSession(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to report session start: %v\n", err)
		}
		return nil
	}
}

func (e *Engine) enterStep(i int) tea.Cmd {
	e.phase = PhaseRunning
	e.step = i
	e.loaded = false
	e.revealer = e.revealer.Stop()
	e.revealTarget = targetNone

	req := tutorapi.AskRequest{Question: e.steps[i].Prompt, History: e.history(i)}
	gen, requester := e.gen, e.deps.Requester
	fetch := func() tea.Msg {
		res, err := requester.Ask(context.Background(), PurposeStep, req)
		return stepLoadedMsg{gen: gen, step: i, res: res, err: err}
	}
	return tea.Batch(fetch, e.startLoader(e.steps[i].LoaderPhrases))
}

// history carries the previous step's prompt and answer.
func (e *Engine) history(i int) []tutorapi.Turn {
	if i == 0 {
		return nil
	}
	return []tutorapi.Turn{
		{Role: "user", Content: e.steps[i-1].Prompt},
		{Role: "assistant", Content: e.content[i-1]},
	}
}

// GoNext advances the session. While text is still being revealed it
// finishes the reveal instead.
func (e *Engine) GoNext() tea.Cmd {
	if e.dead {
		return nil
	}
	switch e.phase {
	case PhaseRunning:
		if !e.loaded {
			return nil
		}
		if e.revealer.Active() {
			return e.skipReveal()
		}
		if e.step >= lesson.StepCount-1 {
			return nil
		}
		return e.enterStep(e.step + 1)
	case PhaseVerifying:
		if e.revealer.Active() {
			return e.skipReveal()
		}
		if !e.canAdvance {
			return nil
		}
		e.phase = PhaseCorrectAnimation
		e.animTag++
		gen, tag := e.gen, e.animTag
		return tea.Tick(e.timings.CorrectAnimation, func(time.Time) tea.Msg {
			return animDoneMsg{gen: gen, tag: tag}
		})
	}
	return nil
}

// SkipReveal shows the text being revealed in full.
func (e *Engine) SkipReveal() tea.Cmd {
	if e.dead {
		return nil
	}
	return e.skipReveal()
}

func (e *Engine) skipReveal() tea.Cmd {
	var cmd tea.Cmd
	e.revealer, cmd = e.revealer.Skip()
	return cmd
}

// SubmitAnswer sends the learner's answer to the task for verification.
// Blank answers are ignored.
func (e *Engine) SubmitAnswer(answer string) tea.Cmd {
	if !e.AwaitingAnswer() {
		return nil
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	e.revealer = e.revealer.Stop()
	e.revealTarget = targetNone
	e.phase = PhaseVerifying
	e.answer = answer
	e.verifying = true
	e.feedback = ""
	e.outcome = verdict.Outcome{}
	e.canAdvance = false

	task := e.content[lesson.StepCount-1]
	req := tutorapi.AskRequest{Question: lesson.VerifyPrompt(e.topic, task, answer)}
	gen, requester := e.gen, e.deps.Requester
	verify := func() tea.Msg {
		res, err := requester.Verify(context.Background(), PurposeVerify, req)
		return verifiedMsg{gen: gen, res: res, err: err}
	}
	return tea.Batch(verify, e.startLoader(lesson.VerifyPhrases))
}

// RetryAnswer returns to the task after an incorrect verdict.
func (e *Engine) RetryAnswer() tea.Cmd {
	if !e.awaitingChoice() {
		return nil
	}
	e.revealer = e.revealer.Stop()
	e.revealTarget = targetNone
	e.retries++
	e.phase = PhaseRunning
	e.step = lesson.StepCount - 1
	e.loaded = true
	return nil
}

// RevealSolution requests the worked solution after an incorrect verdict.
func (e *Engine) RevealSolution() tea.Cmd {
	if !e.awaitingChoice() {
		return nil
	}
	e.revealer = e.revealer.Stop()
	e.revealTarget = targetNone
	e.solutionPending = true
	e.solutionRevealed = true

	task := e.content[lesson.StepCount-1]
	req := tutorapi.AskRequest{Question: lesson.SolutionPrompt(e.topic, task)}
	gen, requester := e.gen, e.deps.Requester
	fetch := func() tea.Msg {
		res, err := requester.Ask(context.Background(), PurposeSolution, req)
		return solutionMsg{gen: gen, res: res, err: err}
	}
	return tea.Batch(fetch, e.startLoader(lesson.SolutionPhrases))
}

// AnotherSession leaves Done for a fresh Ready screen when the learner still
// has sessions left.
func (e *Engine) AnotherSession() tea.Cmd {
	if e.dead || e.phase != PhaseDone {
		return nil
	}
	if allowed := e.deps.Gate.SessionAllowed(); allowed != nil && !*allowed {
		return paywall(quota.TriggerSessionLimit)
	}
	e.toReady()
	return e.Init()
}

func (e *Engine) toReady() {
	e.gen++
	e.stopTimers()
	e.phase = PhaseReady
	e.preview = topic.Select(e.deps.Catalog, e.profile.ExamSubject, e.deps.Now(), e.offset)
}

// Update routes a message to the engine. Messages from an older generation
// or arriving after Teardown are dropped.
func (e *Engine) Update(msg tea.Msg) tea.Cmd {
	if e.dead {
		return nil
	}
	switch msg := msg.(type) {
	case reveal.TickMsg:
		var cmd tea.Cmd
		e.revealer, cmd = e.revealer.Update(msg)
		return cmd
	case reveal.DoneMsg:
		return nil
	case limitsLoadedMsg:
		if msg.gen != e.gen {
			return nil
		}
		if msg.err != nil {
			e.limitsFailed = true
			e.deps.Gate.Unset()
			return nil
		}
		e.limitsFailed = false
		e.deps.Gate.Set(msg.state)
	case readyLoadedMsg:
		if msg.gen != e.gen {
			return nil
		}
		e.readyLoaded = true
		e.profile = msg.profile
		// The counter write from a just-started session may not have landed.
		if msg.dayKey == e.offsetDay {
			e.offset = max(e.offset, msg.offset)
		} else {
			e.offsetDay, e.offset = msg.dayKey, msg.offset
		}
		if e.phase == PhaseReady {
			e.preview = topic.Select(e.deps.Catalog, e.profile.ExamSubject, e.deps.Now(), e.offset)
		}
	case stepLoadedMsg:
		return e.handleStepLoaded(msg)
	case verifiedMsg:
		return e.handleVerified(msg)
	case solutionMsg:
		return e.handleSolution(msg)
	case loaderTickMsg:
		if msg.gen != e.gen || msg.tag != e.loaderTag || !e.loaderActive {
			return nil
		}
		if len(e.loaderPhrases) > 0 {
			e.loaderIdx = (e.loaderIdx + 1) % len(e.loaderPhrases)
		}
		return e.loaderTick()
	case elapsedTickMsg:
		if msg.gen != e.gen || msg.tag != e.elapsedTag {
			return nil
		}
		if d := msg.time.Sub(e.startedAt); d > 0 {
			e.elapsed = d
		}
		return e.elapsedTick()
	case animDoneMsg:
		if msg.gen != e.gen || msg.tag != e.animTag || e.phase != PhaseCorrectAnimation {
			return nil
		}
		return e.finish()
	case paywallDueMsg:
		if msg.gen != e.gen || msg.tag != e.paywallTag || e.phase != PhaseDone {
			return nil
		}
		return paywall(quota.TriggerAfterSession)
	case sessionSavedMsg:
		if msg.gen != e.gen {
			return nil
		}
		e.saved = msg.err == nil
		if msg.err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save session: %v\n", msg.err)
			return nil
		}
		e.streak = msg.streak
	}
	return nil
}

func (e *Engine) handleStepLoaded(msg stepLoadedMsg) tea.Cmd {
	if msg.gen != e.gen || e.phase != PhaseRunning || msg.step != e.step || e.loaded {
		return nil
	}
	if errors.Is(msg.err, asker.ErrQuotaExceeded) {
		return e.aiLimit()
	}
	e.stopLoader()
	e.noteRemaining(msg.res)
	if msg.res.Text == "" {
		msg.res.Text = lesson.FallbackText
	}
	e.content[msg.step] = msg.res.Text
	e.loaded = true
	return e.startReveal(targetStep, msg.res.Text)
}

func (e *Engine) handleVerified(msg verifiedMsg) tea.Cmd {
	if msg.gen != e.gen || e.phase != PhaseVerifying || !e.verifying {
		return nil
	}
	if errors.Is(msg.err, asker.ErrQuotaExceeded) {
		return e.aiLimit()
	}
	e.stopLoader()
	e.noteRemaining(msg.res)
	if msg.res.Text == "" {
		msg.res.Text = lesson.FallbackText
	}
	e.verifying = false
	e.feedback = msg.res.Text
	e.outcome = verdict.Outcome{
		Verdict: e.deps.Classifier.Classify(msg.res.Text),
		RawText: msg.res.Text,
	}
	if e.outcome.Verdict == verdict.Correct {
		e.canAdvance = true
	}
	return e.startReveal(targetFeedback, msg.res.Text)
}

func (e *Engine) handleSolution(msg solutionMsg) tea.Cmd {
	if msg.gen != e.gen || e.phase != PhaseVerifying || !e.solutionPending {
		return nil
	}
	if errors.Is(msg.err, asker.ErrQuotaExceeded) {
		return e.aiLimit()
	}
	e.stopLoader()
	e.noteRemaining(msg.res)
	if msg.res.Text == "" {
		msg.res.Text = lesson.FallbackText
	}
	e.solutionPending = false
	e.solution = msg.res.Text
	e.canAdvance = true
	return e.startReveal(targetSolution, msg.res.Text)
}

func (e *Engine) noteRemaining(res asker.Result) {
	if res.Remaining != nil {
		e.deps.Gate.NoteQuestionsLeft(*res.Remaining)
	}
}

// aiLimit abandons the session after the backend refused a request.
func (e *Engine) aiLimit() tea.Cmd {
	e.toReady()
	return tea.Batch(paywall(quota.TriggerAILimit), e.Init())
}

func (e *Engine) finish() tea.Cmd {
	e.phase = PhaseDone
	e.stopTimers()
	e.finishedAt = e.deps.Now()
	e.elapsed = max(e.finishedAt.Sub(e.startedAt), 0)

	cmds := []tea.Cmd{e.save()}
	if e.deps.Gate.ShouldOfferAfterSession(e.solutionRevealed) {
		e.paywallTag++
		gen, tag := e.gen, e.paywallTag
		cmds = append(cmds, tea.Tick(e.timings.PaywallDelay, func(time.Time) tea.Msg {
			return paywallDueMsg{gen: gen, tag: tag}
		}))
	}
	return tea.Batch(cmds...)
}

func (e *Engine) save() tea.Cmd {
	repo := e.deps.Sessions
	if repo == nil {
		return nil
	}
	rec := store.SessionRecord{
		ID:               e.sessionID,
		TopicKey:         e.topic.Key(),
		Subject:          e.topic.Subject,
		StartedAt:        e.startedAt,
		FinishedAt:       e.finishedAt,
		Retries:          e.retries,
		Correct:          e.outcome.Verdict == verdict.Correct,
		SolutionRevealed: e.solutionRevealed,
	}
	gen, now := e.gen, e.finishedAt
	return func() tea.Msg {
		ctx := context.Background()
		if err := repo.RecordSession(ctx, rec); err != nil {
			return sessionSavedMsg{gen: gen, err: err}
		}
		streak, err := repo.Streak(ctx, now)
		return sessionSavedMsg{gen: gen, streak: streak, err: err}
	}
}

func (e *Engine) startReveal(target revealTarget, text string) tea.Cmd {
	var cmd tea.Cmd
	e.revealTarget = target
	e.revealer, cmd = e.revealer.Start(text)
	return cmd
}

func (e *Engine) startLoader(phrases []string) tea.Cmd {
	e.loaderActive = true
	e.loaderTag++
	e.loaderPhrases = phrases
	e.loaderIdx = 0
	return e.loaderTick()
}

func (e *Engine) loaderTick() tea.Cmd {
	gen, tag := e.gen, e.loaderTag
	return tea.Tick(e.timings.LoaderRotation, func(time.Time) tea.Msg {
		return loaderTickMsg{gen: gen, tag: tag}
	})
}

func (e *Engine) stopLoader() {
	e.loaderActive = false
	e.loaderTag++
}

func (e *Engine) startElapsed() tea.Cmd {
	e.elapsedTag++
	return e.elapsedTick()
}

func (e *Engine) elapsedTick() tea.Cmd {
	gen, tag := e.gen, e.elapsedTag
	return tea.Tick(e.timings.Elapsed, func(t time.Time) tea.Msg {
		return elapsedTickMsg{gen: gen, tag: tag, time: t}
	})
}

func (e *Engine) stopTimers() {
	e.stopLoader()
	e.elapsedTag++
	e.animTag++
	e.paywallTag++
	e.revealer = e.revealer.Stop()
}

func paywall(trigger quota.Trigger) tea.Cmd {
	return func() tea.Msg { return PaywallMsg{Trigger: trigger} }
}
