package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/dailytutor/internal/asker"
	"github.com/abhisek/dailytutor/internal/lesson"
	"github.com/abhisek/dailytutor/internal/quota"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/topic"
	"github.com/abhisek/dailytutor/internal/tutorapi"
	"github.com/abhisek/dailytutor/internal/verdict"
)

// --- fakes ---

type reply struct {
	text      string
	err       error
	remaining *int
}

type call struct {
	purpose string
	req     tutorapi.AskRequest
}

type fakeRequester struct {
	mu      sync.Mutex
	replies map[string][]reply
	calls   []call
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{replies: map[string][]reply{}}
}

func (f *fakeRequester) script(purpose string, rs ...reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[purpose] = append(f.replies[purpose], rs...)
}

func (f *fakeRequester) next(purpose string, req tutorapi.AskRequest) (asker.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{purpose: purpose, req: req})
	q := f.replies[purpose]
	if len(q) == 0 {
		return asker.Result{Text: purpose + " text", Attempts: 1}, nil
	}
	r := q[0]
	f.replies[purpose] = q[1:]
	if r.err != nil {
		return asker.Result{Attempts: 1}, r.err
	}
	return asker.Result{Text: r.text, Remaining: r.remaining, Attempts: 1}, nil
}

func (f *fakeRequester) Ask(_ context.Context, purpose string, req tutorapi.AskRequest) (asker.Result, error) {
	return f.next(purpose, req)
}

func (f *fakeRequester) Verify(_ context.Context, purpose string, req tutorapi.AskRequest) (asker.Result, error) {
	return f.next(purpose, req)
}

func (f *fakeRequester) callsFor(purpose string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.purpose == purpose {
			out = append(out, c)
		}
	}
	return out
}

type fakeLimits struct {
	mu       sync.Mutex
	limits   tutorapi.Limits
	err      error
	consumed int
}

func (f *fakeLimits) Limits(context.Context) (*tutorapi.Limits, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	l := f.limits
	return &l, nil
}

func (f *fakeLimits) UseSession(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumed++
	f.limits.SessionsUsed++
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// --- harness ---

type harness struct {
	e     *Engine
	req   *fakeRequester
	src   *fakeLimits
	store *store.Store
	clock *clock
}

func testTimings() Timings {
	return Timings{
		Reveal:           time.Millisecond,
		LoaderRotation:   time.Hour,
		Elapsed:          time.Hour,
		CorrectAnimation: time.Millisecond,
		PaywallDelay:     time.Millisecond,
	}
}

func newHarness(t *testing.T, limits tutorapi.Limits) *harness {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cat, err := topic.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	h := &harness{
		req:   newFakeRequester(),
		src:   &fakeLimits{limits: limits},
		store: st,
		clock: &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)},
	}
	h.e = New(Deps{
		Requester: h.req,
		Gate:      quota.NewGate(h.src),
		Catalog:   cat,
		Counter:   st.CounterRepo(),
		Profile:   st.ProfileRepo(),
		Sessions:  st.SessionRepo(),
		Now:       h.clock.Now,
	}, testTimings())
	return h
}

func freeDay() tutorapi.Limits {
	return tutorapi.Limits{SubscriptionType: "free", SessionsMax: 1}
}

// settle bounds how long drive waits for a single command. Timers scheduled
// with longer intervals are abandoned.
const settle = 50 * time.Millisecond

// drive runs cmd and every command it leads to, feeding produced messages
// back into the engine until nothing is left. It returns the paywall
// messages that surfaced.
func (h *harness) drive(t *testing.T, cmd tea.Cmd) []PaywallMsg {
	t.Helper()
	var paywalls []PaywallMsg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 10_000 {
			t.Fatal("command queue never settled")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok || msg == nil {
			continue
		}
		switch m := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		case PaywallMsg:
			paywalls = append(paywalls, m)
		}
		queue = append(queue, h.e.Update(msg))
	}
	return paywalls
}

func runCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case m := <-ch:
		return m, true
	case <-time.After(settle):
		return nil, false
	}
}

// start loads limits and starts a session, leaving the first step fully
// revealed.
func (h *harness) start(t *testing.T) {
	t.Helper()
	h.drive(t, h.e.Init())
	if allowed := h.e.SessionAllowed(); allowed == nil || !*allowed {
		t.Fatalf("SessionAllowed() = %v after load, want true", allowed)
	}
	if pw := h.drive(t, h.e.StartSession()); len(pw) != 0 {
		t.Fatalf("unexpected paywall on start: %v", pw)
	}
}

// toTask advances from the first step to the loaded task.
func (h *harness) toTask(t *testing.T) {
	t.Helper()
	for h.e.StepIndex() < lesson.StepCount-1 {
		h.drive(t, h.e.GoNext())
	}
	if !h.e.AwaitingAnswer() {
		t.Fatalf("expected to await an answer, phase %v step %d", h.e.Phase(), h.e.StepIndex())
	}
}

// --- tests ---

func TestEngine_SessionAllowedUnknownUntilLoaded(t *testing.T) {
	h := newHarness(t, freeDay())

	if h.e.SessionAllowed() != nil {
		t.Fatal("SessionAllowed() should be nil before limits load")
	}
	if cmd := h.e.StartSession(); cmd != nil {
		t.Fatal("StartSession() should be a no-op while limits are unknown")
	}
	if h.e.Phase() != PhaseReady {
		t.Fatalf("phase = %v, want ready", h.e.Phase())
	}
}

func TestEngine_StartWaitsForReadyData(t *testing.T) {
	h := newHarness(t, freeDay())
	ctx := context.Background()
	day := h.clock.now

	err := h.store.ProfileRepo().Save(ctx, store.Profile{ExamSubject: "physics"})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	for range 2 {
		if err := h.store.CounterRepo().Increment(ctx, topic.DayKey(day)); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	// Limits arrive before the profile and counter read.
	ready := h.e.loadReady()
	h.drive(t, h.e.loadLimits())

	if h.e.SessionAllowed() != nil {
		t.Fatal("SessionAllowed() should stay nil until the ready data loads")
	}
	if cmd := h.e.StartSession(); cmd != nil || h.e.Phase() != PhaseReady {
		t.Fatalf("start should wait for the ready data, phase %v", h.e.Phase())
	}

	h.drive(t, ready)
	if pw := h.drive(t, h.e.StartSession()); len(pw) != 0 {
		t.Fatalf("unexpected paywall: %v", pw)
	}

	cat, _ := topic.DefaultCatalog()
	want := topic.Select(cat, "physics", day, 2)
	got := h.e.Topic()
	if got.Subject != want.Subject || got.Topic != want.Topic {
		t.Errorf("topic = %s/%s, want %s/%s", got.Subject, got.Topic, want.Subject, want.Topic)
	}
	if n, _ := h.store.CounterRepo().Get(ctx, topic.DayKey(day)); n != 3 {
		t.Errorf("rotation counter = %d, want 3", n)
	}
}

func TestEngine_LimitsFailureKeepsStartDisabled(t *testing.T) {
	h := newHarness(t, freeDay())
	h.src.err = fmt.Errorf("offline")

	h.drive(t, h.e.Init())

	if h.e.SessionAllowed() != nil {
		t.Fatal("SessionAllowed() should stay nil after a failed load")
	}
	if !h.e.LimitsFailed() {
		t.Error("LimitsFailed() = false, want true")
	}
	if pw := h.drive(t, h.e.StartSession()); len(pw) != 0 || h.e.Phase() != PhaseReady {
		t.Fatalf("start should be ignored, got phase %v paywalls %v", h.e.Phase(), pw)
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	h := newHarness(t, freeDay())
	remaining := 7
	h.req.script(PurposeStep,
		reply{text: "Сила равна массе, умноженной на ускорение."},
		reply{text: "Тело массой 2 кг с ускорением 3 м/с²: F = 6 Н."},
		reply{text: "Найди силу для m = 4 кг, a = 2 м/с²."},
	)
	h.req.script(PurposeVerify, reply{text: "Правильно! F = 8 Н.", remaining: &remaining})

	h.start(t)
	if h.e.Phase() != PhaseRunning || h.e.StepIndex() != 0 {
		t.Fatalf("after start: phase %v step %d", h.e.Phase(), h.e.StepIndex())
	}
	if got := h.e.StepText(); got != "Сила равна массе, умноженной на ускорение." {
		t.Fatalf("StepText() = %q", got)
	}
	if h.e.SessionsLeft() != 0 {
		t.Errorf("SessionsLeft() = %d after start, want 0", h.e.SessionsLeft())
	}

	h.toTask(t)
	if cmd := h.e.GoNext(); cmd != nil {
		t.Fatal("GoNext() on the task step should be refused")
	}

	h.drive(t, h.e.SubmitAnswer("  8 Н  "))
	if h.e.Phase() != PhaseVerifying {
		t.Fatalf("phase = %v, want verifying", h.e.Phase())
	}
	if h.e.Outcome().Verdict != verdict.Correct {
		t.Fatalf("verdict = %v, want correct", h.e.Outcome().Verdict)
	}
	if !h.e.CanAdvance() {
		t.Fatal("CanAdvance() = false after a correct verdict")
	}
	if n, ok := h.e.QuestionsLeft(); !ok || n != 7 {
		t.Errorf("QuestionsLeft() = %d, %v; want 7, true", n, ok)
	}

	paywalls := h.drive(t, h.e.GoNext())
	if h.e.Phase() != PhaseDone {
		t.Fatalf("phase = %v, want done", h.e.Phase())
	}
	if h.e.Elapsed() < 0 {
		t.Errorf("Elapsed() = %v, want >= 0", h.e.Elapsed())
	}
	if !h.e.Saved() || h.e.Streak() != 1 {
		t.Errorf("saved %v streak %d, want saved with streak 1", h.e.Saved(), h.e.Streak())
	}
	if len(paywalls) != 1 || paywalls[0].Trigger != quota.TriggerAfterSession {
		t.Errorf("paywalls = %v, want one after_session", paywalls)
	}

	// Requests: three steps, then one verification.
	steps := h.req.callsFor(PurposeStep)
	if len(steps) != 3 {
		t.Fatalf("step requests = %d, want 3", len(steps))
	}
	if len(steps[0].req.History) != 0 {
		t.Error("first step should carry no history")
	}
	hist := steps[1].req.History
	if len(hist) != 2 || hist[1].Content != "Сила равна массе, умноженной на ускорение." {
		t.Errorf("second step history = %+v", hist)
	}
	verify := h.req.callsFor(PurposeVerify)
	if len(verify) != 1 || !strings.Contains(verify[0].req.Question, "8 Н") {
		t.Errorf("verify requests = %+v", verify)
	}

	// Side effects: rotation advanced, session consumed, record stored.
	ctx := context.Background()
	if n, _ := h.store.CounterRepo().Get(ctx, topic.DayKey(h.clock.Now())); n != 1 {
		t.Errorf("rotation counter = %d, want 1", n)
	}
	if h.src.consumed != 1 {
		t.Errorf("consumed = %d, want 1", h.src.consumed)
	}
	recent, err := h.store.SessionRepo().Recent(ctx, 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("Recent() = %v, %v", recent, err)
	}
	if !recent[0].Correct || recent[0].SolutionRevealed || recent[0].TopicKey != h.e.Topic().Key() {
		t.Errorf("stored record = %+v", recent[0])
	}
}

func TestEngine_StartBlockedWhenSessionsUsed(t *testing.T) {
	limits := freeDay()
	limits.SessionsUsed = 1
	h := newHarness(t, limits)
	h.drive(t, h.e.Init())

	paywalls := h.drive(t, h.e.StartSession())

	if len(paywalls) != 1 || paywalls[0].Trigger != quota.TriggerSessionLimit {
		t.Fatalf("paywalls = %v, want session_limit", paywalls)
	}
	if h.e.Phase() != PhaseReady {
		t.Errorf("phase = %v, want ready", h.e.Phase())
	}
	if len(h.req.calls) != 0 {
		t.Errorf("made %d requests, want none", len(h.req.calls))
	}
}

func TestEngine_IncorrectThenRetry(t *testing.T) {
	h := newHarness(t, freeDay())
	h.req.script(PurposeVerify,
		reply{text: "Неверно! Проверь единицы."},
		reply{text: "Верно! Так и есть."},
	)
	h.start(t)
	h.toTask(t)

	h.drive(t, h.e.SubmitAnswer("6"))
	if h.e.Outcome().Verdict != verdict.Incorrect {
		t.Fatalf("verdict = %v, want incorrect", h.e.Outcome().Verdict)
	}
	if !h.e.AwaitingChoice() {
		t.Fatal("expected a retry/solution choice")
	}
	if cmd := h.e.GoNext(); cmd != nil || h.e.Phase() != PhaseVerifying {
		t.Fatal("GoNext() must not advance after an incorrect verdict")
	}

	h.drive(t, h.e.RetryAnswer())
	if h.e.Phase() != PhaseRunning || !h.e.AwaitingAnswer() {
		t.Fatalf("after retry: phase %v awaiting %v", h.e.Phase(), h.e.AwaitingAnswer())
	}
	if h.e.Retries() != 1 {
		t.Errorf("Retries() = %d, want 1", h.e.Retries())
	}
	if h.e.StepText() != h.e.TaskText() {
		t.Error("task text should be shown in full after a retry")
	}

	h.drive(t, h.e.SubmitAnswer("8"))
	if !h.e.CanAdvance() {
		t.Fatal("expected to advance after the corrected answer")
	}
	h.drive(t, h.e.GoNext())
	if h.e.Phase() != PhaseDone {
		t.Fatalf("phase = %v, want done", h.e.Phase())
	}
}

func TestEngine_RevealSolution(t *testing.T) {
	h := newHarness(t, freeDay())
	h.req.script(PurposeVerify, reply{text: "К сожалению, неверно."})
	h.req.script(PurposeSolution, reply{text: "Решение: F = 4 · 2 = 8 Н."})
	h.start(t)
	h.toTask(t)
	h.drive(t, h.e.SubmitAnswer("5"))

	h.drive(t, h.e.RevealSolution())

	if got := h.e.SolutionText(); got != "Решение: F = 4 · 2 = 8 Н." {
		t.Fatalf("SolutionText() = %q", got)
	}
	if !h.e.CanAdvance() || !h.e.SolutionRevealed() {
		t.Fatal("expected to advance after the solution")
	}
	if cmd := h.e.RevealSolution(); cmd != nil {
		t.Error("second RevealSolution() should be ignored")
	}

	paywalls := h.drive(t, h.e.GoNext())
	if h.e.Phase() != PhaseDone {
		t.Fatalf("phase = %v, want done", h.e.Phase())
	}
	if len(paywalls) != 0 {
		t.Errorf("paywalls = %v, want none after a revealed solution", paywalls)
	}
	recent, _ := h.store.SessionRepo().Recent(context.Background(), 1)
	if len(recent) != 1 || !recent[0].SolutionRevealed || recent[0].Correct {
		t.Errorf("stored record = %+v", recent)
	}
}

func TestEngine_QuotaExceededReturnsToReady(t *testing.T) {
	h := newHarness(t, freeDay())
	h.req.script(PurposeStep,
		reply{text: "Объяснение."},
		reply{err: fmt.Errorf("%w: out of questions", asker.ErrQuotaExceeded)},
	)
	h.start(t)

	paywalls := h.drive(t, h.e.GoNext())

	if len(paywalls) != 1 || paywalls[0].Trigger != quota.TriggerAILimit {
		t.Fatalf("paywalls = %v, want ai_limit", paywalls)
	}
	if h.e.Phase() != PhaseReady {
		t.Fatalf("phase = %v, want ready", h.e.Phase())
	}
	if h.e.Loading() {
		t.Error("loader should be stopped")
	}
	if h.e.SessionAllowed() == nil {
		t.Error("limits should be reloaded on return to ready")
	}
}

func TestEngine_GoNextSkipsRevealFirst(t *testing.T) {
	h := newHarness(t, freeDay())
	h.drive(t, h.e.Init())
	h.e.StartSession()

	// Deliver the first step without running reveal ticks.
	h.e.Update(stepLoadedMsg{gen: h.e.gen, step: 0, res: asker.Result{Text: "Длинное объяснение темы."}})
	if !h.e.Revealing() {
		t.Fatal("expected the step text to be revealing")
	}

	h.drive(t, h.e.GoNext())
	if h.e.Revealing() || h.e.StepIndex() != 0 {
		t.Fatalf("first GoNext should only skip: revealing %v step %d", h.e.Revealing(), h.e.StepIndex())
	}
	if h.e.StepText() != "Длинное объяснение темы." {
		t.Errorf("StepText() = %q after skip", h.e.StepText())
	}

	h.drive(t, h.e.GoNext())
	if h.e.StepIndex() != 1 {
		t.Errorf("second GoNext should advance, step %d", h.e.StepIndex())
	}
}

func TestEngine_GoNextBeforeContentIgnored(t *testing.T) {
	h := newHarness(t, freeDay())
	h.drive(t, h.e.Init())
	h.e.StartSession()

	if cmd := h.e.GoNext(); cmd != nil || h.e.StepIndex() != 0 {
		t.Fatal("GoNext() before content arrives should be ignored")
	}
	if !h.e.Loading() || h.e.LoaderPhrase() == "" {
		t.Error("expected a loader phrase while the step loads")
	}
}

func TestEngine_BlankAnswerIgnored(t *testing.T) {
	h := newHarness(t, freeDay())
	h.start(t)
	h.toTask(t)

	if cmd := h.e.SubmitAnswer("   "); cmd != nil {
		t.Fatal("blank answer should be ignored")
	}
	if h.e.Phase() != PhaseRunning {
		t.Errorf("phase = %v, want running", h.e.Phase())
	}
}

func TestEngine_LoaderRotation(t *testing.T) {
	h := newHarness(t, freeDay())
	h.drive(t, h.e.Init())
	h.e.StartSession()

	first := h.e.LoaderPhrase()
	tag := h.e.loaderTag
	if cmd := h.e.Update(loaderTickMsg{gen: h.e.gen, tag: tag}); cmd == nil {
		t.Fatal("loader tick should schedule the next one")
	}
	if h.e.LoaderPhrase() == first {
		t.Error("loader phrase did not rotate")
	}

	if cmd := h.e.Update(loaderTickMsg{gen: h.e.gen, tag: tag - 1}); cmd != nil {
		t.Error("tick with a stale tag should be ignored")
	}

	h.e.Update(stepLoadedMsg{gen: h.e.gen, step: 0, res: asker.Result{Text: "x"}})
	if h.e.Loading() {
		t.Error("loader should stop when the step arrives")
	}
	if cmd := h.e.Update(loaderTickMsg{gen: h.e.gen, tag: tag}); cmd != nil {
		t.Error("tick after stop should be ignored")
	}
}

func TestEngine_ElapsedTick(t *testing.T) {
	h := newHarness(t, freeDay())
	h.drive(t, h.e.Init())
	h.e.StartSession()

	at := h.e.startedAt.Add(42 * time.Second)
	if cmd := h.e.Update(elapsedTickMsg{gen: h.e.gen, tag: h.e.elapsedTag, time: at}); cmd == nil {
		t.Fatal("elapsed tick should reschedule")
	}
	if h.e.Elapsed() != 42*time.Second {
		t.Errorf("Elapsed() = %v, want 42s", h.e.Elapsed())
	}
}

func TestEngine_CorrectAnimationNotReentrant(t *testing.T) {
	h := newHarness(t, freeDay())
	h.start(t)
	h.toTask(t)
	h.req.script(PurposeVerify, reply{text: "Правильно!"})
	h.drive(t, h.e.SubmitAnswer("8"))

	cmd := h.e.GoNext()
	if h.e.Phase() != PhaseCorrectAnimation {
		t.Fatalf("phase = %v, want correct-animation", h.e.Phase())
	}
	tag := h.e.animTag
	if again := h.e.GoNext(); again != nil || h.e.animTag != tag {
		t.Fatal("GoNext() during the animation should be ignored")
	}
	h.drive(t, cmd)
	if h.e.Phase() != PhaseDone {
		t.Fatalf("phase = %v, want done", h.e.Phase())
	}
}

func TestEngine_TeardownDropsLateMessages(t *testing.T) {
	h := newHarness(t, freeDay())
	h.drive(t, h.e.Init())
	h.e.StartSession()
	gen := h.e.gen

	h.e.Teardown()

	msgs := []tea.Msg{
		stepLoadedMsg{gen: gen, step: 0, res: asker.Result{Text: "late"}},
		loaderTickMsg{gen: gen, tag: h.e.loaderTag},
		elapsedTickMsg{gen: gen, tag: h.e.elapsedTag, time: time.Now()},
	}
	for _, m := range msgs {
		if cmd := h.e.Update(m); cmd != nil {
			t.Errorf("Update(%T) after teardown returned a command", m)
		}
	}
	if h.e.StepLoaded() {
		t.Error("late step response was applied")
	}
	if h.e.GoNext() != nil || h.e.StartSession() != nil || h.e.Init() != nil {
		t.Error("operations after teardown should be no-ops")
	}
}

func TestEngine_StaleGenerationDropped(t *testing.T) {
	h := newHarness(t, freeDay())
	h.drive(t, h.e.Init())
	h.e.StartSession()

	h.e.Update(stepLoadedMsg{gen: h.e.gen - 1, step: 0, res: asker.Result{Text: "old"}})
	if h.e.StepLoaded() {
		t.Fatal("response from an older generation was applied")
	}
}

func TestEngine_AnotherSession(t *testing.T) {
	t.Run("premium returns to ready with a new topic", func(t *testing.T) {
		h := newHarness(t, tutorapi.Limits{SubscriptionType: "premium", SessionsMax: 1})
		h.start(t)
		first := h.e.Topic()
		h.toTask(t)
		h.req.script(PurposeVerify, reply{text: "Правильно!"})
		h.drive(t, h.e.SubmitAnswer("8"))
		if pw := h.drive(t, h.e.GoNext()); len(pw) != 0 {
			t.Fatalf("premium learner got paywalls %v", pw)
		}

		h.drive(t, h.e.AnotherSession())

		if h.e.Phase() != PhaseReady {
			t.Fatalf("phase = %v, want ready", h.e.Phase())
		}
		if allowed := h.e.SessionAllowed(); allowed == nil || !*allowed {
			t.Fatalf("SessionAllowed() = %v, want true", allowed)
		}
		if h.e.Preview().Key() == first.Key() && first.TotalInCatalog > 1 {
			t.Errorf("preview %q did not rotate", h.e.Preview().Key())
		}
	})

	t.Run("free learner out of sessions gets the paywall", func(t *testing.T) {
		h := newHarness(t, freeDay())
		h.start(t)
		h.toTask(t)
		h.req.script(PurposeVerify, reply{text: "Правильно!"})
		h.drive(t, h.e.SubmitAnswer("8"))
		h.drive(t, h.e.GoNext())

		paywalls := h.drive(t, h.e.AnotherSession())

		if len(paywalls) != 1 || paywalls[0].Trigger != quota.TriggerSessionLimit {
			t.Fatalf("paywalls = %v, want session_limit", paywalls)
		}
		if h.e.Phase() != PhaseDone {
			t.Errorf("phase = %v, want done", h.e.Phase())
		}
	})
}

func TestEngine_DaysToExam(t *testing.T) {
	h := newHarness(t, freeDay())
	if _, ok := h.e.DaysToExam(); ok {
		t.Fatal("no exam date should report false")
	}
	exam := time.Date(2026, 3, 20, 0, 0, 0, 0, time.Local)
	if err := h.store.ProfileRepo().Save(context.Background(), store.Profile{ExamSubject: "physics", ExamDate: exam}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	h.drive(t, h.e.Init())

	days, ok := h.e.DaysToExam()
	if !ok || days != 10 {
		t.Errorf("DaysToExam() = %d, %v; want 10, true", days, ok)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseCorrectAnimation.String() != "correct-animation" || Phase(99).String() != "unknown" {
		t.Error("unexpected phase names")
	}
}
