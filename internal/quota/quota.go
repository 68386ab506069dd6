// Package quota decides whether a tutoring session may start and when the
// paywall should be offered.
package quota

import (
	"context"
	"fmt"

	"github.com/abhisek/dailytutor/internal/tutorapi"
)

// Trigger names the reason a paywall is shown.
type Trigger string

const (
	TriggerSessionLimit Trigger = "session_limit"
	TriggerAILimit      Trigger = "ai_limit"
	TriggerAfterSession Trigger = "after_session"
)

// State is the learner's allowance as reported by the backend.
type State struct {
	SessionsAllowedToday int
	SessionsUsedToday    int
	IsPremiumOrTrial     bool
	SubscriptionType     string
}

// Allowed reports whether another session may start today.
func (s State) Allowed() bool {
	return s.IsPremiumOrTrial || s.SessionsUsedToday < s.SessionsAllowedToday
}

// SessionsLeft is the number of sessions still available today.
func (s State) SessionsLeft() int {
	return max(s.SessionsAllowedToday-s.SessionsUsedToday, 0)
}

// FromLimits converts a backend limits reply.
func FromLimits(l tutorapi.Limits) State {
	return State{
		SessionsAllowedToday: l.SessionsMax,
		SessionsUsedToday:    l.SessionsUsed,
		IsPremiumOrTrial:     l.IsPremiumOrTrial(),
		SubscriptionType:     l.SubscriptionType,
	}
}

// Source is the part of the backend the gate talks to.
type Source interface {
	Limits(ctx context.Context) (*tutorapi.Limits, error)
	UseSession(ctx context.Context) error
}

// Gate holds the loaded quota state plus optimistic local bookkeeping.
// It is not safe for concurrent use; the session engine owns it.
type Gate struct {
	src    Source
	state  State
	loaded bool

	// startedLocally counts sessions started since the last load. It only
	// feeds the sessions-left display; the backend stays authoritative.
	startedLocally int

	// questionsLeft is the last remaining-questions value reported by the
	// backend, or -1 when unknown.
	questionsLeft int
}

// NewGate returns a gate with nothing loaded.
func NewGate(src Source) *Gate {
	return &Gate{src: src, questionsLeft: -1}
}

// Fetch reads the current limits from the backend. It does not touch the
// gate; pass the result to Set. Safe to call from a goroutine.
func (g *Gate) Fetch(ctx context.Context) (State, error) {
	l, err := g.src.Limits(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load limits: %w", err)
	}
	return FromLimits(*l), nil
}

// Set installs freshly loaded state and clears local bookkeeping.
func (g *Gate) Set(s State) {
	g.state = s
	g.loaded = true
	g.startedLocally = 0
}

// Unset forgets the loaded state, e.g. while a reload is in flight or after
// it failed.
func (g *Gate) Unset() {
	g.loaded = false
	g.startedLocally = 0
}

// State returns the loaded state and whether one is present.
func (g *Gate) State() (State, bool) {
	return g.state, g.loaded
}

// SessionAllowed is nil until limits are loaded, then reports whether a
// session may start. Sessions started locally since the load count as used.
func (g *Gate) SessionAllowed() *bool {
	if !g.loaded {
		return nil
	}
	s := g.state
	s.SessionsUsedToday += g.startedLocally
	allowed := s.Allowed()
	return &allowed
}

// StartDecision reports whether a session may start now. When it may not,
// trigger is the paywall to show, or empty while limits are unknown.
func (g *Gate) StartDecision() (ok bool, trigger Trigger) {
	allowed := g.SessionAllowed()
	switch {
	case allowed == nil:
		return false, ""
	case !*allowed:
		return false, TriggerSessionLimit
	}
	return true, ""
}

// NoteSessionStarted records a local session start for display purposes.
func (g *Gate) NoteSessionStarted() {
	g.startedLocally++
}

// ConsumeSession notifies the backend that a session started. Callers treat
// failures as best-effort.
func (g *Gate) ConsumeSession(ctx context.Context) error {
	return g.src.UseSession(ctx)
}

// SessionsLeft is the optimistic number of sessions left today.
func (g *Gate) SessionsLeft() int {
	return max(g.state.SessionsLeft()-g.startedLocally, 0)
}

// Unlimited reports whether the learner's sessions are not capped.
func (g *Gate) Unlimited() bool {
	return g.loaded && g.state.IsPremiumOrTrial
}

// NoteQuestionsLeft stores a remaining-questions count reported by the
// backend.
func (g *Gate) NoteQuestionsLeft(n int) {
	g.questionsLeft = n
}

// QuestionsLeft returns the last reported remaining-questions count.
func (g *Gate) QuestionsLeft() (int, bool) {
	return g.questionsLeft, g.questionsLeft >= 0
}

// ShouldOfferAfterSession reports whether the after-session paywall should
// be scheduled: only for learners without premium or trial who finished
// without asking for the worked solution.
func (g *Gate) ShouldOfferAfterSession(usedSolution bool) bool {
	if !g.loaded {
		return false
	}
	return !g.state.IsPremiumOrTrial && !usedSolution
}
