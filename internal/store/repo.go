package store

import (
	"context"
	"time"
)

// CounterRepo stores named integer counters. It satisfies
// topic.DailyCounter.
type CounterRepo interface {
	// Get returns the counter value, or 0 if it was never written.
	Get(ctx context.Context, key string) (int, error)

	// Increment adds one to the counter.
	Increment(ctx context.Context, key string) error

	// Add adds delta to the counter and returns the new value.
	Add(ctx context.Context, key string, delta int) (int, error)
}

// Profile is the learner's cached exam profile.
type Profile struct {
	ExamSubject string
	ExamDate    time.Time // zero when unknown
}

// ProfileRepo persists the cached Profile.
type ProfileRepo interface {
	// Get returns the stored profile. Missing fields are left zero.
	Get(ctx context.Context) (Profile, error)

	// Save replaces the stored profile.
	Save(ctx context.Context, p Profile) error
}

// Event sources.
const (
	SourceAPI = "api"
	SourceLLM = "llm"
)

// RequestEventData captures a single outbound request: one attempt against
// the tutoring API or one LLM provider call.
type RequestEventData struct {
	Source       string
	Purpose      string
	Model        string
	Attempt      int
	Status       int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	InputTokens  int
	OutputTokens int
}

// RequestEvent is a stored RequestEventData.
type RequestEvent struct {
	RequestEventData
	Sequence  int64
	Timestamp time.Time
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match when set
	Source  string // exact source match when set
	After   int64  // sequence > After
}

// EventRepo provides append and query access to request events.
type EventRepo interface {
	// AppendRequestEvent records one outbound request.
	AppendRequestEvent(ctx context.Context, data RequestEventData) error

	// QueryRequestEvents returns events newest first.
	QueryRequestEvents(ctx context.Context, opts QueryOpts) ([]RequestEvent, error)
}

// SessionRecord summarizes one finished tutoring session.
type SessionRecord struct {
	ID               string
	TopicKey         string
	Subject          string
	StartedAt        time.Time
	FinishedAt       time.Time
	Retries          int
	Correct          bool
	SolutionRevealed bool
}

// SessionRepo persists finished sessions.
type SessionRepo interface {
	// RecordSession stores a finished session. The session's day is taken
	// from FinishedAt in its own location.
	RecordSession(ctx context.Context, rec SessionRecord) error

	// Streak returns the number of consecutive days with at least one
	// finished session, counting back from now's day. A streak that ended
	// yesterday still counts.
	Streak(ctx context.Context, now time.Time) (int, error)

	// Recent returns the latest sessions, newest first.
	Recent(ctx context.Context, limit int) ([]SessionRecord, error)
}
