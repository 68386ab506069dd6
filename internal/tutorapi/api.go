// Package tutorapi talks to the tutoring backend: the AI ask endpoint, the
// quota limits endpoint and the session-consumption endpoint.
package tutorapi

import (
	"context"
	"errors"
	"fmt"
)

// Backend is the tutoring service as seen by the client.
type Backend interface {
	// Ask sends a question with optional conversation history.
	Ask(ctx context.Context, req AskRequest) (*AskResponse, error)

	// Limits returns the learner's subscription and daily session allowance.
	Limits(ctx context.Context) (*Limits, error)

	// UseSession records that a session was started today.
	UseSession(ctx context.Context) error
}

// Turn is one message of conversation history.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AskRequest is the body of the ask endpoint.
type AskRequest struct {
	Question string `json:"question"`
	History  []Turn `json:"history,omitempty"`
}

// AskResponse is a successful ask reply. Remaining, when present, is the
// number of AI questions left today.
type AskResponse struct {
	Answer    string `json:"answer"`
	Remaining *int   `json:"remaining,omitempty"`
}

// Limits describes the learner's plan and today's session usage.
type Limits struct {
	SubscriptionType string
	IsTrial          bool
	SessionsMax      int
	SessionsUsed     int
}

// IsPremiumOrTrial reports whether the learner is on a paid plan or a trial.
func (l Limits) IsPremiumOrTrial() bool {
	if l.IsTrial {
		return true
	}
	switch l.SubscriptionType {
	case "", "free":
		return false
	}
	return true
}

// ErrGatewayTimeout is returned when the backend answered 504.
var ErrGatewayTimeout = errors.New("gateway timeout")

// QuotaExceededError is returned when the backend refuses a request because
// the learner ran out of allowance (HTTP 403).
type QuotaExceededError struct {
	Message string
}

func (e *QuotaExceededError) Error() string {
	if e.Message == "" {
		return "quota exceeded"
	}
	return "quota exceeded: " + e.Message
}

// StatusError is any other non-success HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// IsQuotaExceeded reports whether err is or wraps a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var q *QuotaExceededError
	return errors.As(err, &q)
}
