// Package asker sends tutoring requests with a bounded, sequential retry
// policy and never leaves the caller without text.
package asker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abhisek/dailytutor/internal/lesson"
	"github.com/abhisek/dailytutor/internal/llm"
	"github.com/abhisek/dailytutor/internal/store"
	"github.com/abhisek/dailytutor/internal/tutorapi"
)

// ErrQuotaExceeded is returned when the backend refused the request because
// the learner ran out of allowance. The backend's error is wrapped too.
var ErrQuotaExceeded = errors.New("quota exceeded")

var errEmptyAnswer = errors.New("empty answer")

// Config is the retry policy.
type Config struct {
	// MaxAttempts caps the general retry loop. The extra 504 retry is not
	// counted.
	MaxAttempts int

	// RetryDelay is the fixed wait between failed attempts.
	RetryDelay time.Duration

	// AskTimeout bounds every attempt made through Ask. Verify attempts
	// have no per-attempt limit.
	AskTimeout time.Duration
}

// DefaultConfig returns the production retry policy.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		RetryDelay:  700 * time.Millisecond,
		AskTimeout:  35 * time.Second,
	}
}

// Result is the outcome of a request. Text is never empty.
type Result struct {
	Text string

	// Remaining is the backend's remaining-question counter, when reported.
	Remaining *int

	// Fallback is set when Text is the safe placeholder.
	Fallback bool

	// Attempts counts every backend call, including the extra 504 retry.
	Attempts int
}

// EventRecorder receives one event per backend call.
type EventRecorder interface {
	AppendRequestEvent(ctx context.Context, data store.RequestEventData) error
}

// Client wraps a tutorapi.Backend with the retry policy.
type Client struct {
	backend  tutorapi.Backend
	cfg      Config
	events   EventRecorder
	fallback string
}

// Option configures a Client.
type Option func(*Client)

// WithEvents records every backend call.
func WithEvents(rec EventRecorder) Option {
	return func(c *Client) {
		c.events = rec
	}
}

// WithFallback replaces the placeholder text.
func WithFallback(text string) Option {
	return func(c *Client) {
		c.fallback = text
	}
}

// New returns a Client. Non-positive config fields take their defaults,
// except AskTimeout where zero disables the limit.
func New(b tutorapi.Backend, cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	c := &Client{backend: b, cfg: cfg, fallback: lesson.FallbackText}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends a content request (a lesson step or a worked solution) with the
// per-attempt timeout applied.
func (c *Client) Ask(ctx context.Context, purpose string, req tutorapi.AskRequest) (Result, error) {
	return c.run(ctx, purpose, req, c.cfg.AskTimeout)
}

// Verify sends an answer-check request. Attempts are not time-limited.
func (c *Client) Verify(ctx context.Context, purpose string, req tutorapi.AskRequest) (Result, error) {
	return c.run(ctx, purpose, req, 0)
}

// run drives the retry loop. The only error it returns wraps
// ErrQuotaExceeded; every other failure ends in the fallback text.
func (c *Client) run(ctx context.Context, purpose string, req tutorapi.AskRequest, timeout time.Duration) (Result, error) {
	ctx = llm.WithPurpose(ctx, purpose)

	var res Result
	extraRetried := false

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		resp, err := c.call(ctx, purpose, req, timeout, attempt, &res)
		if err == nil {
			return c.success(res, resp), nil
		}
		if tutorapi.IsQuotaExceeded(err) {
			return res, fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}

		// A gateway timeout earns one immediate retry outside the count.
		if errors.Is(err, tutorapi.ErrGatewayTimeout) && !extraRetried {
			extraRetried = true
			resp, err = c.call(ctx, purpose, req, timeout, attempt, &res)
			if err == nil {
				return c.success(res, resp), nil
			}
			if tutorapi.IsQuotaExceeded(err) {
				return res, fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
			}
		}

		if attempt == c.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(c.cfg.RetryDelay):
		}
	}

	res.Text = c.fallback
	res.Fallback = true
	return res, nil
}

func (c *Client) success(res Result, resp *tutorapi.AskResponse) Result {
	res.Text = strings.TrimSpace(resp.Answer)
	res.Remaining = resp.Remaining
	return res
}

// call makes one backend request and records it. An empty answer is
// reported as a failure.
func (c *Client) call(ctx context.Context, purpose string, req tutorapi.AskRequest, timeout time.Duration, attempt int, res *Result) (*tutorapi.AskResponse, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.backend.Ask(callCtx, req)
	if err == nil && strings.TrimSpace(resp.Answer) == "" {
		err = errEmptyAnswer
	}
	res.Attempts++

	data := store.RequestEventData{
		Source:    store.SourceAPI,
		Purpose:   purpose,
		Attempt:   attempt,
		Status:    statusOf(err),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		c.record(ctx, data)
		return nil, err
	}
	c.record(ctx, data)
	return resp, nil
}

func (c *Client) record(ctx context.Context, data store.RequestEventData) {
	if c.events == nil {
		return
	}
	if err := c.events.AppendRequestEvent(context.WithoutCancel(ctx), data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record request event: %v\n", err)
	}
}

// statusOf maps an attempt's error to the HTTP status it stands for, or 0
// for transport-level failures.
func statusOf(err error) int {
	var se *tutorapi.StatusError
	switch {
	case err == nil:
		return http.StatusOK
	case tutorapi.IsQuotaExceeded(err):
		return http.StatusForbidden
	case errors.Is(err, tutorapi.ErrGatewayTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &se):
		return se.Code
	case errors.Is(err, errEmptyAnswer):
		return http.StatusOK
	}
	return 0
}
