package tutorapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/dailytutor/internal/llm"
)

// directSystemPrompt sets the persona for in-process generation.
const directSystemPrompt = `Ты — дружелюбный репетитор, который готовит школьника к экзамену. Отвечай по-русски, коротко и по делу.`

// CounterStore is the durable counter storage Direct needs.
type CounterStore interface {
	Get(ctx context.Context, key string) (int, error)
	Add(ctx context.Context, key string, delta int) (int, error)
}

// DirectConfig sets the local daily allowance of a Direct backend.
type DirectConfig struct {
	// SessionsPerDay is the daily session allowance. Zero means one.
	SessionsPerDay int

	// QuestionsPerDay caps AI questions per day. Zero means unlimited.
	QuestionsPerDay int

	// Plan is reported as the subscription type. Defaults to "free".
	Plan string

	// MaxTokens caps every answer.
	MaxTokens int

	// Timeout bounds a single provider call. A call that runs out of time
	// is reported as ErrGatewayTimeout.
	Timeout time.Duration
}

// Direct implements Backend in-process on top of an LLM provider, keeping
// the daily allowance in local counters.
type Direct struct {
	provider llm.Provider
	counters CounterStore
	cfg      DirectConfig
	now      func() time.Time
}

// NewDirect returns a Direct backend.
func NewDirect(p llm.Provider, counters CounterStore, cfg DirectConfig) *Direct {
	if cfg.SessionsPerDay <= 0 {
		cfg.SessionsPerDay = 1
	}
	if cfg.Plan == "" {
		cfg.Plan = "free"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &Direct{provider: p, counters: counters, cfg: cfg, now: time.Now}
}

func (d *Direct) questionsKey() string {
	return "direct:questions:" + d.now().Format("2006-01-02")
}

func (d *Direct) sessionsKey() string {
	return "direct:sessions:" + d.now().Format("2006-01-02")
}

func (d *Direct) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	if d.cfg.QuestionsPerDay > 0 {
		used, err := d.counters.Get(ctx, d.questionsKey())
		if err != nil {
			return nil, fmt.Errorf("read question allowance: %w", err)
		}
		if used >= d.cfg.QuestionsPerDay {
			return nil, &QuotaExceededError{Message: "daily AI question limit reached"}
		}
	}

	callCtx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	resp, err := d.provider.Generate(callCtx, llm.Request{
		System:    directSystemPrompt,
		Messages:  toMessages(req),
		MaxTokens: d.cfg.MaxTokens,
	})
	if err != nil {
		// Our own deadline maps to 504; a cancelled caller is passed through.
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrGatewayTimeout
		}
		return nil, fmt.Errorf("generate: %w", err)
	}

	out := &AskResponse{Answer: strings.TrimSpace(resp.Text)}

	used, err := d.counters.Add(context.WithoutCancel(ctx), d.questionsKey(), 1)
	if err != nil {
		return nil, fmt.Errorf("count question: %w", err)
	}
	if d.cfg.QuestionsPerDay > 0 {
		remaining := max(d.cfg.QuestionsPerDay-used, 0)
		out.Remaining = &remaining
	}
	return out, nil
}

func (d *Direct) Limits(ctx context.Context) (*Limits, error) {
	used, err := d.counters.Get(ctx, d.sessionsKey())
	if err != nil {
		return nil, fmt.Errorf("read session allowance: %w", err)
	}
	return &Limits{
		SubscriptionType: d.cfg.Plan,
		SessionsMax:      d.cfg.SessionsPerDay,
		SessionsUsed:     used,
	}, nil
}

func (d *Direct) UseSession(ctx context.Context) error {
	if _, err := d.counters.Add(ctx, d.sessionsKey(), 1); err != nil {
		return fmt.Errorf("count session: %w", err)
	}
	return nil
}

func toMessages(req AskRequest) []llm.Message {
	msgs := make([]llm.Message, 0, len(req.History)+1)
	for _, t := range req.History {
		role := llm.RoleUser
		if t.Role == string(llm.RoleAssistant) {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: req.Question})
}
