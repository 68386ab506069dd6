package tutorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// maxErrorBody caps how much of an error response ends up in StatusError.
const maxErrorBody = 512

// HTTPClient implements Backend over the tutoring REST API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithToken sets the bearer credential sent with every request.
func WithToken(token string) Option {
	return func(h *HTTPClient) {
		h.token = token
	}
}

// WithTimeout sets a whole-request timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		h.client = &http.Client{Timeout: d}
	}
}

// NewHTTPClient returns a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/ask", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		var body struct {
			Message string `json:"message"`
		}
		// The message is optional; an unreadable body still means quota.
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, &QuotaExceededError{Message: body.Message}
	case http.StatusGatewayTimeout:
		return nil, ErrGatewayTimeout
	default:
		return nil, statusError(resp)
	}

	var out AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ask response: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Limits(ctx context.Context) (*Limits, error) {
	resp, err := c.do(ctx, http.MethodGet, "/limits", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read limits: %w", err)
	}
	payload, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode limits: %w", err)
	}
	if err := validateLimits(payload); err != nil {
		return nil, err
	}

	var body struct {
		SubscriptionType string `json:"subscription_type"`
		IsTrial          bool   `json:"is_trial"`
		Limits           struct {
			Sessions *struct {
				Max  int `json:"max"`
				Used int `json:"used"`
			} `json:"sessions"`
		} `json:"limits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode limits: %w", err)
	}

	out := &Limits{
		SubscriptionType: body.SubscriptionType,
		IsTrial:          body.IsTrial,
		SessionsMax:      1,
	}
	if s := body.Limits.Sessions; s != nil {
		out.SessionsMax = s.Max
		out.SessionsUsed = s.Used
	}
	return out, nil
}

func (c *HTTPClient) UseSession(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/session", map[string]string{"action": "use_session"})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
}
