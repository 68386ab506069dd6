package llm

import "context"

type contextKey string

const purposeKey contextKey = "request_purpose"

// WithPurpose labels outbound requests made with ctx, e.g. "step" or
// "verify", for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
