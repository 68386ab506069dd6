package topic

import (
	"context"
	"time"
)

// DailyCounter persists the per-day rotation offset. Counters are keyed by
// day; a new day simply starts reading a new key and older keys are left
// in place.
type DailyCounter interface {
	Get(ctx context.Context, dayKey string) (int, error)
	Increment(ctx context.Context, dayKey string) error
}

// DayKey returns the rotation counter key for the local calendar day of t.
func DayKey(t time.Time) string {
	return "rotation:" + t.Format(DateLayout)
}
