package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds the two kinds of browser waits a run performs.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Page caps navigations, submits and reloads
	Page time.Duration

	// Selector caps waits for a single element, kept short so a missing field fails fast
	Selector time.Duration
}

// DefaultTimeouts matches the portal's typical worst case
var DefaultTimeouts = Timeouts{Page: 60 * time.Second, Selector: time.Second}

// ForPage returns a sub context for one page level operation
func ForPage(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Page)
}

// ForSelector returns a sub context for one element wait
func ForSelector(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Selector)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of d and any parent remainder and never extends the parent.
// d <= 0 returns a cancelable child inheriting the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
