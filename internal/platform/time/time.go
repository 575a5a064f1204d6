// Package time contains time related helpers
package time

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx ends, whichever comes first.
// It returns ctx.Err() when interrupted. d <= 0 only checks ctx
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
