package testkit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var (
	revealWait = func(context.Context, time.Duration) error { return nil }
	target     = 100
)

func TestSwap_RestoresAfterSubtest(t *testing.T) {
	var waited time.Duration
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &revealWait, func(_ context.Context, d time.Duration) error {
			waited = d
			return context.Canceled
		})
		Swap(t, &target, 5)
		if err := revealWait(context.Background(), 3*time.Second); err != context.Canceled || waited != 3*time.Second {
			t.Fatalf("swap not in effect: err=%v waited=%v", err, waited)
		}
		if target != 5 {
			t.Fatalf("target = %d", target)
		}
	})

	if err := revealWait(context.Background(), time.Second); err != nil || target != 100 {
		t.Fatalf("seams not restored: err=%v target=%d", err, target)
	}
}

func TestSerial_NeverOverlaps(t *testing.T) {
	var (
		inside  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	wg.Add(3)
	for _, name := range []string{"PL", "DE", "AT"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			defer wg.Done()
			Serial(t)
			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(10 * time.Millisecond)
			inside.Add(-1)
		})
	}
	t.Cleanup(func() {
		wg.Wait()
		if overlap.Load() {
			t.Fatalf("serial subtests overlapped")
		}
	})
}
