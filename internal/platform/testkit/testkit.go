// Package testkit holds assertions shared by package tests
package testkit

import (
	"strings"
	"testing"
	"time"
)

// MustPanic fails unless fn panics and returns the recovered value
func MustPanic(t *testing.T, fn func()) (v any) {
	t.Helper()
	defer func() {
		v = recover()
		if v == nil {
			t.Fatalf("expected a panic")
		}
	}()
	fn()
	return nil
}

func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("panic: %v", v)
		}
	}()
	fn()
}

// MustContain prints the whole haystack on failure; log lines are long
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	t.Fatalf("missing %q in:\n%s", needle, haystack)
}

// Eventually polls cond until it holds, failing with msg after within
func Eventually(t *testing.T, within time.Duration, cond func() bool, msg string) {
	t.Helper()
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(within)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("after %s: %s", within, msg)
		case <-tick.C:
		}
	}
}
