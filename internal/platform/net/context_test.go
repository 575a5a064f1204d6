package net_test

import (
	"context"
	"testing"

	pnet "linkharvest/internal/platform/net"
)

func TestWithRequest(t *testing.T) {
	base := context.Background()

	ctx := pnet.WithRequest(base, "req-123")
	if got := pnet.RequestID(ctx); got != "req-123" {
		t.Fatalf("RequestID got %q want req-123", got)
	}

	if pnet.WithRequest(base, "") != base {
		t.Fatalf("empty id must leave ctx untouched")
	}
	if got := pnet.RequestID(base); got != "" {
		t.Fatalf("RequestID on bare ctx = %q", got)
	}
}

func TestWithSource(t *testing.T) {
	base := context.Background()
	if pnet.SourceOf(base) != "" {
		t.Fatalf("untagged ctx should have empty source")
	}
	ctx := pnet.WithSource(base, pnet.SourceSchedule)
	if pnet.SourceOf(ctx) != pnet.SourceSchedule {
		t.Fatalf("source = %q", pnet.SourceOf(ctx))
	}
	if pnet.WithSource(base, "") != base {
		t.Fatalf("empty source must leave ctx untouched")
	}
}
