// Package net carries request scoped values shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keySource ctxKey = "trigger_source"

// Source names who asked for a harvest run
type Source string

const (
	// SourceHTTP is a run admitted through the trigger endpoint
	SourceHTTP Source = "http"
	// SourceSchedule is a run fired by the in-process scheduler
	SourceSchedule Source = "schedule"
)

// WithRequest annotates ctx with a request id readable through chi's GetReqID
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithSource tags ctx with the trigger source
func WithSource(ctx context.Context, s Source) context.Context {
	if s == "" {
		return ctx
	}
	return context.WithValue(ctx, keySource, s)
}

// SourceOf returns the trigger source, empty when untagged
func SourceOf(ctx context.Context) Source {
	s, _ := ctx.Value(keySource).(Source)
	return s
}
