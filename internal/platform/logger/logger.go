// Package logger owns the process zerolog root and the run-scoped child loggers
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"linkharvest/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is zerolog's logger; packages take it by value
type Logger = zerolog.Logger

// Options for the root logger. Format is "console" or "json"
type Options struct {
	Level        string
	Format       string
	Service      string
	Component    string
	Writer       io.Writer
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_* through the raw env view; config itself logs, so it cannot be used here
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:        strings.ToLower(env.Get("LEVEL", "info")),
		Format:       strings.ToLower(env.Get("FORMAT", "console")),
		Service:      env.Get("SERVICE", "linkharvest"),
		Component:    env.Get("COMPONENT", ""),
		WithCaller:   env.GetBool("CALLER", false),
		SampleEvery:  env.GetInt("SAMPLE_EVERY", 0),
		StaticFields: env.Pairs("FIELDS"),
	}
}

var (
	initOnce sync.Once
	root     atomic.Pointer[Logger]
)

// Get returns the root, building it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Init builds the root logger. Only the first call has any effect
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

func build(opt Options) Logger {
	out := opt.Writer
	if out == nil {
		out = os.Stdout
	}
	if opt.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	b := zerolog.New(out).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		b = b.Str("go_version", bi.GoVersion)
	}
	static := map[string]string{"service": opt.Service, "component": opt.Component}
	for k, v := range opt.StaticFields {
		static[k] = v
	}
	for k, v := range static {
		if v != "" {
			b = b.Str(k, v)
		}
	}
	if opt.WithCaller {
		b = b.Caller()
	}

	l := b.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// parseLevel falls back to debug for anything it does not recognise
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey uint8

const (
	keyRequestID ctxKey = iota
	keyRunID
	keyCountry
	keyBase
)

// field names in the order C emits them
var ctxFields = [...]struct {
	key  ctxKey
	name string
}{
	{keyRequestID, "request_id"},
	{keyRunID, "run_id"},
	{keyCountry, "country"},
}

func withValue(ctx context.Context, k ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

// WithRequest tags ctx with the HTTP request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	return withValue(ctx, keyRequestID, reqID)
}

// WithRun tags ctx with a harvest run and its country
func WithRun(ctx context.Context, runID, country string) context.Context {
	return withValue(withValue(ctx, keyRunID, runID), keyCountry, country)
}

// WithLogger makes l the base C builds on for ctx, in place of the root logger
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, keyBase, l)
}

// C is the base logger plus whatever request and run tags ctx carries.
// The base is the one set by WithLogger, else the root logger
func C(ctx context.Context) *Logger {
	base := Get()
	if l, ok := ctx.Value(keyBase).(Logger); ok {
		base = &l
	}
	b := base.With()
	for _, f := range ctxFields {
		if v, _ := ctx.Value(f.key).(string); v != "" {
			b = b.Str(f.name, v)
		}
	}
	l := b.Logger()
	return &l
}

// Named is the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// Mask hides a non-empty secret
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

// MaskQuery masks the values of keys in a raw query string and leaves the rest,
// order included, untouched
func MaskQuery(rawQuery string, keys ...string) string {
	if rawQuery == "" || len(keys) == 0 {
		return rawQuery
	}
	pairs := strings.Split(rawQuery, "&")
	for i, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		for _, secret := range keys {
			if k == secret {
				pairs[i] = k + "=" + Mask(v)
				break
			}
		}
	}
	return strings.Join(pairs, "&")
}
