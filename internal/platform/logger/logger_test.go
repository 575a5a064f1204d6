package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "linkharvest/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"trace":      "trace",
		"DEBUG":      "debug",
		"info":       "info",
		"warning":    "warn",
		"error":      "error",
		"panic":      "panic",
		"":           "debug",
		"  garbage ": "debug",
	}
	for in, want := range cases {
		if got := strings.ToLower(parseLevel(in).String()); got != want {
			t.Fatalf("parseLevel(%q) = %q want %q", in, got, want)
		}
	}
}

func TestInit_RunFieldsAndNamed(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "json",
		Service:      "linkharvest-test",
		Writer:       &buf,
		StaticFields: map[string]string{"env": "test"},
	})

	Named("scheduler").Info().Msg("named-line")

	ctx := WithRequest(context.Background(), "req-1")
	ctx = WithRun(ctx, "run-42", "PL")
	C(ctx).Info().Msg("run-line")

	// unset values are skipped
	C(WithRun(context.Background(), "", "")).Info().Msg("bare-line")

	out := buf.String()
	kit.MustContain(t, out, `"component":"scheduler"`)
	kit.MustContain(t, out, `"request_id":"req-1"`)
	kit.MustContain(t, out, `"run_id":"run-42"`)
	kit.MustContain(t, out, `"country":"PL"`)
	kit.MustContain(t, out, `"service":"linkharvest-test"`)
	kit.MustContain(t, out, `"env":"test"`)

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.Contains(line, "bare-line") && strings.Contains(line, "run_id") {
			t.Fatalf("empty run id must not be logged: %s", line)
		}
	}
}

func TestWithLogger_ReplacesRoot(t *testing.T) {
	var own bytes.Buffer
	ctx := WithRun(WithLogger(context.Background(), zerolog.New(&own)), "run-7", "DE")
	C(ctx).Info().Msg("scoped")

	kit.MustContain(t, own.String(), `"message":"scoped"`)
	kit.MustContain(t, own.String(), `"run_id":"run-7"`)
	kit.MustContain(t, own.String(), `"country":"DE"`)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "3")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" {
		t.Fatalf("level/format mismatch: %+v", opt)
	}
	if opt.Service != "linkharvest" {
		t.Fatalf("default service = %q", opt.Service)
	}
	if !opt.WithCaller || opt.SampleEvery != 3 {
		t.Fatalf("caller/sample mismatch: %+v", opt)
	}
}

func TestMask(t *testing.T) {
	if Mask("") != "" {
		t.Fatalf("empty secret should stay empty")
	}
	if got := Mask("hunter2"); got != "***" || strings.Contains(got, "hunter") {
		t.Fatalf("Mask leaked secret: %q", got)
	}
	var nop zerolog.Logger = zerolog.Nop()
	nop.Info().Str("password", Mask("x")).Msg("ok")
}

func TestMaskQuery(t *testing.T) {
	cases := map[string]string{
		"":                                 "",
		"country=PL":                       "country=PL",
		"country=PL&password=hunter2":      "country=PL&password=***",
		"password=&wait=false":             "password=&wait=false",
		"password=a&password=b&country=DE": "password=***&password=***&country=DE",
		"flag&password=x":                  "flag&password=***",
	}
	for in, want := range cases {
		if got := MaskQuery(in, "password"); got != want {
			t.Fatalf("MaskQuery(%q) = %q want %q", in, got, want)
		}
	}
	if got := MaskQuery("password=x"); got != "password=x" {
		t.Fatalf("no keys must be a no-op, got %q", got)
	}
}
