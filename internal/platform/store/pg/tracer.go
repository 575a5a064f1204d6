package pg

import (
	"context"
	"strings"
	"time"

	"linkharvest/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type TraceOptions struct {
	// All logs every statement, not just slow ones
	All bool
	// Redact logs the argument count instead of the values; stored links are single use
	Redact bool
	// Slow statements log at warn; 0 means none are slow
	Slow time.Duration
}

// Tracer is a pgx.QueryTracer that logs statements through zerolog
type Tracer struct {
	log logger.Logger
	opt TraceOptions
}

var _ pgx.QueryTracer = (*Tracer)(nil)

// NewTracer logs at its own debug level so statements show regardless of the root level
func NewTracer(root logger.Logger, opt TraceOptions) *Tracer {
	return &Tracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger(), opt: opt}
}

type traceKey struct{}

type traceStart struct {
	at   time.Time
	sql  string
	args []any
}

func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: time.Now(), sql: d.SQL, args: d.Args})
}

func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryEndData) {
	s, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(s.at)
	slow := t.opt.Slow > 0 && elapsed >= t.opt.Slow
	if !slow && !t.opt.All {
		return
	}

	evt := t.log.Info()
	switch {
	case d.Err != nil:
		evt = t.log.Error()
	case slow:
		evt = t.log.Warn()
	}
	evt = evt.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000).
		Bool("slow", slow).
		Str("sql", compact(s.sql)).
		Int64("rows", d.CommandTag.RowsAffected())
	if t.opt.Redact {
		evt = evt.Int("args", len(s.args))
	} else {
		evt = evt.Interface("args", s.args)
	}
	evt.Err(d.Err).Msg("pg query")
}

// compact folds whitespace runs so multi-line statements log on one line
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
