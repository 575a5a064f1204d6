package middleware

import (
	"net/http"
	"time"

	"linkharvest/internal/platform/logger"
)

// AccessLogOptions configures AccessLogZerolog
type AccessLogOptions struct {
	// Slow logs requests at or above this duration at warn. 0 disables it
	Slow time.Duration

	// Redact lists query parameters whose values are masked, e.g. the trigger secret
	Redact []string

	// Log overrides the request scoped logger
	Log *logger.Logger
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += max(n, 0)
	return n, err
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// AccessLogZerolog writes one line per request. 5xx lines are errors and slow
// lines warnings; trigger requests that wait on a whole run are expected to be slow
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(sr, r)

			elapsed := time.Since(start)
			log := opt.Log
			if log == nil {
				log = logger.C(r.Context())
			}
			evt := log.Info()
			switch {
			case sr.status >= http.StatusInternalServerError:
				evt = log.Error()
			case opt.Slow > 0 && elapsed >= opt.Slow:
				evt = log.Warn()
			}
			if q := r.URL.RawQuery; q != "" {
				evt = evt.Str("query", logger.MaskQuery(q, opt.Redact...))
			}
			evt.Int("status", sr.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", sr.bytes).
				Str("remote", r.RemoteAddr).
				Msg("request done")
		})
	}
}
