package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	perr "linkharvest/internal/platform/errors"
	phttp "linkharvest/internal/platform/net/http"
	"linkharvest/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	CORSOrigins []string
	// SlowRequest marks access log lines at warn level, 0 disables it
	SlowRequest time.Duration
	// RedactQuery names query parameters masked in access logs; defaults to password
	RedactQuery []string
}

func (o StackOptions) redact() []string {
	if len(o.RedactQuery) == 0 {
		return []string{"password"}
	}
	return o.RedactQuery
}

// CommonStack returns the baseline middleware slice applied under /api.
// It carries no request timeout: trigger requests wait on whole runs
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID,
		middleware.RealIP,
		middleware.Correlate,

		// safety
		middleware.RecoverJSON,

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: o.SlowRequest, Redact: o.redact()}),

		middleware.NoCache,
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes,
	}
}

// Unauthorized is the bare body written for a rejected secret
type Unauthorized struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Secret guards routes with p and answers rejections with a bare 401 body
func Secret(p middleware.SecretPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, func(w http.ResponseWriter, _ *http.Request, err error) {
		phttp.JSON(w, http.StatusUnauthorized, Unauthorized{Error: perr.WireFrom(err).Message})
	})
}
