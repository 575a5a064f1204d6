// Package middleware adapts chi and go-chi/cors middleware behind plain
// func(http.Handler) http.Handler values
package middleware

import (
	"net/http"
	"time"

	pstrings "linkharvest/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

var (
	// RequestID reads or mints X-Request-ID into the context
	RequestID = chimw.RequestID
	// RealIP trusts X-Real-IP and X-Forwarded-For; the api sits behind the proxy
	RealIP       = chimw.RealIP
	NoCache      = chimw.NoCache
	StripSlashes = chimw.StripSlashes
)

func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Heartbeat answers GET path with 200 before routing
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// Compress gzips and deflates responses for clients that accept it
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.NewCompressor(level).Handler
}

type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS defaults methods and headers to what the links and trigger routes need
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{"Accept", "Content-Type", "X-Request-ID"}),
		MaxAge:         o.MaxAge,
	})
}
