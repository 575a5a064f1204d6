package middleware

import (
	"net/http"

	"linkharvest/internal/platform/logger"
	pnet "linkharvest/internal/platform/net"
)

// Correlate copies chi's request id onto the logger context so logger.C picks it up.
// Mount after RequestID.
func Correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := pnet.RequestID(r.Context())
		if rid == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(logger.WithRequest(r.Context(), rid)))
	})
}
