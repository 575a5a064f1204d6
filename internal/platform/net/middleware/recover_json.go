package middleware

import (
	"net/http"
	"runtime/debug"

	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/logger"
	phttp "linkharvest/internal/platform/net/http"
)

// RecoverJSON turns a handler panic into the 500 envelope. http.ErrAbortHandler
// is re-raised so net/http can drop the connection quietly
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Str("component", "http").
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			phttp.RespondError(w, r, perr.PanicErrf("panic recovered"))
		}()
		next.ServeHTTP(w, r)
	})
}
