// Package httpkit is what API modules import for routing and responses, so they
// never reach into internal/platform/net/http themselves
package httpkit

import phttp "linkharvest/internal/platform/net/http"

type (
	Router   = phttp.Router
	Handler  = phttp.Handler
	Response = phttp.Response
)

// Bare writes body without the envelope; the links API uses it for the legacy wire shapes
func Bare(status int, body any) Response { return phttp.Bare(status, body) }
