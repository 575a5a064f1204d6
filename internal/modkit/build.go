package modkit

import (
	"net/http"
	"slices"

	"linkharvest/internal/modkit/httpkit"
)

// Built is what API modules keep from their options
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Option sets one field of a module's Built
type Option func(*Built)

func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix is the path the module's routes mount under, e.g. /links
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends to the module's own chain; the api root uses it to
// bound every module but harvest with a request timeout
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands the module the ports it consumes. The type is the module's own
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order. The middleware slice never aliases the caller's
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = slices.Clone(b.Mw)
	return b
}

// Mount routes b.Prefix, applies the module chain and lets register add routes
func (b Built) Mount(r httpkit.Router, register func(httpkit.Router)) {
	r.Route(b.Prefix, func(sub httpkit.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		register(sub)
	})
}
