package modkit

import (
	phttp "linkharvest/internal/platform/net/http"
)

// Module is the common surface for API modules that can mount routes and expose ports
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Ports returns a module specific port set for cross wiring
	Ports() any
	Name() string
}

// PortsAs asserts the ports supplied through WithPorts.
// A missing or mistyped port is a wiring bug and panics with the module name
func PortsAs[T any](b Built) T {
	p, ok := b.Ports.(T)
	if !ok {
		panic("modkit: module " + b.Name + " built without required ports")
	}
	return p
}
