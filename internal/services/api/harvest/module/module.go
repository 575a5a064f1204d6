// Package module wires the harvest endpoints into the API using modkit
package module

import (
	"net/http"

	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/httpkit"
	str "linkharvest/internal/platform/strings"
	harvesthttp "linkharvest/internal/services/api/harvest/http"
)

// Ports are supplied by the harvest service module through modkit.WithPorts
type Ports = harvesthttp.Deps

// Module implements the harvest API module
type Module struct {
	b     modkit.Built
	ports Ports
}

// New constructs the module. It panics without Ports
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("harvest-api"),
		modkit.WithPrefix("/harvest"),
	}, opts...)...)
	return &Module{b: b, ports: modkit.PortsAs[Ports](b)}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { harvesthttp.Register(rr, m.ports) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.b.Mw }

// Ports returns the injected ports
func (m *Module) Ports() any { return m.ports }
