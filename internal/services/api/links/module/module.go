// Package module wires the link endpoints into the API using modkit
package module

import (
	"net/http"

	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/httpkit"
	str "linkharvest/internal/platform/strings"
	linkshttp "linkharvest/internal/services/api/links/http"
)

// Ports are supplied by the harvest service module through modkit.WithPorts
type Ports = linkshttp.Deps

// Module implements the links API module
type Module struct {
	b     modkit.Built
	ports Ports
}

// New constructs the module. It panics without Ports
func New(_ modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("links"),
		modkit.WithPrefix("/links"),
	}, opts...)...)
	return &Module{b: b, ports: modkit.PortsAs[Ports](b)}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { linkshttp.Register(rr, m.ports) })
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.b.Mw }

// Ports returns the injected ports
func (m *Module) Ports() any { return m.ports }
