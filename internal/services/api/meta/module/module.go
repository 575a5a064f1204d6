// Package module mounts the meta endpoints
package module

import (
	"net/http"
	"time"

	modkit "linkharvest/internal/modkit"
	"linkharvest/internal/modkit/httpkit"
	str "linkharvest/internal/platform/strings"

	metahttp "linkharvest/internal/services/api/meta/http"
)

// ServiceName is reported by health and version
const ServiceName = "linkharvest-api"

// Ports are optional; without them /meta/service omits the harvest counters
type Ports struct {
	ActiveRuns   func() int
	OpenContexts func() int
}

type Module struct {
	deps      modkit.Deps
	b         modkit.Built
	ports     Ports
	startedAt time.Time
}

func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)
	p, _ := b.Ports.(Ports)
	return &Module{deps: deps, b: b, ports: p, startedAt: time.Now()}
}

// MountRoutes registers meta. Postgres holds the links and is required;
// ClickHouse only mirrors analytics
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: ServiceName,
			StartedAt:   m.startedAt,
			Probes: []metahttp.Probe{
				{Name: "pg", Target: m.deps.PG, Required: true},
				{Name: "ch", Target: m.deps.CH},
			},
			ActiveRuns:   m.ports.ActiveRuns,
			OpenContexts: m.ports.OpenContexts,
		})
	})
}

func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.b.Mw }

func (m *Module) Ports() any { return m.ports }
