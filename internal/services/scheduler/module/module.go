// Package module wires the harvest scheduler as a modkit.Module
package module

import (
	"strings"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/httpkit"
	"linkharvest/internal/services/scheduler/service"
)

// Ports exported by the scheduler module
type Ports struct {
	Scheduler *service.Svc
	Cadence   service.CadenceFunc
}

// Module implements modkit.Module for the scheduler
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New wires the scheduler. guard serves the in-process mode and may be nil in http mode
func New(deps modkit.Deps, secret string, primary country.Code, guard service.Admitter) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), secret, primary, guard)
}

// NewWith wires the scheduler from explicit options
func NewWith(deps modkit.Deps, o Options, secret string, primary country.Code, guard service.Admitter) *Module {
	log := deps.Log.With().Str("component", "scheduler").Logger()

	var trig service.Trigger
	if strings.EqualFold(o.Mode, ModeHTTP) {
		trig = service.NewHTTP(o.BaseURL, secret, o.HTTPTimeout, log)
	} else {
		if guard == nil {
			panic("scheduler: in-process mode requires the harvest guard")
		}
		trig = service.InProcess(guard, log)
	}

	svc := service.New(trig, service.NewCron(log, o.Location), service.Config{
		Enabled: o.Enabled,
		Secret:  secret,
		Paused:  o.Paused,
	}, log)

	return &Module{
		deps: deps,
		opts: o,
		ports: Ports{
			Scheduler: svc,
			Cadence:   service.Cadence(primary, o.PrimaryCadence, o.DefaultCadence),
		},
	}
}

// Name returns the module name
func (m *Module) Name() string { return "scheduler" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module route prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op: the scheduler has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
