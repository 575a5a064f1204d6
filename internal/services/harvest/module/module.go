// Package module wires the harvest service, browser pool and single-flight guard
package module

import (
	"context"
	"errors"
	"strings"

	"linkharvest/internal/adapters/browser"
	"linkharvest/internal/adapters/browser/pwx"
	"linkharvest/internal/adapters/browser/rodx"
	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/httpkit"
	"linkharvest/internal/modkit/repokit"
	"linkharvest/internal/services/harvest/domain"
	"linkharvest/internal/services/harvest/guardrails"
	"linkharvest/internal/services/harvest/repo"
	"linkharvest/internal/services/harvest/repo/chsink"
	"linkharvest/internal/services/harvest/service"
)

// Schema is the link store DDL, for store.WithBootstrap
var Schema = repo.Schema

// Ports exported by the harvest module
type Ports struct {
	Harvester domain.HarvesterPort
	Links     domain.LinksPort
	Flight    *guardrails.Flight
	Options   Options

	// OpenContexts reports browsing contexts currently held by the pool
	OpenContexts func() int
}

// Module implements modkit.Module for harvest
type Module struct {
	deps  modkit.Deps
	pool  *browser.Pool
	ports Ports
}

// New constructs the module from deps.Cfg. The browser is launched lazily by the first run
func New(deps modkit.Deps) *Module {
	return NewWith(deps, FromConfig(deps.Cfg), nil)
}

// NewWith wires the module from explicit options; a nil driver is chosen from o.Driver
func NewWith(deps modkit.Deps, o Options, d browser.Driver) *Module {
	if d == nil {
		d = driverFor(o)
	}
	log := deps.Log.With().Str("component", "harvest").Logger()

	pool := browser.NewPool(d, log)
	svc := service.New(
		repokit.TxRunner(deps.PG),
		repo.NewPG(),
		pool,
		chsink.New(deps.CH),
		o.Service(),
	)

	m := &Module{deps: deps, pool: pool}
	m.ports = Ports{
		Harvester: svc,
		Links:     svc,
		Flight:    guardrails.NewFlight(svc, log),
		Options:   o,

		OpenContexts: pool.Open,
	}
	return m
}

func driverFor(o Options) browser.Driver {
	if strings.EqualFold(o.Driver, DriverPlaywright) {
		return pwx.New(o.Launch)
	}
	return rodx.New(o.Launch)
}

// Name returns the module name
func (m *Module) Name() string { return "harvest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module route prefix (none, routes live in the api layer)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op: the api/harvest and api/links modules expose the ports
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Close drains in-flight runs within ctx, then shuts the browser down
func (m *Module) Close(ctx context.Context) error {
	ferr := m.ports.Flight.Close(ctx)
	return errors.Join(ferr, m.pool.Shutdown())
}
