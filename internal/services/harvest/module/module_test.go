package module

import (
	"context"
	"testing"
	"time"

	"linkharvest/internal/adapters/browser/browsertest"
	"linkharvest/internal/adapters/browser/pwx"
	"linkharvest/internal/adapters/browser/rodx"
	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/repokit"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/store"

	"github.com/rs/zerolog"
)

// countingTx answers every count with zero so a run reaches the browser
type countingTx struct{}

func (countingTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (countingTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (countingTx) QueryRow(context.Context, string, ...any) store.Row             { return zeroRow{} }
func (t countingTx) Tx(_ context.Context, fn func(repokit.Queryer) error) error  { return fn(t) }

type zeroRow struct{}

func (zeroRow) Scan(dest ...any) error {
	if p, ok := dest[0].(*int64); ok {
		*p = 0
	}
	return nil
}

func deps() modkit.Deps {
	return modkit.Deps{Log: zerolog.Nop(), Cfg: config.New(), PG: countingTx{}}
}

func TestDriverFor(t *testing.T) {
	if _, ok := driverFor(Options{Driver: DriverRod}).(*rodx.Driver); !ok {
		t.Fatal("rod expected")
	}
	if _, ok := driverFor(Options{Driver: "Playwright"}).(*pwx.Driver); !ok {
		t.Fatal("playwright expected")
	}
}

func TestNew_ExposesPorts(t *testing.T) {
	m := New(deps())
	if m.Name() != "harvest" || m.Prefix() != "" {
		t.Fatalf("name=%q prefix=%q", m.Name(), m.Prefix())
	}
	p := modkitPorts(t, m)
	if p.Harvester == nil || p.Links == nil || p.Flight == nil {
		t.Fatalf("ports = %+v", p)
	}
	if p.Options.Target != 100 {
		t.Fatalf("options not carried: %+v", p.Options)
	}
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestClose_ShutsDownBrowser(t *testing.T) {
	o := FromConfig(config.New())
	o.Target = 1
	o.Timeouts.Page = 100 * time.Millisecond
	o.Timeouts.Selector = 20 * time.Millisecond
	d := &browsertest.Driver{}
	m := NewWith(deps(), o, d)

	run, ok := modkitPorts(t, m).Flight.Admit(country.PL)
	if !ok {
		t.Fatal("admit")
	}
	if _, err := run.Wait(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if d.Launches() != 1 {
		t.Fatalf("launches = %d", d.Launches())
	}
	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if d.BrowserCloses() != 1 {
		t.Fatalf("browser closes = %d", d.BrowserCloses())
	}
	if _, ok := modkitPorts(t, m).Flight.Admit(country.PL); ok {
		t.Fatal("closed module must reject runs")
	}
}

func modkitPorts(t *testing.T, m *Module) Ports {
	t.Helper()
	p, ok := m.Ports().(Ports)
	if !ok {
		t.Fatalf("ports type %T", m.Ports())
	}
	return p
}
