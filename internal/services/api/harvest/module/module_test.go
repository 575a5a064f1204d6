package module

import (
	"testing"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit"
	"linkharvest/internal/platform/testkit"
	"linkharvest/internal/services/api/market"
)

func TestNew_RequiresPorts(t *testing.T) {
	testkit.MustPanic(t, func() { New(modkit.Deps{}) })
}

func TestNew_Defaults(t *testing.T) {
	m := New(modkit.Deps{}, modkit.WithPorts(Ports{
		Markets: market.Markets{Allowed: []country.Code{country.PL}, Primary: country.PL},
		Secret:  "s",
	}))
	if m.Name() != "harvest-api" {
		t.Fatalf("name = %q", m.Name())
	}
	mm := m.(*Module)
	if mm.Prefix() != "/harvest" {
		t.Fatalf("prefix = %q", mm.Prefix())
	}
	if p, ok := m.Ports().(Ports); !ok || p.Secret != "s" {
		t.Fatalf("ports = %#v", m.Ports())
	}
}
