package market

import (
	"net/http/httptest"
	"testing"

	"linkharvest/internal/core/country"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/net/http/bind"
)

var m = Markets{Allowed: []country.Code{country.PL, country.DE}, Primary: country.PL}

func TestResolve(t *testing.T) {
	for raw, want := range map[string]country.Code{"": country.PL, "de": country.DE, " Niemcy ": country.DE} {
		got, err := m.Resolve(raw)
		if err != nil || got != want {
			t.Fatalf("%q -> %q, %v", raw, got, err)
		}
	}
}

func TestResolve_Rejects(t *testing.T) {
	for _, raw := range []string{"XX", "AT"} {
		_, err := m.Resolve(raw)
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%q: err = %v", raw, err)
		}
	}
}

type in struct {
	Country string `query:"country" validate:"omitempty,country"`
}

func TestRegister_ValidatesQuery(t *testing.T) {
	Register()
	Register()

	if _, err := bind.Query[in](httptest.NewRequest("GET", "/?country=hu", nil)); err != nil {
		t.Fatalf("hu: %v", err)
	}
	_, err := bind.Query[in](httptest.NewRequest("GET", "/?country=atlantis", nil))
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("err = %v", err)
	}
	if w := perr.WireFrom(err); w.Field != "country" {
		t.Fatalf("field = %q", w.Field)
	}
}
