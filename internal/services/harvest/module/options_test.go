package module

import (
	"testing"
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/testkit"
	"linkharvest/internal/services/harvest/service"
)

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	if o.Target != 100 || o.Primary != country.PL || o.RevealDelay != 3*time.Second {
		t.Fatalf("opts = %+v", o)
	}
	if len(o.Allowed) != 4 || o.Allowed[3] != country.NL {
		t.Fatalf("allowed = %v", o.Allowed)
	}
	if o.Driver != DriverRod || !o.Launch.Headless || !o.Launch.Stealth {
		t.Fatalf("browser = %s %+v", o.Driver, o.Launch)
	}
	if o.Timeouts.Page != time.Minute || o.Timeouts.Selector != time.Second {
		t.Fatalf("timeouts = %+v", o.Timeouts)
	}
	if o.Portal.Selectors != service.DefaultSelectors {
		t.Fatalf("selectors = %+v", o.Portal.Selectors)
	}
	testkit.MustContain(t, o.Portal.TargetURL, "/new-partner/email")
}

func TestFromConfig_Overrides(t *testing.T) {
	t.Setenv("HARVEST_COUNTRIES", "de, Węgry ,de")
	t.Setenv("HARVEST_PRIMARY", "hu")
	t.Setenv("HARVEST_TARGET", "12")
	t.Setenv("HARVEST_REVEAL_DELAY", "500ms")
	t.Setenv("BROWSER_DRIVER", "playwright")
	t.Setenv("BROWSER_SELECTOR_TIMEOUT", "2s")
	t.Setenv("PORTAL_SEL_COPY", "#copy")

	o := FromConfig(config.New())
	if len(o.Allowed) != 2 || o.Allowed[0] != country.DE || o.Allowed[1] != country.HU {
		t.Fatalf("allowed = %v", o.Allowed)
	}
	if o.Primary != country.HU || o.Target != 12 || o.RevealDelay != 500*time.Millisecond {
		t.Fatalf("opts = %+v", o)
	}
	if o.Driver != DriverPlaywright || o.Timeouts.Selector != 2*time.Second {
		t.Fatalf("browser = %s %+v", o.Driver, o.Timeouts)
	}
	if o.Portal.Selectors.Copy != "#copy" || o.Portal.Selectors.Link != service.DefaultSelectors.Link {
		t.Fatalf("selectors = %+v", o.Portal.Selectors)
	}
}

func TestFromConfig_LegacyNames(t *testing.T) {
	t.Setenv("SECRET_PASSWORD", "s3cret")
	t.Setenv("LINKS_TARGET", "7")
	t.Setenv("GW_USERNAME", "agent")
	t.Setenv("GW_PASSWORD", "pw")

	o := FromConfig(config.New())
	if o.Secret != "s3cret" || o.Target != 7 || o.Portal.Username != "agent" || o.Portal.Password != "pw" {
		t.Fatalf("opts = %+v", o)
	}

	t.Setenv("HARVEST_SECRET", "new")
	if got := FromConfig(config.New()).Secret; got != "new" {
		t.Fatalf("prefixed key must win, got %q", got)
	}
}

func TestFromConfig_PrimaryOutsideAllowedPanics(t *testing.T) {
	t.Setenv("HARVEST_COUNTRIES", "DE,AT")
	testkit.MustPanic(t, func() { FromConfig(config.New()) })
}

func TestFromConfig_UnknownCountryPanics(t *testing.T) {
	t.Setenv("HARVEST_COUNTRIES", "PL,XX")
	testkit.MustPanic(t, func() { FromConfig(config.New()) })
}
