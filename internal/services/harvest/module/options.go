package module

import (
	"time"

	"linkharvest/internal/adapters/browser"
	"linkharvest/internal/core/country"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"
	"linkharvest/internal/services/harvest/guardrails"
	"linkharvest/internal/services/harvest/service"
)

// Browser drivers
const (
	DriverRod        = "rod"
	DriverPlaywright = "playwright"
)

// Options for the harvest module
type Options struct {
	Secret      string
	Target      int
	Allowed     []country.Code
	Primary     country.Code
	RevealDelay time.Duration

	Portal service.Portal

	Driver   string
	Launch   browser.LaunchOptions
	Timeouts guardrails.Timeouts
}

// FromConfig fills options from environment
// HARVEST_SECRET is the trigger secret (falls back to SECRET_PASSWORD); empty disables scheduling
// HARVEST_TARGET (default 100, falls back to LINKS_TARGET) is the per country link target
// HARVEST_COUNTRIES (default PL,DE,AT,NL) is the allowed subset, HARVEST_PRIMARY (default PL) the default partition
// PORTAL_* holds the portal URLs, credentials (fall back to GW_USERNAME/GW_PASSWORD) and SEL_* selector overrides
// BROWSER_* picks the driver and its launch options
func FromConfig(cfg config.Conf) Options {
	h := cfg.Prefix("HARVEST_").
		Legacy("SECRET", "SECRET_PASSWORD").
		Legacy("TARGET", "LINKS_TARGET")
	p := cfg.Prefix("PORTAL_").
		Legacy("USERNAME", "GW_USERNAME").
		Legacy("PASSWORD", "GW_PASSWORD")
	b := cfg.Prefix("BROWSER_")

	allowed, err := country.ParseList(h.MayCSV("COUNTRIES", country.Strings(country.DefaultAllowed)))
	if err != nil || len(allowed) == 0 {
		logger.Get().Panic().Err(err).Msg("invalid HARVEST_COUNTRIES")
	}
	primary, err := country.Parse(h.MayString("PRIMARY", string(country.Primary)))
	if err != nil || !country.Contains(allowed, primary) {
		logger.Get().Panic().Err(err).Str("primary", string(primary)).Msg("HARVEST_PRIMARY must be an allowed country")
	}

	def := service.DefaultSelectors
	o := Options{
		Secret:      h.MayString("SECRET", ""),
		Target:      max(0, h.MayInt("TARGET", 100)),
		Allowed:     allowed,
		Primary:     primary,
		RevealDelay: h.MayDuration("REVEAL_DELAY", 3*time.Second),

		Portal: service.Portal{
			LoginURL:  p.MayURL("LOGIN_URL", "https://newshop.gw-int.pl/login"),
			TargetURL: p.MayURL("TARGET_URL", "https://newshop.gw-int.pl/new-partner/email?type=1&contractType=1"),
			Username:  p.MayString("USERNAME", ""),
			Password:  p.MayString("PASSWORD", ""),
			Selectors: service.Selectors{
				Username: p.MayString("SEL_USERNAME", def.Username),
				Password: p.MayString("SEL_PASSWORD", def.Password),
				Submit:   p.MayString("SEL_SUBMIT", def.Submit),
				Country:  p.MayString("SEL_COUNTRY", def.Country),
				Copy:     p.MayString("SEL_COPY", def.Copy),
				Link:     p.MayString("SEL_LINK", def.Link),
			},
		},

		Driver: b.MayEnum("DRIVER", DriverRod, DriverRod, DriverPlaywright),
		Launch: browser.LaunchOptions{
			Headless:  b.MayBool("HEADLESS", true),
			Bin:       b.MayString("BIN", ""),
			Remote:    b.MayString("REMOTE", ""),
			NoSandbox: b.MayBool("NO_SANDBOX", false),
			Stealth:   b.MayBool("STEALTH", true),
			Install:   b.MayBool("INSTALL", false),
		},
		Timeouts: guardrails.Timeouts{
			Page:     b.MayDuration("PAGE_TIMEOUT", guardrails.DefaultTimeouts.Page),
			Selector: b.MayDuration("SELECTOR_TIMEOUT", guardrails.DefaultTimeouts.Selector),
		},
	}
	return o
}

// Service converts options into the pipeline config
func (o Options) Service() service.Config {
	return service.Config{
		Target:      o.Target,
		RevealDelay: o.RevealDelay,
		Timeouts:    o.Timeouts,
		Portal:      o.Portal,
	}
}
