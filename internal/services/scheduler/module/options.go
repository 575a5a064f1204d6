package module

import (
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"
)

// Trigger modes
const (
	ModeInProcess = "inprocess"
	ModeHTTP      = "http"
)

// Options for the scheduler module
type Options struct {
	Enabled        bool
	PrimaryCadence string
	DefaultCadence string
	Mode           string
	BaseURL        string
	HTTPTimeout    time.Duration
	Location       *time.Location
	// Paused countries keep their schedule spec but never fire
	Paused []country.Code
}

// FromConfig fills options from environment
// SCHEDULER_ENABLED (default true)
// SCHEDULER_PRIMARY_CADENCE (default hourly) and SCHEDULER_DEFAULT_CADENCE (default monthly) are five-field cron expressions
// SCHEDULER_MODE (default inprocess) picks between admitting locally and calling SCHEDULER_BASE_URL
// SCHEDULER_TZ (default Local) is the zone cadences are evaluated in
// SCHEDULER_PAUSED lists countries whose schedule is disabled
func FromConfig(cfg config.Conf) Options {
	s := cfg.Prefix("SCHEDULER_")
	tz := s.MayString("TZ", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Get().Panic().Err(err).Str("tz", tz).Msg("invalid SCHEDULER_TZ")
	}
	paused, err := country.ParseList(s.MayCSV("PAUSED", nil))
	if err != nil {
		logger.Get().Panic().Err(err).Msg("invalid SCHEDULER_PAUSED")
	}
	return Options{
		Enabled:        s.MayBool("ENABLED", true),
		PrimaryCadence: s.MayString("PRIMARY_CADENCE", "0 * * * *"),
		DefaultCadence: s.MayString("DEFAULT_CADENCE", "0 0 1 * *"),
		Mode:           s.MayEnum("MODE", ModeInProcess, ModeInProcess, ModeHTTP),
		BaseURL:        s.MayURL("BASE_URL", "http://localhost:4000"),
		HTTPTimeout:    s.MayDuration("HTTP_TIMEOUT", 30*time.Minute),
		Location:       loc,
		Paused:         paused,
	}
}
