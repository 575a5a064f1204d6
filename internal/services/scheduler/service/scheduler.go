// Package service drives recurring harvest triggers from five-field cron cadences
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// Registrar registers recurring jobs; *cron.Cron satisfies it
type Registrar interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
	Start()
	Stop() context.Context
}

// Trigger starts a harvest for one country
type Trigger interface {
	Fire(ctx context.Context, c country.Code) error
}

// TriggerFunc adapts a function to Trigger
type TriggerFunc func(ctx context.Context, c country.Code) error

// Fire calls f
func (f TriggerFunc) Fire(ctx context.Context, c country.Code) error { return f(ctx, c) }

// CadenceFunc returns the cron expression for c
type CadenceFunc func(c country.Code) string

// Cadence gives primary its own expression and every other country def
func Cadence(primary country.Code, primarySpec, def string) CadenceFunc {
	return func(c country.Code) string {
		if c == primary {
			return primarySpec
		}
		return def
	}
}

// Config for the scheduler
type Config struct {
	Enabled bool
	// Secret must be set for scheduled triggers to authenticate
	Secret string
	// Paused countries get a disabled spec
	Paused []country.Code
}

// Spec is the schedule of one country, fixed once Initialize built it
type Spec struct {
	Country country.Code
	Cadence string
	Enabled bool
}

// Specs builds one spec per allowed country, disabling the paused ones
func Specs(allowed []country.Code, cadence CadenceFunc, paused []country.Code) []Spec {
	out := make([]Spec, 0, len(allowed))
	for _, c := range allowed {
		out = append(out, Spec{Country: c, Cadence: cadence(c), Enabled: !country.Contains(paused, c)})
	}
	return out
}

// Svc fires each country once on start and then on its cadence
type Svc struct {
	trig Trigger
	reg  Registrar
	cfg  Config
	log  logger.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// New returns a scheduler. A nil reg uses a cron instance with the standard parser
func New(trig Trigger, reg Registrar, cfg Config, log logger.Logger) *Svc {
	if trig == nil {
		panic("scheduler.Svc requires a non nil Trigger")
	}
	log = log.With().Str("component", "scheduler").Logger()
	if reg == nil {
		reg = NewCron(log, time.Local)
	}
	base, cancel := context.WithCancel(context.Background())
	return &Svc{trig: trig, reg: reg, cfg: cfg, log: log, base: base, cancel: cancel}
}

// NewCron builds the default registrar. Jobs that panic are recovered and logged
func NewCron(log logger.Logger, loc *time.Location) *cron.Cron {
	cl := cronLog{l: log}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
}

// Initialize builds a spec per allowed country, fires every enabled one immediately
// and registers its cadence.
// It is a logged no-op when disabled or when no secret is configured
func (s *Svc) Initialize(ctx context.Context, allowed []country.Code, cadence CadenceFunc) error {
	if !s.cfg.Enabled {
		s.log.Info().Msg("scheduler disabled")
		return nil
	}
	if s.cfg.Secret == "" {
		s.log.Warn().Msg("no harvest secret configured, scheduler not started")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler: already initialized")
	}

	specs := Specs(allowed, cadence, s.cfg.Paused)

	// validate every expression before anything fires
	for _, sp := range specs {
		if !sp.Enabled {
			continue
		}
		if _, err := cron.ParseStandard(sp.Cadence); err != nil {
			return fmt.Errorf("scheduler: cadence for %s: %w", sp.Country, err)
		}
	}

	for _, sp := range specs {
		c := sp.Country
		if !sp.Enabled {
			s.log.Info().Str("country", string(c)).Msg("harvest schedule paused")
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.fire(c, "initial")
		}()
		if _, err := s.reg.AddFunc(sp.Cadence, func() { s.fire(c, "cron") }); err != nil {
			return fmt.Errorf("scheduler: register %s: %w", c, err)
		}
		s.log.Info().Str("country", string(c)).Str("cadence", sp.Cadence).Msg("harvest scheduled")
	}

	s.reg.Start()
	s.started = true
	return nil
}

func (s *Svc) fire(c country.Code, reason string) {
	if s.base.Err() != nil {
		return
	}
	start := time.Now()
	err := s.trig.Fire(s.base, c)
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Str("country", string(c)).Str("reason", reason).Dur("elapsed", time.Since(start)).Msg("scheduled harvest fired")
}

// Stop stops the cadence and waits for running triggers until ctx ends,
// then cancels them
func (s *Svc) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if started {
			<-s.reg.Stop().Done()
		}
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
