// Command linkharvest-cron triggers harvests on a running API over HTTP
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/module"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"

	harvestmod "linkharvest/internal/services/harvest/module"
	schedmod "linkharvest/internal/services/scheduler/module"
	"linkharvest/internal/services/scheduler/service"

	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		fOnce    = flag.Bool("once", false, "trigger every allowed country once and exit")
		fCountry = flag.String("country", "", "with -once, trigger only this country")
		fBaseURL = flag.String("base-url", "", "API base url (overrides SCHEDULER_BASE_URL)")
	)
	flag.Parse()

	root := config.New()
	l := logger.Get()

	ho := harvestmod.FromConfig(root)
	so := schedmod.FromConfig(root)
	so.Mode = schedmod.ModeHTTP
	if *fBaseURL != "" {
		so.BaseURL = *fBaseURL
	}
	if ho.Secret == "" {
		l.Fatal().Msg("HARVEST_SECRET is required to call the trigger endpoint")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *fOnce {
		targets := ho.Allowed
		if *fCountry != "" {
			c, err := country.Parse(*fCountry)
			if err != nil || !country.Contains(ho.Allowed, c) {
				l.Fatal().Err(err).Str("country", *fCountry).Msg("country is not allowed")
			}
			targets = []country.Code{c}
		}
		trig := service.NewHTTP(so.BaseURL, ho.Secret, so.HTTPTimeout, *l)
		g, gctx := errgroup.WithContext(ctx)
		for _, c := range targets {
			g.Go(func() error { return trig.Fire(gctx, c) })
		}
		if err := g.Wait(); err != nil {
			l.Error().Err(err).Msg("trigger failed")
			stop()
			os.Exit(1)
		}
		return
	}

	deps := modkit.Deps{Log: *l, Cfg: root}
	sched := schedmod.NewWith(deps, so, ho.Secret, ho.Primary, nil)
	sp := module.MustPortsOf[schedmod.Ports](sched)

	if err := sp.Scheduler.Initialize(ctx, ho.Allowed, sp.Cadence); err != nil {
		l.Fatal().Err(err).Msg("scheduler init failed")
	}
	<-ctx.Done()

	sctx, cancel := context.WithTimeout(context.Background(), root.Prefix("SCHEDULER_").MayDuration("SHUTDOWN_GRACE", 10*time.Second))
	defer cancel()
	if err := sp.Scheduler.Stop(sctx); err != nil {
		l.Warn().Err(err).Msg("scheduler stop")
	}
	l.Info().Msg("linkharvest-cron stopped")
}
