// @title         linkharvest API
// @version       0.1.0
// @description   Triggers per-country referral link harvests and serves stored links

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/module"
	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"
	phttp "linkharvest/internal/platform/net/http"
	"linkharvest/internal/platform/store"

	"linkharvest/internal/services/api"
	harvestmod "linkharvest/internal/services/harvest/module"
	schedmod "linkharvest/internal/services/scheduler/module"

	"golang.org/x/sync/errgroup"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// postgres is required, clickhouse mirrors analytics when SERVICE_CLICKHOUSE_ENABLED.
	// SERVICE_PGSQL_BOOTSTRAP creates the link tables on first start
	st, err := store.Open(ctx, store.FromConfig(root, "linkharvest-api"),
		store.WithLogger(*l),
		store.WithBootstrap(harvestmod.Schema...),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}

	deps := modkit.FromStore(*l, root, st)

	harvest := harvestmod.New(deps)
	hp := module.MustPortsOf[harvestmod.Ports](harvest)

	sched := schedmod.New(deps, hp.Options.Secret, hp.Options.Primary, hp.Flight)
	sp := module.MustPortsOf[schedmod.Ports](sched)

	srv := phttp.NewServer(apiCfg)
	opt := api.FromConfig(root)
	opt.Deps = deps
	opt.Harvest = hp
	api.Mount(srv.Router(), opt)

	l.Info().
		Strs("countries", country.Strings(hp.Options.Allowed)).
		Str("primary", string(hp.Options.Primary)).
		Int("target", hp.Options.Target).
		Str("driver", hp.Options.Driver).
		Msg("linkharvest starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	g.Go(func() error {
		if err := sp.Scheduler.Initialize(gctx, hp.Options.Allowed, sp.Cadence); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})
	runErr := g.Wait()

	// stop triggering first, then drain runs, then release the browser and stores
	grace := apiCfg.MayDuration("SHUTDOWN_GRACE", 15*time.Second)
	sctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := sp.Scheduler.Stop(sctx); err != nil {
		l.Warn().Err(err).Msg("scheduler stop")
	}
	if err := harvest.Close(sctx); err != nil {
		l.Warn().Err(err).Msg("harvest drain")
	}
	if err := st.Close(sctx); err != nil {
		l.Error().Err(err).Msg("failed to close store")
	}

	if runErr != nil {
		l.Error().Err(runErr).Msg("linkharvest stopped")
		stop()
		os.Exit(1)
	}
	l.Info().Msg("linkharvest stopped")
}
