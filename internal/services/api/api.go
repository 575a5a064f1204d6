// Package api provides the HTTP API for the application
package api

import (
	"net/http"
	"time"

	"linkharvest/internal/modkit"
	"linkharvest/internal/modkit/httpkit"
	"linkharvest/internal/modkit/module"
	"linkharvest/internal/modkit/swaggerkit"
	"linkharvest/internal/platform/config"
	phttp "linkharvest/internal/platform/net/http"
	"linkharvest/internal/platform/net/middleware"

	harvestapi "linkharvest/internal/services/api/harvest/module"
	linksmod "linkharvest/internal/services/api/links/module"
	"linkharvest/internal/services/api/market"
	metamod "linkharvest/internal/services/api/meta/module"

	harvestmod "linkharvest/internal/services/harvest/module"

	"github.com/go-chi/chi/v5"
)

// Options are the API options
type Options struct {
	Deps modkit.Deps
	// Harvest are the ports of the harvest service module
	Harvest harvestmod.Ports

	Stack          httpkit.StackOptions
	RequestTimeout time.Duration
	EnableSwagger  bool
	EnableProfiler bool
}

// FromConfig reads the CORE_API_ switches; deps and ports are filled by the caller
func FromConfig(cfg config.Conf) Options {
	a := cfg.Prefix("CORE_API_")
	return Options{
		Stack: httpkit.StackOptions{
			CORSOrigins: a.MayCSV("CORS_ORIGINS", []string{"https://witalnosci.pl"}),
			SlowRequest: a.MayDuration("SLOW_REQUEST", 5*time.Second),
		},
		RequestTimeout: a.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		EnableSwagger:  a.MayBool("SWAGGER", false),
		EnableProfiler: a.MayBool("PROFILER", false),
	}
}

// Mount mounts the API service onto the given router.
// The trigger route is exempt from the request timeout since it awaits whole runs
func Mount(r phttp.Router, opt Options) {
	deps := opt.Deps
	hp := opt.Harvest
	markets := market.Markets{Allowed: hp.Options.Allowed, Primary: hp.Options.Primary}

	var bounded []modkit.Option
	if opt.RequestTimeout > 0 {
		bounded = append(bounded, modkit.WithMiddlewares(middleware.Timeout(opt.RequestTimeout)))
	}

	mods := []module.Module{
		metamod.New(deps, append(bounded, modkit.WithPorts(metamod.Ports{ActiveRuns: activeRuns(hp), OpenContexts: hp.OpenContexts}))...),
		linksmod.New(deps, append(bounded, modkit.WithPorts(linksmod.Ports{
			Links:   hp.Links,
			Markets: markets,
			Secret:  hp.Options.Secret,
		}))...),
		harvestapi.New(deps, modkit.WithPorts(harvestapi.Ports{
			Flight:  hp.Flight,
			Links:   hp.Links,
			Markets: markets,
			Secret:  hp.Options.Secret,
		})),
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(opt.Stack), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}

func activeRuns(hp harvestmod.Ports) func() int {
	if hp.Flight == nil {
		return nil
	}
	return func() int { return len(hp.Flight.Active()) }
}

// Handler builds a standalone handler, mostly for tests
func Handler(opt Options) http.Handler {
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), opt)
	return mux
}
