// Package http provides the harvest trigger and run listing endpoints
package http

import (
	stdhttp "net/http"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit/httpkit"
	"linkharvest/internal/platform/logger"
	"linkharvest/internal/platform/net/middleware"
	"linkharvest/internal/services/api/market"
	"linkharvest/internal/services/harvest/domain"
	"linkharvest/internal/services/harvest/guardrails"
)

// Flight is the single-flight guard as seen by the endpoints
type Flight interface {
	Admit(c country.Code) (*guardrails.Run, bool)
	Active() []domain.RunInfo
}

// Deps are the handler dependencies
type Deps struct {
	Flight  Flight
	Links   domain.LinksPort
	Markets market.Markets
	Secret  string
}

// Register mounts the harvest routes. The trigger requires the secret in ?password=
func Register(r httpkit.Router, d Deps) {
	market.Register()
	h := &handlers{deps: d}

	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.Secret(middleware.QuerySecret{Param: "password", Secret: d.Secret}))
		httpkit.GetQuery[TriggerInput](g, "/", h.trigger)
	})
	httpkit.Get(r, "/runs", h.runs)
	httpkit.Get(r, "/stats", h.stats)
}

type handlers struct{ deps Deps }

// TriggerInput are the trigger query parameters. Wait=false answers 202 once admitted
type TriggerInput struct {
	Country string `query:"country" validate:"omitempty,country"`
	Wait    bool   `query:"wait" default:"true"`
}

// Failure is the bare body for rejected or failed triggers
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Started acknowledges a background run
type Started struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	RunID   string       `json:"runId"`
	Country country.Code `json:"country"`
}

// Finished is a settled run. Error is set when the run failed
type Finished struct {
	domain.Result
	Error string `json:"error,omitempty"`
}

const errScrape = "Failed to scrape the page"

// @Summary Trigger a harvest for one country
// @Tags Harvest
// @Produce json
// @Param country query string false "country code, defaults to the primary market"
// @Param password query string true "shared secret"
// @Param wait query bool false "await the run (default true)"
// @Success 200 {object} Finished "run finished"
// @Success 202 {object} Started "run admitted"
// @Failure 401 {object} httpkit.Unauthorized
// @Failure 409 {object} Failure "operation already in progress"
// @Failure 500 {object} Finished "pipeline error"
// @Router /harvest [get]
func (h *handlers) trigger(r *stdhttp.Request, in TriggerInput) (any, error) {
	c, err := h.deps.Markets.Resolve(in.Country)
	if err != nil {
		return nil, err
	}

	run, ok := h.deps.Flight.Admit(c)
	switch {
	case run == nil:
		return httpkit.Bare(stdhttp.StatusServiceUnavailable, Failure{Error: "service is shutting down"}), nil
	case !ok:
		return httpkit.Bare(stdhttp.StatusConflict, Failure{Error: "operation already in progress"}), nil
	}

	log := logger.C(r.Context()).With().Str("run_id", run.ID).Str("country", string(c)).Logger()
	if !in.Wait {
		log.Info().Msg("harvest admitted, not waiting")
		return httpkit.Bare(stdhttp.StatusAccepted, Started{
			Success: true,
			Message: "harvest started",
			RunID:   run.ID,
			Country: c,
		}), nil
	}

	res, err := run.Wait(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			// the caller went away; the run carries on detached
			log.Info().Msg("caller left before the run settled")
			return nil, err
		}
		return httpkit.Bare(stdhttp.StatusInternalServerError, Finished{
			Result: domain.Result{Outcome: domain.OutcomeFailed, RunID: run.ID, Cause: err.Error()},
			Error:  errScrape,
		}), nil
	}
	return httpkit.Bare(stdhttp.StatusOK, Finished{Result: res}), nil
}

// @Summary List in-flight runs
// @Tags Harvest
// @Produce json
// @Success 200 {array} domain.RunInfo "ok"
// @Router /harvest/runs [get]
func (h *handlers) runs(_ *stdhttp.Request) (any, error) {
	return h.deps.Flight.Active(), nil
}

// @Summary Stored links per allowed country against the target
// @Tags Harvest
// @Produce json
// @Success 200 {array} domain.Stat "ok"
// @Router /harvest/stats [get]
func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.deps.Links.Stats(r.Context(), h.deps.Markets.Allowed)
}
