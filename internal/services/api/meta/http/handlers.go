// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"linkharvest/internal/core/version"
	"linkharvest/internal/modkit/httpkit"
)

type Pinger interface {
	Ping(context.Context) error
}

// Probe is one readiness dependency. A nil Target is reported as skipped.
// Only a failing Required probe fails readiness; the rest degrade it
type Probe struct {
	Name     string
	Target   any
	Required bool
}

type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Probes      []Probe

	// ActiveRuns reports harvests in flight, nil when harvesting is not wired
	ActiveRuns func() int
	// OpenContexts reports browsing contexts held by the pool
	OpenContexts func() int

	// ProbeTimeout bounds all probes together, 2s when zero
	ProbeTimeout time.Duration
}

type handlers struct{ deps Deps }

func Register(r httpkit.Router, d Deps) {
	if d.ProbeTimeout <= 0 {
		d.ProbeTimeout = 2 * time.Second
	}
	h := &handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// Readiness values
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFail     = "fail"
	StatusSkipped  = "skipped"
	StatusUnknown  = "unknown"
)

// HealthResponse
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"linkharvest-api"`
	Started string `json:"started"  example:"2026-10-01T08:00:00Z"`
	Now     string `json:"now"      example:"2026-10-01T08:05:00Z"`
}

type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T08:05:00Z"`
}

type ServiceResponse struct {
	Name         string `json:"name"       example:"linkharvest-api"`
	Started      string `json:"started"    example:"2026-10-01T08:00:00Z"`
	Uptime       int64  `json:"uptime"     example:"300"`
	ActiveRuns   *int   `json:"activeRuns,omitempty" example:"1"`
	OpenContexts *int   `json:"openContexts,omitempty" example:"1"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Now:     stamp(time.Now()),
	}, nil
}

func probe(ctx context.Context, p Probe) ReadyCheck {
	switch t := p.Target.(type) {
	case nil:
		return ReadyCheck{Name: p.Name, Status: StatusSkipped}
	case Pinger:
		if err := t.Ping(ctx); err != nil {
			return ReadyCheck{Name: p.Name, Status: StatusFail, Error: err.Error()}
		}
		return ReadyCheck{Name: p.Name, Status: StatusOK}
	}
	return ReadyCheck{Name: p.Name, Status: StatusUnknown}
}

// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.ProbeTimeout)
	defer cancel()

	out := ReadyResponse{Status: StatusOK, Checks: make([]ReadyCheck, 0, len(h.deps.Probes))}
	for _, p := range h.deps.Probes {
		c := probe(ctx, p)
		out.Checks = append(out.Checks, c)
		switch {
		case c.Status == StatusFail && p.Required:
			out.Status = StatusFail
		case c.Status == StatusFail, c.Status == StatusUnknown:
			if out.Status == StatusOK {
				out.Status = StatusDegraded
			}
		}
	}
	out.Now = stamp(time.Now())

	if out.Status == StatusFail {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

// @Summary Service info, uptime and harvests in flight
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: stamp(h.deps.StartedAt),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}
	if h.deps.ActiveRuns != nil {
		n := h.deps.ActiveRuns()
		out.ActiveRuns = &n
	}
	if h.deps.OpenContexts != nil {
		n := h.deps.OpenContexts()
		out.OpenContexts = &n
	}
	return out, nil
}
