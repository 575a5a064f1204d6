// Package service runs the harvest pipeline and serves stored links
package service

import (
	"context"
	"time"

	"linkharvest/internal/core/country"
	"linkharvest/internal/modkit/repokit"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/services/harvest/domain"
	"linkharvest/internal/services/harvest/guardrails"
)

// Selectors locate the portal controls the pipeline drives
type Selectors struct {
	Username string
	Password string
	Submit   string
	Country  string // the market <select>
	Copy     string // button that reveals a fresh link
	Link     string // input holding the revealed link
}

// DefaultSelectors match the partner portal markup
var DefaultSelectors = Selectors{
	Username: "#frm-loginForm-login",
	Password: "#frm-loginForm-password",
	Submit:   `button[type="submit"]`,
	Country:  `select[name="country"]`,
	Copy:     `[data-toggle-button="copy"]`,
	Link:     `input[name="mylink"]`,
}

// Portal is where and as whom the pipeline logs in
type Portal struct {
	LoginURL  string
	TargetURL string
	Username  string
	Password  string
	Selectors Selectors
}

// Config holds configuration options for the harvest service
type Config struct {
	// Target is the number of stored links wanted per country
	Target int

	// RevealDelay is slept after the copy click before the link is read
	RevealDelay time.Duration

	Timeouts guardrails.Timeouts
	Portal   Portal
}

// Svc implements domain.HarvesterPort and domain.LinksPort
type Svc struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Pool   domain.PagePool
	Cfg    Config

	// Sink mirrors analytics samples, nil when disabled
	Sink domain.AnalyticsSink
}

var (
	_ domain.HarvesterPort = (*Svc)(nil)
	_ domain.LinksPort     = (*Svc)(nil)
)

// New constructs the harvest service
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], pool domain.PagePool, sink domain.AnalyticsSink, cfg Config) *Svc {
	if db == nil {
		panic("harvest.Svc requires a non nil TxRunner")
	}
	if binder == nil {
		panic("harvest.Svc requires a non nil Repo binder")
	}
	if pool == nil {
		panic("harvest.Svc requires a non nil page pool")
	}
	if cfg.Timeouts == (guardrails.Timeouts{}) {
		cfg.Timeouts = guardrails.DefaultTimeouts
	}
	if cfg.Portal.Selectors == (Selectors{}) {
		cfg.Portal.Selectors = DefaultSelectors
	}
	return &Svc{DB: db, Binder: binder, Pool: pool, Sink: sink, Cfg: cfg}
}

func (s *Svc) repo() domain.StorageRepo { return repokit.MustBind(s.Binder, s.DB) }

// First returns the oldest stored link for c
func (s *Svc) First(ctx context.Context, c country.Code) (domain.Link, error) {
	return s.repo().FirstLink(ctx, c)
}

// Consume removes and returns the oldest stored link for c
func (s *Svc) Consume(ctx context.Context, c country.Code) (domain.Link, error) {
	return s.repo().Consume(ctx, c)
}

// Delete removes a stored link by value
func (s *Svc) Delete(ctx context.Context, value string) error {
	ok, err := s.repo().DeleteLink(ctx, value)
	if err != nil {
		return err
	}
	if !ok {
		return perr.NotFoundf("link not found")
	}
	return nil
}

// Stats reports stored counts against the target for each allowed country
func (s *Svc) Stats(ctx context.Context, allowed []country.Code) ([]domain.Stat, error) {
	counts, err := s.repo().CountAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Stat, 0, len(allowed))
	for _, c := range allowed {
		n := counts[c]
		out = append(out, domain.Stat{
			Country: c,
			Name:    c.Name(),
			Stored:  n,
			Target:  s.Cfg.Target,
			Missing: max(0, s.Cfg.Target-n),
		})
	}
	return out, nil
}
