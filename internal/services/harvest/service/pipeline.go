package service

import (
	"context"
	"fmt"
	"time"

	"linkharvest/internal/adapters/browser"
	"linkharvest/internal/core/country"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/logger"
	ptime "linkharvest/internal/platform/time"
	"linkharvest/internal/services/harvest/domain"
	"linkharvest/internal/services/harvest/guardrails"
)

// sleep waits out the reveal delay; swapped in tests
var sleep = ptime.Sleep

// stage is one state of a harvest run
type stage uint8

const (
	stageCount stage = iota
	stageAnalytics
	stageTarget
	stageAuthenticate
	stageNavigate
	stageExtract
	stageDone
)

func (s stage) String() string {
	switch s {
	case stageCount:
		return "count"
	case stageAnalytics:
		return "analytics"
	case stageTarget:
		return "target"
	case stageAuthenticate:
		return "authenticate"
	case stageNavigate:
		return "navigate"
	case stageExtract:
		return "extract"
	case stageDone:
		return "done"
	}
	return "unknown"
}

// run carries state between stages
type run struct {
	country  country.Code
	repo     domain.StorageRepo
	existing int
	page     browser.Page

	res domain.Result
	err error
}

// Harvest runs the pipeline for c. A returned error means the run could not start
// (the count failed); every other failure is reported in the Result.
// The country's browsing context is closed on every path
func (s *Svc) Harvest(ctx context.Context, c country.Code) (domain.Result, error) {
	r := &run{country: c, repo: s.repo()}
	defer s.release(ctx, c)

	for st := stageCount; st != stageDone; {
		next := s.step(ctx, st, r)
		logger.C(ctx).Debug().Str("stage", st.String()).Str("next", next.String()).Msg("harvest stage")
		st = next
	}
	return r.res, r.err
}

func (s *Svc) step(ctx context.Context, st stage, r *run) stage {
	switch st {
	case stageCount:
		return s.count(ctx, r)
	case stageAnalytics:
		s.analytics(ctx, r)
		return stageTarget
	case stageTarget:
		if r.existing >= s.Cfg.Target {
			r.res = domain.Result{Success: true, Outcome: domain.OutcomeTargetMet, Message: "target already met"}
			return stageDone
		}
		return stageAuthenticate
	case stageAuthenticate:
		if err := s.authenticate(ctx, r); err != nil {
			r.res = failed(err)
			return stageDone
		}
		return stageNavigate
	case stageNavigate:
		if err := s.navigate(ctx, r); err != nil {
			r.res = failed(err)
			return stageDone
		}
		return stageExtract
	case stageExtract:
		s.extract(ctx, r)
		return stageDone
	}
	return stageDone
}

func failed(err error) domain.Result {
	return domain.Result{
		Success: false,
		Outcome: domain.OutcomeFailed,
		Message: "Failed to scrape the page: " + err.Error(),
		Cause:   err.Error(),
	}
}

func (s *Svc) release(ctx context.Context, c country.Code) {
	if err := s.Pool.CloseContext(c); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("release browsing context")
	}
}

func (s *Svc) count(ctx context.Context, r *run) stage {
	n, err := r.repo.CountByCountry(ctx, r.country)
	if err != nil {
		r.err = perr.WithOp(err, "harvest.count")
		return stageDone
	}
	r.existing = n
	return stageAnalytics
}

// analytics failures never stop the run
func (s *Svc) analytics(ctx context.Context, r *run) {
	smp := domain.Sample{At: time.Now().UTC(), Available: r.existing, Country: r.country}
	log := logger.C(ctx)
	if err := r.repo.AppendAnalytics(ctx, smp); err != nil {
		log.Warn().Err(err).Msg("append analytics sample")
	}
	if s.Sink != nil {
		if err := s.Sink.AppendSample(ctx, smp); err != nil {
			log.Warn().Err(err).Msg("mirror analytics sample")
		}
	}
}

func (s *Svc) authenticate(ctx context.Context, r *run) error {
	start := time.Now()
	p := s.Cfg.Portal
	sel := p.Selectors
	t := s.Cfg.Timeouts

	if err := s.Pool.Initialize(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "browser unavailable")
	}
	page, err := s.Pool.Page(ctx, r.country)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "open page")
	}
	r.page = page

	if err := bounded(ctx, guardrails.ForPage, t, func(ctx context.Context) error {
		return page.Navigate(ctx, p.LoginURL, browser.WaitLoad)
	}); err != nil {
		return perr.FromBrowser(err, "failed to load login page")
	}

	login := func() error {
		for _, f := range []struct{ sel, text string }{
			{sel.Username, p.Username},
			{sel.Password, p.Password},
		} {
			if err := bounded(ctx, guardrails.ForSelector, t, func(ctx context.Context) error {
				return page.WaitVisible(ctx, f.sel)
			}); err != nil {
				return err
			}
			if err := bounded(ctx, guardrails.ForPage, t, func(ctx context.Context) error {
				return page.Type(ctx, f.sel, f.text)
			}); err != nil {
				return err
			}
		}
		if err := bounded(ctx, guardrails.ForSelector, t, func(ctx context.Context) error {
			return page.WaitVisible(ctx, sel.Submit)
		}); err != nil {
			return err
		}
		return bounded(ctx, guardrails.ForPage, t, func(ctx context.Context) error {
			return page.Submit(ctx, sel.Submit)
		})
	}
	if err := login(); err != nil {
		return perr.FromBrowser(err, "login process failed")
	}

	logger.C(ctx).Info().Dur("elapsed", time.Since(start)).Msg("logged in")
	return nil
}

func (s *Svc) navigate(ctx context.Context, r *run) error {
	err := bounded(ctx, guardrails.ForPage, s.Cfg.Timeouts, func(ctx context.Context) error {
		return r.page.Navigate(ctx, s.Cfg.Portal.TargetURL, browser.WaitNetworkIdle)
	})
	return perr.FromBrowser(err, "failed to navigate to target page")
}

func (s *Svc) extract(ctx context.Context, r *run) {
	log := logger.C(ctx)
	remaining := max(0, s.Cfg.Target-r.existing)
	res := &r.res

	for i := 1; i <= remaining; i++ {
		if ctx.Err() != nil {
			log.Warn().Int("done", i-1).Int("planned", remaining).Msg("run cancelled, stopping extraction")
			break
		}
		res.Attempted++

		got, err := s.iteration(ctx, r)
		switch {
		case err != nil:
			res.Failed++
			log.Error().Err(err).Int("iteration", i).Int("of", remaining).Msg("extract link")
		case got == yieldInserted:
			res.Extracted++
			log.Info().Int("iteration", i).Int("of", remaining).Msg("link extracted")
		case got == yieldEmpty:
			res.Empty++
			log.Debug().Int("iteration", i).Msg("empty link skipped")
		default:
			res.Duplicates++
			log.Debug().Int("iteration", i).Msg("duplicate link skipped")
		}

		if err := bounded(ctx, guardrails.ForPage, s.Cfg.Timeouts, r.page.Reload); err != nil {
			log.Warn().Err(err).Int("iteration", i).Msg("reload page")
		}
	}

	res.Message = fmt.Sprintf("Found %d links", res.Extracted)
	// reaching extraction is a successful run; the outcome tells whether every reveal paid off
	res.Success = true
	res.Outcome = domain.OutcomeComplete
	if res.Failed > 0 || res.Empty > 0 || res.Attempted < remaining {
		res.Outcome = domain.OutcomePartial
	}
	log.Info().
		Int("extracted", res.Extracted).
		Int("failed", res.Failed).
		Int("duplicates", res.Duplicates).
		Int("empty", res.Empty).
		Msg("extraction finished")
}

// yield is what one iteration left behind
type yield uint8

const (
	yieldNone yield = iota
	yieldInserted
	yieldDuplicate
	yieldEmpty
)

// iteration reveals and stores one link
func (s *Svc) iteration(ctx context.Context, r *run) (yield, error) {
	sel := s.Cfg.Portal.Selectors
	t := s.Cfg.Timeouts
	page := r.page
	code := string(r.country)

	err := bounded(ctx, guardrails.ForPage, t, func(ctx context.Context) error {
		if err := page.WaitVisible(ctx, sel.Country); err != nil {
			return err
		}
		cur, err := page.Value(ctx, sel.Country)
		if err != nil {
			return err
		}
		if cur == code {
			return nil
		}
		return page.Select(ctx, sel.Country, code)
	})
	if err != nil {
		return yieldNone, perr.FromBrowser(err, "failed to set country")
	}

	if err := bounded(ctx, guardrails.ForPage, t, func(ctx context.Context) error {
		if err := page.WaitVisible(ctx, sel.Copy); err != nil {
			return err
		}
		return page.Click(ctx, sel.Copy)
	}); err != nil {
		return yieldNone, perr.FromBrowser(err, "copy button")
	}

	// the portal renders the link a moment after the click
	if err := sleep(ctx, s.Cfg.RevealDelay); err != nil {
		return yieldNone, err
	}

	var link string
	if err := bounded(ctx, guardrails.ForPage, t, func(ctx context.Context) error {
		if err := page.WaitVisible(ctx, sel.Link); err != nil {
			return err
		}
		v, err := page.Value(ctx, sel.Link)
		link = v
		return err
	}); err != nil {
		return yieldNone, perr.FromBrowser(err, "link input")
	}
	if link == "" {
		return yieldEmpty, nil
	}

	inserted, err := r.repo.InsertIfAbsent(ctx, domain.Link{Value: link, Country: r.country, CreatedAt: time.Now().UTC()})
	if err != nil {
		return yieldNone, fmt.Errorf("store link: %w", err)
	}
	if inserted {
		return yieldInserted, nil
	}
	return yieldDuplicate, nil
}

// bounded runs fn under a child context from limit
func bounded(
	ctx context.Context,
	limit func(context.Context, guardrails.Timeouts) (context.Context, context.CancelFunc),
	t guardrails.Timeouts,
	fn func(context.Context) error,
) error {
	cctx, cancel := limit(ctx, t)
	defer cancel()
	return fn(cctx)
}
