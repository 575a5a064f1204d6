// Package guardrails keeps harvest runs from overlapping and bounds their steps
package guardrails

import (
	"context"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"linkharvest/internal/core/country"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/logger"
	"linkharvest/internal/services/harvest/domain"

	"github.com/google/uuid"
)

// newRunID is swapped in tests
var newRunID = uuid.NewString

// Run is the handle of one admitted harvest. It is registered under its country
// from admission until the pipeline settles
type Run struct {
	ID        string
	Country   country.Code
	StartedAt time.Time

	done chan struct{}
	res  domain.Result
	err  error
}

// Done is closed once the run settled and left the registry
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run settles or ctx ends. An ended ctx leaves the run going
func (r *Run) Wait(ctx context.Context) (domain.Result, error) {
	select {
	case <-r.done:
		return r.res, r.err
	case <-ctx.Done():
		return domain.Result{}, ctx.Err()
	}
}

// Info describes the run for listings
func (r *Run) Info() domain.RunInfo {
	return domain.RunInfo{ID: r.ID, Country: r.Country, StartedAt: r.StartedAt}
}

// Flight admits at most one run per country
type Flight struct {
	h domain.HarvesterPort
	// root is handed to runs through their context; log adds the component
	root logger.Logger
	log  logger.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	runs   map[country.Code]*Run
	closed bool
}

// NewFlight returns a guard whose runs execute h under a context detached from any request
func NewFlight(h domain.HarvesterPort, log logger.Logger) *Flight {
	if h == nil {
		panic("guardrails.Flight requires a non nil harvester")
	}
	base, cancel := context.WithCancel(context.Background())
	return &Flight{
		h:      h,
		root:   log,
		log:    log.With().Str("component", "flight").Logger(),
		base:   base,
		cancel: cancel,
		runs:   make(map[country.Code]*Run),
	}
}

// Admit starts a run for c unless one is in flight. It returns the in-flight run and
// false on conflict, and nil and false once the guard is closed
func (f *Flight) Admit(c country.Code) (*Run, bool) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, false
	}
	if cur, ok := f.runs[c]; ok {
		f.mu.Unlock()
		return cur, false
	}
	run := &Run{
		ID:        newRunID(),
		Country:   c,
		StartedAt: time.Now().UTC(),
		done:      make(chan struct{}),
	}
	f.runs[c] = run
	f.wg.Add(1)
	f.mu.Unlock()

	go f.execute(run)
	return run, true
}

func (f *Flight) execute(run *Run) {
	ctx := logger.WithRun(logger.WithLogger(f.base, f.root), run.ID, string(run.Country))
	log := logger.C(ctx)

	defer func() {
		if p := recover(); p != nil {
			run.err = perr.PanicErrf("harvest panicked: %v", p)
			log.Error().Interface("panic", p).Bytes("stack", debug.Stack()).Msg("harvest panic")
		}
		// the handle leaves the registry before anyone waiting is released
		f.mu.Lock()
		if f.runs[run.Country] == run {
			delete(f.runs, run.Country)
		}
		f.mu.Unlock()
		close(run.done)
		f.wg.Done()
	}()

	log.Info().Msg("harvest admitted")
	res, err := f.h.Harvest(ctx, run.Country)
	res.RunID = run.ID
	run.res, run.err = res, err
	log.Info().
		Bool("success", res.Success).
		Str("outcome", string(res.Outcome)).
		Int("extracted", res.Extracted).
		Dur("elapsed", time.Since(run.StartedAt)).
		AnErr("error", err).
		Msg("harvest settled")
}

// Active lists in-flight runs ordered by country
func (f *Flight) Active() []domain.RunInfo {
	f.mu.Lock()
	out := make([]domain.RunInfo, 0, len(f.runs))
	for _, r := range f.runs {
		out = append(out, r.Info())
	}
	f.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

// Wait blocks until every admitted run settled
func (f *Flight) Wait() { f.wg.Wait() }

// Close stops admitting and waits for in-flight runs. When ctx ends first the runs
// are cancelled and Close still waits for them to settle before returning ctx.Err()
func (f *Flight) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		f.cancel()
		return nil
	case <-ctx.Done():
		f.log.Warn().Int("in_flight", len(f.Active())).Msg("drain timed out, cancelling runs")
		f.cancel()
		<-drained
		return ctx.Err()
	}
}
