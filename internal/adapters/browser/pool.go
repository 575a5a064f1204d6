package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"linkharvest/internal/core/country"
	"linkharvest/internal/platform/logger"
)

// Pool shares one browser between countries and hands each country its own context
type Pool struct {
	driver Driver
	log    logger.Logger

	launchMu sync.Mutex
	browser  Browser

	mu       sync.Mutex
	contexts map[country.Code]Context
}

// NewPool builds an idle pool; nothing is launched until Initialize
func NewPool(d Driver, log logger.Logger) *Pool {
	if d == nil {
		panic("browser.Pool requires a non nil Driver")
	}
	return &Pool{
		driver:   d,
		log:      log.With().Str("component", "browser").Logger(),
		contexts: make(map[country.Code]Context),
	}
}

// Initialize launches the shared browser once; later calls are no-ops
func (p *Pool) Initialize(ctx context.Context) error {
	p.launchMu.Lock()
	defer p.launchMu.Unlock()
	if p.browser != nil {
		return nil
	}
	b, err := p.driver.Launch(ctx)
	if err != nil {
		return fmt.Errorf("browser: launch: %w", err)
	}
	p.browser = b
	p.log.Info().Msg("browser launched")
	return nil
}

func (p *Pool) current() Browser {
	p.launchMu.Lock()
	defer p.launchMu.Unlock()
	return p.browser
}

// Page opens a new tab inside the country's context, creating the context on first use
func (p *Pool) Page(ctx context.Context, c country.Code) (Page, error) {
	b := p.current()
	if b == nil {
		return nil, ErrNotInitialized
	}

	p.mu.Lock()
	bc, ok := p.contexts[c]
	p.mu.Unlock()

	if !ok {
		fresh, err := b.NewContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("browser: new context for %s: %w", c, err)
		}
		p.mu.Lock()
		if existing, raced := p.contexts[c]; raced {
			bc = existing
		} else {
			p.contexts[c] = fresh
			bc = fresh
		}
		p.mu.Unlock()
		if bc != fresh {
			_ = fresh.Close()
		} else {
			p.log.Debug().Str("country", string(c)).Msg("context created")
		}
	}

	pg, err := bc.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("browser: new page for %s: %w", c, err)
	}
	return pg, nil
}

// CloseContext drops the country's context and its pages; unknown countries are ignored
func (p *Pool) CloseContext(c country.Code) error {
	p.mu.Lock()
	bc, ok := p.contexts[c]
	delete(p.contexts, c)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	if err := bc.Close(); err != nil {
		p.log.Warn().Err(err).Str("country", string(c)).Msg("context close failed")
		return err
	}
	p.log.Debug().Str("country", string(c)).Msg("context closed")
	return nil
}

// CloseAll closes every tracked context
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	open := p.contexts
	p.contexts = make(map[country.Code]Context)
	p.mu.Unlock()

	var errs []error
	for c, bc := range open {
		if err := bc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown closes all contexts and the browser. Initialize may be called again afterwards
func (p *Pool) Shutdown() error {
	errs := []error{p.CloseAll()}

	p.launchMu.Lock()
	b := p.browser
	p.browser = nil
	p.launchMu.Unlock()

	if b != nil {
		errs = append(errs, b.Close())
		p.log.Info().Msg("browser closed")
	}
	return errors.Join(errs...)
}

// Open reports how many countries currently hold a context
func (p *Pool) Open() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.contexts)
}
