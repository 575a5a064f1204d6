// Package browsertest provides an in-memory browser driver for tests
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"linkharvest/internal/adapters/browser"
)

// Script customizes page behavior. Nil hooks succeed and Value returns ""
type Script struct {
	Navigate    func(ctx context.Context, url string, wait browser.WaitPolicy) error
	WaitVisible func(ctx context.Context, selector string) error
	Type        func(ctx context.Context, selector, text string) error
	Click       func(ctx context.Context, selector string) error
	Submit      func(ctx context.Context, selector string) error
	Value       func(ctx context.Context, selector string) (string, error)
	Select      func(ctx context.Context, selector, value string) error
	Reload      func(ctx context.Context) error
}

// Driver is a fake browser.Driver that records lifecycle and page calls
type Driver struct {
	Script    Script
	LaunchErr error

	mu             sync.Mutex
	launches       int
	browserCloses  int
	contextsOpened int
	contextsClosed int
	pages          int
	calls          []string
}

var _ browser.Driver = (*Driver)(nil)

// Launch implements browser.Driver
func (d *Driver) Launch(_ context.Context) (browser.Browser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.LaunchErr != nil {
		return nil, d.LaunchErr
	}
	d.launches++
	return &fakeBrowser{d: d}, nil
}

// Launches reports how many times a browser was started
func (d *Driver) Launches() int { d.mu.Lock(); defer d.mu.Unlock(); return d.launches }

// BrowserCloses reports how many browsers were closed
func (d *Driver) BrowserCloses() int { d.mu.Lock(); defer d.mu.Unlock(); return d.browserCloses }

// ContextsOpened reports how many contexts were created
func (d *Driver) ContextsOpened() int { d.mu.Lock(); defer d.mu.Unlock(); return d.contextsOpened }

// ContextsClosed reports how many contexts were closed
func (d *Driver) ContextsClosed() int { d.mu.Lock(); defer d.mu.Unlock(); return d.contextsClosed }

// Pages reports how many pages were opened
func (d *Driver) Pages() int { d.mu.Lock(); defer d.mu.Unlock(); return d.pages }

// Calls returns the recorded page calls such as "click:#copy"
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Count returns how many recorded calls equal call
func (d *Driver) Count(call string) int {
	n := 0
	for _, c := range d.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (d *Driver) record(format string, a ...any) {
	d.mu.Lock()
	d.calls = append(d.calls, fmt.Sprintf(format, a...))
	d.mu.Unlock()
}

type fakeBrowser struct {
	d      *Driver
	closed bool
}

func (b *fakeBrowser) NewContext(_ context.Context) (browser.Context, error) {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	if b.closed {
		return nil, errors.New("browsertest: browser closed")
	}
	b.d.contextsOpened++
	return &fakeContext{d: b.d, id: b.d.contextsOpened}, nil
}

func (b *fakeBrowser) Close() error {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	b.closed = true
	b.d.browserCloses++
	return nil
}

type fakeContext struct {
	d      *Driver
	id     int
	closed bool
}

func (c *fakeContext) NewPage(_ context.Context) (browser.Page, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.closed {
		return nil, errors.New("browsertest: context closed")
	}
	c.d.pages++
	return &Page{d: c.d, ContextID: c.id}, nil
}

func (c *fakeContext) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.d.contextsClosed++
	}
	return nil
}

// Page is the fake page; ContextID identifies the owning context
type Page struct {
	d         *Driver
	ContextID int
}

func (p *Page) Navigate(ctx context.Context, url string, wait browser.WaitPolicy) error {
	p.d.record("navigate:%s", url)
	if h := p.d.Script.Navigate; h != nil {
		return h(ctx, url, wait)
	}
	return ctx.Err()
}

func (p *Page) WaitVisible(ctx context.Context, sel string) error {
	p.d.record("wait:%s", sel)
	if h := p.d.Script.WaitVisible; h != nil {
		return h(ctx, sel)
	}
	return ctx.Err()
}

func (p *Page) Type(ctx context.Context, sel, text string) error {
	p.d.record("type:%s", sel)
	if h := p.d.Script.Type; h != nil {
		return h(ctx, sel, text)
	}
	return ctx.Err()
}

func (p *Page) Click(ctx context.Context, sel string) error {
	p.d.record("click:%s", sel)
	if h := p.d.Script.Click; h != nil {
		return h(ctx, sel)
	}
	return ctx.Err()
}

func (p *Page) Submit(ctx context.Context, sel string) error {
	p.d.record("submit:%s", sel)
	if h := p.d.Script.Submit; h != nil {
		return h(ctx, sel)
	}
	return ctx.Err()
}

func (p *Page) Value(ctx context.Context, sel string) (string, error) {
	p.d.record("value:%s", sel)
	if h := p.d.Script.Value; h != nil {
		return h(ctx, sel)
	}
	return "", ctx.Err()
}

func (p *Page) Select(ctx context.Context, sel, value string) error {
	p.d.record("select:%s=%s", sel, value)
	if h := p.d.Script.Select; h != nil {
		return h(ctx, sel, value)
	}
	return ctx.Err()
}

func (p *Page) Reload(ctx context.Context) error {
	p.d.record("reload")
	if h := p.d.Script.Reload; h != nil {
		return h(ctx)
	}
	return ctx.Err()
}

func (p *Page) Close() error {
	p.d.record("close-page")
	return nil
}
