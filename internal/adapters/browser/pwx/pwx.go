// Package pwx drives Chromium through playwright-go
package pwx

import (
	"context"
	"fmt"
	"io"
	"time"

	"linkharvest/internal/adapters/browser"

	"github.com/playwright-community/playwright-go"
)

// Driver starts a playwright server and one Chromium per launch
type Driver struct {
	opts browser.LaunchOptions
}

// New returns a playwright backed driver
func New(opts browser.LaunchOptions) *Driver { return &Driver{opts: opts} }

var _ browser.Driver = (*Driver)(nil)

// Launch implements browser.Driver
func (d *Driver) Launch(_ context.Context) (browser.Browser, error) {
	run := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if d.opts.Install {
		if err := playwright.Install(run); err != nil {
			return nil, fmt.Errorf("pwx: install: %w", err)
		}
	}
	pw, err := playwright.Run(run)
	if err != nil {
		return nil, fmt.Errorf("pwx: run: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	}
	if d.opts.NoSandbox {
		launch.ChromiumSandbox = playwright.Bool(false)
	}
	if d.opts.Bin != "" {
		launch.ExecutablePath = playwright.String(d.opts.Bin)
	}
	b, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("pwx: launch: %w", err)
	}
	return &pwBrowser{pw: pw, b: b}, nil
}

type pwBrowser struct {
	pw *playwright.Playwright
	b  playwright.Browser
}

func (p *pwBrowser) NewContext(_ context.Context) (browser.Context, error) {
	c, err := p.b.NewContext(playwright.BrowserNewContextOptions{})
	if err != nil {
		return nil, err
	}
	return &pwContext{c: c}, nil
}

func (p *pwBrowser) Close() error {
	err := p.b.Close()
	if stopErr := p.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}

type pwContext struct{ c playwright.BrowserContext }

func (c *pwContext) NewPage(_ context.Context) (browser.Page, error) {
	p, err := c.c.NewPage()
	if err != nil {
		return nil, err
	}
	return &pwPage{p: p}, nil
}

func (c *pwContext) Close() error { return c.c.Close() }

type pwPage struct{ p playwright.Page }

// budget converts the ctx deadline into a playwright timeout in milliseconds; 0 means no limit
func budget(ctx context.Context) *float64 {
	dl, ok := ctx.Deadline()
	if !ok {
		return playwright.Float(0)
	}
	ms := float64(time.Until(dl).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return &ms
}

func (w *pwPage) Navigate(ctx context.Context, url string, wait browser.WaitPolicy) error {
	until := playwright.WaitUntilState("load")
	if wait == browser.WaitNetworkIdle {
		until = playwright.WaitUntilState("networkidle")
	}
	_, err := w.p.Goto(url, playwright.PageGotoOptions{WaitUntil: &until, Timeout: budget(ctx)})
	return err
}

func (w *pwPage) WaitVisible(ctx context.Context, sel string) error {
	state := playwright.WaitForSelectorState("visible")
	_, err := w.p.WaitForSelector(sel, playwright.PageWaitForSelectorOptions{State: &state, Timeout: budget(ctx)})
	return err
}

func (w *pwPage) Type(ctx context.Context, sel, text string) error {
	return w.p.Fill(sel, text, playwright.PageFillOptions{Timeout: budget(ctx)})
}

func (w *pwPage) Click(ctx context.Context, sel string) error {
	return w.p.Click(sel, playwright.PageClickOptions{Timeout: budget(ctx)})
}

func (w *pwPage) Submit(ctx context.Context, sel string) error {
	if err := w.p.Click(sel, playwright.PageClickOptions{Timeout: budget(ctx)}); err != nil {
		return err
	}
	state := playwright.LoadState("load")
	return w.p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: &state, Timeout: budget(ctx)})
}

func (w *pwPage) Value(ctx context.Context, sel string) (string, error) {
	return w.p.InputValue(sel, playwright.PageInputValueOptions{Timeout: budget(ctx)})
}

func (w *pwPage) Select(ctx context.Context, sel, value string) error {
	_, err := w.p.SelectOption(sel, playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.PageSelectOptionOptions{Timeout: budget(ctx)})
	return err
}

func (w *pwPage) Reload(ctx context.Context) error {
	_, err := w.p.Reload(playwright.PageReloadOptions{Timeout: budget(ctx)})
	return err
}

func (w *pwPage) Close() error { return w.p.Close() }
