// Package rodx drives Chromium through the devtools protocol with go-rod
package rodx

import (
	"context"
	"fmt"

	"linkharvest/internal/adapters/browser"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Driver launches (or connects to) a Chromium and maps countries onto incognito contexts
type Driver struct {
	opts browser.LaunchOptions
}

// New returns a rod backed driver
func New(opts browser.LaunchOptions) *Driver { return &Driver{opts: opts} }

var _ browser.Driver = (*Driver)(nil)

// Launch implements browser.Driver
func (d *Driver) Launch(_ context.Context) (browser.Browser, error) {
	var (
		l   *launcher.Launcher
		url = d.opts.Remote
	)
	if url == "" {
		l = launcher.New().
			Headless(d.opts.Headless).
			Set("disable-blink-features", "AutomationControlled")
		if d.opts.NoSandbox {
			l = l.NoSandbox(true)
		}
		if d.opts.Bin != "" {
			l = l.Bin(d.opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("rodx: launch: %w", err)
		}
		url = u
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("rodx: connect: %w", err)
	}
	return &rodBrowser{b: b, l: l, stealth: d.opts.Stealth}, nil
}

type rodBrowser struct {
	b       *rod.Browser
	l       *launcher.Launcher
	stealth bool
}

func (r *rodBrowser) NewContext(_ context.Context) (browser.Context, error) {
	inc, err := r.b.Incognito()
	if err != nil {
		return nil, err
	}
	return &rodContext{b: inc, stealth: r.stealth}, nil
}

func (r *rodBrowser) Close() error {
	err := r.b.Close()
	if r.l != nil {
		r.l.Cleanup()
	}
	return err
}

// rodContext wraps an incognito browser; closing it disposes the browser context
type rodContext struct {
	b       *rod.Browser
	stealth bool
}

func (c *rodContext) NewPage(_ context.Context) (browser.Page, error) {
	var (
		p   *rod.Page
		err error
	)
	if c.stealth {
		p, err = stealth.Page(c.b)
	} else {
		p, err = c.b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, err
	}
	return &rodPage{p: p}, nil
}

func (c *rodContext) Close() error { return c.b.Close() }

type rodPage struct{ p *rod.Page }

func (r *rodPage) el(ctx context.Context, sel string) (*rod.Element, error) {
	el, err := r.p.Context(ctx).Element(sel)
	if err != nil {
		return nil, fmt.Errorf("rodx: element %s: %w", sel, err)
	}
	return el, nil
}

func (r *rodPage) Navigate(ctx context.Context, url string, wait browser.WaitPolicy) error {
	pg := r.p.Context(ctx)
	if wait == browser.WaitNetworkIdle {
		idle := pg.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
		if err := pg.Navigate(url); err != nil {
			return err
		}
		idle()
		return ctx.Err()
	}
	if err := pg.Navigate(url); err != nil {
		return err
	}
	return pg.WaitLoad()
}

func (r *rodPage) WaitVisible(ctx context.Context, sel string) error {
	el, err := r.el(ctx, sel)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (r *rodPage) Type(ctx context.Context, sel, text string) error {
	el, err := r.el(ctx, sel)
	if err != nil {
		return err
	}
	return el.Input(text)
}

func (r *rodPage) Click(ctx context.Context, sel string) error {
	el, err := r.el(ctx, sel)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *rodPage) Submit(ctx context.Context, sel string) error {
	el, err := r.el(ctx, sel)
	if err != nil {
		return err
	}
	loaded := r.p.Context(ctx).WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	loaded()
	return ctx.Err()
}

func (r *rodPage) Value(ctx context.Context, sel string) (string, error) {
	el, err := r.el(ctx, sel)
	if err != nil {
		return "", err
	}
	v, err := el.Property("value")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (r *rodPage) Select(ctx context.Context, sel, value string) error {
	el, err := r.el(ctx, sel)
	if err != nil {
		return err
	}
	return el.Select([]string{fmt.Sprintf("[value=%q]", value)}, true, rod.SelectorTypeCSSSector)
}

func (r *rodPage) Reload(ctx context.Context) error {
	pg := r.p.Context(ctx)
	if err := pg.Reload(); err != nil {
		return err
	}
	return pg.WaitLoad()
}

func (r *rodPage) Close() error { return r.p.Close() }
