// Package browser owns the shared headless browser and one isolated browsing
// context per country. Drivers live in the rodx and pwx subpackages
package browser

import (
	"context"
	"errors"
)

// ErrNotInitialized is returned by Pool.Page before Initialize succeeded
var ErrNotInitialized = errors.New("browser: pool not initialized")

// WaitPolicy selects what "loaded" means for a navigation
type WaitPolicy uint8

const (
	// WaitLoad waits for the load event
	WaitLoad WaitPolicy = iota
	// WaitNetworkIdle waits until the network has gone quiet
	WaitNetworkIdle
)

// LaunchOptions configures how a driver starts the shared browser process
type LaunchOptions struct {
	Headless  bool
	Bin       string // optional path to a chromium binary
	Remote    string // devtools websocket of an already running browser (rod only)
	NoSandbox bool
	Stealth   bool // patch navigator fingerprints on new pages (rod only)
	Install   bool // download browsers before launch (playwright only)
}

// Driver launches the shared browser
type Driver interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is a running browser process
type Browser interface {
	NewContext(ctx context.Context) (Context, error)
	Close() error
}

// Context is an isolated browsing context with its own cookies and storage
type Context interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is the automation surface the harvest pipeline drives.
// Every call is bounded by ctx
type Page interface {
	Navigate(ctx context.Context, url string, wait WaitPolicy) error
	WaitVisible(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	// Submit clicks selector and waits for the resulting navigation
	Submit(ctx context.Context, selector string) error
	Value(ctx context.Context, selector string) (string, error)
	Select(ctx context.Context, selector, value string) error
	Reload(ctx context.Context) error
	Close() error
}
