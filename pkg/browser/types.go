package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/config"
)

// Session is a snapshot of the resources of a launched browser session.
type Session struct {
	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the isolated browser context of the scenario
	Context playwright.BrowserContext

	// Page is the single page every action targets
	Page playwright.Page

	// Dialogs captures JavaScript dialogs opened by Page
	Dialogs *DialogQueue

	// Config is the launch configuration the session was built from
	Config config.LaunchConfig

	// StartedAt is when the page became ready
	StartedAt time.Time
}

// PageSource yields the page actions operate on. SessionManager is the
// production implementation.
type PageSource interface {
	Page() (playwright.Page, error)
}

// Default values for waits and retries.
const (
	// DefaultWaitTimeout applies when a wait is given a zero timeout.
	DefaultWaitTimeout = 30 * time.Second

	// DefaultAssertTimeout bounds how long assertions poll for a match.
	DefaultAssertTimeout = 5 * time.Second

	// DefaultPollInterval is the delay between assertion polls.
	DefaultPollInterval = 100 * time.Millisecond

	// NavigationRetryDelay is the fixed pause between navigation attempts.
	NavigationRetryDelay = time.Second

	// DefaultNavigationAttempts is used by Navigate.
	DefaultNavigationAttempts = 3
)

// Load states accepted by Waits.WaitForLoadState.
const (
	LoadStateLoad             = "load"
	LoadStateDOMContentLoaded = "domcontentloaded"
	LoadStateNetworkIdle      = "networkidle"
)
