// Package browser drives a single Playwright browser session for UI
// acceptance scenarios.
//
// # Architecture
//
// The package is built around four pieces:
//
//  1. SessionManager: owns the driver, browser, context and page and moves
//     them through a fixed lifecycle
//  2. Actions: clicks, typing, selection, uploads and navigation with retry
//  3. Waits: blocks until elements or the page reach a state
//  4. Assertions: polls page state and reports expected and actual values
//
// # Session Lifecycle
//
//	Uninitialized -> DriverReady -> BrowserReady -> ContextReady -> PageReady
//
// The driver is acquired lazily on the first Launch and reused by every
// later scenario. TeardownScenario closes the page, context and browser
// and returns to DriverReady. TeardownAll also stops the driver and
// returns to Uninitialized. Neither teardown ever fails.
//
// # Dialogs
//
// A dialog listener is registered once per page at launch. Every dialog is
// recorded in the session's DialogQueue and accepted.
//
// # Example Usage
//
//	manager := browser.NewSessionManager(browser.PlaywrightDriver(browser.DriverOptions{}), logger)
//	defer manager.TeardownAll()
//
//	if _, err := manager.Launch(settings.Launch); err != nil {
//	    return err
//	}
//	defer manager.TeardownScenario()
//
//	actions := browser.NewActions(manager, logger)
//	if err := actions.NavigateTo(settings.Environment.BaseURL(), 3); err != nil {
//	    return err
//	}
//	if err := actions.Fill("#username", settings.Environment.Username()); err != nil {
//	    return err
//	}
//	return browser.NewAssertions(manager, logger).Visible("#dashboard")
package browser
