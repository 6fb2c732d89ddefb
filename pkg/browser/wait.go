package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/logging"
)

// Waits blocks until elements or the page reach a state.
type Waits struct {
	pages  PageSource
	logger *logging.Logger
}

// NewWaits creates a Waits bound to pages.
func NewWaits(pages PageSource, logger *logging.Logger) *Waits {
	if logger == nil {
		logger = logging.Discard("wait")
	}
	return &Waits{pages: pages, logger: logger}
}

// WaitForVisible waits until selector is attached and visible. A zero
// timeout means DefaultWaitTimeout.
func (w *Waits) WaitForVisible(selector string, timeout time.Duration) error {
	return w.waitFor(selector, "visible", playwright.WaitForSelectorStateVisible, timeout)
}

// WaitForHidden waits until selector is hidden or detached. A zero
// timeout means DefaultWaitTimeout.
func (w *Waits) WaitForHidden(selector string, timeout time.Duration) error {
	return w.waitFor(selector, "hidden", playwright.WaitForSelectorStateHidden, timeout)
}

// WaitForAttached waits until selector is present in the DOM.
func (w *Waits) WaitForAttached(selector string, timeout time.Duration) error {
	return w.waitFor(selector, "attached", playwright.WaitForSelectorStateAttached, timeout)
}

func (w *Waits) waitFor(selector, state string, target *playwright.WaitForSelectorState, timeout time.Duration) error {
	if selector == "" {
		return &ArgumentError{Argument: "selector", Reason: "must not be empty"}
	}
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	page, err := w.pages.Page()
	if err != nil {
		return err
	}

	w.logger.Debugf("waiting for %s to be %s (timeout %s)", selector, state, timeout)
	err = page.Locator(selector).WaitFor(playwright.LocatorWaitForOptions{
		State:   target,
		Timeout: playwright.Float(millis(timeout)),
	})
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return &TimeoutError{Locator: selector, State: state, Timeout: timeout, Err: err}
	}
	return &ActionError{Action: "wait for " + state, Locator: selector, Err: err}
}

// WaitForLoadState waits for the page to reach a load state: "load",
// "domcontentloaded" or "networkidle".
func (w *Waits) WaitForLoadState(state string) error {
	var target *playwright.LoadState
	switch state {
	case LoadStateLoad:
		target = playwright.LoadStateLoad
	case LoadStateDOMContentLoaded:
		target = playwright.LoadStateDomcontentloaded
	case LoadStateNetworkIdle:
		target = playwright.LoadStateNetworkidle
	default:
		return &ArgumentError{Argument: "state", Reason: fmt.Sprintf("unknown load state %q", state)}
	}

	page, err := w.pages.Page()
	if err != nil {
		return err
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: target}); err != nil {
		if isTimeout(err) {
			return &TimeoutError{Locator: "page", State: state, Err: err}
		}
		return &ActionError{Action: "wait for load state", Locator: state, Err: err}
	}
	return nil
}

// WaitForNetworkIdle waits until the page has no network activity.
func (w *Waits) WaitForNetworkIdle() error {
	return w.WaitForLoadState(LoadStateNetworkIdle)
}

// Pause blocks for d using the page clock.
func (w *Waits) Pause(d time.Duration) error {
	page, err := w.pages.Page()
	if err != nil {
		return err
	}
	page.WaitForTimeout(millis(d))
	return nil
}

// poll calls check until it reports true or timeout elapses. The last
// check error, if any, is returned on timeout.
func poll(timeout, interval time.Duration, check func() (bool, error)) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := check()
		if ok {
			return true, nil
		}
		if !time.Now().Before(deadline) {
			return false, err
		}
		time.Sleep(interval)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}
