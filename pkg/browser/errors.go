package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/uiharness/pkg/config"
)

// ErrIllegalState is returned when an operation is issued in a session
// state that does not allow it, e.g. an action before the page is ready.
// It signals a harness programming error and is never retried.
var ErrIllegalState = errors.New("illegal session state")

// ConfigurationError and ArgumentError are shared with the config package.
type (
	ConfigurationError = config.ConfigurationError
	ArgumentError      = config.ArgumentError
)

func illegalState(op string, current State, allowed ...State) error {
	return fmt.Errorf("%w: %s not allowed in state %s (requires %v)", ErrIllegalState, op, current, allowed)
}

// Launch stages reported by LaunchError.
const (
	StageDriver  = "driver"
	StageBrowser = "browser"
	StageContext = "context"
	StageTracing = "tracing"
	StagePage    = "page"
)

// LaunchError reports a failure while provisioning the driver, browser,
// context or page.
type LaunchError struct {
	Stage   string
	Browser config.BrowserName
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser initialization failed at %s stage (%s): %v", e.Stage, e.Browser, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// NavigationError reports that navigation failed on every allowed attempt.
// Err is the cause of the last attempt.
type NavigationError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// ActionError reports a failed UI action. Actions are attempted once.
type ActionError struct {
	Action  string
	Locator string
	Err     error
}

func (e *ActionError) Error() string {
	if isTimeout(e.Err) {
		return fmt.Sprintf("%s failed: element not found or not actionable within timeout: %s", e.Action, e.Locator)
	}
	return fmt.Sprintf("%s failed on %s: %v", e.Action, e.Locator, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that an element did not reach a state in time.
type TimeoutError struct {
	Locator string
	State   string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("element did not become %s within %dms: %s", e.State, e.Timeout.Milliseconds(), e.Locator)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// AssertionError reports a failed state check with the expected value and
// the actual value fetched after the failure.
type AssertionError struct {
	Check    string
	Locator  string
	Expected string
	Actual   string
	Err      error
}

func (e *AssertionError) Error() string {
	target := e.Locator
	if target == "" {
		target = "page"
	}
	return fmt.Sprintf("%s assertion failed for %s\nExpected: %q\nActual:   %q", e.Check, target, e.Expected, e.Actual)
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}
