package browser

import (
	"errors"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/logging"
)

// Assertions verifies page state. Each check polls until it holds or the
// timeout elapses; on failure the actual value is fetched again and
// reported in an AssertionError.
type Assertions struct {
	pages    PageSource
	waits    *Waits
	logger   *logging.Logger
	timeout  time.Duration
	interval time.Duration
}

// NewAssertions creates Assertions bound to pages using
// DefaultAssertTimeout.
func NewAssertions(pages PageSource, logger *logging.Logger) *Assertions {
	if logger == nil {
		logger = logging.Discard("assert")
	}
	return &Assertions{
		pages:    pages,
		waits:    NewWaits(pages, logger),
		logger:   logger,
		timeout:  DefaultAssertTimeout,
		interval: DefaultPollInterval,
	}
}

// WithTimeout returns a copy of a that polls for up to timeout.
func (a *Assertions) WithTimeout(timeout time.Duration) *Assertions {
	cp := *a
	if timeout > 0 {
		cp.timeout = timeout
	}
	return &cp
}

// Visible asserts selector is visible.
func (a *Assertions) Visible(selector string) error {
	return a.visibility(selector, true)
}

// Hidden asserts selector is hidden or absent.
func (a *Assertions) Hidden(selector string) error {
	return a.visibility(selector, false)
}

func (a *Assertions) visibility(selector string, want bool) error {
	check, expected := "visible", "visible"
	wait := a.waits.WaitForVisible
	if !want {
		check, expected = "hidden", "hidden"
		wait = a.waits.WaitForHidden
	}

	err := wait(selector, a.timeout)
	if err == nil {
		a.logger.Debugf("assert %s passed: %s", check, selector)
		return nil
	}
	if errors.Is(err, ErrIllegalState) {
		return err
	}
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return err
	}

	actual := "hidden"
	if a.currentVisibility(selector) {
		actual = "visible"
	}
	return a.fail(&AssertionError{Check: check, Locator: selector, Expected: expected, Actual: actual, Err: err})
}

// HasText asserts the text content of selector equals expected after
// whitespace normalization.
func (a *Assertions) HasText(selector, expected string) error {
	return a.text("text", selector, expected, func(actual string) bool {
		return normalizeSpace(actual) == normalizeSpace(expected)
	})
}

// ContainsText asserts the text content of selector contains expected.
func (a *Assertions) ContainsText(selector, expected string) error {
	return a.text("contains text", selector, expected, func(actual string) bool {
		return strings.Contains(normalizeSpace(actual), normalizeSpace(expected))
	})
}

func (a *Assertions) text(check, selector, expected string, match func(string) bool) error {
	if selector == "" {
		return &ArgumentError{Argument: "selector", Reason: "must not be empty"}
	}
	page, err := a.pages.Page()
	if err != nil {
		return err
	}
	locator := page.Locator(selector)

	deadline := time.Now().Add(a.timeout)
	ok, lastErr := poll(a.timeout, a.interval, func() (bool, error) {
		actual, err := locator.TextContent(textContentOptions(time.Until(deadline)))
		if err != nil {
			return false, err
		}
		return match(actual), nil
	})
	if ok {
		a.logger.Debugf("assert %s passed: %s", check, selector)
		return nil
	}

	actual, err := locator.TextContent(textContentOptions(a.interval))
	if err != nil {
		actual = ""
		if lastErr == nil {
			lastErr = err
		}
	}
	return a.fail(&AssertionError{Check: check, Locator: selector, Expected: expected, Actual: actual, Err: lastErr})
}

// URL asserts the page URL equals expected.
func (a *Assertions) URL(expected string) error {
	return a.url("url", expected, func(actual string) bool { return actual == expected })
}

// URLContains asserts the page URL contains fragment.
func (a *Assertions) URLContains(fragment string) error {
	return a.url("url contains", fragment, func(actual string) bool { return strings.Contains(actual, fragment) })
}

func (a *Assertions) url(check, expected string, match func(string) bool) error {
	page, err := a.pages.Page()
	if err != nil {
		return err
	}
	ok, _ := poll(a.timeout, a.interval, func() (bool, error) {
		return match(page.URL()), nil
	})
	if ok {
		a.logger.Debugf("assert %s passed: %s", check, expected)
		return nil
	}
	return a.fail(&AssertionError{Check: check, Expected: expected, Actual: page.URL()})
}

func (a *Assertions) currentVisibility(selector string) bool {
	page, err := a.pages.Page()
	if err != nil {
		return false
	}
	visible, err := page.Locator(selector).IsVisible()
	return err == nil && visible
}

func (a *Assertions) fail(err *AssertionError) error {
	a.logger.Errorf("%v", err)
	return err
}

// textContentOptions bounds a single TextContent call. Playwright reads a
// zero timeout as "wait forever", so the bound never drops below 1ms.
func textContentOptions(bound time.Duration) playwright.LocatorTextContentOptions {
	if bound < time.Millisecond {
		bound = time.Millisecond
	}
	return playwright.LocatorTextContentOptions{Timeout: playwright.Float(millis(bound))}
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
