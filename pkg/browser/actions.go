package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/logging"
	"github.com/entrhq/uiharness/pkg/retry"
)

// Actions performs user interactions on the session page. Strict actions
// return an error on failure; the *Safe variants log the failure and
// return a neutral value instead.
type Actions struct {
	pages      PageSource
	logger     *logging.Logger
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// NewActions creates Actions bound to pages.
func NewActions(pages PageSource, logger *logging.Logger) *Actions {
	if logger == nil {
		logger = logging.Discard("actions")
	}
	return &Actions{
		pages:      pages,
		logger:     logger,
		retryDelay: NavigationRetryDelay,
		sleep:      time.Sleep,
	}
}

// NavigateTo loads url, retrying up to maxRetries attempts in total with a
// fixed one second pause between attempts. Values below one mean a single
// attempt. On exhaustion the returned NavigationError carries the last
// cause.
func (a *Actions) NavigateTo(url string, maxRetries int) error {
	if strings.TrimSpace(url) == "" {
		return &ArgumentError{Argument: "url", Reason: "must not be empty"}
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	page, err := a.pages.Page()
	if err != nil {
		return err
	}

	policy := retry.Fixed(maxRetries, a.retryDelay)
	policy.Sleep = a.sleep
	policy.OnRetry = func(attempt int, err error) {
		a.logger.Warnf("navigation attempt %d/%d failed: %v", attempt, maxRetries, err)
	}

	err = retry.Do(policy, func(attempt int) error {
		a.logger.Infof("navigating to: %s (attempt %d/%d)", url, attempt, maxRetries)
		_, err := page.Goto(url)
		return err
	})
	if err != nil {
		navErr := &NavigationError{URL: url, Attempts: maxRetries, Err: err}
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			navErr.Attempts = exhausted.Attempts
			navErr.Err = exhausted.Err
		}
		a.logger.Errorf("%v", navErr)
		return navErr
	}
	a.logger.Infof("navigated to: %s", url)
	return nil
}

// Navigate is NavigateTo with DefaultNavigationAttempts.
func (a *Actions) Navigate(url string) error {
	return a.NavigateTo(url, DefaultNavigationAttempts)
}

// Click clicks the element matching selector.
func (a *Actions) Click(selector string) error {
	return a.run("click", selector, func(l playwright.Locator) error {
		return l.Click()
	})
}

// DoubleClick double-clicks the element matching selector.
func (a *Actions) DoubleClick(selector string) error {
	return a.run("double click", selector, func(l playwright.Locator) error {
		return l.Dblclick()
	})
}

// RightClick opens the context menu on the element matching selector.
func (a *Actions) RightClick(selector string) error {
	return a.run("right click", selector, func(l playwright.Locator) error {
		return l.Click(playwright.LocatorClickOptions{Button: playwright.MouseButtonRight})
	})
}

// ClickByRole clicks the element with the given ARIA role and accessible
// name.
func (a *Actions) ClickByRole(role, name string) error {
	if role == "" {
		return &ArgumentError{Argument: "role", Reason: "must not be empty"}
	}
	return a.Click(RoleSelector(role, name))
}

// ClickByTestID clicks the element whose data-testid equals id.
func (a *Actions) ClickByTestID(id string) error {
	if id == "" {
		return &ArgumentError{Argument: "test id", Reason: "must not be empty"}
	}
	return a.Click(TestIDSelector(id))
}

// Fill replaces the content of the input matching selector. A nil value is
// rejected before the page is touched; other values are converted to text.
func (a *Actions) Fill(selector string, value interface{}) error {
	text, ok := textValue(value)
	if !ok {
		return &ArgumentError{Argument: "value", Reason: "fill value must not be nil"}
	}
	return a.run("fill", selector, func(l playwright.Locator) error {
		return l.Fill(text)
	})
}

// ClearAndFill clears the input matching selector and then fills it.
func (a *Actions) ClearAndFill(selector string, value interface{}) error {
	text, ok := textValue(value)
	if !ok {
		return &ArgumentError{Argument: "value", Reason: "fill value must not be nil"}
	}
	return a.run("clear and fill", selector, func(l playwright.Locator) error {
		if err := l.Clear(); err != nil {
			return err
		}
		return l.Fill(text)
	})
}

// Type types value key by key with delay between keystrokes.
func (a *Actions) Type(selector string, value interface{}, delay time.Duration) error {
	text, ok := textValue(value)
	if !ok {
		return &ArgumentError{Argument: "value", Reason: "type value must not be nil"}
	}
	return a.run("type", selector, func(l playwright.Locator) error {
		return l.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
			Delay: playwright.Float(millis(delay)),
		})
	})
}

// Press presses key (e.g. "Enter", "Control+A") on the element.
func (a *Actions) Press(selector, key string) error {
	if key == "" {
		return &ArgumentError{Argument: "key", Reason: "must not be empty"}
	}
	return a.run("press "+key, selector, func(l playwright.Locator) error {
		return l.Press(key)
	})
}

// SelectOption selects the option with the given value in a select
// element. A nil value is rejected.
func (a *Actions) SelectOption(selector string, value interface{}) error {
	text, ok := textValue(value)
	if !ok {
		return &ArgumentError{Argument: "value", Reason: "option value must not be nil"}
	}
	return a.run("select option", selector, func(l playwright.Locator) error {
		_, err := l.SelectOption(playwright.SelectOptionValues{Values: &[]string{text}})
		return err
	})
}

// UploadFile sets the file input matching selector to path. The file must
// exist.
func (a *Actions) UploadFile(selector, path string) error {
	if strings.TrimSpace(path) == "" {
		return &ArgumentError{Argument: "path", Reason: "file path must not be empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return &ArgumentError{Argument: "path", Reason: err.Error()}
	}
	if _, err := os.Stat(abs); err != nil {
		return &ArgumentError{Argument: "path", Reason: fmt.Sprintf("file not accessible: %s", path)}
	}
	return a.run("upload file", selector, func(l playwright.Locator) error {
		return l.SetInputFiles([]string{abs})
	})
}

// Text returns the text content of the element matching selector.
func (a *Actions) Text(selector string) (string, error) {
	var text string
	err := a.run("get text", selector, func(l playwright.Locator) error {
		var err error
		text, err = l.TextContent()
		return err
	})
	return text, err
}

// CurrentURL returns the URL of the session page.
func (a *Actions) CurrentURL() (string, error) {
	page, err := a.pages.Page()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}

// Screenshot writes a PNG of the session page to path.
func (a *Actions) Screenshot(path string) error {
	page, err := a.pages.Page()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)}); err != nil {
		return &ActionError{Action: "screenshot", Locator: path, Err: err}
	}
	a.logger.Infof("screenshot saved: %s", path)
	return nil
}

// IsVisibleSafe reports whether selector is visible. Any failure,
// including an unready session, yields false.
func (a *Actions) IsVisibleSafe(selector string) (visible bool) {
	defer a.recoverSafe("is visible", selector)
	err := a.run("is visible", selector, func(l playwright.Locator) error {
		var err error
		visible, err = l.IsVisible()
		return err
	})
	if err != nil {
		a.logger.Debugf("visibility check failed for %s: %v", selector, err)
		return false
	}
	return visible
}

// TextSafe returns the text content of selector, or "" on any failure.
func (a *Actions) TextSafe(selector string) (text string) {
	defer a.recoverSafe("get text", selector)
	text, err := a.Text(selector)
	if err != nil {
		a.logger.Warnf("failed to get text from %s: %v", selector, err)
		return ""
	}
	return text
}

// AttributeSafe returns the named attribute of selector. The boolean is
// false when the lookup failed.
func (a *Actions) AttributeSafe(selector, name string) (value string, ok bool) {
	defer a.recoverSafe("get attribute "+name, selector)
	err := a.run("get attribute "+name, selector, func(l playwright.Locator) error {
		var err error
		value, err = l.GetAttribute(name)
		return err
	})
	if err != nil {
		a.logger.Warnf("failed to get attribute %s from %s: %v", name, selector, err)
		return "", false
	}
	return value, true
}

// ScreenshotSafe is Screenshot reporting success as a boolean.
func (a *Actions) ScreenshotSafe(path string) (ok bool) {
	defer a.recoverSafe("screenshot", path)
	if err := a.Screenshot(path); err != nil {
		a.logger.Warnf("failed to take screenshot: %v", err)
		return false
	}
	return true
}

func (a *Actions) recoverSafe(action, selector string) {
	if r := recover(); r != nil {
		a.logger.Errorf("%s on %s panicked: %v", action, selector, r)
	}
}

// run resolves selector on the session page and applies fn once. Session
// state errors are returned unwrapped; driver failures become ActionError.
func (a *Actions) run(action, selector string, fn func(playwright.Locator) error) error {
	if selector == "" {
		return &ArgumentError{Argument: "selector", Reason: "must not be empty"}
	}
	page, err := a.pages.Page()
	if err != nil {
		return err
	}

	a.logger.Debugf("%s: %s", action, selector)
	if err := fn(page.Locator(selector)); err != nil {
		return &ActionError{Action: action, Locator: selector, Err: err}
	}
	return nil
}

// RoleSelector builds a selector matching an ARIA role and accessible name.
func RoleSelector(role, name string) string {
	if name == "" {
		return "role=" + role
	}
	return fmt.Sprintf("role=%s[name=%q]", role, name)
}

// TestIDSelector builds a selector matching the data-testid attribute.
func TestIDSelector(id string) string {
	return "data-testid=" + id
}

// textValue converts an action value to text. Only nil values, including
// nil pointers, are rejected.
func textValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case []byte:
		return string(val), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}
