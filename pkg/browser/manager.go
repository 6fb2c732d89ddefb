package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/logging"
)

// SessionManager owns the driver, browser, context and page of one
// browser session. The driver is acquired once and kept across
// scenarios; everything below it is rebuilt per scenario.
type SessionManager struct {
	mu      sync.Mutex
	state   State
	factory DriverFactory
	logger  *logging.Logger

	driver  Driver
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	dialogs *DialogQueue

	config    config.LaunchConfig
	tracing   bool
	startedAt time.Time

	driverStarts int
}

// NewSessionManager creates a manager that acquires its driver from
// factory on first launch.
func NewSessionManager(factory DriverFactory, logger *logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Discard("session")
	}
	return &SessionManager{
		state:   StateUninitialized,
		factory: factory,
		logger:  logger,
	}
}

// Launch provisions a browser, context and page for cfg, reusing the
// driver when one is already running. It is legal only from
// StateUninitialized or StateDriverReady. On failure every partially
// created resource is closed and the driver is kept.
func (m *SessionManager) Launch(cfg config.LaunchConfig) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.canLaunch() {
		return nil, illegalState("launch", m.state, StateUninitialized, StateDriverReady)
	}

	cfg = cfg.Clone()
	m.logger.Infof("launching %s (headless=%t, viewport=%s, locale=%s)",
		cfg.Browser, cfg.Headless, cfg.Viewport, cfg.Locale)

	if err := m.launchLocked(cfg); err != nil {
		m.logger.Errorf("failed to initialize browser: %v", err)
		m.teardownScenarioLocked()
		return nil, err
	}

	m.logger.Infof("browser initialized successfully")
	return m.sessionLocked(), nil
}

func (m *SessionManager) launchLocked(cfg config.LaunchConfig) error {
	if m.driver == nil {
		if m.factory == nil {
			return &LaunchError{Stage: StageDriver, Browser: cfg.Browser, Err: fmt.Errorf("no driver factory configured")}
		}
		driver, err := m.factory()
		if err != nil {
			return &LaunchError{Stage: StageDriver, Browser: cfg.Browser, Err: err}
		}
		m.driver = driver
		m.driverStarts++
		m.logger.Debugf("driver started")
	}
	m.state = StateDriverReady

	browserType, err := m.driver.BrowserType(cfg.Browser)
	if err != nil {
		return &LaunchError{Stage: StageBrowser, Browser: cfg.Browser, Err: err}
	}
	browser, err := browserType.Launch(launchOptions(cfg))
	if err != nil {
		return &LaunchError{Stage: StageBrowser, Browser: cfg.Browser, Err: err}
	}
	m.browser = browser
	m.state = StateBrowserReady

	context, err := browser.NewContext(contextOptions(cfg))
	if err != nil {
		return &LaunchError{Stage: StageContext, Browser: cfg.Browser, Err: err}
	}
	m.context = context
	m.state = StateContextReady

	if cfg.Tracing {
		if err := context.Tracing().Start(tracingOptions()); err != nil {
			return &LaunchError{Stage: StageTracing, Browser: cfg.Browser, Err: err}
		}
		m.tracing = true
	}

	page, err := context.NewPage()
	if err != nil {
		return &LaunchError{Stage: StagePage, Browser: cfg.Browser, Err: err}
	}
	m.page = page
	page.SetDefaultTimeout(millis(cfg.DefaultTimeout))
	page.SetDefaultNavigationTimeout(millis(cfg.NavigationTimeout))

	m.dialogs = newDialogQueue(m.logger)
	page.OnDialog(m.dialogs.handle)

	m.config = cfg
	m.startedAt = time.Now()
	m.state = StatePageReady
	return nil
}

// NavigateAndWait loads url in the session page and waits for the DOM
// content to be loaded. It is attempted once.
func (m *SessionManager) NavigateAndWait(url string) error {
	if url == "" {
		return &ConfigurationError{Setting: "url", Reason: "URL cannot be empty"}
	}
	page, err := m.Page()
	if err != nil {
		return err
	}

	m.logger.Infof("navigating to: %s", url)
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return &NavigationError{URL: url, Attempts: 1, Err: err}
	}
	m.logger.Infof("page loaded successfully")
	return nil
}

// TeardownScenario closes the page, context and browser in that order and
// keeps the driver. It never fails; close errors are logged.
func (m *SessionManager) TeardownScenario() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownScenarioLocked()
}

// TeardownAll performs scenario teardown and then stops the driver.
// It is idempotent and never fails.
func (m *SessionManager) TeardownAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardownScenarioLocked()
	if m.driver != nil {
		m.closeQuietly("driver", m.driver.Stop)
		m.driver = nil
		m.logger.Infof("driver stopped")
	}
	m.state = StateUninitialized
}

func (m *SessionManager) teardownScenarioLocked() {
	if m.page != nil {
		page := m.page
		m.closeQuietly("page", func() error { return page.Close() })
		m.page = nil
	}
	if m.context != nil {
		context := m.context
		m.closeQuietly("context", func() error { return context.Close() })
		m.context = nil
	}
	if m.browser != nil {
		browser := m.browser
		m.closeQuietly("browser", func() error { return browser.Close() })
		m.browser = nil
	}

	m.tracing = false
	if m.driver != nil {
		m.state = StateDriverReady
	} else {
		m.state = StateUninitialized
	}
}

func (m *SessionManager) closeQuietly(resource string, closeFn func() error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warnf("TeardownWarning: closing %s panicked: %v", resource, r)
		}
	}()
	if err := closeFn(); err != nil {
		m.logger.Warnf("TeardownWarning: failed to close %s: %v", resource, err)
	}
}

// State returns the current lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Page returns the session page, or ErrIllegalState before PageReady.
func (m *SessionManager) Page() (playwright.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePageReady {
		return nil, illegalState("page access", m.state, StatePageReady)
	}
	return m.page, nil
}

// Session returns a snapshot of the live session.
func (m *SessionManager) Session() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePageReady {
		return nil, illegalState("session access", m.state, StatePageReady)
	}
	return m.sessionLocked(), nil
}

func (m *SessionManager) sessionLocked() *Session {
	return &Session{
		Browser:   m.browser,
		Context:   m.context,
		Page:      m.page,
		Dialogs:   m.dialogs,
		Config:    m.config.Clone(),
		StartedAt: m.startedAt,
	}
}

// Config returns the launch configuration of the current session.
func (m *SessionManager) Config() config.LaunchConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config.Clone()
}

// Dialogs returns the dialog queue of the current page.
func (m *SessionManager) Dialogs() (*DialogQueue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePageReady {
		return nil, illegalState("dialog access", m.state, StatePageReady)
	}
	return m.dialogs, nil
}

// DriverStarts reports how many times a driver has been acquired.
func (m *SessionManager) DriverStarts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.driverStarts
}

// TracingActive reports whether the current context is recording a trace.
func (m *SessionManager) TracingActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracing
}

// Screenshot captures the current page as PNG. When path is not empty the
// image is also written there.
func (m *SessionManager) Screenshot(path string) ([]byte, error) {
	page, err := m.Page()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	opts := playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)}
	if path != "" {
		opts.Path = playwright.String(path)
	}
	data, err := page.Screenshot(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return data, nil
}

// SaveTrace stops tracing and writes the trace archive to path. It is a
// no-op returning false when tracing is not active.
func (m *SessionManager) SaveTrace(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.tracing || m.context == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create trace directory: %w", err)
	}
	m.tracing = false
	if err := m.context.Tracing().Stop(path); err != nil {
		return false, fmt.Errorf("failed to save trace: %w", err)
	}
	m.logger.Infof("trace saved: %s", path)
	return true, nil
}
