// Package lifecycle runs scenarios against a shared browser session
// manager: suite banner and artifact setup before all scenarios, a fresh
// browser per scenario, failure screenshots and traces, and a closing
// summary.
package lifecycle

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/logging"
	"github.com/entrhq/uiharness/pkg/vars"
)

// SuiteInfo is shown in the suite banner.
type SuiteInfo struct {
	Env      string
	Browser  string
	Headless bool
	BaseURL  string
}

// Options configures a Suite.
type Options struct {
	// Settings is the resolved configuration. Required.
	Settings *config.Settings

	// Driver acquires the automation driver on the first launch.
	Driver browser.DriverFactory

	// Files resolves upload keywords for scenarios. Optional.
	Files *config.FilePaths

	// ArtifactDir is the root for screenshots, traces and summaries.
	ArtifactDir string

	// VarScope selects whether variables survive between scenarios.
	VarScope vars.Scope

	// Filter selects scenarios by name. Nil runs everything.
	Filter *Filter

	// SkipStartNavigation disables loading the environment base URL
	// after each launch.
	SkipStartNavigation bool

	// AssertTimeout overrides browser.DefaultAssertTimeout when positive.
	AssertTimeout time.Duration

	Console *Console
	Logger  *logging.Logger
}

// Scenario is handed to each scenario function. Its browser helpers are
// valid only for the duration of the call.
type Scenario struct {
	Name    string
	Tags    []string
	Session *browser.Session
	Actions *browser.Actions
	Waits   *browser.Waits
	Assert  *browser.Assertions
	Vars    *vars.Store
	Env     config.Environment
	Files   *config.FilePaths
	Logger  *logging.Logger
}

// ScenarioFunc is the body of a scenario. A returned error or a panic
// fails the scenario.
type ScenarioFunc func(sc *Scenario) error

// Suite owns one session manager and one variable store and runs
// scenarios serially.
type Suite struct {
	settings  *config.Settings
	opts      Options
	manager   *browser.SessionManager
	store     *vars.Store
	artifacts *ArtifactWriter
	console   *Console
	logger    *logging.Logger
	now       func() time.Time

	startedAt time.Time
	results   []Result
	closeOnce sync.Once
}

// NewSuite creates a suite from opts.
func NewSuite(opts Options) (*Suite, error) {
	if opts.Settings == nil {
		return nil, &config.ConfigurationError{Setting: "settings", Reason: "resolved settings are required"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard("suite")
	}
	console := opts.Console
	if console == nil {
		console = NewConsole(nil, VerbosityNormal)
	}

	return &Suite{
		settings:  opts.Settings,
		opts:      opts,
		manager:   browser.NewSessionManager(opts.Driver, logger.Component("session")),
		store:     vars.NewStore(opts.VarScope),
		artifacts: NewArtifactWriter(opts.ArtifactDir),
		console:   console,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Manager returns the suite's session manager.
func (s *Suite) Manager() *browser.SessionManager {
	return s.manager
}

// Vars returns the suite's variable store.
func (s *Suite) Vars() *vars.Store {
	return s.store
}

// Artifacts returns the artifact writer.
func (s *Suite) Artifacts() *ArtifactWriter {
	return s.artifacts
}

// BeforeAll prints the suite banner and creates the artifact directories.
// Directory failures are reported as warnings.
func (s *Suite) BeforeAll() {
	s.startedAt = s.now()
	s.console.SuiteStarted(SuiteInfo{
		Env:      s.settings.Env,
		Browser:  string(s.settings.Launch.Browser),
		Headless: s.settings.Launch.Headless,
		BaseURL:  s.settings.Environment.BaseURL(),
	})
	for _, w := range s.settings.Warnings {
		s.console.Warningf("%s", w)
	}
	if err := s.artifacts.Prepare(); err != nil {
		s.console.Warningf("%v", err)
		s.logger.Warnf("directory creation failed: %v", err)
	}
	s.logger.Infof("suite started (env=%s, browser=%s)", s.settings.Env, s.settings.Launch.Browser)
}

// Run executes one scenario in a freshly launched browser and records its
// result. The browser is torn down before Run returns.
func (s *Suite) Run(name string, tags []string, fn ScenarioFunc) Result {
	if s.startedAt.IsZero() {
		s.startedAt = s.now()
	}
	result := Result{Name: name, Tags: tags}

	if !s.opts.Filter.Match(name) {
		result.Status = StatusSkipped
		s.console.ScenarioSkipped(name)
		s.results = append(s.results, result)
		return result
	}

	start := s.now()
	s.console.ScenarioStarted(name, tags)
	s.logger.Infof("scenario started: %s", name)

	sc, err := s.setup(name, tags)
	if err != nil {
		s.console.SetupFailed(err)
	} else {
		err = s.invoke(sc, fn)
	}

	result.Duration = s.now().Sub(start)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		result.Error = err.Error()
		s.console.ScenarioFailed(name, result.Duration, err)
		s.logger.Errorf("scenario failed: %s: %v", name, err)
		s.captureFailure(&result)
	} else {
		result.Status = StatusPassed
		s.console.ScenarioPassed(name, result.Duration)
		s.logger.Infof("scenario passed: %s", name)
	}

	s.manager.TeardownScenario()
	if s.store.EndScenario() {
		s.logger.Debugf("scenario variables cleared")
	}

	s.results = append(s.results, result)
	return result
}

func (s *Suite) setup(name string, tags []string) (*Scenario, error) {
	session, err := s.manager.Launch(s.settings.Launch)
	if err != nil {
		return nil, err
	}

	if !s.opts.SkipStartNavigation {
		if url := s.settings.Environment.BaseURL(); url != "" {
			if err := s.manager.NavigateAndWait(url); err != nil {
				return nil, err
			}
		}
	}

	logger := s.logger.Component("scenario")
	assertions := browser.NewAssertions(s.manager, logger)
	if s.opts.AssertTimeout > 0 {
		assertions = assertions.WithTimeout(s.opts.AssertTimeout)
	}

	return &Scenario{
		Name:    name,
		Tags:    tags,
		Session: session,
		Actions: browser.NewActions(s.manager, logger),
		Waits:   browser.NewWaits(s.manager, logger),
		Assert:  assertions,
		Vars:    s.store,
		Env:     s.settings.Environment,
		Files:   s.opts.Files,
		Logger:  logger,
	}, nil
}

func (s *Suite) invoke(sc *Scenario, fn ScenarioFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scenario panicked: %v", r)
		}
	}()
	return fn(sc)
}

// captureFailure attaches a screenshot, the current URL and, when tracing
// is on, the trace archive to a failed result.
func (s *Suite) captureFailure(result *Result) {
	if s.manager.State() != browser.StatePageReady {
		s.console.Detail("Screenshot", "page not available")
		return
	}

	path := s.artifacts.ScreenshotPath(result.Name, s.now())
	data, err := s.manager.Screenshot(path)
	if err != nil {
		s.console.Detail("Screenshot failed", err.Error())
	} else {
		result.Screenshot = path
		result.ScreenshotData = data
		s.console.Detail("Screenshot", filepath.Base(path))
	}

	if page, err := s.manager.Page(); err == nil {
		result.URL = page.URL()
		s.console.Detail("URL", result.URL)
	}

	if s.manager.TracingActive() {
		tracePath := s.artifacts.TracePath(result.Name)
		saved, err := s.manager.SaveTrace(tracePath)
		if err != nil {
			s.logger.Warnf("failed to save trace: %v", err)
			return
		}
		if saved {
			result.Trace = tracePath
			s.console.Detail("Trace saved", tracePath)
		}
	}
}

// Results returns the recorded scenario results in run order.
func (s *Suite) Results() []Result {
	return append([]Result(nil), s.results...)
}

// Summary computes the run totals so far.
func (s *Suite) Summary() *Summary {
	end := s.now()
	summary := &Summary{
		Env:       s.settings.Env,
		Browser:   string(s.settings.Launch.Browser),
		StartTime: s.startedAt,
		EndTime:   end,
		Duration:  end.Sub(s.startedAt),
		Results:   s.Results(),
	}
	for _, r := range s.results {
		switch r.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
	}
	summary.Total = summary.Passed + summary.Failed
	if summary.Total > 0 {
		summary.PassRate = summary.Passed * 100 / summary.Total
	}
	return summary
}

// AfterAll prints the summary, releases the driver and writes the summary
// artifacts.
func (s *Suite) AfterAll() *Summary {
	summary := s.Summary()
	s.console.Summary(summary)
	s.Close()

	if err := s.artifacts.WriteAll(summary); err != nil {
		s.console.Warningf("%v", err)
	}
	s.logger.Infof("suite completed: %d passed, %d failed", summary.Passed, summary.Failed)
	return summary
}

// Close releases the driver. It is safe to call more than once.
func (s *Suite) Close() {
	s.closeOnce.Do(s.manager.TeardownAll)
}
