package lifecycle

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/browser/browsertest"
	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/vars"
)

func testSettings(props config.Properties) *config.Settings {
	launch := config.DefaultLaunchConfig()
	launch.Headless = true
	return &config.Settings{
		Env:         "staging",
		Launch:      launch,
		Environment: config.NewEnvironment("staging", props),
	}
}

type suiteFixture struct {
	suite  *Suite
	stack  *browsertest.Stack
	output *bytes.Buffer
	dir    string
}

func newSuiteFixture(t *testing.T, mutate func(*Options)) *suiteFixture {
	t.Helper()

	stack := browsertest.NewStack()
	output := &bytes.Buffer{}
	dir := t.TempDir()

	opts := Options{
		Settings:      testSettings(config.Properties{"Url": "https://app.example.test/"}),
		Driver:        stack.Factory(),
		ArtifactDir:   dir,
		AssertTimeout: 20 * time.Millisecond,
		Console:       NewConsole(output, VerbosityVerbose),
	}
	if mutate != nil {
		mutate(&opts)
	}

	suite, err := NewSuite(opts)
	require.NoError(t, err)
	t.Cleanup(suite.Close)

	return &suiteFixture{suite: suite, stack: stack, output: output, dir: dir}
}

func TestNewSuite_RequiresSettings(t *testing.T) {
	_, err := NewSuite(Options{})

	var cfgErr *config.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSuite_RunPassingScenario(t *testing.T) {
	f := newSuiteFixture(t, nil)
	f.stack.Page.Element("#title").SetText("Dashboard")

	f.suite.BeforeAll()
	result := f.suite.Run("open dashboard", []string{"smoke"}, func(sc *Scenario) error {
		return sc.Assert.HasText("#title", "Dashboard")
	})

	assert.Equal(t, StatusPassed, result.Status)
	assert.Empty(t, result.Error)
	assert.Equal(t, []string{"https://app.example.test/"}, f.stack.Page.Visited)
	assert.Equal(t, browser.StateDriverReady, f.suite.Manager().State())
	assert.Equal(t, 1, f.stack.Browser.Closes)
	assert.Contains(t, f.output.String(), "▶ Starting: open dashboard")
	assert.Contains(t, f.output.String(), "  Tags: [smoke]")
	assert.Contains(t, f.output.String(), "✓ PASSED: open dashboard")
}

func TestSuite_RunFailingScenarioCapturesArtifacts(t *testing.T) {
	f := newSuiteFixture(t, func(o *Options) {
		o.Settings.Launch.Tracing = true
	})

	f.suite.BeforeAll()
	result := f.suite.Run("save: form/1", nil, func(sc *Scenario) error {
		return sc.Assert.Visible("#saved")
	})

	require.Equal(t, StatusFailed, result.Status)
	var assertErr *browser.AssertionError
	assert.ErrorAs(t, result.Err, &assertErr)

	assert.Equal(t, "https://app.example.test/", result.URL)
	assert.Equal(t, filepath.Join(f.dir, "screenshots"), filepath.Dir(result.Screenshot))
	assert.Contains(t, filepath.Base(result.Screenshot), "save__form_1_")
	assert.NotEmpty(t, result.ScreenshotData)
	assert.Equal(t, filepath.Join(f.dir, "traces", "save__form_1.zip"), result.Trace)
	assert.Equal(t, []string{result.Trace}, f.stack.Tracing.StopPaths)

	out := f.output.String()
	assert.Contains(t, out, "✗ FAILED: save: form/1")
	assert.Contains(t, out, "  Screenshot: ")
	assert.Contains(t, out, "  URL: https://app.example.test/")
	assert.Contains(t, out, "  Trace saved: ")
}

func TestSuite_RunRecoversPanics(t *testing.T) {
	f := newSuiteFixture(t, nil)

	result := f.suite.Run("explodes", nil, func(sc *Scenario) error {
		panic("boom")
	})

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "scenario panicked: boom", result.Error)
	assert.Equal(t, browser.StateDriverReady, f.suite.Manager().State())
}

func TestSuite_SetupFailure(t *testing.T) {
	f := newSuiteFixture(t, nil)
	f.stack.BrowserType.LaunchErr = errors.New("executable missing")

	called := false
	result := f.suite.Run("never runs", nil, func(sc *Scenario) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, StatusFailed, result.Status)
	var launchErr *browser.LaunchError
	assert.ErrorAs(t, result.Err, &launchErr)
	assert.Contains(t, f.output.String(), "✗ Setup failed: ")
	assert.Contains(t, f.output.String(), "  Screenshot: page not available")
}

func TestSuite_StartNavigation(t *testing.T) {
	tests := []struct {
		name    string
		props   config.Properties
		skip    bool
		visited []string
	}{
		{
			name:    "navigates to base url",
			props:   config.Properties{"Url": "https://app.example.test/"},
			visited: []string{"https://app.example.test/"},
		},
		{
			name:  "skipped when disabled",
			props: config.Properties{"Url": "https://app.example.test/"},
			skip:  true,
		},
		{
			name:  "skipped without base url",
			props: config.Properties{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSuiteFixture(t, func(o *Options) {
				o.Settings = testSettings(tt.props)
				o.SkipStartNavigation = tt.skip
			})

			result := f.suite.Run("start", nil, func(sc *Scenario) error { return nil })

			assert.Equal(t, StatusPassed, result.Status)
			assert.Equal(t, tt.visited, f.stack.Page.Visited)
		})
	}
}

func TestSuite_FilterSkipsScenarios(t *testing.T) {
	filter, err := NewFilter([]string{"login*"}, nil)
	require.NoError(t, err)
	f := newSuiteFixture(t, func(o *Options) { o.Filter = filter })

	called := false
	result := f.suite.Run("checkout", nil, func(sc *Scenario) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, StatusSkipped, result.Status)
	assert.Equal(t, 0, f.stack.DriverStarts())
	assert.Contains(t, f.output.String(), "- Skipped: checkout")
}

func TestSuite_VariableScope(t *testing.T) {
	tests := []struct {
		name  string
		scope vars.Scope
		want  string
	}{
		{name: "scenario scope clears", scope: vars.ScopeScenario, want: ""},
		{name: "suite scope keeps", scope: vars.ScopeSuite, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSuiteFixture(t, func(o *Options) { o.VarScope = tt.scope })

			f.suite.Run("store", nil, func(sc *Scenario) error {
				sc.Vars.Set("orderId", "42")
				return nil
			})

			var got string
			f.suite.Run("read", nil, func(sc *Scenario) error {
				got = sc.Vars.GetString("orderId")
				return nil
			})

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuite_DriverSharedAcrossScenarios(t *testing.T) {
	f := newSuiteFixture(t, nil)

	for _, name := range []string{"one", "two", "three"} {
		f.suite.Run(name, nil, func(sc *Scenario) error { return nil })
	}

	assert.Equal(t, 1, f.stack.DriverStarts())
	assert.Equal(t, 3, f.stack.Browser.Closes)
	assert.Equal(t, 0, f.stack.Driver.Stops)

	f.suite.Close()
	f.suite.Close()
	assert.Equal(t, 1, f.stack.Driver.Stops)
	assert.Equal(t, browser.StateUninitialized, f.suite.Manager().State())
}

func TestSuite_AfterAllWritesSummary(t *testing.T) {
	f := newSuiteFixture(t, nil)
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f.suite.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	f.suite.BeforeAll()
	f.suite.Run("passes", nil, func(sc *Scenario) error { return nil })
	f.suite.Run("fails", nil, func(sc *Scenario) error { return errors.New("nope") })

	summary := f.suite.AfterAll()

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 50, summary.PassRate)
	assert.False(t, summary.Succeeded())
	assert.Equal(t, 1, f.stack.Driver.Stops)

	out := f.output.String()
	assert.Contains(t, out, "TEST SUITE COMPLETED")
	assert.Contains(t, out, "Total: 2 | Passed: 1 | Failed: 1")
	assert.Contains(t, out, "Pass Rate: 50%")

	assert.FileExists(t, filepath.Join(f.dir, "summary.json"))
	md, err := os.ReadFile(filepath.Join(f.dir, "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "❌ **fails**")
	assert.Contains(t, string(md), "Error: nope")
}

func TestSuite_BeforeAllPrintsWarnings(t *testing.T) {
	f := newSuiteFixture(t, func(o *Options) {
		o.Settings.Warnings = []string{"invalid window_size 'big', using default"}
	})

	f.suite.BeforeAll()

	out := f.output.String()
	assert.Contains(t, out, "TEST SUITE STARTED")
	assert.Contains(t, out, "Environment: staging | Browser: chrome | Headless: true | BaseUrl: https://app.example.test/")
	assert.Contains(t, out, "⚠ Warning: invalid window_size 'big', using default")
	assert.DirExists(t, filepath.Join(f.dir, "screenshots"))
	assert.DirExists(t, filepath.Join(f.dir, "traces"))
}
