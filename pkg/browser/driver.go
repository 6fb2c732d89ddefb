package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/config"
)

// Driver is the suite-scoped automation driver that launches browsers.
// It outlives individual scenarios.
type Driver interface {
	// BrowserType returns the engine used to launch the named browser.
	BrowserType(name config.BrowserName) (playwright.BrowserType, error)

	// Stop releases the driver process.
	Stop() error
}

// DriverFactory acquires a new Driver.
type DriverFactory func() (Driver, error)

// DriverOptions configures the Playwright driver.
type DriverOptions struct {
	// Install downloads the driver and browsers before starting.
	Install bool

	// Browsers limits installation to these browsers (e.g. "chromium").
	Browsers []string

	// Stdout and Stderr receive driver installation output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// PlaywrightDriver returns a factory that starts the Playwright driver.
func PlaywrightDriver(opts DriverOptions) DriverFactory {
	return func() (Driver, error) {
		stdout, stderr := opts.Stdout, opts.Stderr
		if stdout == nil {
			stdout = io.Discard
		}
		if stderr == nil {
			stderr = io.Discard
		}
		runOpts := &playwright.RunOptions{
			Verbose:  false,
			Stdout:   stdout,
			Stderr:   stderr,
			Browsers: opts.Browsers,
		}

		if opts.Install {
			if err := playwright.Install(runOpts); err != nil {
				return nil, fmt.Errorf("failed to install playwright: %w", err)
			}
		}

		pw, err := playwright.Run(runOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright: %w", err)
		}
		return &playwrightDriver{pw: pw}, nil
	}
}

// InstallBrowsers lists the Playwright browser bundles needed for name.
func InstallBrowsers(name config.BrowserName) []string {
	switch name {
	case config.BrowserFirefox:
		return []string{"firefox"}
	case config.BrowserWebKit:
		return []string{"webkit"}
	default:
		return []string{"chromium"}
	}
}

type playwrightDriver struct {
	pw *playwright.Playwright
}

func (d *playwrightDriver) BrowserType(name config.BrowserName) (playwright.BrowserType, error) {
	switch {
	case name.IsChromiumFamily():
		return d.pw.Chromium, nil
	case name == config.BrowserFirefox:
		return d.pw.Firefox, nil
	case name == config.BrowserWebKit:
		return d.pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser %q", name)
	}
}

func (d *playwrightDriver) Stop() error {
	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
