package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/config"
)

// StabilityArgs are appended to the launch arguments of chromium-family
// browsers after any configured arguments.
var StabilityArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--no-sandbox",
	"--disable-dev-shm-usage",
}

// launchArgs returns the ordered launch arguments for cfg.
func launchArgs(cfg config.LaunchConfig) []string {
	args := append([]string(nil), cfg.Args...)
	if cfg.Browser.IsChromiumFamily() {
		args = append(args, StabilityArgs...)
	}
	return args
}

func launchOptions(cfg config.LaunchConfig) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     launchArgs(cfg),
	}
	if channel := cfg.Browser.Channel(); channel != "" {
		opts.Channel = playwright.String(channel)
	}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(millis(cfg.SlowMo))
	}
	return opts
}

func contextOptions(cfg config.LaunchConfig) playwright.BrowserNewContextOptions {
	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
		},
		AcceptDownloads: playwright.Bool(true),
	}
	if cfg.Locale != "" {
		opts.Locale = playwright.String(cfg.Locale)
	}
	if cfg.UserAgent != "" {
		opts.UserAgent = playwright.String(cfg.UserAgent)
	}
	if cfg.Timezone != "" {
		opts.TimezoneId = playwright.String(cfg.Timezone)
	}
	if cfg.Geolocation != nil {
		opts.Geolocation = &playwright.Geolocation{
			Latitude:  cfg.Geolocation.Latitude,
			Longitude: cfg.Geolocation.Longitude,
		}
		opts.Permissions = []string{"geolocation"}
	}
	if cfg.RecordVideo {
		dir := cfg.VideoDir
		if dir == "" {
			dir = config.DefaultVideoDir
		}
		opts.RecordVideo = &playwright.RecordVideo{Dir: dir}
	}
	return opts
}

func tracingOptions() playwright.TracingStartOptions {
	return playwright.TracingStartOptions{
		Screenshots: playwright.Bool(true),
		Snapshots:   playwright.Bool(true),
		Sources:     playwright.Bool(true),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
