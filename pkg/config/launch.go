package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BrowserName identifies which browser engine and channel to launch.
type BrowserName string

const (
	BrowserChrome   BrowserName = "chrome"
	BrowserChromium BrowserName = "chromium"
	BrowserEdge     BrowserName = "edge"
	BrowserFirefox  BrowserName = "firefox"
	BrowserWebKit   BrowserName = "webkit"
)

// ParseBrowser maps a configured browser name to a BrowserName.
// "safari" is accepted as an alias of webkit.
func ParseBrowser(name string) (BrowserName, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome":
		return BrowserChrome, true
	case "chromium":
		return BrowserChromium, true
	case "edge", "msedge":
		return BrowserEdge, true
	case "firefox":
		return BrowserFirefox, true
	case "webkit", "safari":
		return BrowserWebKit, true
	default:
		return "", false
	}
}

// IsChromiumFamily reports whether the browser is launched through the
// chromium engine.
func (b BrowserName) IsChromiumFamily() bool {
	return b == BrowserChrome || b == BrowserChromium || b == BrowserEdge
}

// Channel returns the distribution channel for branded chromium builds.
func (b BrowserName) Channel() string {
	switch b {
	case BrowserChrome:
		return "chrome"
	case BrowserEdge:
		return "msedge"
	default:
		return ""
	}
}

// Viewport is a browser viewport size in pixels.
type Viewport struct {
	Width  int
	Height int
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

// Geolocation is a latitude/longitude pair emulated by the browser context.
type Geolocation struct {
	Latitude  float64
	Longitude float64
}

// Built-in defaults.
const (
	DefaultBrowser           = BrowserChrome
	DefaultHeadless          = false
	DefaultLocale            = "en-US"
	DefaultWindowSize        = "1280,800"
	DefaultTimeout           = 30 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultVideoDir          = "videos/"

	// MinViewportDimension is the smallest accepted viewport width or height.
	MinViewportDimension = 100
)

// DefaultViewport is used when window_size is missing or invalid.
var DefaultViewport = Viewport{Width: 1280, Height: 800}

// LaunchConfig is the resolved, read-only configuration for one browser
// session.
type LaunchConfig struct {
	Browser           BrowserName
	Headless          bool
	Locale            string
	Viewport          Viewport
	DefaultTimeout    time.Duration
	NavigationTimeout time.Duration

	// Args are extra browser launch arguments in order.
	Args []string

	// SlowMo delays every driver operation; zero disables it.
	SlowMo time.Duration

	Tracing     bool
	UserAgent   string
	Geolocation *Geolocation
	Timezone    string
	RecordVideo bool
	VideoDir    string
}

// DefaultLaunchConfig returns the configuration used when no property or
// override supplies a value.
func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		Browser:           DefaultBrowser,
		Headless:          DefaultHeadless,
		Locale:            DefaultLocale,
		Viewport:          DefaultViewport,
		DefaultTimeout:    DefaultTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		Args:              []string{"--window-size=" + DefaultWindowSize},
		VideoDir:          DefaultVideoDir,
	}
}

// Clone returns a copy of c that shares no slices or pointers with it.
func (c LaunchConfig) Clone() LaunchConfig {
	c.Args = append([]string(nil), c.Args...)
	if c.Geolocation != nil {
		g := *c.Geolocation
		c.Geolocation = &g
	}
	return c
}

// ParseViewport parses "W,H" or "WxH". Missing, malformed or too small
// input yields DefaultViewport and false.
func ParseViewport(s string) (Viewport, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultViewport, false
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' })
	if len(parts) != 2 || strings.Count(s, ",")+strings.Count(s, "x") != 1 {
		return DefaultViewport, false
	}

	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return DefaultViewport, false
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return DefaultViewport, false
	}

	if width < MinViewportDimension || height < MinViewportDimension {
		return DefaultViewport, false
	}
	return Viewport{Width: width, Height: height}, true
}
