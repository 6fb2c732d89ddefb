package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewport(t *testing.T) {
	t.Run("valid sizes round trip", func(t *testing.T) {
		for _, w := range []int{100, 101, 800, 1280, 1920, 3840} {
			for _, h := range []int{100, 600, 800, 1080, 2160} {
				for _, sep := range []string{",", "x"} {
					input := fmt.Sprintf("%d%s%d", w, sep, h)
					vp, ok := ParseViewport(input)
					assert.True(t, ok, input)
					assert.Equal(t, Viewport{Width: w, Height: h}, vp, input)
				}
			}
		}
	})

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"width too small", "99,800"},
		{"height too small", "1280x99"},
		{"both too small", "10x10"},
		{"negative", "-1280,800"},
		{"non integer", "wide,800"},
		{"float", "1280.5,800"},
		{"one dimension", "1280"},
		{"three dimensions", "1280,800,600"},
		{"mixed separators", "1280,800x600"},
		{"trailing separator", "1280x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp, ok := ParseViewport(tt.input)
			assert.False(t, ok)
			assert.Equal(t, Viewport{Width: 1280, Height: 800}, vp)
		})
	}

	t.Run("spaces around numbers", func(t *testing.T) {
		vp, ok := ParseViewport(" 1440 x 900 ")
		assert.True(t, ok)
		assert.Equal(t, Viewport{Width: 1440, Height: 900}, vp)
	})
}

func TestResolveLaunch_Defaults(t *testing.T) {
	cfg, warnings := ResolveLaunch(Sources{})

	assert.Empty(t, warnings)
	assert.Equal(t, BrowserChrome, cfg.Browser)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, Viewport{Width: 1280, Height: 800}, cfg.Viewport)
	assert.Equal(t, 30*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, []string{"--window-size=1280,800"}, cfg.Args)
	assert.Zero(t, cfg.SlowMo)
	assert.Nil(t, cfg.Geolocation)
	assert.False(t, cfg.Tracing)
	assert.False(t, cfg.RecordVideo)
}

func TestResolveLaunch_HeadlessOverrideWins(t *testing.T) {
	cfg, warnings := ResolveLaunch(Sources{
		Base:      Properties{KeyHeadless: "false"},
		Overrides: MapLookup(map[string]string{"headless": "true"}),
	})

	assert.Empty(t, warnings)
	assert.True(t, cfg.Headless)
}

func TestResolveLaunch_UpperCaseOverride(t *testing.T) {
	cfg, _ := ResolveLaunch(Sources{
		Base:      Properties{KeyBrowserName: "chrome"},
		Overrides: MapLookup(map[string]string{"BROWSER": "firefox"}),
	})
	assert.Equal(t, BrowserFirefox, cfg.Browser)
}

func TestResolveLaunch_UnparseableOverrideFallsBackToProperty(t *testing.T) {
	cfg, warnings := ResolveLaunch(Sources{
		Base: Properties{KeyHeadless: "true", KeyBrowserName: "webkit"},
		Overrides: MapLookup(map[string]string{
			"headless": "sometimes",
			"browser":  "netscape",
		}),
	})

	assert.True(t, cfg.Headless)
	assert.Equal(t, BrowserWebKit, cfg.Browser)
	assert.Len(t, warnings, 2)
}

func TestResolveLaunch_EnvironmentOverridesBase(t *testing.T) {
	cfg, _ := ResolveLaunch(Sources{
		Base: Properties{KeyLocale: "en-US", KeyDefaultTimeout: "10000"},
		Env:  Properties{KeyLocale: "de-DE"},
	})

	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
}

func TestResolveLaunch_FullProperties(t *testing.T) {
	cfg, warnings := ResolveLaunch(Sources{Base: Properties{
		KeyBrowserName:       "Edge",
		KeyHeadless:          "TRUE",
		KeyLocale:            "fr-FR",
		KeyWindowSize:        "1920x1080",
		KeyDefaultTimeout:    "15000",
		KeyNavigationTimeout: "45000",
		KeyArgs:              "--start-maximized, --disable-gpu,,",
		KeySlowMotion:        "250",
		KeyTracing:           "true",
		KeyUserAgent:         "uiharness-bot/1.0",
		KeyLatitude:          "48.8566",
		KeyLongitude:         "2.3522",
		KeyTimezone:          "Europe/Paris",
		KeyRecordVideo:       "true",
	}})

	assert.Empty(t, warnings)
	assert.Equal(t, BrowserEdge, cfg.Browser)
	assert.Equal(t, "msedge", cfg.Browser.Channel())
	assert.True(t, cfg.Headless)
	assert.Equal(t, "fr-FR", cfg.Locale)
	assert.Equal(t, Viewport{Width: 1920, Height: 1080}, cfg.Viewport)
	assert.Equal(t, 15*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, 45*time.Second, cfg.NavigationTimeout)
	assert.Equal(t, []string{"--window-size=1920x1080", "--start-maximized", "--disable-gpu"}, cfg.Args)
	assert.Equal(t, 250*time.Millisecond, cfg.SlowMo)
	assert.True(t, cfg.Tracing)
	assert.Equal(t, "uiharness-bot/1.0", cfg.UserAgent)
	require.NotNil(t, cfg.Geolocation)
	assert.InDelta(t, 48.8566, cfg.Geolocation.Latitude, 1e-9)
	assert.InDelta(t, 2.3522, cfg.Geolocation.Longitude, 1e-9)
	assert.Equal(t, "Europe/Paris", cfg.Timezone)
	assert.True(t, cfg.RecordVideo)
}

func TestResolveLaunch_BadValuesDegradePerField(t *testing.T) {
	cfg, warnings := ResolveLaunch(Sources{Base: Properties{
		KeyBrowserName:       "lynx",
		KeyHeadless:          "yes please",
		KeyWindowSize:        "50x50",
		KeyDefaultTimeout:    "soon",
		KeyNavigationTimeout: "-5",
		KeySlowMotion:        "slow",
		KeyLatitude:          "north",
		KeyLongitude:         "2.35",
		KeyTracing:           "maybe",
		KeyLocale:            "nl-NL",
	}})

	assert.Equal(t, BrowserChrome, cfg.Browser)
	assert.False(t, cfg.Headless)
	assert.Equal(t, DefaultViewport, cfg.Viewport)
	assert.Equal(t, DefaultTimeout, cfg.DefaultTimeout)
	assert.Equal(t, DefaultNavigationTimeout, cfg.NavigationTimeout)
	assert.Zero(t, cfg.SlowMo)
	assert.Nil(t, cfg.Geolocation)
	assert.False(t, cfg.Tracing)
	assert.Equal(t, "nl-NL", cfg.Locale, "valid fields are unaffected")
	assert.Len(t, warnings, 8)
}

func TestResolveLaunch_HalfGeolocation(t *testing.T) {
	cfg, warnings := ResolveLaunch(Sources{Base: Properties{KeyLatitude: "1.0"}})
	assert.Nil(t, cfg.Geolocation)
	assert.Len(t, warnings, 1)
}

func TestLaunchConfig_Clone(t *testing.T) {
	cfg := DefaultLaunchConfig()
	cfg.Geolocation = &Geolocation{Latitude: 1, Longitude: 2}

	clone := cfg.Clone()
	clone.Args[0] = "changed"
	clone.Geolocation.Latitude = 9

	assert.Equal(t, "--window-size=1280,800", cfg.Args[0])
	assert.Equal(t, 1.0, cfg.Geolocation.Latitude)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestResolver(t *testing.T, overrides map[string]string) *Resolver {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "browser.properties"), `
# browser settings
BrowserName=firefox
Headless_status=false
window_size=1366x768
default_timeout=20000
`)
	writeFile(t, filepath.Join(dir, "env", "staging.properties"), `
staging.Url=https://staging.example.com
username=qa
password: s3cret
chatGptUrl=https://chat.example.com
Locale=en-GB
`)
	return &Resolver{
		BaseFile: filepath.Join(dir, "browser.properties"),
		EnvDir:   filepath.Join(dir, "env"),
		Lookup:   MapLookup(overrides),
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := newTestResolver(t, map[string]string{"env": "Staging", "headless": "true"})

	settings, err := r.Resolve()
	require.NoError(t, err)

	assert.Equal(t, "Staging", settings.Env)
	assert.Equal(t, BrowserFirefox, settings.Launch.Browser)
	assert.True(t, settings.Launch.Headless)
	assert.Equal(t, "en-GB", settings.Launch.Locale)
	assert.Equal(t, Viewport{Width: 1366, Height: 768}, settings.Launch.Viewport)
	assert.Equal(t, 20*time.Second, settings.Launch.DefaultTimeout)
	assert.Empty(t, settings.Warnings)

	assert.Equal(t, "https://staging.example.com", settings.Environment.BaseURL())
	assert.Equal(t, "qa", settings.Environment.Username())
	assert.Equal(t, "s3cret", settings.Environment.Password())

	chat, err := settings.Environment.RequireURL("chatGptUrl")
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", chat)
}

func TestResolver_MissingEnvironmentSelection(t *testing.T) {
	r := newTestResolver(t, map[string]string{})

	_, err := r.Resolve()

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, OverrideEnv, cfgErr.Setting)
}

func TestResolver_UnknownEnvironment(t *testing.T) {
	r := newTestResolver(t, map[string]string{"env": "prod"})

	_, err := r.Resolve()

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "prod")
}

func TestResolver_MissingBaseFile(t *testing.T) {
	r := newTestResolver(t, map[string]string{"env": "staging"})
	r.BaseFile = filepath.Join(t.TempDir(), "nope.properties")

	_, err := r.Resolve()

	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestEnvironment_RequireURLMissing(t *testing.T) {
	env := NewEnvironment("alpha", Properties{"username": "x"})

	assert.Equal(t, "", env.BaseURL())
	_, err := env.RequireURL(KeyURL)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, KeyURL, cfgErr.Setting)
}

func TestEnvironment_PrefixedKeyWins(t *testing.T) {
	env := NewEnvironment("beta", Properties{
		"Url":      "https://bare.example.com",
		"beta.Url": "https://beta.example.com",
		"other":    "x",
	})

	assert.Equal(t, "https://beta.example.com", env.BaseURL())
	assert.Equal(t, []string{"Url", "other"}, env.Keys())
}

func TestChainLookup(t *testing.T) {
	lookup := ChainLookup(
		MapLookup(map[string]string{"env": "", "browser": "firefox"}),
		nil,
		MapLookup(map[string]string{"env": "qa", "browser": "webkit"}),
	)

	v, ok := lookup("env")
	assert.True(t, ok)
	assert.Equal(t, "qa", v)

	v, _ = lookup("browser")
	assert.Equal(t, "firefox", v)

	_, ok = lookup("headless")
	assert.False(t, ok)
}
