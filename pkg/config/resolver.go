// Package config resolves browser launch settings and environment endpoints
// from layered property files and process overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/uiharness/pkg/logging"
)

// Process-level override variable names.
const (
	OverrideEnv      = "env"
	OverrideBrowser  = "browser"
	OverrideHeadless = "headless"
)

// Base property keys.
const (
	KeyBrowserName       = "BrowserName"
	KeyHeadless          = "Headless_status"
	KeyLocale            = "Locale"
	KeyWindowSize        = "window_size"
	KeyDefaultTimeout    = "default_timeout"
	KeyNavigationTimeout = "navigation_timeout"
	KeyArgs              = "argValue"
	KeySlowMotion        = "slow_motion"
	KeyTracing           = "enable_tracing"
	KeyUserAgent         = "user_agent"
	KeyLatitude          = "geolocation_latitude"
	KeyLongitude         = "geolocation_longitude"
	KeyTimezone          = "timezone"
	KeyRecordVideo       = "record_video"
)

// Default source locations, relative to the working directory.
const (
	DefaultBaseFile      = "config/browser.properties"
	DefaultEnvDir        = "config/env"
	DefaultFilePathsFile = "config/filepaths.txt"
)

// LookupFunc reads a process-level override, like os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// lookupOverride tries the exact name first, then its upper-case form.
func (f LookupFunc) lookupOverride(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	if v, ok := f(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v, ok := f(strings.ToUpper(name)); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	return "", false
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(m map[string]string) LookupFunc {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// ChainLookup consults each LookupFunc in order and returns the first
// non-empty value.
func ChainLookup(fns ...LookupFunc) LookupFunc {
	return func(name string) (string, bool) {
		for _, f := range fns {
			if f == nil {
				continue
			}
			if v, ok := f(name); ok && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
		return "", false
	}
}

// Sources are the inputs of launch configuration resolution.
type Sources struct {
	Base      Properties
	Env       Properties
	Overrides LookupFunc
}

// Settings is the outcome of resolving all configuration sources.
type Settings struct {
	Env         string
	Launch      LaunchConfig
	Environment Environment

	// Warnings lists every value that was ignored in favour of a default.
	Warnings []string
}

// Resolver loads the property files and resolves Settings.
type Resolver struct {
	BaseFile string
	EnvDir   string
	Lookup   LookupFunc
	Logger   *logging.Logger
}

// NewResolver returns a resolver reading the default file locations and the
// process environment.
func NewResolver() *Resolver {
	return &Resolver{
		BaseFile: DefaultBaseFile,
		EnvDir:   DefaultEnvDir,
		Lookup:   os.LookupEnv,
	}
}

// EnvFile returns the property file path for an environment name.
func (r *Resolver) EnvFile(env string) string {
	return filepath.Join(r.EnvDir, strings.ToLower(env)+".properties")
}

// Resolve reads the sources and builds Settings. A missing environment
// selection or an unreadable property file is a ConfigurationError; bad
// individual values only produce warnings.
func (r *Resolver) Resolve() (*Settings, error) {
	env, ok := r.Lookup.lookupOverride(OverrideEnv)
	if !ok {
		return nil, &ConfigurationError{
			Setting: OverrideEnv,
			Reason:  "no environment selected (set the env override, e.g. env=staging)",
		}
	}

	base, err := LoadProperties(r.BaseFile)
	if err != nil {
		return nil, &ConfigurationError{Setting: "base properties", Reason: r.BaseFile, Err: err}
	}
	r.debugf("loaded property file: %s", r.BaseFile)

	envFile := r.EnvFile(env)
	envProps, err := LoadProperties(envFile)
	if err != nil {
		reason := envFile
		if errors.Is(err, os.ErrNotExist) {
			reason = fmt.Sprintf("no property file for environment %q (%s)", env, envFile)
		}
		return nil, &ConfigurationError{Setting: "environment properties", Reason: reason, Err: err}
	}
	r.debugf("loaded property file: %s", envFile)

	launch, warnings := ResolveLaunch(Sources{Base: base, Env: envProps, Overrides: r.Lookup})
	for _, w := range warnings {
		r.warnf("%s", w)
	}

	settings := &Settings{
		Env:         env,
		Launch:      launch,
		Environment: NewEnvironment(env, envProps),
		Warnings:    warnings,
	}

	if r.Logger != nil {
		r.Logger.Infof("loaded properties for environment: %s", env)
		r.Logger.Infof("browser: %s, headless: %v, locale: %s, viewport: %s",
			launch.Browser, launch.Headless, launch.Locale, launch.Viewport)
	}
	return settings, nil
}

func (r *Resolver) debugf(format string, v ...interface{}) {
	if r.Logger != nil {
		r.Logger.Debugf(format, v...)
	}
}

func (r *Resolver) warnf(format string, v ...interface{}) {
	if r.Logger != nil {
		r.Logger.Warnf(format, v...)
	}
}

// ResolveLaunch builds a LaunchConfig from its sources without side
// effects. Environment properties take priority over base properties and
// overrides take priority over both. Unparseable values fall back to the
// field default and are reported in the returned warnings.
func ResolveLaunch(src Sources) (LaunchConfig, []string) {
	props := src.Base.Merge(src.Env)
	cfg := DefaultLaunchConfig()
	var warnings []string
	warn := func(format string, v ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, v...))
	}

	// Browser: override > property > default.
	browserSet := false
	if v, ok := src.Overrides.lookupOverride(OverrideBrowser); ok {
		if b, ok := ParseBrowser(v); ok {
			cfg.Browser = b
			browserSet = true
		} else {
			warn("unknown browser override %q, ignoring", v)
		}
	}
	if !browserSet {
		if v, ok := props.Get(KeyBrowserName); ok {
			if b, ok := ParseBrowser(v); ok {
				cfg.Browser = b
			} else {
				warn("unknown browser %q, defaulting to %s", v, DefaultBrowser)
			}
		}
	}

	// Headless: override > property > default.
	headlessSet := false
	if v, ok := src.Overrides.lookupOverride(OverrideHeadless); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = b
			headlessSet = true
		} else {
			warn("invalid headless override %q, ignoring", v)
		}
	}
	if !headlessSet {
		cfg.Headless = boolProperty(props, KeyHeadless, DefaultHeadless, warn)
	}

	if v, ok := props.Get(KeyLocale); ok {
		cfg.Locale = v
	}

	windowSize := DefaultWindowSize
	if v, ok := props.Get(KeyWindowSize); ok {
		windowSize = v
		if vp, ok := ParseViewport(v); ok {
			cfg.Viewport = vp
		} else {
			warn("invalid window size %q, using default %s", v, DefaultViewport)
		}
	}

	cfg.DefaultTimeout = millisProperty(props, KeyDefaultTimeout, DefaultTimeout, warn)
	cfg.NavigationTimeout = millisProperty(props, KeyNavigationTimeout, DefaultNavigationTimeout, warn)

	cfg.Args = []string{"--window-size=" + windowSize}
	if v, ok := props.Get(KeyArgs); ok {
		for _, arg := range strings.Split(v, ",") {
			if arg = strings.TrimSpace(arg); arg != "" {
				cfg.Args = append(cfg.Args, arg)
			}
		}
	}

	if v, ok := props.Get(KeySlowMotion); ok {
		ms, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			warn("invalid %s value %q, slow motion disabled", KeySlowMotion, v)
		case ms > 0:
			cfg.SlowMo = time.Duration(ms * float64(time.Millisecond))
		}
	}

	cfg.Tracing = boolProperty(props, KeyTracing, false, warn)
	cfg.RecordVideo = boolProperty(props, KeyRecordVideo, false, warn)

	if v, ok := props.Get(KeyUserAgent); ok {
		cfg.UserAgent = v
	}
	if v, ok := props.Get(KeyTimezone); ok {
		cfg.Timezone = v
	}

	lat, hasLat := props.Get(KeyLatitude)
	lon, hasLon := props.Get(KeyLongitude)
	switch {
	case hasLat && hasLon:
		latitude, latErr := strconv.ParseFloat(lat, 64)
		longitude, lonErr := strconv.ParseFloat(lon, 64)
		if latErr != nil || lonErr != nil {
			warn("invalid geolocation %q,%q, geolocation disabled", lat, lon)
		} else {
			cfg.Geolocation = &Geolocation{Latitude: latitude, Longitude: longitude}
		}
	case hasLat || hasLon:
		warn("geolocation needs both %s and %s, geolocation disabled", KeyLatitude, KeyLongitude)
	}

	return cfg, warnings
}

func boolProperty(props Properties, key string, def bool, warn func(string, ...interface{})) bool {
	v, ok := props.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		warn("invalid %s value %q, using default %v", key, v, def)
		return def
	}
	return b
}

func millisProperty(props Properties, key string, def time.Duration, warn func(string, ...interface{})) time.Duration {
	v, ok := props.Get(key)
	if !ok {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		warn("invalid %s value %q, using default %dms", key, v, def.Milliseconds())
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
