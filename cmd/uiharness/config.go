package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/logging"
)

// settingsView is the printable form of resolved settings.
type settingsView struct {
	Env               string   `json:"env"`
	BaseURL           string   `json:"base_url"`
	Browser           string   `json:"browser"`
	Headless          bool     `json:"headless"`
	Locale            string   `json:"locale"`
	Viewport          string   `json:"viewport"`
	DefaultTimeout    string   `json:"default_timeout"`
	NavigationTimeout string   `json:"navigation_timeout"`
	Args              []string `json:"args"`
	SlowMo            string   `json:"slow_mo,omitempty"`
	Tracing           bool     `json:"tracing"`
	UserAgent         string   `json:"user_agent,omitempty"`
	Geolocation       string   `json:"geolocation,omitempty"`
	Timezone          string   `json:"timezone,omitempty"`
	RecordVideo       bool     `json:"record_video"`
	VideoDir          string   `json:"video_dir,omitempty"`
	EnvironmentKeys   []string `json:"environment_keys"`
	Warnings          []string `json:"warnings"`
}

func newSettingsView(s *config.Settings) settingsView {
	l := s.Launch
	v := settingsView{
		Env:               s.Env,
		BaseURL:           s.Environment.BaseURL(),
		Browser:           string(l.Browser),
		Headless:          l.Headless,
		Locale:            l.Locale,
		Viewport:          l.Viewport.String(),
		DefaultTimeout:    l.DefaultTimeout.String(),
		NavigationTimeout: l.NavigationTimeout.String(),
		Args:              l.Args,
		Tracing:           l.Tracing,
		UserAgent:         l.UserAgent,
		Timezone:          l.Timezone,
		RecordVideo:       l.RecordVideo,
		EnvironmentKeys:   s.Environment.Keys(),
		Warnings:          s.Warnings,
	}
	if l.SlowMo > 0 {
		v.SlowMo = l.SlowMo.String()
	}
	if l.Geolocation != nil {
		v.Geolocation = fmt.Sprintf("%g,%g", l.Geolocation.Latitude, l.Geolocation.Longitude)
	}
	if l.RecordVideo {
		v.VideoDir = l.VideoDir
	}
	return v
}

func (a *app) configCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved browser and environment settings",
		Long: `Resolve the property files and overrides exactly as a run would and
print the result, including every value that fell back to a default.

Examples:
  uiharness config --env staging
  uiharness config -e qa --browser firefox --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := a.resolveSettings(cmd, logging.Discard("config"))
			if err != nil {
				return err
			}
			view := newSettingsView(settings)
			if asJSON {
				data, err := json.MarshalIndent(view, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal settings: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			printSettings(cmd, view)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func printSettings(cmd *cobra.Command, v settingsView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Environment:        %s\n", v.Env)
	fmt.Fprintf(out, "Base URL:           %s\n", v.BaseURL)
	fmt.Fprintf(out, "Browser:            %s\n", v.Browser)
	fmt.Fprintf(out, "Headless:           %t\n", v.Headless)
	fmt.Fprintf(out, "Locale:             %s\n", v.Locale)
	fmt.Fprintf(out, "Viewport:           %s\n", v.Viewport)
	fmt.Fprintf(out, "Default timeout:    %s\n", v.DefaultTimeout)
	fmt.Fprintf(out, "Navigation timeout: %s\n", v.NavigationTimeout)
	fmt.Fprintf(out, "Args:               %s\n", strings.Join(v.Args, " "))
	if v.SlowMo != "" {
		fmt.Fprintf(out, "Slow motion:        %s\n", v.SlowMo)
	}
	fmt.Fprintf(out, "Tracing:            %t\n", v.Tracing)
	if v.UserAgent != "" {
		fmt.Fprintf(out, "User agent:         %s\n", v.UserAgent)
	}
	if v.Geolocation != "" {
		fmt.Fprintf(out, "Geolocation:        %s\n", v.Geolocation)
	}
	if v.Timezone != "" {
		fmt.Fprintf(out, "Timezone:           %s\n", v.Timezone)
	}
	if v.RecordVideo {
		fmt.Fprintf(out, "Video dir:          %s\n", v.VideoDir)
	}
	for _, w := range v.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
}
