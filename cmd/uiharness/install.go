package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/config"
)

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install [browser...]",
		Short: "Download the Playwright driver and browsers",
		Long: `Download the Playwright driver and the given browsers. With no
arguments the configured --browser (default chrome) is installed.

Examples:
  uiharness install
  uiharness install firefox webkit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = []string{a.browserFlag}
				if a.browserFlag == "" {
					names = []string{string(config.DefaultBrowser)}
				}
			}

			var bundles []string
			seen := make(map[string]bool)
			for _, n := range names {
				b, ok := config.ParseBrowser(n)
				if !ok {
					return withCode(ExitUsageError, &config.ArgumentError{Argument: "browser", Reason: fmt.Sprintf("unknown browser %q", n)})
				}
				for _, bundle := range browser.InstallBrowsers(b) {
					if !seen[bundle] {
						seen[bundle] = true
						bundles = append(bundles, bundle)
					}
				}
			}

			factory := a.driver(browser.DriverOptions{
				Install:  true,
				Browsers: bundles,
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
			})
			driver, err := factory()
			if err != nil {
				return withCode(ExitDriverError, err)
			}
			if err := driver.Stop(); err != nil {
				return withCode(ExitDriverError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed: %v\n", bundles)
			return nil
		},
	}
}
