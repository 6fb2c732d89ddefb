package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/logging"
)

// app holds the command dependencies and the global flag values.
type app struct {
	out    io.Writer
	errOut io.Writer

	// lookupEnv reads process overrides; flags take precedence over it.
	lookupEnv config.LookupFunc

	// driver builds the driver factory for a run.
	driver func(opts browser.DriverOptions) browser.DriverFactory

	propertiesFile string
	envDir         string
	filePathsFile  string
	logDir         string

	envFlag      string
	browserFlag  string
	headlessFlag bool
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:       out,
		errOut:    errOut,
		lookupEnv: os.LookupEnv,
		driver:    browser.PlaywrightDriver,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "uiharness",
		Short: "Browser acceptance tests from plain YAML plans",
		Long: `uiharness drives a real browser through Playwright to run acceptance
scenarios against a selected environment. Browser settings come from
property files and can be overridden per run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.propertiesFile, "properties", getEnvString("UIHARNESS_PROPERTIES", config.DefaultBaseFile), "Base browser property file (env: UIHARNESS_PROPERTIES)")
	flags.StringVar(&a.envDir, "env-dir", getEnvString("UIHARNESS_ENV_DIR", config.DefaultEnvDir), "Directory of <env>.properties files (env: UIHARNESS_ENV_DIR)")
	flags.StringVar(&a.filePathsFile, "filepaths", getEnvString("UIHARNESS_FILEPATHS", config.DefaultFilePathsFile), "Upload keyword lookup file (env: UIHARNESS_FILEPATHS)")
	flags.StringVar(&a.logDir, "log-dir", getEnvString("UIHARNESS_LOG_DIR", logging.DefaultLogDirectory), "Directory for run logs (env: UIHARNESS_LOG_DIR)")
	flags.StringVarP(&a.envFlag, "env", "e", "", "Environment to test (env: env / ENV)")
	flags.StringVarP(&a.browserFlag, "browser", "b", "", "Browser override: chrome, chromium, edge, firefox, webkit (env: browser / BROWSER)")
	flags.BoolVar(&a.headlessFlag, "headless", false, "Headless override (env: headless / HEADLESS)")

	root.AddCommand(a.runCmd())
	root.AddCommand(a.configCmd())
	root.AddCommand(a.lookupCmd())
	root.AddCommand(a.installCmd())
	root.AddCommand(a.versionCmd())
	return root
}

// execute runs the command line and returns the process exit code.
func (a *app) execute(args []string) int {
	return a.executeContext(context.Background(), args)
}

func (a *app) executeContext(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	code := exitCode(err)
	if err != nil && code != ExitTestFailure {
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
	}
	return code
}

// overrides layers the command-line overrides over the process ones.
func (a *app) overrides(cmd *cobra.Command) config.LookupFunc {
	flagValues := map[string]string{
		config.OverrideEnv:     a.envFlag,
		config.OverrideBrowser: a.browserFlag,
	}
	if cmd.Flags().Changed("headless") {
		flagValues[config.OverrideHeadless] = strconv.FormatBool(a.headlessFlag)
	}
	return config.ChainLookup(config.MapLookup(flagValues), a.lookupEnv)
}

func (a *app) resolveSettings(cmd *cobra.Command, logger *logging.Logger) (*config.Settings, error) {
	resolver := &config.Resolver{
		BaseFile: a.propertiesFile,
		EnvDir:   a.envDir,
		Lookup:   a.overrides(cmd),
		Logger:   logger,
	}
	settings, err := resolver.Resolve()
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	return settings, nil
}

// loadFilePaths reads the upload lookup file. A missing file is not an
// error; the lookup is simply unavailable.
func (a *app) loadFilePaths() (*config.FilePaths, error) {
	if _, err := os.Stat(a.filePathsFile); os.IsNotExist(err) {
		return nil, nil
	}
	files, err := config.LoadFilePaths(a.filePathsFile)
	if err != nil {
		return nil, withCode(ExitConfigError, err)
	}
	return files, nil
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
