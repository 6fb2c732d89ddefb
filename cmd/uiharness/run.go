package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/lifecycle"
	"github.com/entrhq/uiharness/pkg/logging"
	"github.com/entrhq/uiharness/pkg/plan"
	"github.com/entrhq/uiharness/pkg/vars"
)

type runOptions struct {
	include           []string
	exclude           []string
	artifactDir       string
	install           bool
	varScope          string
	assertTimeout     time.Duration
	skipStartNavigate bool
	quiet             bool
	verbose           bool
}

func (a *app) runCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <plan.yaml> [plan.yaml...]",
		Short: "Run smoke plans in a browser",
		Long: `Run the scenarios of one or more YAML smoke plans. Each scenario gets a
fresh browser; the driver is shared across the run.

Examples:
  uiharness run smoke.yaml --env staging
  uiharness run smoke.yaml -e qa --browser firefox --headless
  uiharness run plans/*.yaml -e qa --run "login*" --skip "*slow*"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.include, "run", nil, "Run only scenarios whose name matches a glob (repeatable)")
	flags.StringSliceVar(&opts.exclude, "skip", nil, "Skip scenarios whose name matches a glob (repeatable)")
	flags.StringVar(&opts.artifactDir, "artifacts", getEnvString("UIHARNESS_ARTIFACTS", lifecycle.DefaultArtifactDir), "Directory for screenshots, traces and summaries (env: UIHARNESS_ARTIFACTS)")
	flags.BoolVar(&opts.install, "install", getEnvBool("UIHARNESS_INSTALL", false), "Install the driver and browser before running (env: UIHARNESS_INSTALL)")
	flags.StringVar(&opts.varScope, "var-scope", getEnvString("UIHARNESS_VAR_SCOPE", vars.ScopeScenario.String()), "Variable lifetime: scenario or suite (env: UIHARNESS_VAR_SCOPE)")
	flags.DurationVar(&opts.assertTimeout, "assert-timeout", browser.DefaultAssertTimeout, "How long assertions retry before failing")
	flags.BoolVar(&opts.skipStartNavigate, "no-start-page", false, "Do not open the environment Url when a scenario starts")
	flags.BoolVarP(&opts.quiet, "quiet", "q", getEnvBool("UIHARNESS_QUIET", false), "Print only failures and the summary (env: UIHARNESS_QUIET)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print skipped scenarios and mirror debug logs to stderr")

	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string, opts *runOptions) error {
	plans := make([]*plan.Plan, 0, len(args))
	for _, path := range args {
		p, err := plan.Load(path)
		if err != nil {
			return withCode(ExitParseError, err)
		}
		plans = append(plans, p)
	}

	filter, err := lifecycle.NewFilter(opts.include, opts.exclude)
	if err != nil {
		return withCode(ExitUsageError, err)
	}
	scope, err := vars.ParseScope(opts.varScope)
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	logger := a.runLogger(opts)
	defer logger.Close()

	settings, err := a.resolveSettings(cmd, logger.Component("config"))
	if err != nil {
		return err
	}
	files, err := a.loadFilePaths()
	if err != nil {
		return err
	}

	verbosity := lifecycle.VerbosityNormal
	switch {
	case opts.quiet:
		verbosity = lifecycle.VerbosityQuiet
	case opts.verbose:
		verbosity = lifecycle.VerbosityVerbose
	}

	suite, err := lifecycle.NewSuite(lifecycle.Options{
		Settings: settings,
		Driver: a.driver(browser.DriverOptions{
			Install:  opts.install,
			Browsers: browser.InstallBrowsers(settings.Launch.Browser),
			Stdout:   a.errOut,
			Stderr:   a.errOut,
		}),
		Files:               files,
		ArtifactDir:         opts.artifactDir,
		VarScope:            scope,
		Filter:              filter,
		SkipStartNavigation: opts.skipStartNavigate,
		AssertTimeout:       opts.assertTimeout,
		Console:             lifecycle.NewConsole(a.out, verbosity),
		Logger:              logger,
	})
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	defer suite.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	suite.BeforeAll()
	runner := plan.NewRunner(suite, logger.Component("plan"))
	for _, p := range plans {
		if ctx.Err() != nil {
			break
		}
		runner.Run(ctx, p)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(a.errOut, "\nShutting down gracefully...")
	}
	summary := suite.AfterAll()

	if ctx.Err() != nil {
		return withCode(ExitInterrupted, errors.New("run interrupted"))
	}
	if !summary.Succeeded() {
		return withCode(ExitTestFailure, fmt.Errorf("%d of %d scenarios failed", summary.Failed, summary.Total))
	}
	return nil
}

// runLogger opens the run log file, falling back to stderr.
func (a *app) runLogger(opts *runOptions) *logging.Logger {
	logging.SetLogDirectory(a.logDir)
	logger, err := logging.NewLogger("uiharness")
	if err != nil {
		fmt.Fprintf(a.errOut, "Warning: %v\n", err)
	}

	logger.SetLevel(logging.LevelInfo)
	if opts.verbose {
		logger.SetLevel(logging.LevelDebug)
		logger.SetMirror(a.errOut)
	}
	return logger
}
