package lifecycle

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Verbosity controls how much the console prints.
type Verbosity int

const (
	// VerbosityQuiet prints only failures, warnings and the final summary
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal prints suite and scenario progress (default)
	VerbosityNormal
	// VerbosityVerbose also prints artifact and diagnostic details
	VerbosityVerbose
)

// ParseVerbosity converts a name to a Verbosity, defaulting to normal.
func ParseVerbosity(name string) Verbosity {
	switch strings.ToLower(name) {
	case "quiet":
		return VerbosityQuiet
	case "verbose", "debug":
		return VerbosityVerbose
	default:
		return VerbosityNormal
	}
}

// SeparatorWidth is the width of suite banners.
const SeparatorWidth = 120

var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
	amber       = lipgloss.Color("#FCD34D")
)

// Console prints suite progress for humans. Colors are dropped
// automatically when the writer is not a terminal.
type Console struct {
	level  Verbosity
	writer io.Writer

	banner  lipgloss.Style
	start   lipgloss.Style
	passed  lipgloss.Style
	failed  lipgloss.Style
	detail  lipgloss.Style
	warning lipgloss.Style
}

// NewConsole creates a console writing to w. A nil writer means stdout.
func NewConsole(w io.Writer, level Verbosity) *Console {
	if w == nil {
		w = os.Stdout
	}
	r := lipgloss.NewRenderer(w)
	return &Console{
		level:   level,
		writer:  w,
		banner:  r.NewStyle().Foreground(brightWhite).Bold(true),
		start:   r.NewStyle().Foreground(salmonPink),
		passed:  r.NewStyle().Foreground(mintGreen).Bold(true),
		failed:  r.NewStyle().Foreground(salmonPink).Bold(true),
		detail:  r.NewStyle().Foreground(mutedGray),
		warning: r.NewStyle().Foreground(amber),
	}
}

func (c *Console) separator() string {
	return c.banner.Render(strings.Repeat("=", SeparatorWidth))
}

// SuiteStarted prints the opening banner with the run configuration.
func (c *Console) SuiteStarted(info SuiteInfo) {
	if c.level < VerbosityNormal {
		return
	}
	fmt.Fprintf(c.writer, "\n%s\n", c.separator())
	fmt.Fprintln(c.writer, c.banner.Render("TEST SUITE STARTED"))
	fmt.Fprintln(c.writer, c.separator())
	fmt.Fprintf(c.writer, "Environment: %s | Browser: %s | Headless: %t | BaseUrl: %s\n",
		info.Env, info.Browser, info.Headless, info.BaseURL)
	fmt.Fprintf(c.writer, "%s\n\n", c.separator())
}

// ScenarioStarted prints the scenario name and its tags.
func (c *Console) ScenarioStarted(name string, tags []string) {
	if c.level < VerbosityNormal {
		return
	}
	fmt.Fprintf(c.writer, "\n%s\n", c.start.Render("▶ Starting: "+name))
	if len(tags) > 0 {
		fmt.Fprintf(c.writer, "  Tags: [%s]\n", strings.Join(tags, ", "))
	}
}

// ScenarioPassed prints a pass line with the scenario duration.
func (c *Console) ScenarioPassed(name string, d time.Duration) {
	if c.level < VerbosityNormal {
		return
	}
	fmt.Fprintln(c.writer, c.passed.Render(fmt.Sprintf("✓ PASSED: %s (%s)", name, FormatDuration(d))))
}

// ScenarioFailed prints a failure line and the failure cause.
func (c *Console) ScenarioFailed(name string, d time.Duration, err error) {
	fmt.Fprintln(c.writer, c.failed.Render(fmt.Sprintf("✗ FAILED: %s (%s)", name, FormatDuration(d))))
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(c.writer, "  %s\n", c.detail.Render(line))
		}
	}
}

// SetupFailed reports a scenario whose browser could not be prepared.
func (c *Console) SetupFailed(err error) {
	fmt.Fprintln(c.writer, c.failed.Render("✗ Setup failed: "+err.Error()))
}

// ScenarioSkipped reports a scenario excluded by the filter.
func (c *Console) ScenarioSkipped(name string) {
	if c.level < VerbosityVerbose {
		return
	}
	fmt.Fprintln(c.writer, c.detail.Render("- Skipped: "+name))
}

// Detail prints an indented key/value line such as a screenshot path.
func (c *Console) Detail(label, value string) {
	fmt.Fprintf(c.writer, "  %s: %s\n", label, value)
}

// Warningf prints a warning at every verbosity.
func (c *Console) Warningf(format string, args ...interface{}) {
	fmt.Fprintln(c.writer, c.warning.Render("⚠ Warning: "+fmt.Sprintf(format, args...)))
}

// Summary prints the closing banner with counts, duration and pass rate.
func (c *Console) Summary(s *Summary) {
	fmt.Fprintf(c.writer, "\n%s\n", c.separator())
	fmt.Fprintln(c.writer, c.banner.Render("TEST SUITE COMPLETED"))
	fmt.Fprintln(c.writer, c.separator())
	fmt.Fprintf(c.writer, "Total: %d | Passed: %d | Failed: %d", s.Total, s.Passed, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(c.writer, " | Skipped: %d", s.Skipped)
	}
	fmt.Fprintln(c.writer)
	fmt.Fprintf(c.writer, "Duration: %s\n", FormatDuration(s.Duration))
	fmt.Fprintf(c.writer, "Pass Rate: %d%%\n", s.PassRate)
	fmt.Fprintf(c.writer, "%s\n\n", c.separator())
}
