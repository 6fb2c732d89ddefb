package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/entrhq/uiharness/pkg/browser"
	"github.com/entrhq/uiharness/pkg/lifecycle"
	"github.com/entrhq/uiharness/pkg/logging"
	"github.com/entrhq/uiharness/pkg/vars"
)

// StepError identifies the step that failed a scenario.
type StepError struct {
	Index  int
	Action Action
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Action, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Runner executes plans on a suite.
type Runner struct {
	suite  *lifecycle.Suite
	logger *logging.Logger
}

// NewRunner creates a runner for suite.
func NewRunner(suite *lifecycle.Suite, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard("plan")
	}
	return &Runner{suite: suite, logger: logger}
}

// Run executes every scenario of p in order and returns their results.
// Once ctx is done no further scenario is started; the one in progress
// runs to completion.
func (r *Runner) Run(ctx context.Context, p *Plan) []lifecycle.Result {
	r.logger.Infof("running plan %q (%d scenarios)", p.Name, len(p.Scenarios))
	results := make([]lifecycle.Result, 0, len(p.Scenarios))
	for _, sc := range p.Scenarios {
		if err := ctx.Err(); err != nil {
			r.logger.Warnf("plan %q stopped before %q: %v", p.Name, sc.Name, err)
			break
		}
		results = append(results, r.suite.Run(sc.Name, sc.Tags, r.scenarioFunc(p, sc)))
	}
	return results
}

func (r *Runner) scenarioFunc(p *Plan, scenario Scenario) lifecycle.ScenarioFunc {
	return func(sc *lifecycle.Scenario) error {
		resolver := NewResolver(sc.Vars, sc.Env, sc.Files)
		if err := seedVariables(sc.Vars, resolver, p.Variables); err != nil {
			return err
		}

		for i, step := range scenario.Steps {
			r.logger.Debugf("%s: step %d %s", scenario.Name, i+1, step.Action)
			if err := Execute(sc, resolver, step); err != nil {
				return &StepError{Index: i + 1, Action: step.Action, Err: err}
			}
		}
		return nil
	}
}

// seedVariables stores the plan variables. A variable may reference
// another one in any order; resolution repeats until every variable is set
// or a pass makes no progress.
func seedVariables(store *vars.Store, resolver *Resolver, variables map[string]string) error {
	pending := make([]string, 0, len(variables))
	for name := range variables {
		pending = append(pending, name)
	}
	sort.Strings(pending)

	for len(pending) > 0 {
		var next []string
		var firstErr error
		for _, name := range pending {
			value, err := resolver.Resolve(variables[name])
			if err != nil {
				next = append(next, name)
				if firstErr == nil {
					firstErr = fmt.Errorf("variable %s: %w", name, err)
				}
				continue
			}
			store.Set(name, value)
		}
		if len(next) == len(pending) {
			return firstErr
		}
		pending = next
	}
	return nil
}

// Execute runs a single step in the scenario's browser.
func Execute(sc *lifecycle.Scenario, resolver *Resolver, step Step) error {
	s, err := resolveStep(resolver, step)
	if err != nil {
		return err
	}

	asserts := sc.Assert.WithTimeout(s.Timeout)

	switch s.Action {
	case ActionNavigate:
		retries := s.Retries
		if retries == 0 {
			retries = browser.DefaultNavigationAttempts
		}
		return sc.Actions.NavigateTo(absoluteURL(sc.Env.BaseURL(), s.URL), retries)

	case ActionClick:
		switch {
		case s.Role != "":
			return sc.Actions.ClickByRole(s.Role, s.Name)
		case s.TestID != "":
			return sc.Actions.ClickByTestID(s.TestID)
		default:
			return sc.Actions.Click(s.Selector)
		}
	case ActionDoubleClick:
		return sc.Actions.DoubleClick(s.Selector)
	case ActionRightClick:
		return sc.Actions.RightClick(s.Selector)

	case ActionFill:
		if s.Clear {
			return sc.Actions.ClearAndFill(s.Selector, s.Value)
		}
		return sc.Actions.Fill(s.Selector, s.Value)
	case ActionType:
		return sc.Actions.Type(s.Selector, s.Value, s.Delay)
	case ActionSelect:
		return sc.Actions.SelectOption(s.Selector, s.Value)
	case ActionUpload:
		return sc.Actions.UploadFile(s.Selector, s.File)
	case ActionPress:
		return sc.Actions.Press(s.Selector, s.Key)

	case ActionWaitVisible:
		return sc.Waits.WaitForVisible(s.Selector, s.Timeout)
	case ActionWaitHidden:
		return sc.Waits.WaitForHidden(s.Selector, s.Timeout)
	case ActionWaitLoad:
		state := s.Value
		if state == "" {
			state = browser.LoadStateLoad
		}
		return sc.Waits.WaitForLoadState(state)
	case ActionPause:
		return sc.Waits.Pause(s.Timeout)

	case ActionAssertVisible:
		return asserts.Visible(s.Selector)
	case ActionAssertHidden:
		return asserts.Hidden(s.Selector)
	case ActionAssertText:
		return asserts.HasText(s.Selector, s.Value)
	case ActionAssertContains:
		return asserts.ContainsText(s.Selector, s.Value)
	case ActionAssertURL:
		return asserts.URL(absoluteURL(sc.Env.BaseURL(), s.Value))
	case ActionAssertURLContains:
		return asserts.URLContains(s.Value)

	case ActionStoreText:
		text, err := sc.Actions.Text(s.Selector)
		if err != nil {
			return err
		}
		sc.Vars.Set(s.Store, strings.TrimSpace(text))
		return nil
	case ActionSet:
		sc.Vars.Set(s.Store, s.Value)
		return nil

	case ActionDialog:
		return expectDialog(sc, s)
	case ActionScreenshot:
		return sc.Actions.Screenshot(s.Path)
	}

	return fmt.Errorf("unknown action: %q", s.Action)
}

func expectDialog(sc *lifecycle.Scenario, s Step) error {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = browser.DefaultAssertTimeout
	}
	msg, err := sc.Session.Dialogs.Next(timeout)
	if err != nil {
		return err
	}
	if s.Value != "" && !strings.Contains(msg.Message, s.Value) {
		return &browser.AssertionError{Check: "dialog message", Locator: "dialog", Expected: s.Value, Actual: msg.Message}
	}
	if s.Store != "" {
		sc.Vars.Set(s.Store, msg.Message)
	}
	return nil
}

// resolveStep returns a copy of step with placeholders expanded.
func resolveStep(r *Resolver, step Step) (Step, error) {
	fields := []*string{&step.Selector, &step.Name, &step.TestID, &step.Value, &step.URL, &step.Key, &step.File, &step.Path}
	for _, f := range fields {
		v, err := r.Resolve(*f)
		if err != nil {
			return step, err
		}
		*f = v
	}
	return step, nil
}

// absoluteURL joins a path starting with "/" onto base.
func absoluteURL(base, target string) string {
	if base == "" || !strings.HasPrefix(target, "/") {
		return target
	}
	return strings.TrimSuffix(base, "/") + target
}
