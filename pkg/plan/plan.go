// Package plan loads YAML smoke plans and runs them as suite scenarios.
//
// A plan lists scenarios, each a sequence of steps that map onto the
// browser actions, waits, assertions and the variable store:
//
//	name: checkout smoke
//	variables:
//	  customer: ${email()}
//	scenarios:
//	  - name: login
//	    tags: [smoke]
//	    steps:
//	      - action: fill
//	        selector: "#email"
//	        value: ${customer}
//	      - action: click
//	        role: button
//	        name: Sign in
//	      - action: assert_url_contains
//	        value: /dashboard
//
// String fields support ${name} for variables, ${env:key} for environment
// properties, ${file:keyword} for upload lookups and generator calls such
// as ${uniqueString(5,10)}.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan is a named set of scenarios.
type Plan struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	// Variables are resolved and stored at the start of every scenario.
	Variables map[string]string `yaml:"variables" json:"variables"`

	Scenarios []Scenario `yaml:"scenarios" json:"scenarios"`
}

// Scenario is one named sequence of steps.
type Scenario struct {
	Name  string   `yaml:"name" json:"name"`
	Tags  []string `yaml:"tags" json:"tags"`
	Steps []Step   `yaml:"steps" json:"steps"`
}

// Step is a single browser operation. Which fields are used depends on
// Action.
type Step struct {
	Action Action `yaml:"action" json:"action"`

	// Element targeting: Selector, or Role with Name, or TestID.
	Selector string `yaml:"selector" json:"selector,omitempty"`
	Role     string `yaml:"role" json:"role,omitempty"`
	Name     string `yaml:"name" json:"name,omitempty"`
	TestID   string `yaml:"test_id" json:"test_id,omitempty"`

	Value string `yaml:"value" json:"value,omitempty"`
	URL   string `yaml:"url" json:"url,omitempty"`
	Key   string `yaml:"key" json:"key,omitempty"`
	File  string `yaml:"file" json:"file,omitempty"`
	Path  string `yaml:"path" json:"path,omitempty"`

	// Store names the variable written by store_text and set.
	Store string `yaml:"store" json:"store,omitempty"`

	// Clear empties a field before fill.
	Clear bool `yaml:"clear" json:"clear,omitempty"`

	Timeout time.Duration `yaml:"timeout" json:"timeout,omitempty"`
	Delay   time.Duration `yaml:"delay" json:"delay,omitempty"`
	Retries int           `yaml:"retries" json:"retries,omitempty"`
}

// Action names a step type.
type Action string

const (
	ActionNavigate          Action = "navigate"
	ActionClick             Action = "click"
	ActionDoubleClick       Action = "double_click"
	ActionRightClick        Action = "right_click"
	ActionFill              Action = "fill"
	ActionType              Action = "type"
	ActionSelect            Action = "select"
	ActionUpload            Action = "upload"
	ActionPress             Action = "press"
	ActionWaitVisible       Action = "wait_visible"
	ActionWaitHidden        Action = "wait_hidden"
	ActionWaitLoad          Action = "wait_load"
	ActionPause             Action = "pause"
	ActionAssertVisible     Action = "assert_visible"
	ActionAssertHidden      Action = "assert_hidden"
	ActionAssertText        Action = "assert_text"
	ActionAssertContains    Action = "assert_contains"
	ActionAssertURL         Action = "assert_url"
	ActionAssertURLContains Action = "assert_url_contains"
	ActionStoreText         Action = "store_text"
	ActionSet               Action = "set"
	ActionDialog            Action = "dialog"
	ActionScreenshot        Action = "screenshot"
)

// field requirements per action
type requirement int

const (
	needsTarget requirement = 1 << iota
	needsSelector
	needsValue
	needsURL
	needsKey
	needsFile
	needsStore
	needsPath
	needsTimeout
)

var actionRequirements = map[Action]requirement{
	ActionNavigate:          needsURL,
	ActionClick:             needsTarget,
	ActionDoubleClick:       needsSelector,
	ActionRightClick:        needsSelector,
	ActionFill:              needsSelector,
	ActionType:              needsSelector | needsValue,
	ActionSelect:            needsSelector | needsValue,
	ActionUpload:            needsSelector | needsFile,
	ActionPress:             needsSelector | needsKey,
	ActionWaitVisible:       needsSelector,
	ActionWaitHidden:        needsSelector,
	ActionWaitLoad:          0,
	ActionPause:             needsTimeout,
	ActionAssertVisible:     needsSelector,
	ActionAssertHidden:      needsSelector,
	ActionAssertText:        needsSelector,
	ActionAssertContains:    needsSelector | needsValue,
	ActionAssertURL:         needsValue,
	ActionAssertURLContains: needsValue,
	ActionStoreText:         needsSelector | needsStore,
	ActionSet:               needsStore,
	ActionDialog:            0,
	ActionScreenshot:        needsPath,
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates plan YAML. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks scenario names and the fields each step needs.
func (p *Plan) Validate() error {
	if len(p.Scenarios) == 0 {
		return fmt.Errorf("plan has no scenarios")
	}

	seen := make(map[string]bool, len(p.Scenarios))
	for i, sc := range p.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d: name is required", i+1)
		}
		if seen[sc.Name] {
			return fmt.Errorf("duplicate scenario name: %s", sc.Name)
		}
		seen[sc.Name] = true

		if len(sc.Steps) == 0 {
			return fmt.Errorf("scenario %q: no steps", sc.Name)
		}
		for j, step := range sc.Steps {
			if err := step.Validate(); err != nil {
				return fmt.Errorf("scenario %q step %d: %w", sc.Name, j+1, err)
			}
		}
	}
	return nil
}

// Validate checks that the step's action is known and its required
// fields are present.
func (s Step) Validate() error {
	req, ok := actionRequirements[s.Action]
	if !ok {
		return fmt.Errorf("unknown action: %q", s.Action)
	}

	switch {
	case req&needsTarget != 0 && s.Selector == "" && s.Role == "" && s.TestID == "":
		return fmt.Errorf("%s requires selector, role or test_id", s.Action)
	case req&needsSelector != 0 && s.Selector == "":
		return fmt.Errorf("%s requires selector", s.Action)
	case req&needsValue != 0 && s.Value == "":
		return fmt.Errorf("%s requires value", s.Action)
	case req&needsURL != 0 && s.URL == "":
		return fmt.Errorf("%s requires url", s.Action)
	case req&needsKey != 0 && s.Key == "":
		return fmt.Errorf("%s requires key", s.Action)
	case req&needsFile != 0 && s.File == "":
		return fmt.Errorf("%s requires file", s.Action)
	case req&needsStore != 0 && s.Store == "":
		return fmt.Errorf("%s requires store", s.Action)
	case req&needsPath != 0 && s.Path == "":
		return fmt.Errorf("%s requires path", s.Action)
	case req&needsTimeout != 0 && s.Timeout <= 0:
		return fmt.Errorf("%s requires a positive timeout", s.Action)
	}

	if s.Role != "" && s.Name == "" {
		return fmt.Errorf("%s by role requires name", s.Action)
	}
	if s.Timeout < 0 || s.Delay < 0 {
		return fmt.Errorf("timeout and delay cannot be negative")
	}
	if s.Retries < 0 {
		return fmt.Errorf("retries cannot be negative")
	}
	return nil
}
