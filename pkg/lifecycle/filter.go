package lifecycle

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter selects scenarios by name using glob patterns.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles include and exclude patterns. Exclusions take
// precedence; with no include patterns every name not excluded matches.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		f.include = append(f.include, g)
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}

	return f, nil
}

// Match reports whether the scenario name is selected. A nil filter
// matches everything.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}

	for _, pattern := range f.exclude {
		if pattern.Match(name) {
			return false
		}
	}

	if len(f.include) == 0 {
		return true
	}

	for _, pattern := range f.include {
		if pattern.Match(name) {
			return true
		}
	}

	return false
}
