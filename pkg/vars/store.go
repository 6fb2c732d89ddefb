// Package vars holds values passed between the steps of a scenario.
package vars

import (
	"fmt"
	"sort"
	"sync"
)

// Scope controls how long stored values live.
type Scope int

const (
	// ScopeScenario values are cleared when a scenario ends.
	ScopeScenario Scope = iota

	// ScopeSuite values survive for the whole run, e.g. shared fixtures.
	ScopeSuite
)

func (s Scope) String() string {
	switch s {
	case ScopeScenario:
		return "scenario"
	case ScopeSuite:
		return "suite"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope accepts "scenario" or "suite".
func ParseScope(name string) (Scope, error) {
	switch name {
	case "scenario", "":
		return ScopeScenario, nil
	case "suite":
		return ScopeSuite, nil
	default:
		return ScopeScenario, fmt.Errorf("unknown variable scope %q (want scenario or suite)", name)
	}
}

// Store maps keys to arbitrary values. Absent keys are not an error.
type Store struct {
	mu     sync.RWMutex
	scope  Scope
	values map[string]interface{}
}

// NewStore creates an empty store with the given scope.
func NewStore(scope Scope) *Store {
	return &Store{
		scope:  scope,
		values: make(map[string]interface{}),
	}
}

// Scope reports the lifetime the store was created with.
func (s *Store) Scope() Scope {
	return s.scope
}

// Set stores value under key, replacing any previous value.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value under key and whether it was present.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString returns the value under key formatted as a string, or "" when
// the key is absent or holds nil.
func (s *Store) GetString(key string) string {
	v, ok := s.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch tv := v.(type) {
	case string:
		return tv
	case []byte:
		return string(tv)
	case fmt.Stringer:
		return tv.String()
	default:
		return fmt.Sprint(tv)
	}
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Reset removes every value regardless of scope.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]interface{})
}

// EndScenario clears the store if it is scenario scoped and reports whether
// anything was dropped.
func (s *Store) EndScenario() bool {
	if s.scope != ScopeScenario {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := len(s.values) > 0
	s.values = make(map[string]interface{})
	return dropped
}
