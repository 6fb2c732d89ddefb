package config

import (
	"sort"
	"strings"
)

// Environment property keys.
const (
	KeyURL      = "Url"
	KeyUsername = "username"
	KeyPassword = "password"
)

// Environment holds the endpoints and credentials of one target
// environment. Keys may be written bare ("Url") or prefixed with the
// environment name ("staging.Url"); the prefixed form wins.
type Environment struct {
	Name   string
	values Properties
}

// NewEnvironment wraps the properties loaded for env.
func NewEnvironment(env string, props Properties) Environment {
	values := make(Properties, len(props))
	for k, v := range props {
		values[k] = v
	}
	return Environment{Name: env, values: values}
}

// Value returns the value for key, preferring "<env>.<key>".
func (e Environment) Value(key string) (string, bool) {
	if e.Name != "" {
		if v, ok := e.values.Get(e.Name + "." + key); ok {
			return v, true
		}
		if v, ok := e.values.Get(strings.ToLower(e.Name) + "." + key); ok {
			return v, true
		}
	}
	return e.values.Get(key)
}

// BaseURL is the application entry point navigated to at scenario start.
func (e Environment) BaseURL() string {
	v, _ := e.Value(KeyURL)
	return v
}

// Username returns the configured login name.
func (e Environment) Username() string {
	v, _ := e.Value(KeyUsername)
	return v
}

// Password returns the configured login secret.
func (e Environment) Password() string {
	v, _ := e.Value(KeyPassword)
	return v
}

// RequireURL returns the named URL or a ConfigurationError when it is not
// configured.
func (e Environment) RequireURL(key string) (string, error) {
	v, ok := e.Value(key)
	if !ok {
		return "", &ConfigurationError{
			Setting: key,
			Reason:  "URL not found in environment properties for " + e.Name,
		}
	}
	return v, nil
}

// Keys lists the configured keys with any environment prefix removed.
func (e Environment) Keys() []string {
	seen := make(map[string]bool, len(e.values))
	prefix := strings.ToLower(e.Name) + "."
	for k := range e.values {
		if e.Name != "" && strings.HasPrefix(strings.ToLower(k), prefix) {
			k = k[len(prefix):]
		}
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
