package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/uiharness/pkg/config"
	"github.com/entrhq/uiharness/pkg/datagen"
	"github.com/entrhq/uiharness/pkg/vars"
)

var (
	placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	funcCallPattern    = regexp.MustCompile(`^(\w+)\((.*)\)$`)
)

// Func is a generator callable from a placeholder.
type Func func(args []string) (string, error)

// Resolver expands placeholders in step fields.
type Resolver struct {
	store *vars.Store
	env   config.Environment
	files *config.FilePaths
	funcs map[string]Func
}

// NewResolver creates a resolver over the scenario's variables,
// environment and upload lookups. files may be nil.
func NewResolver(store *vars.Store, env config.Environment, files *config.FilePaths) *Resolver {
	r := &Resolver{
		store: store,
		env:   env,
		files: files,
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Resolver) registerDefaults() {
	r.funcs["uniqueString"] = funcUniqueString
	r.funcs["email"] = funcEmail
	r.funcs["number"] = funcNumber
	r.funcs["timestamp"] = funcTimestamp
}

// Register adds or replaces a generator.
func (r *Resolver) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Resolve replaces every placeholder in input. Unknown variables, keys and
// functions are errors; the first one is returned.
func (r *Resolver) Resolve(input string) (string, error) {
	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}
		value, err := r.expand(strings.TrimSpace(match[2 : len(match)-1]))
		if err != nil {
			firstErr = err
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (r *Resolver) expand(expr string) (string, error) {
	switch {
	case strings.HasPrefix(expr, "env:"):
		key := strings.TrimPrefix(expr, "env:")
		if v, ok := r.env.Value(key); ok {
			return v, nil
		}
		return "", &config.ArgumentError{Argument: "placeholder", Reason: fmt.Sprintf("environment property %q is not set", key)}

	case strings.HasPrefix(expr, "file:"):
		if r.files == nil {
			return "", &config.ArgumentError{Argument: "placeholder", Reason: "no file path lookup loaded"}
		}
		return r.files.Lookup(strings.TrimPrefix(expr, "file:"))

	case funcCallPattern.MatchString(expr):
		return r.call(expr)
	}

	if r.store != nil {
		if _, ok := r.store.Get(expr); ok {
			return r.store.GetString(expr), nil
		}
	}
	return "", &config.ArgumentError{Argument: "placeholder", Reason: fmt.Sprintf("unresolved variable: %s", expr)}
}

func (r *Resolver) call(expr string) (string, error) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	fn, ok := r.funcs[matches[1]]
	if !ok {
		return "", &config.ArgumentError{Argument: "placeholder", Reason: fmt.Sprintf("unknown function: %s", matches[1])}
	}

	var args []string
	if strings.TrimSpace(matches[2]) != "" {
		for _, a := range strings.Split(matches[2], ",") {
			args = append(args, strings.Trim(strings.TrimSpace(a), `"'`))
		}
	}
	return fn(args)
}

func intArgs(name string, args []string, want int) ([]int, error) {
	if len(args) != want {
		return nil, &config.ArgumentError{Argument: name, Reason: fmt.Sprintf("expected %d arguments, got %d", want, len(args))}
	}
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, &config.ArgumentError{Argument: name, Reason: fmt.Sprintf("argument %q is not a number", a)}
		}
		out[i] = n
	}
	return out, nil
}

func funcUniqueString(args []string) (string, error) {
	n, err := intArgs("uniqueString", args, 2)
	if err != nil {
		return "", err
	}
	return datagen.UniqueString(n[0], n[1])
}

func funcEmail(_ []string) (string, error) {
	return datagen.Email(), nil
}

func funcNumber(args []string) (string, error) {
	n, err := intArgs("number", args, 1)
	if err != nil {
		return "", err
	}
	return datagen.NumericString(n[0])
}

func funcTimestamp(_ []string) (string, error) {
	return strconv.FormatInt(time.Now().Unix(), 10), nil
}
