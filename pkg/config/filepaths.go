package config

import (
	"fmt"
	"os"
	"strings"
)

// FilePaths resolves keywords to file paths from a lookup file with lines
// of the form:
//
//	invoice = "testdata/invoice.pdf"
type FilePaths struct {
	path    string
	entries map[string]string
}

// LoadFilePaths reads a keyword lookup file.
func LoadFilePaths(path string) (*FilePaths, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file path lookup %s: %w", path, err)
	}
	return ParseFilePaths(path, string(data)), nil
}

// ParseFilePaths parses lookup file content. Quotes around values are
// dropped and backslashes become forward slashes.
func ParseFilePaths(source, content string) *FilePaths {
	fp := &FilePaths{path: source, entries: make(map[string]string)}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.ReplaceAll(strings.TrimSpace(value), `"`, "")
		value = strings.ReplaceAll(value, `\`, "/")
		if _, dup := fp.entries[key]; !dup {
			fp.entries[key] = value
		}
	}
	return fp
}

// Lookup returns the path for keyword or an ArgumentError when the
// keyword is not listed.
func (f *FilePaths) Lookup(keyword string) (string, error) {
	if v, ok := f.entries[strings.TrimSpace(keyword)]; ok {
		return v, nil
	}
	return "", &ArgumentError{
		Argument: "keyword",
		Reason:   fmt.Sprintf("%q not found in %s", keyword, f.path),
	}
}

// ReadTextFile returns the content of a text file. An empty or missing path
// is an ArgumentError; other read failures are wrapped.
func ReadTextFile(path string) (string, error) {
	if path == "" {
		return "", &ArgumentError{Argument: "path", Reason: "file path cannot be empty"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ArgumentError{Argument: "path", Reason: "file does not exist: " + path}
		}
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return string(data), nil
}
