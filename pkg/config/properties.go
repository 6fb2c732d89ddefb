package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Properties is a parsed key=value property file.
type Properties map[string]string

// Get returns the trimmed value for key and whether it is present and
// non-empty.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Merge returns a new Properties holding p overlaid by other.
func (p Properties) Merge(other Properties) Properties {
	merged := make(Properties, len(p)+len(other))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}

// LoadProperties reads a property file from disk.
func LoadProperties(path string) (Properties, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open property file: %w", err)
	}
	defer file.Close()

	props, err := ParseProperties(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return props, nil
}

// ParseProperties parses key=value lines. Keys and values may also be
// separated by ':'. Lines starting with '#' or '!' are comments and a
// trailing backslash continues the value on the next line.
func ParseProperties(r io.Reader) (Properties, error) {
	props := make(Properties)
	scanner := bufio.NewScanner(r)

	var pending strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if pending.Len() == 0 && (line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!")) {
			continue
		}

		if strings.HasSuffix(line, `\`) && !strings.HasSuffix(line, `\\`) {
			pending.WriteString(strings.TrimSuffix(line, `\`))
			continue
		}
		pending.WriteString(line)
		line = pending.String()
		pending.Reset()

		key, value, found := cutSeparator(line)
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		props[key] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		if key, value, found := cutSeparator(pending.String()); found && strings.TrimSpace(key) != "" {
			props[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	return props, nil
}

// cutSeparator splits at the first '=' or ':', whichever comes first.
func cutSeparator(line string) (string, string, bool) {
	idx := strings.IndexAny(line, "=:")
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+1:], true
}
