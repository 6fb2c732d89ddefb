package lifecycle

import (
	"fmt"
	"regexp"
	"time"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_]`)

// Sanitize makes a scenario name safe for use in a file name by replacing
// every character outside [a-zA-Z0-9-_] with an underscore.
func Sanitize(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// FormatDuration renders d as "Ns" below one minute and "Nm Ns" above.
// Fractions of a second are truncated.
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// timestamp formats t as HHMMSS for artifact names.
func timestamp(t time.Time) string {
	return t.Format("150405")
}
