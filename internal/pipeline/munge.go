package pipeline

import (
	"regexp"
	"strings"
)

// DefaultMungeLength caps generated file names.
const DefaultMungeLength = 63

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Munge turns a free-form title into a safe file name stem.
// Runs of characters outside [a-zA-Z0-9] become sep and the result is
// truncated to maxLen bytes (DefaultMungeLength when maxLen <= 0).
func Munge(name, sep string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMungeLength
	}
	out := nonAlphanumeric.ReplaceAllString(strings.TrimSpace(name), sep)
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
