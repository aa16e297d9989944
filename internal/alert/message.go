package alert

import (
	"regexp"
	"strings"
)

var (
	assignmentPattern = regexp.MustCompile(`(?i)\bassigned to\b`)
	separatorLine     = regexp.MustCompile(`^(=+|-+)$`)
)

// IsAssignment reports whether the text announces a new owner. The phrase
// must stand as whole words, so "reassigned to" does not count.
func IsAssignment(message string) bool {
	return assignmentPattern.MatchString(message)
}

// onlySeparators reports whether every non-blank line is a run of '=' or '-'.
// Blank input is not a separator message.
func onlySeparators(message string) bool {
	seen := false
	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !separatorLine.MatchString(line) {
			return false
		}
		seen = true
	}
	return seen
}
