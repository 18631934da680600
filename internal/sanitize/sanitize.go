// Package sanitize strips markup from user-provided text before it is
// stored. Uses bluemonday's strict policy so contact names, project
// descriptions and canvassing notes are kept as plain text only.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton strict policy. Initialized once via sync.Once for
// thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes every HTML element from input and returns the remaining
// plain text, trimmed. bluemonday escapes the text it keeps; the result is
// unescaped again because templates escape on output.
//
// This MUST be called on all user-provided free text before storing it.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(input)))
}

// OptionalText is Text for nullable columns. Blank input becomes nil.
func OptionalText(input *string) *string {
	if input == nil {
		return nil
	}
	out := Text(*input)
	if out == "" {
		return nil
	}
	return &out
}
