package websearch

import (
	"regexp"
	"strings"
)

const (
	// IntentToken marks an explicit search request.
	IntentToken = "busca"

	// DefaultSiteSuffix restricts explicit searches to .org domains.
	DefaultSiteSuffix = "site:*.org"
)

var intentRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(IntentToken))

// HasIntent reports whether question contains the search token, ignoring case.
func HasIntent(question string) bool {
	return intentRe.MatchString(question)
}

// ParseIntent detects an explicit search request. When present, every
// occurrence of the token is removed, whitespace is collapsed and suffix is
// appended, e.g. "busca pollution levels" -> "pollution levels site:*.org".
func ParseIntent(question, suffix string) (string, bool) {
	if !HasIntent(question) {
		return "", false
	}

	stripped := strings.Join(strings.Fields(intentRe.ReplaceAllString(question, " ")), " ")
	if suffix == "" {
		return stripped, true
	}
	if stripped == "" {
		return suffix, true
	}
	return stripped + " " + suffix, true
}
