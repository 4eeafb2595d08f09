// Package changelog validates the changelog entry embedded in a pull request description.
package changelog

import (
	"regexp"
	"strings"
)

// Status is the outcome of validating a changelog entry.
type Status string

const (
	// StatusValid means a well-formed changelog entry was found.
	StatusValid Status = "valid"
	// StatusMissing means no changelog header or no entry text was found.
	StatusMissing Status = "missing"
	// StatusInvalid means an entry exists but its category/type tags are unusable.
	StatusInvalid Status = "invalid"
)

// Validator classifies free text into a changelog Status.
type Validator interface {
	Validate(text string) Status
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(text string) Status

// Validate calls f(text).
func (f ValidatorFunc) Validate(text string) Status {
	return f(text)
}

// Default is the React Native style "[Category] [Type] - message" validator.
var Default Validator = ValidatorFunc(Validate)

var (
	headerRegexp  = regexp.MustCompile(`(?i)^\s*(?:#+\s*changelog\b\s*:?|changelog\s*:)`)
	commentRegexp = regexp.MustCompile(`(?s)<!--.*?(?:-->|$)`)
	tagRegexp     = regexp.MustCompile(`^\s*\[([^\]]*)\]`)

	categories = map[string]struct{}{
		"android": {},
		"ios":     {},
		"general": {},
	}
	types = map[string]struct{}{
		"breaking":   {},
		"added":      {},
		"changed":    {},
		"deprecated": {},
		"removed":    {},
		"fixed":      {},
		"security":   {},
	}
)

const internalTag = "internal"

// Validate reports whether text carries a usable changelog entry.
func Validate(text string) Status {
	entry, ok := findEntry(text)
	if !ok {
		return StatusMissing
	}

	var hasCategory, hasType bool
	for _, tag := range leadingTags(entry) {
		if tag == internalTag {
			return StatusValid
		}
		if _, ok := categories[tag]; ok {
			hasCategory = true
		}
		if _, ok := types[tag]; ok {
			hasType = true
		}
	}
	if hasCategory && hasType {
		return StatusValid
	}
	return StatusInvalid
}

// findEntry returns the changelog entry of the description. HTML comments are
// ignored. The first header followed by a tagged entry wins; otherwise the first
// untagged entry is returned so it can be reported as invalid.
func findEntry(text string) (string, bool) {
	text = commentRegexp.ReplaceAllString(strings.ReplaceAll(text, "\r\n", "\n"), "")
	lines := strings.Split(text, "\n")

	var fallback string
	for i, line := range lines {
		loc := headerRegexp.FindStringIndex(line)
		if loc == nil {
			continue
		}
		entry, ok := entryAfter(line[loc[1]:], lines[i+1:])
		if !ok {
			continue
		}
		if len(leadingTags(entry)) > 0 {
			return entry, true
		}
		if fallback == "" {
			fallback = entry
		}
	}
	return fallback, fallback != ""
}

// entryAfter returns the rest of the header line, or else the first non-blank
// line below it that is not another heading.
func entryAfter(rest string, below []string) (string, bool) {
	if rest = strings.TrimSpace(rest); rest != "" {
		return rest, true
	}
	for _, next := range below {
		next = strings.TrimSpace(next)
		if next == "" {
			continue
		}
		if strings.HasPrefix(next, "#") || headerRegexp.MatchString(next) {
			return "", false
		}
		return next, true
	}
	return "", false
}

// leadingTags collects the lower-cased bracketed tags at the start of entry.
func leadingTags(entry string) []string {
	var tags []string
	for {
		m := tagRegexp.FindStringSubmatchIndex(entry)
		if m == nil {
			return tags
		}
		tags = append(tags, strings.ToLower(strings.TrimSpace(entry[m[2]:m[3]])))
		entry = entry[m[1]:]
	}
}
