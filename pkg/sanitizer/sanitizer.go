// Package sanitizer normalizes free-text and identifier input before it is
// validated and persisted.
package sanitizer

import (
	"net/url"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims the input and collapses internal whitespace runs to
// a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

// StripControl drops non-printable runes except newlines and tabs.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Text is the pipeline applied to short single-line fields.
func Text(s string) string {
	return Pipeline{StripControl, TrimAndNormalize}.Apply(s)
}

// Notes keeps line breaks but trims the outer whitespace.
func Notes(s string) string {
	return strings.TrimSpace(StripControl(s))
}

// ID lowercases hex identifiers so comparisons against stored refs are stable.
func ID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// URL returns a cleaned absolute http(s) URL or "" when the input is unusable.
func URL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(s), "http://") && !strings.HasPrefix(strings.ToLower(s), "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Slice applies strategy to each value, dropping empties and duplicates while
// keeping first-seen order.
func Slice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
