// Package sanitize normalises user supplied free text before it is stored.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every HTML element, decodes entities and trims surrounding
// whitespace. The result is plain text and must still be escaped on render.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// OptionalPlainText applies PlainText to a nullable field. Blank results become nil.
func OptionalPlainText(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := PlainText(*s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// Truncate shortens s to max runes, appending an ellipsis when anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
