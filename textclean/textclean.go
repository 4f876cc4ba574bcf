// Package textclean strips markup noise out of generated free text.
// Every downstream stage runs its captured fragments through here before
// using them, so these functions never fail and always return something.
package textclean

import (
	"regexp"
	"strings"
)

var (
	markupRe   = regexp.MustCompile(`[*_#]`)
	newlinesRe = regexp.MustCompile(`\n+`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Strip removes emphasis and heading markers (*, _, #).
func Strip(s string) string {
	return strings.TrimSpace(markupRe.ReplaceAllString(s, ""))
}

// Flatten collapses newline runs into single spaces for inline use.
func Flatten(s string) string {
	return strings.TrimSpace(newlinesRe.ReplaceAllString(s, " "))
}

// StripQuotes removes straight and curly quote characters entirely.
func StripQuotes(s string) string {
	r := strings.NewReplacer(`"`, "", "“", "", "”", "")
	return strings.TrimSpace(r.Replace(s))
}

// Inline is the common combination: markup stripped, newlines flattened,
// whitespace runs collapsed.
func Inline(s string) string {
	s = markupRe.ReplaceAllString(s, "")
	s = newlinesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
