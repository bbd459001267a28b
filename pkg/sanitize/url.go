// Package sanitize holds the escaping and allow-listing rules applied by the
// trusted rendering pass: URL scheme checks, text and attribute escaping,
// tag stripping, rich-text cleaning, and anchor slugs.
//
// Every function here neutralizes bad input in place rather than failing.
// Callers never need to handle an error; the worst outcome is an inert value
// such as a "#" link or an empty string.
package sanitize

import (
	"strings"
	"unicode"
)

// Neutralized is the href emitted in place of a rejected URL.
const Neutralized = "#"

// allowedSchemes lists the URL schemes that may be emitted as links.
var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// URL returns raw if it is safe to emit as a link target and [Neutralized]
// otherwise.
//
// Accepted forms are absolute URLs with an http, https, mailto or tel
// scheme, root-relative paths ("/about") and fragment links ("#intro").
// Protocol-relative URLs ("//host/path") are rejected, and so is any URL
// containing control characters (for example "java\tscript:alert(1)").
func URL(raw string) string {
	if IsSafeURL(raw) {
		return strings.TrimSpace(raw)
	}
	return Neutralized
}

// IsSafeURL reports whether raw passes the link allow-list.
func IsSafeURL(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	// Browsers drop embedded tabs and newlines while parsing a scheme, so
	// any control character makes the URL ambiguous.
	if strings.ContainsFunc(s, unicode.IsControl) {
		return false
	}

	switch {
	case strings.HasPrefix(s, "#"):
		return true
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, "/\\"):
		return false
	case strings.HasPrefix(s, "/"):
		return true
	}

	scheme, _, ok := strings.Cut(s, ":")
	if !ok {
		return false
	}
	// A slash or query before the first colon means there is no scheme.
	if strings.ContainsAny(scheme, "/?#") {
		return false
	}
	return allowedSchemes[strings.ToLower(scheme)]
}

// ImageURL returns raw if it is an http(s) or root-relative URL suitable for
// an image source, and "" otherwise. Data and javascript URLs are rejected.
func ImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "#") {
		return ""
	}
	if !IsSafeURL(s) {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return ""
	}
	return s
}
