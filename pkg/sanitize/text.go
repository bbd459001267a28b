package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"
)

// Text escapes s for use as HTML text content.
func Text(s string) string {
	return html.EscapeString(s)
}

// Attr escapes s for use inside a double- or single-quoted HTML attribute.
func Attr(s string) string {
	return html.EscapeString(s)
}

// skipText lists elements whose text content is never visible.
var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// StripTags returns the visible text of an HTML fragment with all markup
// removed and entities decoded. Script and style contents are dropped.
// Runs of whitespace collapse to a single space.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}
	z := xhtml.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return collapseSpace(b.String())
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			if skipText[string(name)] {
				skip++
			}
			if isBreak(string(name)) {
				b.WriteByte(' ')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if skipText[string(name)] && skip > 0 {
				skip--
			}
			if isBreak(string(name)) {
				b.WriteByte(' ')
			}
		case xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if isBreak(string(name)) {
				b.WriteByte(' ')
			}
		case xhtml.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isBreak(tag string) bool {
	switch tag {
	case "br", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "td":
		return true
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most max runes, appending an ellipsis when text
// was removed. A max of zero or less returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:max-1]), func(r rune) bool { return r == ' ' }) + "…"
}
