package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackSlug is used when a heading's text yields no slug characters.
const FallbackSlug = "heading"

// Slug converts text to a lowercase ASCII identifier: accents are folded,
// every run of characters outside [a-z0-9] becomes a single dash, and
// leading and trailing dashes are trimmed. Text that yields nothing (for
// example emoji only) returns [FallbackSlug].
func Slug(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return FallbackSlug
	}
	return b.String()
}

// AnchorID derives the anchor identifier for a heading block. Headings and
// tables of contents both call this with the heading's raw text and block
// id, so a link and its target always agree without shared state.
func AnchorID(text, id string) string {
	return Slug(StripTags(text)) + "-" + id
}
