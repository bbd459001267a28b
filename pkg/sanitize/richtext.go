package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var richTextPolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("style").OnElements("span", "p")
	p.AllowStyles("color", "background-color", "text-align", "font-weight", "font-style", "text-decoration").Globally()
	return p
})

// RichText cleans user-authored inline HTML. Formatting, lists and links with
// allow-listed schemes survive; scripts, event handlers and unknown elements
// are removed.
func RichText(s string) string {
	return richTextPolicy().Sanitize(s)
}
