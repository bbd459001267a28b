// Package placeholder encodes and decodes the deferred-render markers that
// the page context emits for blocks whose final markup is built by the
// trusted pass.
//
// A placeholder is a single element carrying the block's type, its id, and
// its resolved props as a JSON payload:
//
//	<div data-block-type="heading" data-block-id="h1" data-props="{&#34;level&#34;:&#34;h2&#34;,&#34;text&#34;:&#34;Hi&#34;}"></div>
//
// The payload is attribute-escaped, so neither quote character can end the
// attribute early. Nested children (for layout blocks) are rendered inside
// the element.
package placeholder

import (
	"encoding/json"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/matzehuels/blockpress/pkg/block"
)

// Element and attribute names of a placeholder.
const (
	Tag       = "div"
	AttrType  = "data-block-type"
	AttrID    = "data-block-id"
	AttrProps = "data-props"
)

// Placeholder is a decoded deferred-render marker.
type Placeholder struct {
	Type  string
	ID    string
	Props block.Props
}

// Block returns the placeholder as a block instance.
func (p Placeholder) Block() block.Block {
	return block.Block{ID: p.ID, Type: p.Type, Props: p.Props}
}

// Encode renders a placeholder element. inner is written verbatim between
// the tags and must already be safe markup.
func Encode(typ, id string, props block.Props, inner string) string {
	payload, err := json.Marshal(props)
	if err != nil || props == nil {
		payload = []byte("{}")
	}

	var b strings.Builder
	b.Grow(len(payload) + len(inner) + 96)
	b.WriteString("<" + Tag + " " + AttrType + `="`)
	b.WriteString(html.EscapeString(typ))
	b.WriteString(`" ` + AttrID + `="`)
	b.WriteString(html.EscapeString(id))
	b.WriteString(`" ` + AttrProps + `="`)
	b.WriteString(html.EscapeString(string(payload)))
	b.WriteString(`">`)
	b.WriteString(inner)
	b.WriteString("</" + Tag + ">")
	return b.String()
}

// FromToken decodes a start tag token. It reports false if the token is not
// a placeholder. Attribute values are already unescaped by the tokenizer.
func FromToken(tok xhtml.Token) (Placeholder, bool) {
	if tok.Data != Tag {
		return Placeholder{}, false
	}
	var p Placeholder
	var raw string
	hasType := false
	for _, a := range tok.Attr {
		switch a.Key {
		case AttrType:
			p.Type, hasType = a.Val, true
		case AttrID:
			p.ID = a.Val
		case AttrProps:
			raw = a.Val
		}
	}
	if !hasType || p.Type == "" {
		return Placeholder{}, false
	}
	p.Props = DecodeProps(raw)
	return p, true
}

// DecodeProps parses a JSON payload. Malformed payloads yield empty props
// rather than an error so one corrupt placeholder cannot break a page.
func DecodeProps(raw string) block.Props {
	props := block.Props{}
	if strings.TrimSpace(raw) == "" {
		return props
	}
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		return block.Props{}
	}
	return props
}

// Scan returns every placeholder in an HTML fragment, outermost first, in
// document order.
func Scan(fragment string) []Placeholder {
	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	var out []Placeholder
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return out
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			if p, ok := FromToken(z.Token()); ok {
				out = append(out, p)
			}
		}
	}
}
