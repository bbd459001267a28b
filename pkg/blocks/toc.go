package blocks

import (
	"strconv"
	"strings"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
)

// OutlineKey is the toc payload prop holding the heading projection.
const OutlineKey = "outline"

// headingTypes are the block types a table of contents lists.
var headingTypes = []string{"heading"}

// TOC returns the table of contents definition. It renders only on pages:
// its deferred generator embeds a projection of the document's headings,
// and the trusted generator links each one by recomputing the heading's
// anchor id.
func TOC() registry.Definition {
	return registry.Definition{
		Type:        "toc",
		Label:       "Table of contents",
		Category:    CategoryWidget,
		Description: "Links to the headings of the page.",
		Icon:        "toc",
		Keywords:    []string{"contents", "outline", "navigation", "index"},
		Contexts:    []string{registry.ContextPage},
		Defaults:    block.Props{"title": "Contents", "minLevel": 2, "maxLevel": 4, "ordered": true},
		Supports:    registry.Capabilities{Spacing: true, Unique: true},
		Generators: map[string]registry.Generator{
			registry.ContextPage: registry.DeferredWith(embedOutline),
		},
		Trusted: tocTrusted,
		Validate: func(p block.Props) bool {
			min, max := tocLevels(p)
			return min <= max
		},
	}
}

// embedOutline adds the heading projection to a toc payload. Each entry
// carries the heading's text and level after defaults, so the links agree
// with the anchors the headings render.
func embedOutline(payload block.Props, opts registry.Options) block.Props {
	payload[OutlineKey] = projectHeadings(opts.Document, opts.ResolveProps)
	return payload
}

// projectHeadings lists the headings of doc with resolved text and level.
func projectHeadings(doc block.Tree, resolve func(string, block.Props) block.Props) []block.Entry {
	entries := block.Project(doc, headingTypes, "text", "level")
	for i, e := range entries {
		hp := resolveHeading(e.Props, resolve)
		entries[i].Props = block.Props{"text": hp.String("text", ""), "level": "h" + strconv.Itoa(HeadingLevel(hp))}
	}
	return entries
}

// resolveHeading merges heading props with the registered heading defaults,
// or with the built-in ones when resolve is nil.
func resolveHeading(p block.Props, resolve func(string, block.Props) block.Props) block.Props {
	if resolve != nil {
		return resolve("heading", p)
	}
	return block.Merge(headingDefaults(), p)
}

// tocLevels returns the clamped level bounds of a toc.
func tocLevels(props block.Props) (min, max int) {
	clamp := func(v int) int {
		if v < 1 {
			return 1
		}
		if v > 6 {
			return 6
		}
		return v
	}
	return clamp(props.Int("minLevel", 2)), clamp(props.Int("maxLevel", 4))
}

// TOCEntry is one linked heading.
type TOCEntry struct {
	ID     string // heading block id
	Anchor string
	Text   string // plain text
	Level  int
}

// TOCEntries lists the headings a toc with props links to, in document
// order. It reads the embedded outline and falls back to doc. resolve
// supplies the heading defaults in effect (usually
// [registry.Registry.ResolveProps]); nil uses the built-in ones.
func TOCEntries(props block.Props, doc block.Tree, resolve func(string, block.Props) block.Props) []TOCEntry {
	entries := block.EntriesFromAny(props[OutlineKey])
	if len(entries) == 0 && doc != nil {
		entries = projectHeadings(doc, resolve)
	}
	min, max := tocLevels(props)

	var out []TOCEntry
	for _, e := range entries {
		if e.Type != "" && e.Type != "heading" {
			continue
		}
		hp := resolveHeading(e.Props, resolve)
		level := HeadingLevel(hp)
		if level < min || level > max {
			continue
		}
		text := hp.String("text", "")
		out = append(out, TOCEntry{
			ID:     e.ID,
			Anchor: sanitize.AnchorID(text, e.ID),
			Text:   sanitize.StripTags(text),
			Level:  level,
		})
	}
	return out
}

// tocNesting turns heading levels into list depths. The shallowest level
// seen first becomes depth 1 and a jump of more than one level nests only
// one step deeper.
type tocNesting struct {
	minLevel  int
	lastDepth int
}

func (n *tocNesting) depth(level int) int {
	if n.minLevel == 0 {
		n.minLevel = level
	}
	d := level - n.minLevel + 1
	if d < 1 {
		d = 1
	}
	if n.lastDepth > 0 && d > n.lastDepth+1 {
		d = n.lastDepth + 1
	}
	n.lastDepth = d
	return d
}

func tocTrusted(props block.Props, opts registry.Options) string {
	entries := TOCEntries(props, opts.Document, opts.ResolveProps)
	if len(entries) == 0 {
		return ""
	}
	list := "ul"
	if props.Bool("ordered", true) {
		list = "ol"
	}

	var b strings.Builder
	b.WriteString(open("nav", "bp-toc", pageCSS(props), "aria-label", props.String("title", "Contents")))
	if t := strings.TrimSpace(props.String("title", "")); t != "" {
		b.WriteString(`<p class="bp-toc__title">` + sanitize.Text(t) + "</p>")
	}

	var nest tocNesting
	depth := 0
	for i, e := range entries {
		d := nest.depth(e.Level)
		switch {
		case d > depth:
			for ; depth < d; depth++ {
				b.WriteString("<" + list + ">")
				if depth+1 < d {
					b.WriteString("<li>")
				}
			}
		case d < depth:
			for ; depth > d; depth-- {
				b.WriteString("</li></" + list + ">")
			}
			b.WriteString("</li>")
		case i > 0:
			b.WriteString("</li>")
		}
		b.WriteString(`<li><a href="#` + sanitize.Attr(e.Anchor) + `">` + sanitize.Text(e.Text) + "</a>")
	}
	for ; depth > 0; depth-- {
		b.WriteString("</li></" + list + ">")
	}
	b.WriteString("</nav>")
	return b.String()
}
