package adapter

import (
	"fmt"
	"strings"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// ContentClass is the class of the web fragment's content container.
const ContentClass = "bp-content"

// WebDefaults are the page context defaults.
func WebDefaults() block.Settings {
	return block.Settings{
		"contentWidth":    "1200px",
		"fontFamily":      "system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial, sans-serif",
		"backgroundColor": "#ffffff",
		"textColor":       "#1f2328",
		"linkColor":       "#0969da",
		"title":           "",
		"lang":            "en",
	}
}

// Web renders the page context.
type Web struct {
	*engine
}

// NewWeb creates a page-context adapter backed by reg.
func NewWeb(reg *registry.Registry, opts ...Option) *Web {
	w := &Web{engine: newEngine(registry.ContextPage, reg, WebDefaults(), opts)}
	w.wrap = w.wrapFragment
	w.fallbacks = map[string]registry.Generator{
		"section": webComposite("bp-section"),
		"column":  webComposite("bp-column"),
	}
	return w
}

func (w *Web) wrapFragment(content string, _ block.Settings) string {
	return `<div class="` + ContentClass + `">` + content + `</div>`
}

// webComposite renders a layout block's children inside a plain container.
func webComposite(class string) registry.Generator {
	return func(props block.Props, opts registry.Options) string {
		var inner string
		if opts.RenderChildren != nil {
			inner = opts.RenderChildren(block.Children(props))
		}
		attrs := `class="` + class + `"`
		if css := style.Inline(props, style.Options{}); css != "" {
			attrs += ` style="` + sanitize.Attr(css) + `"`
		}
		return "<div " + attrs + ">" + inner + "</div>"
	}
}

// GenerateStandalonePage renders tree and wraps the fragment in a complete
// document with baseline styling. It is meant for previews and exports; the
// stored form of a page is the fragment from GenerateHTML.
func (w *Web) GenerateStandalonePage(tree block.Tree, settings block.Settings) string {
	return w.StandalonePage(w.GenerateHTML(tree, settings), settings)
}

// StandalonePage wraps an already rendered (and possibly finalized) fragment
// in a complete document.
func (w *Web) StandalonePage(fragment string, settings block.Settings) string {
	s := settings.Merge(w.defaults)
	lang := sanitize.Attr(s.String("lang", "en"))
	title := sanitize.Text(s.String("title", ""))

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="` + lang + `">` + "\n")
	b.WriteString("<head>\n")
	b.WriteString(`<meta charset="utf-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	b.WriteString("<title>" + title + "</title>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString(fragment)
	b.WriteString("\n</body>\n</html>\n")

	return InjectCSS(b.String(), baselineCSS(s))
}

// baselineCSS builds the standalone page stylesheet from settings.
func baselineCSS(s block.Settings) string {
	width := style.Value(style.Length(s.String("contentWidth", "1200px")))
	if width == "" {
		width = "1200px"
	}
	font := style.Value(s.String("fontFamily", "sans-serif"))
	bg := style.Value(s.String("backgroundColor", "#ffffff"))
	fg := style.Value(s.String("textColor", "#1f2328"))
	link := style.Value(s.String("linkColor", "#0969da"))

	return fmt.Sprintf(`
*, *::before, *::after { box-sizing: border-box; }
body { margin: 0; background: %s; color: %s; font-family: %s; line-height: 1.6; }
.%s { max-width: %s; margin: 0 auto; padding: 2rem 1rem; }
.%s img { max-width: 100%%; height: auto; }
.%s a { color: %s; }
.bp-section { display: flex; flex-wrap: wrap; gap: 1.5rem; }
.bp-column { flex: 1 1 0; min-width: 0; }
.bp-toc ol { padding-left: 1.25rem; }
.bp-video { position: relative; padding-top: 56.25%%; }
.bp-video iframe { position: absolute; inset: 0; width: 100%%; height: 100%%; border: 0; }
@media (max-width: 640px) { .bp-section { flex-direction: column; } }
`, bg, fg, font, ContentClass, width, ContentClass, ContentClass, link)
}

// InjectCSS inserts a <style> block into an HTML document: before </head> if
// present, otherwise right after <body>, otherwise at the start.
func InjectCSS(doc, css string) string {
	if css == "" {
		return doc
	}
	styleBlock := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(doc)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return doc[:idx] + styleBlock + "\n" + doc[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(doc[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return doc[:pos] + styleBlock + doc[pos:]
		}
	}
	return styleBlock + doc
}

// sanitizeCSS escapes sequences that could close the <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
