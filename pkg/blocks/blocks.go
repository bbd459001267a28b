// Package blocks provides the built-in block types.
//
// Each type is a [registry.Definition] with up to three generators:
//
//   - page: usually [registry.Deferred], which emits a placeholder
//   - email: a direct generator that escapes and inlines everything itself
//   - Trusted: the final page markup, built from the placeholder's props
//
// Only spacer renders directly in every context; toc renders only on pages.
//
// Register the whole set with [RegisterAll]:
//
//	reg := registry.New(bus, logger)
//	if err := blocks.RegisterAll(reg); err != nil {
//		return err
//	}
package blocks

import (
	"strings"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// Categories used by the built-in types.
const (
	CategoryText   = "text"
	CategoryMedia  = "media"
	CategoryLayout = "layout"
	CategoryWidget = "widget"
)

// Definitions returns fresh definitions for every built-in type, in the
// order they are offered to authors.
func Definitions() []registry.Definition {
	return []registry.Definition{
		Heading(),
		Text(),
		List(),
		Quote(),
		Code(),
		Markdown(),
		Button(),
		Image(),
		Video(),
		Social(),
		Divider(),
		Spacer(),
		Section(),
		Column(),
		TOC(),
		Countdown(),
		Footer(),
	}
}

// RegisterAll registers every built-in type with reg.
func RegisterAll(reg *registry.Registry) error {
	for _, def := range Definitions() {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// deferredPage is the generator map shared by types that defer their page
// markup to the trusted pass and render email directly.
func deferredPage(email registry.Generator) map[string]registry.Generator {
	return map[string]registry.Generator{
		registry.ContextPage:  registry.Deferred(),
		registry.ContextEmail: email,
	}
}

// open writes an opening tag with a class and an optional inline style.
func open(tag, class, css string, extra ...string) string {
	var b strings.Builder
	b.WriteString("<" + tag)
	if class != "" {
		b.WriteString(` class="` + sanitize.Attr(class) + `"`)
	}
	if css != "" {
		b.WriteString(` style="` + sanitize.Attr(css) + `"`)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		if extra[i+1] == "" {
			continue
		}
		b.WriteString(" " + extra[i] + `="` + sanitize.Attr(extra[i+1]) + `"`)
	}
	b.WriteString(">")
	return b.String()
}

// pageCSS renders a block's layout styles, then fills in extra declarations
// the layout styles left unset.
func pageCSS(props block.Props, extra ...[2]string) string {
	return style.Inline(props, style.Options{}, extra...)
}

// declare renders declarations without consulting layout styles. Email
// generators use it because the email adapter applies layout styles in a
// wrapping cell.
func declare(extra ...[2]string) string {
	d := &style.Declarations{}
	for _, kv := range extra {
		d.Add(kv[0], kv[1])
	}
	return d.String()
}

// textColor resolves a block's text color, falling back to the render
// settings and then def.
func textColor(props block.Props, opts registry.Options, def string) string {
	return style.ResolveTextColor(props, style.Value(opts.Settings.String("textColor", def)))
}

// fontFamily is the email font family from settings.
func fontFamily(opts registry.Options) string {
	if f := style.Value(opts.Settings.String("fontFamily", "")); f != "" {
		return f
	}
	return "Arial, Helvetica, sans-serif"
}

// paragraphs cleans rich text and wraps it in a paragraph unless it already
// carries block-level markup.
func paragraphs(content, css string) string {
	clean := sanitize.RichText(content)
	if clean == "" {
		return ""
	}
	if hasBlockMarkup(clean) {
		return open("div", "", css) + clean + "</div>"
	}
	return open("p", "", css) + clean + "</p>"
}

func hasBlockMarkup(s string) bool {
	lower := strings.ToLower(s)
	for _, tag := range []string{"<p", "<ul", "<ol", "<div", "<blockquote", "<h1", "<h2", "<h3", "<h4", "<h5", "<h6", "<table", "<pre"} {
		if i := strings.Index(lower, tag); i >= 0 {
			next := i + len(tag)
			if next == len(lower) || lower[next] == '>' || lower[next] == ' ' {
				return true
			}
		}
	}
	return false
}

// linkAttrs returns the extra attributes of a link opened in a new tab.
func linkAttrs(props block.Props) []string {
	if props.Bool("newTab", false) {
		return []string{"target", "_blank", "rel", "noopener noreferrer"}
	}
	return nil
}
