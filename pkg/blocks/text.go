package blocks

import (
	"strconv"
	"strings"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// headingDefaults are the built-in heading defaults. A table of contents
// falls back to them when no registry is at hand.
func headingDefaults() block.Props {
	return block.Props{"text": "Heading", "level": "h2", "align": "left"}
}

// emailHeadingSizes are the email font sizes per heading level, in pixels.
var emailHeadingSizes = [7]int{0, 32, 26, 22, 18, 16, 14}

// HeadingLevel returns the heading level (1–6) in props. It accepts "h3",
// "H3", "3" or 3 and falls back to 2.
func HeadingLevel(props block.Props) int {
	v := strings.ToLower(strings.TrimSpace(props.String("level", "h2")))
	v = strings.TrimPrefix(v, "h")
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 6 {
		return 2
	}
	return n
}

// Heading returns the heading definition. Its trusted markup carries an
// anchor id computed with [sanitize.AnchorID].
func Heading() registry.Definition {
	return registry.Definition{
		Type:        "heading",
		Label:       "Heading",
		Category:    CategoryText,
		Description: "A section title with a linkable anchor.",
		Icon:        "heading",
		Keywords:    []string{"title", "h1", "h2", "subtitle"},
		Defaults:    headingDefaults(),
		Supports:    registry.Capabilities{Alignment: true, Spacing: true, Color: true},
		Generators:  deferredPage(headingEmail),
		Trusted:     headingTrusted,
		Validate: func(p block.Props) bool {
			return strings.TrimSpace(sanitize.StripTags(p.String("text", ""))) != ""
		},
	}
}

func headingTrusted(props block.Props, opts registry.Options) string {
	text := props.String("text", "")
	tag := "h" + strconv.Itoa(HeadingLevel(props))
	css := pageCSS(props,
		[2]string{"text-align", style.ResolveAlign(props, "")},
		[2]string{"color", style.ResolveTextColor(props, "")},
		[2]string{"font-size", style.ResolveFontSize(props, "")},
	)
	return open(tag, "bp-heading", css, "id", sanitize.AnchorID(text, opts.Block.ID)) +
		sanitize.RichText(text) + "</" + tag + ">"
}

func headingEmail(props block.Props, opts registry.Options) string {
	text := props.String("text", "")
	level := HeadingLevel(props)
	tag := "h" + strconv.Itoa(level)
	css := declare(
		[2]string{"margin", style.ResolveMargin(props, "0 0 12px 0")},
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"font-size", style.ResolveFontSize(props, strconv.Itoa(emailHeadingSizes[level])+"px")},
		[2]string{"line-height", "1.3"},
		[2]string{"color", textColor(props, opts, "#333333")},
		[2]string{"text-align", style.ResolveAlign(props, "left")},
	)
	return open(tag, "", css, "id", sanitize.AnchorID(text, opts.Block.ID)) +
		sanitize.RichText(text) + "</" + tag + ">"
}

// Text returns the rich text definition.
func Text() registry.Definition {
	return registry.Definition{
		Type:        "text",
		Label:       "Text",
		Category:    CategoryText,
		Description: "A paragraph of formatted text.",
		Icon:        "paragraph",
		Keywords:    []string{"paragraph", "copy", "body"},
		Defaults:    block.Props{"content": "", "align": "left"},
		Supports:    registry.Capabilities{Alignment: true, Spacing: true, Color: true},
		Generators:  deferredPage(textEmail),
		Trusted:     textTrusted,
	}
}

func textTrusted(props block.Props, _ registry.Options) string {
	body := paragraphs(props.String("content", ""), "")
	if body == "" {
		return ""
	}
	css := pageCSS(props,
		[2]string{"text-align", style.ResolveAlign(props, "")},
		[2]string{"color", style.ResolveTextColor(props, "")},
		[2]string{"font-size", style.ResolveFontSize(props, "")},
	)
	return open("div", "bp-text", css) + body + "</div>"
}

func textEmail(props block.Props, opts registry.Options) string {
	css := declare(
		[2]string{"margin", style.ResolveMargin(props, "0 0 16px 0")},
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"font-size", style.ResolveFontSize(props, strconv.Itoa(opts.Settings.Int("fontSize", 16))+"px")},
		[2]string{"line-height", "1.6"},
		[2]string{"color", textColor(props, opts, "#333333")},
		[2]string{"text-align", style.ResolveAlign(props, "left")},
	)
	return paragraphs(props.String("content", ""), css)
}

// List returns the list definition. Items are rich text.
func List() registry.Definition {
	return registry.Definition{
		Type:        "list",
		Label:       "List",
		Category:    CategoryText,
		Description: "A bulleted or numbered list.",
		Icon:        "list",
		Keywords:    []string{"bullets", "numbered", "items"},
		Defaults:    block.Props{"items": []any{}, "ordered": false},
		Supports:    registry.Capabilities{Spacing: true, Color: true},
		Generators:  deferredPage(listEmail),
		Trusted:     listTrusted,
	}
}

func listItems(props block.Props) []string {
	var out []string
	for _, it := range props.Strings("items") {
		if clean := sanitize.RichText(it); strings.TrimSpace(clean) != "" {
			out = append(out, clean)
		}
	}
	return out
}

func listTag(props block.Props) string {
	if props.Bool("ordered", false) {
		return "ol"
	}
	return "ul"
}

func listTrusted(props block.Props, _ registry.Options) string {
	items := listItems(props)
	if len(items) == 0 {
		return ""
	}
	tag := listTag(props)
	var b strings.Builder
	b.WriteString(open(tag, "bp-list", pageCSS(props, [2]string{"color", style.ResolveTextColor(props, "")})))
	for _, it := range items {
		b.WriteString("<li>" + it + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

func listEmail(props block.Props, opts registry.Options) string {
	items := listItems(props)
	if len(items) == 0 {
		return ""
	}
	tag := listTag(props)
	var b strings.Builder
	b.WriteString(open(tag, "", declare(
		[2]string{"margin", "0 0 16px 0"},
		[2]string{"padding-left", "24px"},
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"line-height", "1.6"},
		[2]string{"color", textColor(props, opts, "#333333")},
	)))
	for _, it := range items {
		b.WriteString(`<li style="margin:0 0 8px 0">` + it + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

// Quote returns the pull quote definition.
func Quote() registry.Definition {
	return registry.Definition{
		Type:        "quote",
		Label:       "Quote",
		Category:    CategoryText,
		Description: "A quotation with an optional citation.",
		Icon:        "quote",
		Keywords:    []string{"blockquote", "citation", "testimonial"},
		Defaults:    block.Props{"text": "", "citation": "", "accentColor": "#dddddd"},
		Supports:    registry.Capabilities{Alignment: true, Spacing: true, Color: true},
		Generators:  deferredPage(quoteEmail),
		Trusted:     quoteTrusted,
	}
}

func quoteTrusted(props block.Props, _ registry.Options) string {
	text := sanitize.RichText(props.String("text", ""))
	if strings.TrimSpace(text) == "" {
		return ""
	}
	accent := style.Value(props.String("accentColor", "#dddddd"))
	var b strings.Builder
	b.WriteString(open("blockquote", "bp-quote", pageCSS(props,
		[2]string{"border-left", "4px solid " + accent},
		[2]string{"text-align", style.ResolveAlign(props, "")},
		[2]string{"color", style.ResolveTextColor(props, "")},
	)))
	b.WriteString("<p>" + text + "</p>")
	if c := strings.TrimSpace(props.String("citation", "")); c != "" {
		b.WriteString("<cite>" + sanitize.Text(c) + "</cite>")
	}
	b.WriteString("</blockquote>")
	return b.String()
}

func quoteEmail(props block.Props, opts registry.Options) string {
	text := sanitize.RichText(props.String("text", ""))
	if strings.TrimSpace(text) == "" {
		return ""
	}
	accent := style.Value(props.String("accentColor", "#dddddd"))
	color := textColor(props, opts, "#555555")
	var b strings.Builder
	b.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr>`)
	b.WriteString(open("td", "", declare(
		[2]string{"border-left", "4px solid " + accent},
		[2]string{"padding", "8px 0 8px 16px"},
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"font-style", "italic"},
		[2]string{"line-height", "1.6"},
		[2]string{"color", color},
		[2]string{"text-align", style.ResolveAlign(props, "left")},
	)))
	b.WriteString(text)
	if c := strings.TrimSpace(props.String("citation", "")); c != "" {
		b.WriteString(`<br><span style="font-style:normal;font-size:14px">&mdash; ` + sanitize.Text(c) + "</span>")
	}
	b.WriteString("</td></tr></table>")
	return b.String()
}
