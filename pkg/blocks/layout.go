package blocks

import (
	"strconv"
	"strings"

	"github.com/matzehuels/blockpress/pkg/adapter"
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// Divider returns the horizontal rule definition.
func Divider() registry.Definition {
	return registry.Definition{
		Type:        "divider",
		Label:       "Divider",
		Category:    CategoryLayout,
		Description: "A horizontal line between sections.",
		Icon:        "divider",
		Keywords:    []string{"hr", "separator", "line"},
		Defaults:    block.Props{"color": "#dddddd", "thickness": 1, "lineStyle": "solid", "width": "100%"},
		Supports:    registry.Capabilities{Spacing: true, Color: true},
		Generators:  deferredPage(dividerEmail),
		Trusted:     dividerTrusted,
	}
}

// dividerLine is the border declaration of a divider.
func dividerLine(props block.Props) string {
	thickness := props.Int("thickness", 1)
	if thickness < 1 {
		thickness = 1
	}
	if thickness > 20 {
		thickness = 20
	}
	ls := strings.ToLower(props.String("lineStyle", "solid"))
	switch ls {
	case "solid", "dashed", "dotted", "double":
	default:
		ls = "solid"
	}
	color := style.Value(props.String("color", ""))
	if color == "" {
		color = "#dddddd"
	}
	return strconv.Itoa(thickness) + "px " + ls + " " + color
}

func dividerTrusted(props block.Props, _ registry.Options) string {
	return open("hr", "bp-divider", pageCSS(props,
		[2]string{"border", "0"},
		[2]string{"border-top", dividerLine(props)},
		[2]string{"width", style.Length(props.String("width", "100%"))},
		[2]string{"margin", style.ResolveMargin(props, "24px auto")},
	))
}

func dividerEmail(props block.Props, _ registry.Options) string {
	width := style.Value(style.Length(props.String("width", "100%")))
	if width == "" {
		width = "100%"
	}
	return `<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="100%"><tr><td style="padding:` +
		sanitize.Attr(style.ResolvePadding(props, "16px 0")) + `" align="center">` +
		`<table role="presentation" cellpadding="0" cellspacing="0" border="0" width="` + sanitize.Attr(strings.TrimSuffix(width, "px")) + `"><tr>` +
		`<td style="border-top:` + sanitize.Attr(dividerLine(props)) + `;font-size:0;line-height:0">&nbsp;</td>` +
		"</tr></table></td></tr></table>"
}

// MaxSpacerHeight caps a spacer's height in pixels.
const MaxSpacerHeight = 400

// Spacer returns the vertical spacer definition. It renders the same
// markup directly in every context.
func Spacer() registry.Definition {
	return registry.Definition{
		Type:        "spacer",
		Label:       "Spacer",
		Category:    CategoryLayout,
		Description: "Empty vertical space.",
		Icon:        "spacer",
		Keywords:    []string{"gap", "space", "padding"},
		Defaults:    block.Props{"height": 32},
		Generators: map[string]registry.Generator{
			registry.ContextAll: spacer,
		},
	}
}

func spacer(props block.Props, _ registry.Options) string {
	h := props.Int("height", 32)
	if h <= 0 {
		return ""
	}
	if h > MaxSpacerHeight {
		h = MaxSpacerHeight
	}
	px := strconv.Itoa(h) + "px"
	return `<div class="bp-spacer" style="height:` + px + `;line-height:` + px + `;font-size:0" aria-hidden="true">&nbsp;</div>`
}

// Section returns the row container definition. Its children are usually
// columns but any block may be placed in a section.
func Section() registry.Definition {
	return registry.Definition{
		Type:        "section",
		Label:       "Section",
		Category:    CategoryLayout,
		Description: "A row that holds columns or other blocks.",
		Icon:        "columns",
		Keywords:    []string{"row", "container", "layout"},
		Defaults:    block.Props{block.ChildrenKey: []any{}, "gap": 24},
		Supports:    registry.Capabilities{Spacing: true, Color: true, Nesting: true},
		Generators:  deferredPage(sectionEmail),
		Trusted:     sectionTrusted,
	}
}

func sectionTrusted(props block.Props, opts registry.Options) string {
	if strings.TrimSpace(opts.Inner) == "" {
		return ""
	}
	gap := props.Int("gap", 24)
	return open("section", "bp-section", pageCSS(props,
		[2]string{"gap", strconv.Itoa(gap) + "px"},
	)) + opts.Inner + "</section>"
}

func sectionEmail(props block.Props, opts registry.Options) string {
	if opts.RenderChildren == nil {
		return ""
	}
	var cells strings.Builder
	for _, kid := range block.Children(props) {
		html := opts.RenderChildren(block.Tree{kid})
		if html == "" {
			continue
		}
		if strings.HasPrefix(html, "<td") {
			cells.WriteString(html)
		} else {
			cells.WriteString(`<td valign="top">` + html + "</td>")
		}
	}
	if cells.Len() == 0 {
		return ""
	}
	return adapter.Table("") + "<tr>" + cells.String() + "</tr></table>"
}

// Column returns the column definition. Columns render as flex items on
// pages and as table cells in email.
func Column() registry.Definition {
	return registry.Definition{
		Type:        "column",
		Label:       "Column",
		Category:    CategoryLayout,
		Description: "A vertical slot inside a section.",
		Icon:        "column",
		Keywords:    []string{"cell", "layout"},
		Defaults:    block.Props{block.ChildrenKey: []any{}, "width": ""},
		Supports:    registry.Capabilities{Spacing: true, Color: true, Nesting: true},
		Generators:  deferredPage(columnEmail),
		Trusted:     columnTrusted,
	}
}

func columnTrusted(props block.Props, opts registry.Options) string {
	var basis string
	if w := style.Value(style.Length(props.String("width", ""))); w != "" {
		basis = "0 0 " + w
	}
	return open("div", "bp-column", pageCSS(props, [2]string{"flex", basis})) + opts.Inner + "</div>"
}

// columnEmail renders a table cell. Its layout styles go on the cell itself,
// since the adapter leaves cells unwrapped.
func columnEmail(props block.Props, opts registry.Options) string {
	var inner string
	if opts.RenderChildren != nil {
		inner = opts.RenderChildren(block.Children(props))
	}
	extra := []string{"valign", "top"}
	if w := style.Value(props.String("width", "")); w != "" {
		extra = append(extra, "width", strings.TrimSuffix(w, "px"))
	}
	css := style.Inline(props, style.Options{SkipMargin: true, SkipBackgroundImage: true})
	return open("td", "bp-column", css, extra...) + inner + "</td>"
}

// Footer returns the email footer definition.
func Footer() registry.Definition {
	return registry.Definition{
		Type:        "footer",
		Label:       "Footer",
		Category:    CategoryLayout,
		Description: "Sender details and an unsubscribe link.",
		Icon:        "footer",
		Keywords:    []string{"unsubscribe", "address", "legal"},
		Defaults: block.Props{
			"text":            "",
			"address":         "",
			"unsubscribeUrl":  "",
			"unsubscribeText": "Unsubscribe",
			"align":           "center",
			"textColor":       "#6a737d",
		},
		Supports:   registry.Capabilities{Alignment: true, Spacing: true, Color: true, Unique: true},
		Generators: deferredPage(footerEmail),
		Trusted:    footerTrusted,
	}
}

// footerParts returns the footer paragraphs' inner markup in order.
func footerParts(props block.Props, linkCSS string) []string {
	var parts []string
	if t := sanitize.RichText(props.String("text", "")); strings.TrimSpace(t) != "" {
		parts = append(parts, t)
	}
	if a := strings.TrimSpace(props.String("address", "")); a != "" {
		parts = append(parts, sanitize.Text(a))
	}
	if u := strings.TrimSpace(props.String("unsubscribeUrl", "")); u != "" {
		label := props.String("unsubscribeText", "Unsubscribe")
		parts = append(parts, open("a", "", linkCSS, "href", sanitize.URL(u))+sanitize.Text(label)+"</a>")
	}
	return parts
}

func footerTrusted(props block.Props, _ registry.Options) string {
	parts := footerParts(props, "")
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(open("footer", "bp-footer", pageCSS(props,
		[2]string{"text-align", style.ResolveAlign(props, "center")},
		[2]string{"color", style.ResolveTextColor(props, "")},
		[2]string{"font-size", style.ResolveFontSize(props, "0.875rem")},
	)))
	for _, p := range parts {
		b.WriteString("<p>" + p + "</p>")
	}
	b.WriteString("</footer>")
	return b.String()
}

func footerEmail(props block.Props, opts registry.Options) string {
	color := style.ResolveTextColor(props, "#6a737d")
	parts := footerParts(props, "color:"+color+";text-decoration:underline")
	if len(parts) == 0 {
		return ""
	}
	css := declare(
		[2]string{"margin", "0 0 8px 0"},
		[2]string{"font-family", fontFamily(opts)},
		[2]string{"font-size", style.ResolveFontSize(props, "12px")},
		[2]string{"line-height", "1.5"},
		[2]string{"color", color},
		[2]string{"text-align", style.ResolveAlign(props, "center")},
	)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(open("p", "", css) + p + "</p>")
	}
	return b.String()
}
