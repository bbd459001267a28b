package adapter

import (
	"strconv"
	"strings"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
	"github.com/matzehuels/blockpress/pkg/style"
)

// EmailDefaults are the email context defaults.
func EmailDefaults() block.Settings {
	return block.Settings{
		"width":                  600,
		"fontFamily":             "Arial, Helvetica, sans-serif",
		"fontSize":               16,
		"backgroundColor":        "#f4f4f4",
		"contentBackgroundColor": "#ffffff",
		"textColor":              "#333333",
		"linkColor":              "#0073aa",
		"contentPadding":         24,
		"title":                  "",
		"preheader":              "",
		"lang":                   "en",
	}
}

// Email renders the email context.
type Email struct {
	*engine
}

// NewEmail creates an email-context adapter backed by reg.
func NewEmail(reg *registry.Registry, opts ...Option) *Email {
	e := &Email{engine: newEngine(registry.ContextEmail, reg, EmailDefaults(), opts)}
	e.wrap = e.wrapDocument
	e.row = e.wrapRow
	e.decorate = wrapLayoutCell
	e.fallbacks = map[string]registry.Generator{
		"section": emailSection,
		"column":  emailColumn,
	}
	return e
}

const presentation = `role="presentation" cellpadding="0" cellspacing="0" border="0"`

// Table opens a full-width presentation table. Email generators use it to
// stay consistent with the envelope.
func Table(styleAttr string) string {
	t := `<table ` + presentation + ` width="100%"`
	if styleAttr != "" {
		t += ` style="` + sanitize.Attr(styleAttr) + `"`
	}
	return t + ">"
}

// wrapRow places a top-level block in its own row of the content table.
// A bare cell, such as a column outside any section, gets a table of its
// own so cells never nest directly.
func (e *Email) wrapRow(html string, _ block.Block, s block.Settings) string {
	pad := s.Int("contentPadding", 24)
	if strings.HasPrefix(strings.TrimSpace(html), "<td") {
		html = Table("") + "<tr>" + html + "</tr></table>"
	}
	return `<tr><td class="bp-block" style="padding:0 ` + strconv.Itoa(pad) + `px;">` + html + `</td></tr>`
}

// wrapLayoutCell wraps a block with layout styles in a table cell, since
// many mail clients ignore box styles on block containers. Margins become
// padding on an outer cell. Blocks that render as cells themselves are left
// alone.
func wrapLayoutCell(html string, _ block.Block, props block.Props) string {
	if strings.HasPrefix(html, "<td") {
		return html
	}
	ls := style.Decode(props)
	if ls == nil {
		return html
	}
	css := style.CSS(ls, style.Options{SkipMargin: true}).String()
	margin := style.BoxShorthand(ls.Margin)
	if css == "" && margin == "" {
		return html
	}

	out := Table("") + `<tr><td style="` + sanitize.Attr(css) + `">` + html + `</td></tr></table>`
	if margin != "" {
		out = Table("") + `<tr><td style="padding:` + sanitize.Attr(margin) + `">` + out + `</td></tr></table>`
	}
	return out
}

func emailSection(props block.Props, opts registry.Options) string {
	var inner string
	if opts.RenderChildren != nil {
		for _, kid := range block.Children(props) {
			html := opts.RenderChildren(block.Tree{kid})
			if html == "" {
				continue
			}
			if kid.Type == "column" {
				inner += html
			} else {
				inner += `<td valign="top">` + html + `</td>`
			}
		}
	}
	return Table("") + "<tr>" + inner + "</tr></table>"
}

func emailColumn(props block.Props, opts registry.Options) string {
	var inner string
	if opts.RenderChildren != nil {
		inner = opts.RenderChildren(block.Children(props))
	}
	attrs := `valign="top" class="bp-column"`
	if w := style.Value(props.String("width", "")); w != "" {
		attrs += ` width="` + sanitize.Attr(strings.TrimSuffix(w, "px")) + `"`
	}
	return "<td " + attrs + ">" + inner + "</td>"
}

func (e *Email) wrapDocument(content string, s block.Settings) string {
	width := s.Int("width", 600)
	if width <= 0 {
		width = 600
	}
	w := strconv.Itoa(width)
	bg := cssOr(s.String("backgroundColor", ""), "#f4f4f4")
	contentBg := cssOr(s.String("contentBackgroundColor", ""), "#ffffff")
	fg := cssOr(s.String("textColor", ""), "#333333")
	link := cssOr(s.String("linkColor", ""), "#0073aa")
	font := cssOr(s.String("fontFamily", ""), "Arial, Helvetica, sans-serif")
	size := strconv.Itoa(s.Int("fontSize", 16))
	lang := sanitize.Attr(s.String("lang", "en"))

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">` + "\n")
	b.WriteString(`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:v="urn:schemas-microsoft-com:vml" xmlns:o="urn:schemas-microsoft-com:office:office" lang="` + lang + `">` + "\n")
	b.WriteString("<head>\n")
	b.WriteString(`<meta http-equiv="Content-Type" content="text/html; charset=UTF-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString(`<meta http-equiv="X-UA-Compatible" content="IE=edge">` + "\n")
	b.WriteString(`<meta name="x-apple-disable-message-reformatting">` + "\n")
	b.WriteString("<title>" + sanitize.Text(s.String("title", "")) + "</title>\n")
	b.WriteString("<!--[if mso]>\n<noscript><xml><o:OfficeDocumentSettings><o:AllowPNG/><o:PixelsPerInch>96</o:PixelsPerInch></o:OfficeDocumentSettings></xml></noscript>\n<![endif]-->\n")
	b.WriteString("<style>body{margin:0;padding:0;width:100%!important;}table,td{border-collapse:collapse;}img{border:0;outline:none;text-decoration:none;}a{color:" + link + ";}" +
		"@media only screen and (max-width:" + w + "px){.bp-container{width:100%!important;}.bp-column{display:block!important;width:100%!important;}}</style>\n")
	b.WriteString("</head>\n")
	b.WriteString(`<body style="margin:0;padding:0;background-color:` + bg + `;">` + "\n")

	if pre := s.String("preheader", ""); pre != "" {
		b.WriteString(`<div style="display:none;max-height:0;overflow:hidden;mso-hide:all;">` + sanitize.Text(sanitize.Truncate(pre, 150)) + "</div>\n")
	}

	b.WriteString(Table("background-color:"+bg+";") + "\n")
	b.WriteString(`<tr><td align="center" style="padding:20px 0;">` + "\n")
	b.WriteString(`<!--[if mso]><table ` + presentation + ` width="` + w + `"><tr><td><![endif]-->` + "\n")
	b.WriteString(`<table ` + presentation + ` class="bp-container" width="` + w + `" style="width:100%;max-width:` + w + `px;background-color:` + contentBg +
		`;font-family:` + font + `;font-size:` + size + `px;color:` + fg + `;">` + "\n")
	b.WriteString(content)
	b.WriteString("\n</table>\n")
	b.WriteString("<!--[if mso]></td></tr></table><![endif]-->\n")
	b.WriteString("</td></tr>\n</table>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func cssOr(v, def string) string {
	if v = style.Value(v); v != "" {
		return sanitize.Attr(v)
	}
	return def
}
