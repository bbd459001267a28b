package style

import (
	"strconv"
	"strings"
)

// Declarations accumulates inline CSS declarations in insertion order.
// Empty or unsafe values are dropped.
type Declarations struct {
	props  []string
	values []string
}

// Add appends a declaration. A later Add for the same property replaces the
// earlier value in place.
func (d *Declarations) Add(prop, value string) *Declarations {
	value = Value(value)
	if value == "" {
		return d
	}
	for i, p := range d.props {
		if p == prop {
			d.values[i] = value
			return d
		}
	}
	d.props = append(d.props, prop)
	d.values = append(d.values, value)
	return d
}

// AddLength appends a declaration whose bare numeric value gets a px unit.
func (d *Declarations) AddLength(prop, value string) *Declarations {
	return d.Add(prop, Length(value))
}

// Len returns the number of declarations.
func (d *Declarations) Len() int { return len(d.props) }

// String renders the declarations as "prop:value;prop:value".
func (d *Declarations) String() string {
	var b strings.Builder
	for i, p := range d.props {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(p)
		b.WriteByte(':')
		b.WriteString(d.values[i])
	}
	return b.String()
}

// Value returns v trimmed, or "" if it could break out of a declaration or
// pull in script (quotes, semicolons, braces, angle brackets, backslashes,
// comments, expression() or url()).
func Value(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if strings.ContainsAny(v, `;{}<>"'\`) || strings.Contains(v, "/*") {
		return ""
	}
	lower := strings.ToLower(v)
	if strings.Contains(lower, "expression(") || strings.Contains(lower, "url(") || strings.Contains(lower, "javascript:") {
		return ""
	}
	return v
}

// Length returns v with a px unit appended when it is a bare number.
func Length(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		if v == "0" {
			return v
		}
		return v + "px"
	}
	return v
}

// BoxShorthand renders sides as a CSS shorthand ("10px 20px 10px 20px"),
// using "0" for unset sides. It returns "" when no side is set.
func BoxShorthand(s Sides) string {
	if s.IsZero() {
		return ""
	}
	side := func(v string) string {
		if v = Length(v); v == "" {
			return "0"
		}
		return v
	}
	return side(s.Top) + " " + side(s.Right) + " " + side(s.Bottom) + " " + side(s.Left)
}

func borderSide(b BorderSide) string {
	if b.IsZero() {
		return ""
	}
	st := b.Style
	if st == "" {
		st = "solid"
	}
	col := b.Color
	if col == "" {
		col = "currentColor"
	}
	return Length(b.Width) + " " + st + " " + col
}

func shadow(s Shadow) string {
	if s.IsZero() {
		return ""
	}
	parts := make([]string, 0, 6)
	if s.Inset {
		parts = append(parts, "inset")
	}
	for _, v := range []string{s.OffsetX, s.OffsetY, s.Blur, s.Spread} {
		if v = Length(v); v == "" {
			v = "0"
		}
		parts = append(parts, v)
	}
	parts = append(parts, s.Color)
	return strings.Join(parts, " ")
}

// Options controls which parts of a [LayoutStyles] are rendered by [CSS].
type Options struct {
	// SkipMargin omits margin declarations. Table cells ignore margins, so
	// the email adapter renders them as outer padding instead.
	SkipMargin bool

	// SkipBackgroundImage omits background-image and its companions.
	SkipBackgroundImage bool
}

// CSS renders ls as inline declarations in a fixed order.
func CSS(ls *LayoutStyles, opts Options) *Declarations {
	d := &Declarations{}
	if ls == nil {
		return d
	}

	bg := ls.Background
	d.Add("background-color", bg.Color)
	if !opts.SkipBackgroundImage {
		if u := backgroundImage(bg.Image); u != "" {
			d.props = append(d.props, "background-image")
			d.values = append(d.values, u)
			d.Add("background-size", bg.Size)
			d.Add("background-position", bg.Position)
			d.Add("background-repeat", bg.Repeat)
		}
	}

	if !opts.SkipMargin {
		d.Add("margin", BoxShorthand(ls.Margin))
	}
	d.Add("padding", BoxShorthand(ls.Padding))

	b := ls.Border
	if !b.Top.IsZero() && b.Top == b.Right && b.Top == b.Bottom && b.Top == b.Left {
		d.Add("border", borderSide(b.Top))
	} else {
		d.Add("border-top", borderSide(b.Top))
		d.Add("border-right", borderSide(b.Right))
		d.Add("border-bottom", borderSide(b.Bottom))
		d.Add("border-left", borderSide(b.Left))
	}
	r := b.Radius
	if !r.IsZero() {
		if r.TopLeft == r.TopRight && r.TopLeft == r.BottomRight && r.TopLeft == r.BottomLeft {
			d.AddLength("border-radius", r.TopLeft)
		} else {
			d.AddLength("border-top-left-radius", r.TopLeft)
			d.AddLength("border-top-right-radius", r.TopRight)
			d.AddLength("border-bottom-right-radius", r.BottomRight)
			d.AddLength("border-bottom-left-radius", r.BottomLeft)
		}
	}
	d.Add("box-shadow", shadow(ls.BoxShadow))

	t := ls.Typography
	d.Add("color", t.Color)
	d.Add("font-family", t.FontFamily)
	d.AddLength("font-size", t.FontSize)
	d.Add("font-weight", t.FontWeight)
	d.Add("line-height", t.LineHeight)
	d.AddLength("letter-spacing", t.LetterSpacing)
	d.Add("text-align", t.TextAlign)

	dim := ls.Dimensions
	d.AddLength("width", dim.Width)
	d.AddLength("min-width", dim.MinWidth)
	d.AddLength("max-width", dim.MaxWidth)
	d.AddLength("height", dim.Height)
	d.AddLength("min-height", dim.MinHeight)
	d.AddLength("max-height", dim.MaxHeight)
	return d
}

// backgroundImage builds a url() value for an http(s) or root-relative image.
func backgroundImage(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "http://") &&
		!(strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//")) {
		return ""
	}
	if strings.ContainsAny(u, `"'()\<>;`) || strings.ContainsFunc(u, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return ""
	}
	return "url(" + u + ")"
}
