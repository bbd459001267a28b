package style

import (
	"strings"

	"github.com/matzehuels/blockpress/pkg/block"
)

// Alignments accepted by [ResolveAlign].
var alignments = map[string]bool{"left": true, "center": true, "right": true, "justify": true}

// ResolveAlign returns the block's text alignment. Layout-style typography
// wins over the flat "align" and "textAlign" properties; unknown values fall
// back to def.
func ResolveAlign(props block.Props, def string) string {
	if ls := Decode(props); ls != nil {
		if a := strings.ToLower(ls.Typography.TextAlign); alignments[a] {
			return a
		}
	}
	for _, key := range []string{"align", "textAlign", "alignment"} {
		if a := strings.ToLower(props.String(key, "")); alignments[a] {
			return a
		}
	}
	return def
}

// ResolveBackgroundColor returns the block's background color, or "".
func ResolveBackgroundColor(props block.Props) string {
	if ls := Decode(props); ls != nil && Value(ls.Background.Color) != "" {
		return Value(ls.Background.Color)
	}
	return Value(props.String("backgroundColor", ""))
}

// ResolveTextColor returns the block's text color, or def.
func ResolveTextColor(props block.Props, def string) string {
	if ls := Decode(props); ls != nil && Value(ls.Typography.Color) != "" {
		return Value(ls.Typography.Color)
	}
	for _, key := range []string{"textColor", "color"} {
		if c := Value(props.String(key, "")); c != "" {
			return c
		}
	}
	return def
}

// ResolvePadding returns the block's padding as a CSS shorthand, or def.
// A flat "padding" property may be a number (pixels) or any CSS length.
func ResolvePadding(props block.Props, def string) string {
	if ls := Decode(props); ls != nil {
		if p := BoxShorthand(ls.Padding); p != "" {
			return Value(p)
		}
	}
	if p := Value(Length(props.String("padding", ""))); p != "" {
		return p
	}
	return def
}

// ResolveMargin returns the block's margin as a CSS shorthand, or def.
func ResolveMargin(props block.Props, def string) string {
	if ls := Decode(props); ls != nil {
		if m := BoxShorthand(ls.Margin); m != "" {
			return Value(m)
		}
	}
	if m := Value(Length(props.String("margin", ""))); m != "" {
		return m
	}
	return def
}

// ResolveFontSize returns the block's font size as a CSS length, or def.
func ResolveFontSize(props block.Props, def string) string {
	if ls := Decode(props); ls != nil {
		if f := Value(Length(ls.Typography.FontSize)); f != "" {
			return f
		}
	}
	if f := Value(Length(props.String("fontSize", ""))); f != "" {
		return f
	}
	return def
}

// Inline returns the inline style attribute value for a block: its layout
// styles rendered with [CSS], followed by extra declarations for anything
// the layout styles left unset.
func Inline(props block.Props, opts Options, extra ...[2]string) string {
	d := CSS(Decode(props), opts)
	for _, kv := range extra {
		if !d.has(kv[0]) {
			d.Add(kv[0], kv[1])
		}
	}
	return d.String()
}

func (d *Declarations) has(prop string) bool {
	for _, p := range d.props {
		if p == prop {
			return true
		}
	}
	return false
}
