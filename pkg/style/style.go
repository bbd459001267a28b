// Package style decodes structured layout styles and resolves the visual
// properties (alignment, spacing, colors) every block type shares.
//
// Layout styles are stored on a block under [block.LayoutStylesKey]. Documents
// authored before layout styles existed use flat properties such as
// "backgroundColor" or "align" instead. The Resolve* helpers always prefer a
// layout-style value and fall back to the flat property, so both kinds of
// document keep rendering.
package style

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/matzehuels/blockpress/pkg/block"
)

// Sides holds one CSS length per box side.
type Sides struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// IsZero reports whether no side is set.
func (s Sides) IsZero() bool {
	return s.Top == "" && s.Right == "" && s.Bottom == "" && s.Left == ""
}

// Corners holds one CSS length per box corner.
type Corners struct {
	TopLeft     string `json:"topLeft,omitempty"`
	TopRight    string `json:"topRight,omitempty"`
	BottomRight string `json:"bottomRight,omitempty"`
	BottomLeft  string `json:"bottomLeft,omitempty"`
}

// IsZero reports whether no corner is set.
func (c Corners) IsZero() bool {
	return c.TopLeft == "" && c.TopRight == "" && c.BottomRight == "" && c.BottomLeft == ""
}

// Background describes a box background.
type Background struct {
	Color    string `json:"color,omitempty"`
	Image    string `json:"image,omitempty"`
	Size     string `json:"size,omitempty"`
	Position string `json:"position,omitempty"`
	Repeat   string `json:"repeat,omitempty"`
}

// BorderSide is one side of a border.
type BorderSide struct {
	Width string `json:"width,omitempty"`
	Style string `json:"style,omitempty"`
	Color string `json:"color,omitempty"`
}

// IsZero reports whether the side has no width.
func (b BorderSide) IsZero() bool { return b.Width == "" }

// Border describes per-side borders and per-corner radii.
type Border struct {
	Top    BorderSide `json:"top,omitempty"`
	Right  BorderSide `json:"right,omitempty"`
	Bottom BorderSide `json:"bottom,omitempty"`
	Left   BorderSide `json:"left,omitempty"`
	Radius Corners    `json:"radius,omitempty"`
}

// Shadow describes a box shadow.
type Shadow struct {
	OffsetX string `json:"offsetX,omitempty"`
	OffsetY string `json:"offsetY,omitempty"`
	Blur    string `json:"blur,omitempty"`
	Spread  string `json:"spread,omitempty"`
	Color   string `json:"color,omitempty"`
	Inset   bool   `json:"inset,omitempty"`
}

// IsZero reports whether the shadow has no color.
func (s Shadow) IsZero() bool { return s.Color == "" }

// Typography describes text appearance.
type Typography struct {
	Color         string `json:"color,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
	FontSize      string `json:"fontSize,omitempty"`
	FontWeight    string `json:"fontWeight,omitempty"`
	LineHeight    string `json:"lineHeight,omitempty"`
	LetterSpacing string `json:"letterSpacing,omitempty"`
	TextAlign     string `json:"textAlign,omitempty"`
}

// Dimensions bounds a box's size.
type Dimensions struct {
	Width     string `json:"width,omitempty"`
	MinWidth  string `json:"minWidth,omitempty"`
	MaxWidth  string `json:"maxWidth,omitempty"`
	Height    string `json:"height,omitempty"`
	MinHeight string `json:"minHeight,omitempty"`
	MaxHeight string `json:"maxHeight,omitempty"`
}

// LayoutStyles is the structured style object shared by all block types.
type LayoutStyles struct {
	Background Background `json:"background,omitempty"`
	Margin     Sides      `json:"margin,omitempty"`
	Padding    Sides      `json:"padding,omitempty"`
	Border     Border     `json:"border,omitempty"`
	BoxShadow  Shadow     `json:"boxShadow,omitempty"`
	Typography Typography `json:"typography,omitempty"`
	Dimensions Dimensions `json:"dimensions,omitempty"`
}

// Decode reads the layout styles stored on props. It returns nil when the
// block has none or when they cannot be decoded.
func Decode(props block.Props) *LayoutStyles {
	raw := props.Map(block.LayoutStylesKey)
	if len(raw) == 0 {
		return nil
	}
	var ls LayoutStyles
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(shorthandHook, lengthHook),
		Result:           &ls,
	})
	if err != nil {
		return nil
	}
	if err := dec.Decode(raw); err != nil {
		return nil
	}
	return &ls
}

var (
	sidesType   = reflect.TypeOf(Sides{})
	cornersType = reflect.TypeOf(Corners{})
)

// shorthandHook expands a single value ("20px" or 20) into every side or
// corner, mirroring the CSS shorthand.
func shorthandHook(from, to reflect.Type, data any) (any, error) {
	if to != sidesType && to != cornersType {
		return data, nil
	}
	var v string
	switch from.Kind() {
	case reflect.String:
		v = data.(string)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		v = fmt.Sprint(data)
	default:
		return data, nil
	}
	if to == sidesType {
		return map[string]any{"top": v, "right": v, "bottom": v, "left": v}, nil
	}
	return map[string]any{"topLeft": v, "topRight": v, "bottomRight": v, "bottomLeft": v}, nil
}

// lengthHook formats numeric values bound for string fields without
// exponent notation, so 1e3 decodes as "1000" rather than "1e+03".
func lengthHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch n := data.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), nil
	}
	return data, nil
}
