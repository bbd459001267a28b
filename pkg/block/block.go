package block

import (
	"fmt"
	"strconv"
	"strings"
)

// ChildrenKey is the property holding a layout block's nested sequence.
const ChildrenKey = "children"

// LayoutStylesKey is the property holding a block's structured layout styles.
const LayoutStylesKey = "layoutStyles"

// Block is one node of an authored document.
type Block struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Props Props  `json:"props,omitempty" yaml:"props,omitempty"`
}

// Tree is an ordered sequence of blocks.
type Tree []Block

// Props is a block's property bag.
type Props map[string]any

// Has reports whether key is present with a non-nil value.
func (p Props) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// String returns the value at key as a string.
// Numbers and booleans are formatted; other types return def.
func (p Props) String(key, def string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return def
	default:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return def
	}
}

// Int returns the value at key as an int. Numeric strings are parsed;
// fractional numbers are truncated.
func (p Props) Int(key string, def int) int {
	switch v := p[key].(type) {
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		return def
	default:
		if f, ok := toFloat(v); ok {
			return int(f)
		}
		return def
	}
}

// Float returns the value at key as a float64.
func (p Props) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
		return def
	default:
		if f, ok := toFloat(v); ok {
			return f
		}
		return def
	}
}

// Bool returns the value at key as a bool.
// The strings "true", "1", "yes" and "on" count as true.
func (p Props) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off", "":
			return false
		}
		return def
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
		return def
	}
}

// Map returns the value at key as a map, or nil.
func (p Props) Map(key string) map[string]any {
	switch v := p[key].(type) {
	case map[string]any:
		return v
	case Props:
		return v
	case Settings:
		return v
	}
	return nil
}

// Slice returns the value at key as a []any, or nil.
func (p Props) Slice(key string) []any {
	switch v := p[key].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}
	return nil
}

// Strings returns the value at key as a string slice.
// Non-string elements are formatted with fmt.
func (p Props) Strings(key string) []string {
	if v, ok := p[key].([]string); ok {
		return v
	}
	items := p.Slice(key)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch s := it.(type) {
		case string:
			out = append(out, s)
		case nil:
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// FromMap converts a decoded map (for example a JSON object) into a Block.
// The props may be stored under "props" or, for older documents, "attributes".
// A missing type is kept as "" so the block is skipped at render time rather
// than lost; a type that is not a string is an error.
func FromMap(m map[string]any) (Block, error) {
	typ, ok := m["type"].(string)
	if !ok && m["type"] != nil {
		return Block{}, fmt.Errorf("block type must be a string, got %T", m["type"])
	}
	id, _ := m["id"].(string)

	var props Props
	switch v := m["props"].(type) {
	case map[string]any:
		props = Props(v)
	case Props:
		props = v
	}
	if props == nil {
		if v, ok := m["attributes"].(map[string]any); ok {
			props = Props(v)
		}
	}
	return Block{ID: id, Type: typ, Props: props}, nil
}

// ToMap converts a block back into a plain map, the inverse of [FromMap].
func (b Block) ToMap() map[string]any {
	m := map[string]any{"id": b.ID, "type": b.Type}
	if len(b.Props) > 0 {
		m["props"] = map[string]any(DeepCopy(b.Props))
	}
	return m
}
