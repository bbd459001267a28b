package block

import "errors"

// SkipChildren can be returned from a [WalkFunc] to skip a block's nested
// sequence without stopping the walk.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every block visited by [Walk]. depth is 0 for
// top-level blocks.
type WalkFunc func(b Block, depth int) error

// Children returns the nested sequence stored under [ChildrenKey].
//
// The value may be a Tree, a []Block, or a []any of decoded maps (as produced
// by JSON or YAML decoding). Entries that cannot be converted are skipped.
func Children(p Props) Tree {
	switch v := p[ChildrenKey].(type) {
	case Tree:
		return v
	case []Block:
		return Tree(v)
	case []map[string]any:
		out := make(Tree, 0, len(v))
		for _, m := range v {
			if b, err := FromMap(m); err == nil {
				out = append(out, b)
			}
		}
		return out
	case []any:
		out := make(Tree, 0, len(v))
		for _, item := range v {
			switch x := item.(type) {
			case Block:
				out = append(out, x)
			case map[string]any:
				if b, err := FromMap(x); err == nil {
					out = append(out, b)
				}
			}
		}
		return out
	}
	return nil
}

// Walk visits every block in tree depth-first, in document order, descending
// into nested sequences. Returning [SkipChildren] from fn skips the current
// block's children; any other error stops the walk and is returned.
func Walk(tree Tree, fn WalkFunc) error {
	return walk(tree, 0, fn)
}

func walk(tree Tree, depth int, fn WalkFunc) error {
	for _, b := range tree {
		err := fn(b, depth)
		if err == SkipChildren {
			continue
		}
		if err != nil {
			return err
		}
		if kids := Children(b.Props); len(kids) > 0 {
			if err := walk(kids, depth+1, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flatten returns every block in tree in depth-first document order.
func Flatten(tree Tree) []Block {
	var out []Block
	_ = Walk(tree, func(b Block, _ int) error {
		out = append(out, b)
		return nil
	})
	return out
}

// Find returns the first block with the given id, searching nested sequences.
func Find(tree Tree, id string) (Block, bool) {
	var found Block
	ok := false
	_ = Walk(tree, func(b Block, _ int) error {
		if b.ID == id {
			found, ok = b, true
			return errStop
		}
		return nil
	})
	return found, ok
}

var errStop = errors.New("stop")

// Entry is a minimal projection of a block used by blocks that describe
// other blocks of the same document (such as a table of contents).
type Entry struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Depth int    `json:"depth"`
	Props Props  `json:"props,omitempty"`
}

// Project returns an [Entry] for every block in tree whose type is in types,
// in document order. Only the listed keys are copied into each entry's props,
// which keeps projections small enough to embed in placeholders. An empty
// types list matches every block.
func Project(tree Tree, types []string, keys ...string) []Entry {
	match := make(map[string]bool, len(types))
	for _, t := range types {
		match[t] = true
	}
	var out []Entry
	_ = Walk(tree, func(b Block, depth int) error {
		if len(match) > 0 && !match[b.Type] {
			return nil
		}
		e := Entry{ID: b.ID, Type: b.Type, Depth: depth}
		if len(keys) > 0 {
			e.Props = make(Props, len(keys))
			for _, k := range keys {
				if v, ok := b.Props[k]; ok {
					e.Props[k] = copyValue(v)
				}
			}
		}
		out = append(out, e)
		return nil
	})
	return out
}

// EntriesFromAny converts a decoded projection (for example one read back out
// of a placeholder's JSON props) into entries. Malformed items are skipped.
func EntriesFromAny(v any) []Entry {
	switch x := v.(type) {
	case []Entry:
		return x
	case []any:
		out := make([]Entry, 0, len(x))
		for _, item := range x {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			p := Props(m)
			e := Entry{ID: p.String("id", ""), Type: p.String("type", ""), Depth: p.Int("depth", 0)}
			if e.ID == "" {
				continue
			}
			if pm := p.Map("props"); pm != nil {
				e.Props = Props(pm)
			}
			out = append(out, e)
		}
		return out
	}
	return nil
}
