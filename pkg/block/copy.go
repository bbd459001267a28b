package block

// DeepCopy returns a copy of p that shares no maps or slices with it.
func DeepCopy(p Props) Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = copyValue(v)
	}
	return out
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	return Block{ID: b.ID, Type: b.Type, Props: DeepCopy(b.Props)}
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, b := range t {
		out[i] = b.Clone()
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return map[string]any(DeepCopy(Props(x)))
	case Props:
		return DeepCopy(x)
	case Settings:
		return Settings(DeepCopy(Props(x)))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []map[string]any:
		out := make([]map[string]any, len(x))
		for i, m := range x {
			out[i] = map[string]any(DeepCopy(Props(m)))
		}
		return out
	case Tree:
		return x.Clone()
	case []Block:
		return []Block(Tree(x).Clone())
	case Block:
		return x.Clone()
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out
	default:
		return v
	}
}

// Merge returns a deep copy of defaults overlaid with overrides.
//
// Keys are merged at the top level only: an override replaces the default
// value for its key wholesale. A nil override value is treated as unset and
// keeps the default. The result never aliases either input.
func Merge(defaults, overrides Props) Props {
	out := DeepCopy(defaults)
	if out == nil {
		out = make(Props, len(overrides))
	}
	for k, v := range overrides {
		if v == nil {
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}
