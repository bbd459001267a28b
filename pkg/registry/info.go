package registry

import "github.com/matzehuels/blockpress/pkg/block"

// Info is the serializable description of a block type that editors use
// to build their inserter.
type Info struct {
	Type        string          `json:"type" yaml:"type"`
	Label       string          `json:"label" yaml:"label"`
	Category    string          `json:"category" yaml:"category"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string          `json:"icon" yaml:"icon"`
	Keywords    []string        `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Contexts    []string        `json:"contexts" yaml:"contexts"`
	Supports    map[string]bool `json:"supports" yaml:"supports"`
	Defaults    block.Props     `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Deferred    bool            `json:"deferred" yaml:"deferred"`
	Volatile    bool            `json:"volatile,omitempty" yaml:"volatile,omitempty"`
}

// Info describes d. Defaults are deep-copied.
func (d *Definition) Info() Info {
	return Info{
		Type:        d.Type,
		Label:       d.Label,
		Category:    d.Category,
		Description: d.Description,
		Icon:        d.Icon,
		Keywords:    append([]string(nil), d.Keywords...),
		Contexts:    d.ContextNames(),
		Supports:    d.Supports.Flags(),
		Defaults:    block.DeepCopy(d.Defaults),
		Deferred:    d.Trusted != nil,
		Volatile:    d.Volatile,
	}
}

// Infos describes defs.
func Infos(defs []*Definition) []Info {
	out := make([]Info, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Info())
	}
	return out
}
