package block

import (
	"github.com/matzehuels/blockpress/pkg/errors"
)

// Problems lists every structural problem in tree, nested blocks included:
// blocks without a type, malformed IDs and repeated IDs. Rendering tolerates
// all of them; authoring tools reject them through [ValidateTree].
func Problems(tree Tree) []error {
	var out []error
	seen := make(map[string]bool)
	_ = Walk(tree, func(b Block, _ int) error {
		if b.Type == "" {
			out = append(out, errors.New(errors.ErrCodeInvalidBlock, "block %q has no type", b.ID))
		}
		if err := errors.ValidateBlockID(b.ID); err != nil {
			out = append(out, errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s block has an invalid id", b.Type))
		} else if seen[b.ID] {
			out = append(out, errors.New(errors.ErrCodeInvalidDocument, "duplicate block id %q", b.ID))
		}
		seen[b.ID] = true
		return nil
	})
	return out
}

// ValidateTree returns the first of [Problems], or nil.
func ValidateTree(tree Tree) error {
	if p := Problems(tree); len(p) > 0 {
		return p[0]
	}
	return nil
}
