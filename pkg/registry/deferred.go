package registry

import (
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/placeholder"
)

// Deferred returns a generator that emits a placeholder carrying the block's
// resolved props, leaving final markup to the definition's Trusted slot.
//
// For types that support nesting, children are rendered with
// opts.RenderChildren and placed inside the placeholder instead of being
// serialized into its payload.
func Deferred() Generator {
	return DeferredWith(nil)
}

// DeferredWith is like [Deferred] but lets extend add derived props to the
// payload (for example a projection of the document). extend receives a
// private copy it may modify.
func DeferredWith(extend func(props block.Props, opts Options) block.Props) Generator {
	return func(props block.Props, opts Options) string {
		payload := block.DeepCopy(props)
		if payload == nil {
			payload = block.Props{}
		}

		var inner string
		if opts.Definition != nil && opts.Definition.Supports.Nesting {
			if kids := block.Children(props); len(kids) > 0 && opts.RenderChildren != nil {
				inner = opts.RenderChildren(kids)
			}
			delete(payload, block.ChildrenKey)
		}

		if extend != nil {
			payload = extend(payload, opts)
		}
		return placeholder.Encode(opts.Block.Type, opts.Block.ID, payload, inner)
	}
}
