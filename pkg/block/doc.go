// Package block defines the document data model: block instances, the trees
// they form, their property bags, and per-render settings.
//
// # Overview
//
// A document is an ordered [Tree] of [Block] values. Each block carries an
// opaque identifier, a type key resolved against a registry at render time,
// and a [Props] bag of loosely typed values (strings, numbers, booleans,
// nested style maps). Layout blocks keep their nested sequences under the
// [ChildrenKey] property.
//
//	tree := block.Tree{
//	    {ID: "h1", Type: "heading", Props: block.Props{"text": "Hello", "level": "h2"}},
//	    {ID: "s1", Type: "section", Props: block.Props{
//	        block.ChildrenKey: block.Tree{{ID: "t1", Type: "text", Props: block.Props{"content": "Body"}}},
//	    }},
//	}
//
// # Identity
//
// Block IDs are immutable once assigned and must be unique within a tree.
// They are the only stable handle other blocks may use to reference a block
// (for example, heading anchors). [ValidateTree] reports empty or duplicate
// IDs anywhere in the tree.
//
// # Property Access
//
// Props values usually come from JSON or YAML decoding, so numbers may be
// float64, int, int64 or uint64 depending on the decoder. The accessor
// methods ([Props.String], [Props.Int], [Props.Float], [Props.Bool]) accept
// all of these and fall back to a default when the key is missing or has an
// unexpected type.
//
// # Copy Semantics
//
// Rendering is a pure read. [DeepCopy] and [Merge] never share mutable maps
// or slices between input and output, so two instances created from the
// same defaults never alias each other.
package block
