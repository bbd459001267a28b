// Package io reads and writes block documents and render settings.
//
// # Documents
//
// A document is a block tree stored as JSON or YAML, either wrapped in an
// object or as a bare array:
//
//	{
//	  "blocks": [
//	    {"id": "h1", "type": "heading", "props": {"text": "Hello", "level": "h1"}},
//	    {"id": "s1", "type": "section", "props": {"children": [
//	      {"id": "c1", "type": "column", "props": {"children": []}}
//	    ]}}
//	  ]
//	}
//
// Older documents that store props under "attributes" are accepted. Nested
// blocks live in the "children" prop of their container.
//
// Use [ImportDocument] to read a file, or [ReadDocument] to read from any
// io.Reader. Both validate the tree: every block needs a type and a unique
// id. [WriteJSON] and [WriteYAML] write the wrapped form back out.
//
// # Settings
//
// Settings are a flat or nested key/value map merged over an adapter's
// defaults. [ImportSettings] reads them from JSON, YAML or TOML files,
// picking the format from the file extension:
//
//	# email.toml
//	contentWidth = 640
//	backgroundColor = "#f4f4f4"
//	fontFamily = "Georgia, serif"
package io
