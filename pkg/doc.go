// Package pkg provides the core libraries for Blockpress block rendering.
//
// # Overview
//
// Blockpress renders documents made of typed content blocks into HTML for
// two contexts: "email", a complete inline-styled document built from
// tables, and "page", a web fragment in which most blocks are placeholders
// that a server-side trusted pass expands later. The pkg directory is
// organized into four areas:
//
//  1. Model - [block] trees and props, the [registry] of block types, the
//     built-in types in [blocks]
//  2. Rendering - [adapter] per context, the [trusted] pass, [placeholder]
//     encoding, [sanitize] and [style] helpers
//  3. Extension - the [hooks] bus of filters and actions
//  4. Infrastructure - [pipeline] orchestration, [cache] backends, [io]
//     serialization, [observability], [outline] diagrams and the HTTP
//     [server]
//
// # Architecture
//
// The data flow of a page render:
//
//	document (JSON/YAML)
//	         ↓
//	    [io] (decode and validate the tree)
//	         ↓
//	    [adapter.Web] (direct markup and placeholders)
//	         ↓
//	    stored fragment
//	         ↓
//	    [trusted] (expand placeholders with the whole document)
//	         ↓
//	    HTML page
//
// An email render stops after the adapter: [adapter.Email] produces the
// final document directly.
//
// # Quick Start
//
//	reg := registry.New(hooks.New(logger), logger)
//	if err := blocks.RegisterAll(reg); err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(reg, cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Context:  registry.ContextPage,
//	    Tree:     tree,
//	    Finalize: true,
//	})
//
// # Heading Anchors
//
// A heading's anchor id and a table of contents link to it are computed
// independently from the same inputs, the heading's text and block id,
// through [sanitize.AnchorID]. Renaming a heading changes both; two
// headings with the same text never collide.
//
// # Testing
//
//	go test ./pkg/...                # All tests
//	go test ./pkg/trusted/...        # Specific package
//	go test -run Example ./pkg/...   # Examples only
package pkg
