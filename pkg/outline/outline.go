// Package outline draws the structure of a block document as a Graphviz
// diagram.
//
// Every block becomes a box under a root "document" node, with containers
// pointing at their children in order. Blocks that will not render in the
// chosen context are drawn dashed and grey; blocks of unknown types are
// drawn dashed and red.
//
//	dot := outline.ToDOT(tree, reg, outline.Options{Context: "email"})
//	svg, err := outline.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Rendering uses [github.com/goccy/go-graphviz] in process.
package outline

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
)

// RootID is the DOT node id of the document root.
const RootID = "document"

// maxValueLen truncates prop values in detailed labels.
const maxValueLen = 32

// Options configures diagram generation.
type Options struct {
	// Context marks blocks that do not render there. Empty means no
	// context check.
	Context string
	// Detailed adds each block's scalar props to its label.
	Detailed bool
}

// ToDOT converts tree to Graphviz DOT source.
func ToDOT(tree block.Tree, reg *registry.Registry, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %q [label=%q, shape=folder, fillcolor=\"#f0f0f0\"];\n", RootID, rootLabel(opts.Context))

	var edges []string
	parents := []string{RootID}
	_ = block.Walk(tree, func(b block.Block, depth int) error {
		parents = append(parents[:depth+1], nodeID(b))
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(b), strings.Join(attrs(b, reg, opts), ", "))
		edges = append(edges, fmt.Sprintf("  %q -> %q;\n", parents[depth], nodeID(b)))
		return nil
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func rootLabel(ctx string) string {
	if ctx == "" {
		return RootID
	}
	return RootID + " (" + ctx + ")"
}

// nodeID prefixes block ids so they never collide with the root.
func nodeID(b block.Block) string {
	return "block:" + b.ID
}

func attrs(b block.Block, reg *registry.Registry, opts Options) []string {
	def, known := reg.Get(b.Type)
	name := b.Type
	if known && def.Label != "" {
		name = def.Label
	}
	out := []string{fmt.Sprintf("label=%q", label(name, b, opts.Detailed))}

	switch {
	case !known:
		out = append(out, `style="rounded,filled,dashed"`, `fillcolor="#fde2e2"`, `color="#c0392b"`, `tooltip="unknown block type"`)
	case opts.Context != "" && !def.AllowsContext(opts.Context):
		out = append(out, `style="rounded,filled,dashed"`, "fillcolor=lightgrey", "fontcolor=\"#555555\"",
			fmt.Sprintf("tooltip=%q", "not rendered in "+opts.Context))
	case def.Supports.Nesting:
		out = append(out, `fillcolor="#e8f0fe"`)
	}
	return out
}

func label(name string, b block.Block, detailed bool) string {
	head := name + "\n" + b.ID
	if !detailed {
		return head
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(b.Props)) {
		if k == block.ChildrenKey {
			continue
		}
		switch v := b.Props[k].(type) {
		case string:
			parts = append(parts, k+": "+truncate(sanitize.StripTags(v)))
		case bool, float64, int, int64, uint64:
			parts = append(parts, fmt.Sprintf("%s: %v", k, v))
		}
	}
	if len(parts) == 0 {
		return head
	}
	return head + "\n" + strings.Join(parts, "\n")
}

func truncate(s string) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= maxValueLen {
		return string(r)
	}
	return string(r[:maxValueLen-1]) + "…"
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg tag with one sized
// in pixels from the view box, so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
