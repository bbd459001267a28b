package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/adapter"
	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/blocks"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/outline"
	"github.com/matzehuels/blockpress/pkg/pipeline"
	"github.com/matzehuels/blockpress/pkg/registry"
	"github.com/matzehuels/blockpress/pkg/sanitize"
)

const (
	inspectSummary = "summary"
	inspectDOT     = "dot"
	inspectSVG     = "svg"
)

// inspectCommand creates the inspect command for examining documents
// without rendering them.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		context  string
		format   string
		output   string
		blockID  string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [document]",
		Short: "Summarize a document or draw its block outline",
		Long: `Inspect a block document.

The summary lists block counts by type, structural problems, the blocks
a context will not render and why, and the heading anchors a table of
contents links to. With --block it describes a single block instead.
With --format dot or svg the block tree is drawn with Graphviz; blocks
that do not render in --context are dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if context == "" {
				context = c.Config.Render.Context
			}
			if blockID != "" {
				return c.runInspectBlock(args[0], context, blockID)
			}
			return c.runInspect(cmd.Context(), args[0], context, format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&context, "context", "c", "", "render context to check against (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", inspectSummary, "output: summary, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for dot or svg (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include scalar props in outline labels")
	cmd.Flags().StringVarP(&blockID, "block", "b", "", "describe the block with this id")
	_ = cmd.RegisterFlagCompletionFunc("context", completeContexts)
	_ = cmd.RegisterFlagCompletionFunc("block", completeBlockIDs)
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{inspectSummary, inspectDOT, inspectSVG}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, renderCtx, format, output string, detailed bool) error {
	tree, err := readDocument(input, "json")
	if err != nil {
		return err
	}
	reg, err := c.newRegistry()
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case inspectSummary:
		a, err := adapter.Defaults(reg).Get(renderCtx)
		if err != nil {
			return err
		}
		printSummary(reg, a, tree)
		return nil
	case inspectDOT:
		out = []byte(outline.ToDOT(tree, reg, outline.Options{Context: renderCtx, Detailed: detailed}))
	case inspectSVG:
		sp := startSpinner(ctx, c.errOut, stageOutline, documentName(input))
		dot := outline.ToDOT(tree, reg, outline.Options{Context: renderCtx, Detailed: detailed})
		out, err = outline.RenderSVG(ctx, dot)
		if err != nil {
			sp.fail()
			return fmt.Errorf("draw outline: %w", err)
		}
		sp.stop()
	default:
		return fmt.Errorf("unknown format %q (want summary, dot or svg)", format)
	}

	if output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Outline written")
	printFile(output)
	return nil
}

// runInspectBlock prints one block with its resolved props and whether it
// renders in renderCtx.
func (c *CLI) runInspectBlock(input, renderCtx, id string) error {
	tree, err := readDocument(input, "json")
	if err != nil {
		return err
	}
	b, ok := block.Find(tree, id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no block with id %q", id)
	}
	reg, err := c.newRegistry()
	if err != nil {
		return err
	}
	a, err := adapter.Defaults(reg).Get(renderCtx)
	if err != nil {
		return err
	}

	printTitle("Block " + b.ID)
	printKeyValue("type", b.Type)
	printKeyValue("context", renderCtx)
	status := StyleSuccess.Render("renders")
	for _, s := range pipeline.Skipped(reg, a, block.Tree{b}) {
		if s.Block.ID == b.ID {
			status = StyleWarning.Render("skipped (" + skipReason(s.Reason) + ")")
		}
	}
	printKeyValue("status", status)
	if b.Type == "heading" {
		props := reg.ResolveProps(b.Type, b.Props)
		printKeyValue("anchor", StyleLink.Render("#"+sanitize.AnchorID(props.String("text", ""), b.ID)))
	}

	props := reg.ResolveProps(b.Type, b.Props)
	delete(props, block.ChildrenKey)
	data, err := marshalJSON(props)
	if err != nil {
		return err
	}
	printNewline()
	printTitle("Props")
	fmt.Fprint(stdout, string(data))
	if kids := block.Children(b.Props); len(kids) > 0 {
		printDetail("%d nested blocks", len(block.Flatten(kids)))
	}
	return nil
}

func skipReason(reason string) string {
	if reason == pipeline.SkipUnknown {
		return "unknown block type"
	}
	return "type not allowed in this context"
}

// printSummary prints block counts, problems, skipped blocks and heading
// anchors.
func printSummary(reg *registry.Registry, a adapter.Adapter, tree block.Tree) {
	renderCtx := a.Context()
	all := block.Flatten(tree)
	counts := make(map[string]int)
	for _, b := range all {
		counts[b.Type]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	printTitle("Document")
	printKeyValue("blocks", strconv.Itoa(len(all)))
	printKeyValue("top level", strconv.Itoa(len(tree)))
	printKeyValue("context", renderCtx)
	if reg.IsVolatile(tree, renderCtx) {
		printKeyValue("caching", StyleWarning.Render("bypassed (time-dependent blocks)"))
	}
	printNewline()

	printTitle("Types")
	for _, t := range types {
		printKeyValue(t, StyleNumber.Render(strconv.Itoa(counts[t])))
	}

	if problems := block.Problems(tree); len(problems) > 0 {
		printNewline()
		printTitle("Problems")
		for _, p := range problems {
			printWarning("%s", errors.UserMessage(p))
		}
	}

	if skipped := pipeline.Skipped(reg, a, tree); len(skipped) > 0 {
		printNewline()
		printTitle("Not rendered in " + renderCtx)
		for _, s := range skipped {
			printWarning("%s %s: %s", s.Block.Type, StyleDim.Render(s.Block.ID), skipReason(s.Reason))
		}
	}

	entries := blocks.TOCEntries(block.Props{"minLevel": 1, "maxLevel": 6}, tree, reg.ResolveProps)
	if len(entries) > 0 {
		printNewline()
		printTitle("Anchors")
		for _, e := range entries {
			indent := strings.Repeat("  ", e.Level-1)
			printDetail("%s%s %s", indent, e.Text, StyleLink.Render("#"+e.Anchor))
		}
	}
}
