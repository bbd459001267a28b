package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/block"
	bpio "github.com/matzehuels/blockpress/pkg/io"
	"github.com/matzehuels/blockpress/pkg/pipeline"
)

// stdinPath names standard input as a command argument.
const stdinPath = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	context      string
	settingsPath string
	inputFormat  string
	output       string
	finalize     bool
	standalone   bool
	refresh      bool
	noCache      bool
	jsonOut      bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [document]",
		Short: "Render a block document to HTML",
		Long: `Render a block document (JSON or YAML) for one context.

The email context produces a complete, inline-styled HTML document. The
page context produces a fragment in which most blocks are placeholders;
pass --finalize to expand them with the trusted pass and --standalone to
wrap the result in a complete HTML page.

Use "-" to read the document from standard input.`,
		Example: `  blockpress render newsletter.json -o newsletter.html
  blockpress render landing.yaml --context page --finalize --standalone
  cat doc.json | blockpress render - --context page`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.context == "" {
				opts.context = c.Config.Render.Context
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.context, "context", "c", "", "render context: email, page (default from config)")
	cmd.Flags().StringVarP(&opts.settingsPath, "settings", "s", "", "settings file (JSON, YAML or TOML)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "json", "document format when reading stdin: json, yaml")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.finalize, "finalize", false, "run the trusted pass (page only)")
	cmd.Flags().BoolVar(&opts.standalone, "standalone", false, "wrap in a complete HTML page (page only)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result with stats as JSON")
	_ = cmd.RegisterFlagCompletionFunc("context", completeContexts)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	tree, err := readDocument(input, opts.inputFormat)
	if err != nil {
		return err
	}
	settings := block.Settings{}
	if opts.settingsPath != "" {
		if settings, err = bpio.ImportSettings(opts.settingsPath); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := documentLogger(c.Logger, input, opts.context)
	st := stageRender
	if opts.finalize {
		st = stageFinalize
	}
	timer := startStage(logger)
	sp := startSpinner(ctx, c.errOut, st, documentName(input))
	res, err := runner.Execute(ctx, pipeline.Options{
		Context:    opts.context,
		Tree:       tree,
		Settings:   settings,
		Finalize:   opts.finalize,
		Standalone: opts.standalone,
		Refresh:    opts.refresh,
		Logger:     logger,
	})
	if err != nil {
		if sp.interrupted() {
			sp.stop()
			return fmt.Errorf("render interrupted: %w", err)
		}
		sp.fail()
		return fmt.Errorf("render: %w", err)
	}
	sp.stop()
	timer.done("render finished", "blocks", res.Stats.Blocks, "skipped", res.Stats.Skipped, "cached", res.CacheHit)

	out := []byte(res.HTML)
	if opts.jsonOut {
		if out, err = marshalJSON(res); err != nil {
			return err
		}
	}

	if opts.output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printRenderResult(*res, input, opts.output)
	return nil
}

// readDocument loads a document from a file, or from stdin when path is
// "-". Files are decoded by extension.
func readDocument(path, format string) (block.Tree, error) {
	if path != stdinPath {
		return bpio.ImportDocument(path)
	}
	f, err := bpio.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return bpio.ReadDocument(os.Stdin, f)
}

// marshalJSON encodes v indented, without escaping markup.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseProps decodes a --props flag value. Empty input yields nil.
func parseProps(s string) (block.Props, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var p block.Props
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("invalid --props JSON: %w", err)
	}
	return p, nil
}
