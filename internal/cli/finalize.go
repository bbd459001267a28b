package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/block"
	bpio "github.com/matzehuels/blockpress/pkg/io"
	"github.com/matzehuels/blockpress/pkg/registry"
)

// finalizeCommand creates the finalize command for running the trusted
// pass over page fragments rendered earlier.
func (c *CLI) finalizeCommand() *cobra.Command {
	var (
		docPath string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "finalize [fragment.html]",
		Short: "Expand the block placeholders of a stored page fragment",
		Long: `Run the trusted pass over a page fragment produced by
"blockpress render --context page".

Blocks that need the whole document, such as a table of contents, read it
from --document; without it they fall back to what their placeholder
carries. Use "-" to read the fragment from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFinalize(cmd.Context(), args[0], docPath, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&docPath, "document", "d", "", "source document of the fragment")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runFinalize(ctx context.Context, input, docPath, output string, noCache bool) error {
	fragment, err := readFragment(input)
	if err != nil {
		return err
	}
	var doc block.Tree
	if docPath != "" {
		if doc, err = bpio.ImportDocument(docPath); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	timer := startStage(documentLogger(c.Logger, input, registry.ContextPage))
	sp := startSpinner(ctx, c.errOut, stageFinalize, documentName(input))
	html, hit, err := runner.Finalize(ctx, fragment, doc)
	if err != nil {
		sp.fail()
		return fmt.Errorf("finalize: %w", err)
	}
	sp.stop()
	timer.done("finalize finished", "bytes", len(html), "cached", hit)

	if output == "" {
		_, err = io.WriteString(os.Stdout, html)
		return err
	}
	if err := os.WriteFile(output, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printSuccess("Finalized fragment")
	printFile(output)
	return nil
}

func readFragment(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == stdinPath {
		data, err = io.ReadAll(io.LimitReader(os.Stdin, bpio.MaxInputSize+1))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read fragment: %w", err)
	}
	if int64(len(data)) > bpio.MaxInputSize {
		return "", fmt.Errorf("fragment exceeds %d bytes", bpio.MaxInputSize)
	}
	return string(data), nil
}
