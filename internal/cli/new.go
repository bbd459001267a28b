package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/block"
	bpio "github.com/matzehuels/blockpress/pkg/io"
)

// newCommand creates the new command, which creates block instances.
func (c *CLI) newCommand() *cobra.Command {
	var (
		props    string
		appendTo string
	)

	cmd := &cobra.Command{
		Use:   "new <type>",
		Short: "Create a block instance with the type's defaults",
		Long: `Create a block of the given type with a fresh id. Its props are the
type's defaults overlaid with --props.

The block is printed as JSON, or appended to the document named by
--append (created if missing).`,
		Example: `  blockpress new heading --props '{"text":"Welcome","level":"h1"}'
  blockpress new button --append newsletter.json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeBlockTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseProps(props)
			if err != nil {
				return err
			}
			reg, err := c.newRegistry()
			if err != nil {
				return err
			}
			b, err := reg.CreateInstance(args[0], overrides)
			if err != nil {
				return err
			}
			if !reg.Validate(b.Type, b.Props) {
				printWarning("%s props do not pass validation yet", b.Type)
			}
			if appendTo == "" {
				out, err := marshalJSON(b)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(out)
				return err
			}
			return appendBlock(appendTo, b)
		},
	}

	cmd.Flags().StringVarP(&props, "props", "p", "", "prop overrides as a JSON object")
	cmd.Flags().StringVarP(&appendTo, "append", "a", "", "append the block to this document")

	return cmd
}

// appendBlock adds b to the end of the document at path.
func appendBlock(path string, b block.Block) error {
	var tree block.Tree
	if _, err := os.Stat(path); err == nil {
		if tree, err = bpio.ImportDocument(path); err != nil {
			return err
		}
	}
	tree = append(tree, b)
	if err := block.ValidateTree(tree); err != nil {
		return err
	}
	if err := bpio.ExportDocument(tree, path); err != nil {
		return err
	}
	printSuccess("Added %s %s", b.Type, StyleDim.Render(b.ID))
	printFile(path)
	return nil
}
