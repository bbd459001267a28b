package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/registry"
)

// blocksCommand creates the blocks command, which lists the registered
// block types.
func (c *CLI) blocksCommand() *cobra.Command {
	var (
		context     string
		jsonOut     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List the available block types",
		Long: `List the registered block types.

With --context only the types offered in that context are listed, after
the block list filters have run. With --interactive a picker opens and the
chosen type is printed as a new block instance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.newRegistry()
			if err != nil {
				return err
			}
			defs := reg.All()
			if context != "" {
				defs = reg.ForContext(context)
			}

			switch {
			case interactive:
				return c.pickBlock(reg, defs)
			case jsonOut:
				out, err := marshalJSON(registry.Infos(defs))
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(out)
				return err
			}
			fmt.Println(blockTable(defs))
			printDetail("%d block types in %d categories", len(defs), len(categories(defs)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&context, "context", "c", "", "only types offered in this context")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print block type descriptions as JSON")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a block type interactively")
	_ = cmd.RegisterFlagCompletionFunc("context", completeContexts)

	return cmd
}

// pickBlock runs the picker and prints an instance of the chosen type.
func (c *CLI) pickBlock(reg *registry.Registry, defs []*registry.Definition) error {
	if len(defs) == 0 {
		printWarning("No block types to pick from")
		return nil
	}
	final, err := tea.NewProgram(NewBlockPickerModel(defs)).Run()
	if err != nil {
		return fmt.Errorf("block picker: %w", err)
	}
	m, ok := final.(BlockPickerModel)
	if !ok || m.Selected == nil {
		return nil
	}
	b, err := reg.CreateInstance(m.Selected.Type, nil)
	if err != nil {
		return err
	}
	out, err := marshalJSON(b)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// blockTable renders defs as a table grouped by category.
func blockTable(defs []*registry.Definition) string {
	sorted := append([]*registry.Definition(nil), defs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Category < sorted[j].Category })

	rows := make([][]string, 0, len(sorted))
	for _, d := range sorted {
		rows = append(rows, []string{d.Type, d.Label, d.Category, strings.Join(d.ContextNames(), ", "), blockFlags(d)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Label", "Category", "Contexts", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col >= 3:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// blockFlags summarizes how a type renders.
func blockFlags(d *registry.Definition) string {
	var flags []string
	if d.Trusted != nil {
		flags = append(flags, "deferred")
	}
	if d.Volatile {
		flags = append(flags, "volatile")
	}
	if d.Supports.Nesting {
		flags = append(flags, "nesting")
	}
	return strings.Join(flags, " ")
}

func categories(defs []*registry.Definition) map[string]bool {
	out := make(map[string]bool)
	for _, d := range defs {
		out[d.Category] = true
	}
	return out
}
