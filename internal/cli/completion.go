package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
)

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell.

Besides commands and flags, completions cover render contexts, the
registered block types for "new", and the block ids of a document for
"inspect --block".

  $ source <(blockpress completion bash)
  $ blockpress completion zsh > "${fpath[1]}/_blockpress"
  $ blockpress completion fish > ~/.config/fish/completions/blockpress.fish
  PS> blockpress completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Annotations:           map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return root.GenBashCompletionV2(os.Stdout, true)
		},
	}
}

func completeContexts(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{
		registry.ContextEmail + "\temail-safe table layout",
		registry.ContextPage + "\tweb page, optionally finalized",
	}, cobra.ShellCompDirectiveNoFileComp
}

// completeBlockTypes offers the registered block types with their labels.
func (c *CLI) completeBlockTypes(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	reg, err := c.newRegistry()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, d := range reg.All() {
		out = append(out, fmt.Sprintf("%s\t%s", d.Type, d.Label))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeBlockIDs offers the ids of every block in the document named by
// the first argument, described by their type.
func completeBlockIDs(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 || args[0] == stdinPath {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	tree, err := readDocument(args[0], "json")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, b := range block.Flatten(tree) {
		if b.ID != "" {
			out = append(out, b.ID+"\t"+b.Type)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
