// Package completion provides shell completion generation commands.
package completion

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/mdtree/internal/view"
)

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mdt.

These scripts enable tab-completion for commands, flags, and arguments.
See each sub-command's help for installation instructions.`,
	}

	for _, s := range shells {
		cmd.AddCommand(newCmdShell(s))
	}

	return cmd
}

// RegisterOutputCompletion completes --output values on root. Document
// formats are offered for render and listing formats for everything else.
func RegisterOutputCompletion(root *cobra.Command) error {
	return root.RegisterFlagCompletionFunc("output", OutputFormats)
}

// OutputFormats returns the --output values valid for cmd.
func OutputFormats(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	if cmd.Name() == "render" {
		return view.ValidDocumentFormats(), cobra.ShellCompDirectiveNoFileComp
	}
	return view.ValidFormats(), cobra.ShellCompDirectiveNoFileComp
}
