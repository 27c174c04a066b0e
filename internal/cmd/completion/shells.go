package completion

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// shell describes one supported completion target. Install lines use
// "mdt" as the binary name.
type shell struct {
	name    string
	title   string
	session string
	install []string
	gen     func(root *cobra.Command, w io.Writer) error
}

var shells = []shell{
	{
		name:    "bash",
		title:   "bash",
		session: "source <(mdt completion bash)",
		install: []string{
			"# Linux",
			"mdt completion bash > /etc/bash_completion.d/mdt",
			"",
			"# macOS (requires bash-completion)",
			"mdt completion bash > $(brew --prefix)/etc/bash_completion.d/mdt",
		},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletion(w)
		},
	},
	{
		name:    "zsh",
		title:   "zsh",
		session: "source <(mdt completion zsh)",
		install: []string{
			"# If completion is not enabled yet",
			`echo "autoload -U compinit; compinit" >> ~/.zshrc`,
			"",
			`mdt completion zsh > "${fpath[1]}/_mdt"`,
		},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
	},
	{
		name:    "fish",
		title:   "fish",
		session: "mdt completion fish | source",
		install: []string{
			"mdt completion fish > ~/.config/fish/completions/mdt.fish",
		},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
	{
		name:    "powershell",
		title:   "PowerShell",
		session: "mdt completion powershell | Out-String | Invoke-Expression",
		install: []string{
			"mdt completion powershell >> $PROFILE",
		},
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	},
}

func indent(lines []string) string {
	var sb strings.Builder
	for i, l := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		if l != "" {
			sb.WriteString("  " + l)
		}
	}
	return sb.String()
}

// newCmdShell creates the completion subcommand for s.
func newCmdShell(s shell) *cobra.Command {
	return &cobra.Command{
		Use:   s.name,
		Short: "Generate " + s.title + " completion script",
		Long: "Generate " + s.title + " completion script for mdt.\n\n" +
			"To load completions in your current shell session:\n\n" +
			indent([]string{s.session}) + "\n\n" +
			"To load completions for every new session:\n\n" +
			indent(s.install),
		Example:               "  # Load in current session\n" + indent([]string{s.session}),
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}
