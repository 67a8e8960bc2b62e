package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for skelgraph.

To load completions:

Bash:
  $ source <(skelgraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ skelgraph completion bash > /etc/bash_completion.d/skelgraph
  # macOS:
  $ skelgraph completion bash > $(brew --prefix)/etc/bash_completion.d/skelgraph

Zsh:
  $ skelgraph completion zsh > "${fpath[1]}/_skelgraph"

Fish:
  $ skelgraph completion fish > ~/.config/fish/completions/skelgraph.fish

PowerShell:
  PS> skelgraph completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(c.out)
			case "zsh":
				return cmd.Root().GenZshCompletion(c.out)
			case "fish":
				return cmd.Root().GenFishCompletion(c.out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(c.out)
			}
			return nil
		},
	}

	return cmd
}
