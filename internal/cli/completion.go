package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// catalogExtensions are the file types offered when completing a catalog
// argument.
var catalogExtensions = []string{"toml", "json"}

// completeCatalog completes the first positional argument with catalog files.
func completeCatalog(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return catalogExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for mosaic.

Bash:
  $ source <(mosaic completion bash)

Zsh:
  $ mosaic completion zsh > "${fpath[1]}/_mosaic"

Fish:
  $ mosaic completion fish > ~/.config/fish/completions/mosaic.fish

PowerShell:
  PS> mosaic completion powershell | Out-String | Invoke-Expression

Catalog arguments complete to .toml and .json files.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}
