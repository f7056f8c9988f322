package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/render/styles"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for squaremap.

Bash:
  $ source <(squaremap completion bash)

Zsh:
  $ squaremap completion zsh > "${fpath[1]}/_squaremap"

Fish:
  $ squaremap completion fish > ~/.config/fish/completions/squaremap.fish

PowerShell:
  PS> squaremap completion powershell | Out-String | Invoke-Expression

Palette, style, format and type flags complete to their valid values.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// flagValues maps flag names to their fixed set of valid values.
func flagValues() map[string][]string {
	return map[string][]string{
		"palette": treemap.PaletteNames(),
		"style":   styles.Names(),
		"format":  {pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON},
		"type":    {pipeline.VizTypeTreemap, pipeline.VizTypeNodelink},
	}
}

// registerCompletions attaches value completion to every flag of cmd that
// has a fixed set of values.
func registerCompletions(cmd *cobra.Command) {
	for name, values := range flagValues() {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp))
	}
}
