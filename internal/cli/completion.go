package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

// completionGen writes a completion script for one shell
type completionGen func(root *cobra.Command, w io.Writer, withDesc bool) error

var completionGens = map[string]completionGen{
	"bash": func(root *cobra.Command, w io.Writer, withDesc bool) error {
		return root.GenBashCompletionV2(w, withDesc)
	},
	"zsh": func(root *cobra.Command, w io.Writer, withDesc bool) error {
		if withDesc {
			return root.GenZshCompletion(w)
		}
		return root.GenZshCompletionNoDesc(w)
	},
	"fish": func(root *cobra.Command, w io.Writer, withDesc bool) error {
		return root.GenFishCompletion(w, withDesc)
	},
	"powershell": func(root *cobra.Command, w io.Writer, withDesc bool) error {
		if withDesc {
			return root.GenPowerShellCompletionWithDesc(w)
		}
		return root.GenPowerShellCompletion(w)
	},
}

func completionShells() []string {
	shells := make([]string, 0, len(completionGens))
	for shell := range completionGens {
		shells = append(shells, shell)
	}
	sort.Strings(shells)
	return shells
}

// newCompletionCmd creates the completion command for generating shell completions
func newCompletionCmd() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use:   "completion [bash|fish|powershell|zsh]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for batchrun and write it to stdout.

Bash:
  $ source <(batchrun completion bash)
  $ batchrun completion bash > /etc/bash_completion.d/batchrun

Zsh (requires compinit):
  $ batchrun completion zsh > "${fpath[1]}/_batchrun"

Fish:
  $ batchrun completion fish > ~/.config/fish/completions/batchrun.fish

PowerShell:
  PS> batchrun completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells(),
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// scripts go to stdout untouched by logging setup
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, ok := completionGens[args[0]]
			if !ok {
				return fmt.Errorf("unsupported shell type %q", args[0])
			}
			return gen(cmd.Root(), cmd.OutOrStdout(), !noDesc)
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit command descriptions from completions")

	return cmd
}
