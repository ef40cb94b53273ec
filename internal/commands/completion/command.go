// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package completion

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the completion command for generating shell completion scripts.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "completion [bash|zsh|fish|powershell]",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for cozeflow.

To load completions:

Bash:
  # To load completions for the current session:
  $ source <(cozeflow completion bash)

  # To load completions for each session (Linux, user-local):
  $ mkdir -p ~/.local/share/bash-completion/completions
  $ cozeflow completion bash > ~/.local/share/bash-completion/completions/cozeflow
  # macOS (with Homebrew):
  $ cozeflow completion bash > $(brew --prefix)/etc/bash_completion.d/cozeflow

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ cozeflow completion zsh > "${fpath[1]}/_cozeflow"

Fish:
  $ cozeflow completion fish | source

  # To load completions for each session, execute once:
  $ cozeflow completion fish > ~/.config/fish/completions/cozeflow.fish

PowerShell:
  cozeflow completion powershell | Out-String | Invoke-Expression

Workflow ids, execution ids and history ids complete from the values
cozeflow remembers locally.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE:                  runCompletion,
	}

	return cmd
}

func runCompletion(cmd *cobra.Command, args []string) error {
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
	return nil
}
