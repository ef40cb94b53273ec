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

package main

import (
	"github.com/davidwuwu001/coze-workflow-api/internal/cli"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/completion"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/config"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/diagnostics"
	historycmd "github.com/davidwuwu001/coze-workflow-api/internal/commands/history"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/run"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/token"
	versioncmd "github.com/davidwuwu001/coze-workflow-api/internal/commands/version"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/workflows"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Execution
	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(run.NewQueryCommand())

	// Discovery and history
	rootCmd.AddCommand(workflows.NewCommand())
	rootCmd.AddCommand(historycmd.NewCommand())

	// Configuration
	rootCmd.AddCommand(token.NewCommand())
	rootCmd.AddCommand(config.NewConfigCommand())
	rootCmd.AddCommand(completion.NewCommand())

	// Diagnostics
	rootCmd.AddCommand(diagnostics.NewDoctorCommand())

	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
