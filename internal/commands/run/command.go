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

// Package run implements the run and query commands.
package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli/prompt"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/completion"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
	"github.com/davidwuwu001/coze-workflow-api/internal/jq"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

func readAllStdin() ([]byte, error) {
	return io.ReadAll(stdin)
}

// Prompting seams, replaced in tests.
var (
	canPrompt   = shared.CanPrompt
	newPrompter = func() prompt.Prompter {
		return prompt.NewSurveyPrompter(canPrompt())
	}
)

type runOptions struct {
	params      []string
	paramsFile  string
	mode        string
	fromHistory string
	interactive bool
	query       string
	raw         bool
	markdown    bool
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [workflow-id]",
		Short: "Execute a workflow",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Run executes a Coze workflow with the given parameters.

Execution Modes:
  stream (default)  Consume the run as a live event stream and print the result
  async             Submit the run and print its execute id; fetch the result
                    later with 'cozeflow query'

Parameters:
  -p name=value            STRING parameter
  -p name:type=value       Typed parameter (string, number, boolean, object, array)
  --params-file f.yaml     YAML mapping of name to value, or a list of {name, value, type}
  --from-history <id>      Start from the parameters of a history record

The workflow id defaults to the last one used. Every finished run is
recorded in the local history.`,
		Example: `  # Stream a run
  cozeflow run 7340000000000000001 -p query="weather in Paris"

  # Typed parameters
  cozeflow run 7340000000000000001 -p limit:number=5 -p tags:array='["a","b"]'

  # Submit asynchronously, then query
  cozeflow run 7340000000000000001 -p query=hi --mode async
  cozeflow query

  # Extract a field from a JSON result
  cozeflow run 7340000000000000001 -p query=hi --query '.output'`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.CompleteWorkflowIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflowID := ""
			if len(args) > 0 {
				workflowID = args[0]
			}
			return runWorkflow(cmd, workflowID, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Workflow parameter as name[:type]=value (repeatable)")
	cmd.Flags().StringVar(&opts.paramsFile, "params-file", "", "YAML file with parameters (use '-' for stdin)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "", "Execution mode: stream or async (default from config)")
	cmd.Flags().StringVar(&opts.fromHistory, "from-history", "", "Reuse the parameters of a history record")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for the workflow id and parameters")
	cmd.Flags().StringVar(&opts.query, "query", "", "jq expression applied to a JSON result")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the result without formatting")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Render plain-text results as markdown on a terminal")

	_ = cmd.RegisterFlagCompletionFunc("param", completion.CompleteParam)
	_ = cmd.RegisterFlagCompletionFunc("mode", completion.CompleteModes)
	_ = cmd.RegisterFlagCompletionFunc("from-history", completion.CompleteHistoryIDs)

	return cmd
}

func runWorkflow(cmd *cobra.Command, workflowID string, opts runOptions) error {
	if opts.query != "" {
		if _, err := jq.Compile(opts.query); err != nil {
			return shared.NewInvalidInputError("invalid --query", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rt, err := shared.NewRuntime(ctx)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	list, err := gatherParameters(ctx, rt.History, opts.fromHistory, opts.paramsFile, opts.params)
	if err != nil {
		return err
	}

	if strings.TrimSpace(workflowID) == "" && !opts.interactive {
		workflowID = rt.Settings.Get(engine.KeyLastWorkflowID)
	}

	if opts.interactive {
		if !canPrompt() {
			return shared.NewInvalidInputError("--interactive needs a terminal", prompt.ErrNonInteractive)
		}
		collector := prompt.NewCollector(newPrompter(), cmd.ErrOrStderr())
		def := workflowID
		if def == "" {
			def = rt.Settings.Get(engine.KeyLastWorkflowID)
		}
		if workflowID, err = collector.WorkflowID(ctx, def); err != nil {
			return err
		}
		if err := collector.Parameters(ctx, list); err != nil {
			return err
		}
	}

	mode := opts.mode
	if mode == "" {
		mode = rt.Config.Defaults.Mode
	}

	progress, finish := progressReporter(cmd, fmt.Sprintf("Running workflow %s", workflowID))
	eng := rt.Engine(progress)
	out, err := eng.Execute(ctx, engine.Request{
		WorkflowID: workflowID,
		Parameters: list.Items(),
		Mode:       engine.Mode(mode),
	})
	finish()
	if err != nil {
		return err
	}

	return present(ctx, cmd.OutOrStdout(), out, displayOptions{
		command:  "run",
		query:    opts.query,
		raw:      opts.raw,
		markdown: opts.markdown,
		verbose:  shared.GetVerbose(),
	})
}

// progressReporter streams progress lines to stderr with --verbose and
// shows a spinner otherwise. finish stops the spinner.
func progressReporter(cmd *cobra.Command, message string) (engine.ProgressFunc, func()) {
	if shared.GetVerbose() && !shared.GetJSON() {
		w := cmd.ErrOrStderr()
		return func(line string) {
			fmt.Fprintln(w, shared.Muted.Render(line))
		}, func() {}
	}

	spinner := shared.NewSpinner()
	spinner.Start(message)
	return nil, func() { spinner.Stop() }
}

func closeRuntime(rt *shared.Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		rt.Logger.Warn("shutdown failed", cozelog.Error(err))
	}
}
