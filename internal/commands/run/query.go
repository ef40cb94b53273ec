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

package run

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/completion"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
	"github.com/davidwuwu001/coze-workflow-api/internal/jq"
)

// NewQueryCommand creates the query command
func NewQueryCommand() *cobra.Command {
	var (
		workflowID string
		query      string
		raw        bool
		markdown   bool
	)

	cmd := &cobra.Command{
		Use:   "query [execute-id]",
		Short: "Query an async workflow execution",
		Annotations: map[string]string{
			"group": "execution",
		},
		Long: `Query fetches the status of an execution submitted with --mode async.

Without arguments the most recent async submission is queried. A running
execution stays pending and can be queried again; a finished one is
recorded in the local history.`,
		Example: `  # Query the last async submission
  cozeflow query

  # Query a specific execution
  cozeflow query 7350000000000000042 --workflow 7340000000000000001`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.CompleteExecuteIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if query != "" {
				if _, err := jq.Compile(query); err != nil {
					return shared.NewInvalidInputError("invalid --query", err)
				}
			}

			executeID := ""
			if len(args) > 0 {
				executeID = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			progress, finish := progressReporter(cmd, fmt.Sprintf("Querying execution %s", executeID))
			out, err := rt.Engine(progress).Query(ctx, engine.QueryRequest{
				WorkflowID: workflowID,
				ExecuteID:  executeID,
			})
			finish()
			if err != nil {
				return err
			}

			return present(ctx, cmd.OutOrStdout(), out, displayOptions{
				command:  "query",
				query:    query,
				raw:      raw,
				markdown: markdown,
				verbose:  shared.GetVerbose(),
			})
		},
	}

	cmd.Flags().StringVarP(&workflowID, "workflow", "w", "", "Workflow id of the execution (default: from the last submission)")
	cmd.Flags().StringVar(&query, "query", "", "jq expression applied to a JSON result")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the result without formatting")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render plain-text results as markdown on a terminal")

	_ = cmd.RegisterFlagCompletionFunc("workflow", completion.CompleteWorkflowIDs)

	return cmd
}
