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

// Package workflows implements the workflows command group.
package workflows

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli/format"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/completion"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	"github.com/davidwuwu001/coze-workflow-api/internal/directory"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/output"
)

// ListResponse is the JSON output of workflows list.
type ListResponse struct {
	output.JSONResponse
	*directory.Page
	Match string `json:"match,omitempty"`
}

// NewCommand creates the workflows command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "workflows",
		Annotations: map[string]string{
			"group": "discovery",
		},
		Short: "Browse the workflows of a workspace",
		Long: `Commands for discovering workflow ids.

Use 'cozeflow run <workflow-id>' to execute one.`,
	}

	cmd.AddCommand(newListCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	var (
		workspace string
		page      int
		pageSize  int
		status    string
		match     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the workflows of a workspace",
		Long: `List one page of the workflow directory of a workspace.

The workspace id defaults to the last one listed successfully.`,
		Example: `  # Example 1: First page of a workspace
  cozeflow workflows list --workspace 7350000000000000000

  # Example 2: Published workflows only, 50 per page
  cozeflow workflows list --status published --page-size 50

  # Example 3: Names matching a glob
  cozeflow workflows list --match '*weather*'

  # Example 4: Workflow ids for scripting
  cozeflow workflows list --json | jq -r '.items[].workflow_id'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			if !cmd.Flags().Changed("page-size") && rt.Config.Defaults.PageSize > 0 {
				pageSize = rt.Config.Defaults.PageSize
			}

			req := directory.NewRequest(workspace)
			req.Page = page
			req.PageSize = pageSize
			req.PublishStatus = status

			result, err := rt.Directory().List(ctx, req)
			if err != nil {
				return err
			}

			matched, err := directory.Match(result.Items, match)
			if err != nil {
				return err
			}
			result.Items = matched

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), ListResponse{
					JSONResponse: output.NewResponse("workflows list", true),
					Page:         result,
					Match:        match,
				})
			}
			return renderPage(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace id (default: last listed)")
	cmd.Flags().IntVar(&page, "page", directory.DefaultPage, "Page number, starting at 1")
	cmd.Flags().IntVar(&pageSize, "page-size", directory.DefaultPageSize, "Workflows per page (1-100)")
	cmd.Flags().StringVar(&status, "status", directory.DefaultPublishStatus, "Publish status filter: all, published or draft")
	cmd.Flags().StringVar(&match, "match", "", "Only show workflows whose name matches this glob")

	_ = cmd.RegisterFlagCompletionFunc("workspace", completion.CompleteWorkspaceIDs)
	_ = cmd.RegisterFlagCompletionFunc("status", completion.CompletePublishStatus)

	return cmd
}

func renderPage(w io.Writer, page *directory.Page) error {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No workflows found")
		return nil
	}

	table := format.Table{
		Headers: []string{"ID", "NAME", "UPDATED", "DESCRIPTION"},
		MaxCell: 48,
	}
	for _, wf := range page.Items {
		table.Rows = append(table.Rows, []string{wf.WorkflowID, wf.WorkflowName, updated(wf), wf.Description})
	}
	if err := table.Render(w); err != nil {
		return err
	}

	summary := fmt.Sprintf("Page %d, %d workflows", page.Page, len(page.Items))
	if page.Total > 0 {
		summary += fmt.Sprintf(" of %d", page.Total)
	}
	if page.HasMore {
		summary += fmt.Sprintf(" (more: --page %d)", page.Page+1)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, shared.Muted.Render(summary))
	return nil
}

func updated(wf coze.Workflow) string {
	ts := wf.Updated()
	if ts == 0 {
		ts = wf.Created()
	}
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Local().Format("2006-01-02 15:04")
}

func closeRuntime(rt *shared.Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		rt.Logger.Warn("shutdown failed", cozelog.Error(err))
	}
}
