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

// Package history implements the history command group.
package history

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli/format"
	"github.com/davidwuwu001/coze-workflow-api/internal/cli/prompt"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/completion"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	runhistory "github.com/davidwuwu001/coze-workflow-api/internal/history"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/output"
)

var (
	canPrompt   = shared.CanPrompt
	newPrompter = func() prompt.Prompter {
		return prompt.NewSurveyPrompter(canPrompt())
	}
)

// ListResponse is the JSON output of history list.
type ListResponse struct {
	output.JSONResponse
	Records []runhistory.Record `json:"records"`
	Count   int                 `json:"count"`
}

// RecordResponse is the JSON output of history show and delete.
type RecordResponse struct {
	output.JSONResponse
	Record runhistory.Record `json:"record"`
	Time   string            `json:"time"`
}

// ClearResponse is the JSON output of history clear.
type ClearResponse struct {
	output.JSONResponse
	Removed int `json:"removed"`
}

// NewCommand creates the history command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use: "history",
		Annotations: map[string]string{
			"group": "history",
		},
		Short: "Inspect and manage past executions",
		Long: `Commands for the local execution history.

Only terminal outcomes are recorded. The newest record comes first and
older records are discarded once the history limit is reached.`,
	}

	cmd.AddCommand(
		newListCommand(),
		newShowCommand(),
		newDeleteCommand(),
		newClearCommand(),
	)
	return cmd
}

func newListCommand() *cobra.Command {
	var (
		where string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recorded executions, newest first",
		Example: `  # Example 1: Everything
  cozeflow history list

  # Example 2: Failures from the last day
  cozeflow history list --where '!success && time > now() - duration("24h")'

  # Example 3: The five newest records as JSON
  cozeflow history list --limit 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			records, err := runhistory.Filter(rt.History.List(ctx), where)
			if err != nil {
				return shared.NewInvalidInputError("invalid --where expression", err)
			}
			if records == nil {
				records = []runhistory.Record{}
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), ListResponse{
					JSONResponse: output.NewResponse("history list", true),
					Records:      records,
					Count:        len(records),
				})
			}
			return renderList(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&where, "where", "", "Filter expression over id, input, result, success, error, timestamp and time")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many records (0 for all)")

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <id>",
		Short:             "Show one recorded execution",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteHistoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			record, ok := rt.History.Get(ctx, args[0])
			if !ok {
				return shared.NewNotFoundError(fmt.Sprintf("history record %q not found", args[0]), nil)
			}

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), recordResponse("history show", record))
			}
			renderRecord(cmd.OutOrStdout(), record)
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>",
		Aliases:           []string{"rm"},
		Short:             "Delete one recorded execution",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteHistoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			record, ok := rt.History.Get(ctx, args[0])
			if !ok {
				return shared.NewNotFoundError(fmt.Sprintf("history record %q not found", args[0]), nil)
			}
			rt.History.Remove(ctx, record.ID)

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), recordResponse("history delete", record))
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("Deleted "+record.ID))
			}
			return nil
		},
	}
}

func newClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded execution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := shared.NewRuntime(ctx)
			if err != nil {
				return err
			}
			defer closeRuntime(rt)

			count := len(rt.History.List(ctx))
			if count > 0 && !yes {
				if !canPrompt() {
					return shared.NewInvalidInputError("refusing to clear history without --yes", prompt.ErrNonInteractive)
				}
				ok, err := newPrompter().Confirm(ctx, fmt.Sprintf("Delete all %d history records?", count), false)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.ErrOrStderr(), "Aborted")
					return nil
				}
			}
			rt.History.Clear(ctx)

			if shared.GetJSON() {
				return output.EmitJSON(cmd.OutOrStdout(), ClearResponse{
					JSONResponse: output.NewResponse("history clear", true),
					Removed:      count,
				})
			}
			if !shared.GetQuiet() {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK(fmt.Sprintf("Removed %d records", count)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func recordResponse(command string, record runhistory.Record) RecordResponse {
	return RecordResponse{
		JSONResponse: output.NewResponse(command, true),
		Record:       record,
		Time:         runhistory.FormatTimestamp(record.Timestamp),
	}
}

func renderList(w io.Writer, records []runhistory.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No history records")
		return nil
	}

	table := format.Table{
		Headers: []string{"ID", "TIME", "STATUS", "INPUT"},
		MaxCell: 60,
	}
	for _, r := range records {
		table.Rows = append(table.Rows, []string{
			r.ID,
			runhistory.FormatTimestamp(r.Timestamp),
			status(r),
			oneLine(r.Input),
		})
	}
	return table.Render(w)
}

func renderRecord(w io.Writer, r runhistory.Record) {
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("ID:    "), r.ID)
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Time:  "), runhistory.FormatTimestamp(r.Timestamp))
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Status:"), status(r))
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Input: "), r.Input)
	if r.Error != "" {
		fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Error: "), r.Error)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Result)
}

func status(r runhistory.Record) string {
	if r.Success {
		return "ok"
	}
	return "failed"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func closeRuntime(rt *shared.Runtime) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		rt.Logger.Warn("shutdown failed", cozelog.Error(err))
	}
}
