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
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli/format"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
	runhistory "github.com/davidwuwu001/coze-workflow-api/internal/history"
)

const maxHistoryCompletions = 50

// CompleteHistoryIDs provides completion for history record ids, newest
// first, described by time, status and input.
func CompleteHistoryIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		completions := withRuntime(contextOf(cmd), func(rt *shared.Runtime) []string {
			records := rt.History.List(contextOf(cmd))
			out := make([]string, 0, len(records))
			for _, r := range records {
				if !strings.HasPrefix(r.ID, toComplete) {
					continue
				}
				out = append(out, r.ID+"\t"+describe(r))
				if len(out) == maxHistoryCompletions {
					break
				}
			}
			return out
		})
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteExecuteIDs offers the execution id of the last async submission.
func CompleteExecuteIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		completions := withRuntime(contextOf(cmd), func(rt *shared.Runtime) []string {
			id := rt.Settings.Get(engine.KeyLastExecuteID)
			if id == "" {
				return nil
			}
			desc := "last async execution"
			if wf := rt.Settings.Get(engine.KeyLastExecuteWorkflowID); wf != "" {
				desc += " of " + wf
			}
			return []string{id + "\t" + desc}
		})
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

func describe(r runhistory.Record) string {
	status := "ok"
	if !r.Success {
		status = "failed"
	}
	desc := runhistory.FormatTimestamp(r.Timestamp) + " " + status
	if input := strings.Join(strings.Fields(r.Input), " "); input != "" {
		desc += " " + format.Truncate(input, 40)
	}
	return desc
}

// contextOf returns the command context, or a background context.
func contextOf(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
