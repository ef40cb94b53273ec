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
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/directory"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
)

const (
	workflowCacheTTL = 2 * time.Second
	directoryTimeout = 500 * time.Millisecond
)

// workflowCacheEntry holds cached directory completions with expiry.
type workflowCacheEntry struct {
	workspace string
	items     []string
	expiresAt time.Time
}

var (
	workflowCache   *workflowCacheEntry
	workflowCacheMu sync.RWMutex
)

// CompleteWorkflowIDs provides completion for workflow ids. The last
// executed workflow comes first, followed by the first directory page of
// the last listed workspace. Directory results are cached for 2 seconds
// and fetched with a 500ms timeout.
func CompleteWorkflowIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		ctx := contextOf(cmd)
		completions := withRuntime(ctx, func(rt *shared.Runtime) []string {
			var out []string
			seen := make(map[string]bool)
			add := func(c string) {
				id, _, _ := strings.Cut(c, "\t")
				if seen[id] || !strings.HasPrefix(id, toComplete) {
					return
				}
				seen[id] = true
				out = append(out, c)
			}

			if last := rt.Settings.Get(engine.KeyLastWorkflowID); last != "" {
				add(last + "\tlast run")
			}
			for _, c := range directoryCompletions(ctx, rt) {
				add(c)
			}
			return out
		})
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteWorkspaceIDs offers the last listed workspace id.
func CompleteWorkspaceIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		completions := withRuntime(contextOf(cmd), func(rt *shared.Runtime) []string {
			if last := rt.Settings.Get(directory.KeyLastWorkspaceID); last != "" {
				return []string{last + "\tlast listed"}
			}
			return nil
		})
		return completions, cobra.ShellCompDirectiveNoFileComp
	})
}

// directoryCompletions lists the last workspace with caching.
func directoryCompletions(ctx context.Context, rt *shared.Runtime) []string {
	workspace := rt.Settings.Get(directory.KeyLastWorkspaceID)
	if workspace == "" || rt.Client.Token() == "" {
		return nil
	}

	workflowCacheMu.RLock()
	if workflowCache != nil && workflowCache.workspace == workspace && time.Now().Before(workflowCache.expiresAt) {
		cached := workflowCache.items
		workflowCacheMu.RUnlock()
		return cached
	}
	workflowCacheMu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, directoryTimeout)
	defer cancel()

	page, err := rt.Directory().List(ctx, directory.NewRequest(workspace))
	if err != nil {
		return nil
	}
	items := make([]string, 0, len(page.Items))
	for _, wf := range page.Items {
		items = append(items, wf.WorkflowID+"\t"+wf.WorkflowName)
	}

	workflowCacheMu.Lock()
	workflowCache = &workflowCacheEntry{
		workspace: workspace,
		items:     items,
		expiresAt: time.Now().Add(workflowCacheTTL),
	}
	workflowCacheMu.Unlock()

	return items
}
