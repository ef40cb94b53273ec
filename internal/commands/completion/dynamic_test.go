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
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/directory"
	"github.com/davidwuwu001/coze-workflow-api/internal/engine"
	runhistory "github.com/davidwuwu001/coze-workflow-api/internal/history"
)

const testWorkspace = "7350000000000000000"

func setup(t *testing.T, baseURL string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("COZE_API_TOKEN", "pat_0123456789abcdefghijKLMNOP")
	t.Setenv("COZE_API_BASE_URL", baseURL)
	t.Setenv("COZEFLOW_HISTORY_BACKEND", "file")
	t.Cleanup(shared.ResetFlagsForTest)

	workflowCacheMu.Lock()
	workflowCache = nil
	workflowCacheMu.Unlock()
}

func withSettings(t *testing.T, fn func(rt *shared.Runtime)) {
	t.Helper()
	ctx := context.Background()
	rt, err := shared.NewRuntime(ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)
	fn(rt)
}

func TestCompleteHistoryIDs(t *testing.T) {
	setup(t, "http://127.0.0.1:1")

	var ids []string
	withSettings(t, func(rt *shared.Runtime) {
		ctx := context.Background()
		rt.History.Append(ctx, runhistory.Entry{Input: "city: Paris", Result: "sunny", Success: true})
		rt.History.Append(ctx, runhistory.Entry{Input: "city: Oslo", Error: "boom"})
		for _, r := range rt.History.List(ctx) {
			ids = append(ids, r.ID)
		}
	})

	completions, _ := CompleteHistoryIDs(nil, nil, "")
	require.Len(t, completions, 2)
	assert.Equal(t, ids, names(completions))
	assert.Contains(t, completions[0], "failed city: Oslo")
	assert.Contains(t, completions[1], "ok city: Paris")

	completions, _ = CompleteHistoryIDs(nil, nil, ids[1])
	assert.Equal(t, []string{ids[1]}, names(completions))

	completions, _ = CompleteHistoryIDs(nil, []string{ids[0]}, "")
	assert.Empty(t, completions)
}

func TestCompleteExecuteIDs(t *testing.T) {
	setup(t, "http://127.0.0.1:1")

	completions, _ := CompleteExecuteIDs(nil, nil, "")
	assert.Empty(t, completions)

	withSettings(t, func(rt *shared.Runtime) {
		require.NoError(t, rt.Settings.Set(engine.KeyLastExecuteID, "7390000000000000001"))
		require.NoError(t, rt.Settings.Set(engine.KeyLastExecuteWorkflowID, "7340000000000000001"))
	})

	completions, _ = CompleteExecuteIDs(nil, nil, "")
	assert.Equal(t, []string{"7390000000000000001\tlast async execution of 7340000000000000001"}, completions)
}

func TestCompleteWorkflowIDs(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/workflows" || r.URL.Query().Get("workspace_id") != testWorkspace {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"code":0,"data":{"has_more":false,"items":[
			{"workflow_id":"7340000000000000001","workflow_name":"weather"},
			{"workflow_id":"7340000000000000002","workflow_name":"translate"}
		]}}`)
	}))
	defer server.Close()
	setup(t, server.URL)

	completions, _ := CompleteWorkflowIDs(nil, nil, "")
	assert.Empty(t, completions)
	assert.Zero(t, calls.Load())

	withSettings(t, func(rt *shared.Runtime) {
		require.NoError(t, rt.Settings.Set(engine.KeyLastWorkflowID, "7340000000000000002"))
		require.NoError(t, rt.Settings.Set(directory.KeyLastWorkspaceID, testWorkspace))
	})

	completions, _ = CompleteWorkflowIDs(nil, nil, "")
	assert.Equal(t, []string{
		"7340000000000000002\tlast run",
		"7340000000000000001\tweather",
	}, completions)

	completions, _ = CompleteWorkflowIDs(nil, nil, "7340000000000000001")
	assert.Equal(t, []string{"7340000000000000001\tweather"}, completions)
	assert.Equal(t, int32(1), calls.Load(), "second lookup should hit the cache")

	completions, _ = CompleteWorkspaceIDs(nil, nil, "")
	assert.True(t, strings.HasPrefix(completions[0], testWorkspace))
}
