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

package shared

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidwuwu001/coze-workflow-api/internal/history"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("COZE_API_TOKEN", "pat_test")
	t.Setenv("COZE_API_BASE_URL", "http://127.0.0.1:1")
	t.Setenv("COZEFLOW_HISTORY_BACKEND", "memory")
	ResetFlagsForTest()
	t.Cleanup(ResetFlagsForTest)
	return dir
}

func TestNewRuntime(t *testing.T) {
	isolateEnv(t)
	ctx := context.Background()

	rt, err := NewRuntime(ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)

	assert.Equal(t, "pat_test", rt.Client.Token())
	assert.Equal(t, "http://127.0.0.1:1", rt.Client.BaseURL())
	assert.Equal(t, "env:COZE_API_TOKEN", rt.TokenSource)
	assert.NotNil(t, rt.Engine(nil))
	assert.NotNil(t, rt.Directory())

	rt.History.Append(ctx, history.Entry{Input: "q: 1", Result: "ok", Success: true})
	assert.Len(t, rt.History.List(ctx), 1)
}

func TestNewRuntime_FileBackend(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("COZEFLOW_HISTORY_BACKEND", "file")
	ctx := context.Background()

	rt, err := NewRuntime(ctx)
	require.NoError(t, err)

	rt.History.Append(ctx, history.Entry{Input: "q: 1", Result: "ok", Success: true})
	require.NoError(t, rt.Close(ctx))

	_, err = os.Stat(filepath.Join(dir, "data", "cozeflow", "history", history.BlobKey+".json"))
	assert.NoError(t, err)
}

func TestNewRuntime_WritesMetrics(t *testing.T) {
	dir := isolateEnv(t)
	ctx := context.Background()
	metricsPath := filepath.Join(dir, "metrics.prom")
	metricsOutFlag = metricsPath

	rt, err := NewRuntime(ctx)
	require.NoError(t, err)
	require.NoError(t, rt.Close(ctx))

	_, err = os.Stat(metricsPath)
	assert.NoError(t, err)
}

func TestNewRuntime_BadConfigFile(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0600))
	SetConfigPathForTest(path)

	_, err := NewRuntime(context.Background())
	assert.Error(t, err)
}
