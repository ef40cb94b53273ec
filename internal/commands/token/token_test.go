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

package token

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/davidwuwu001/coze-workflow-api/internal/cli"
	"github.com/davidwuwu001/coze-workflow-api/internal/cli/prompt"
	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
	"github.com/davidwuwu001/coze-workflow-api/internal/secrets"
)

const testToken = "pat_0123456789abcdefghijKLMNOP"

func setup(t *testing.T, input string) {
	t.Helper()
	keyring.MockInit()
	t.Setenv("COZE_API_TOKEN", "")
	t.Setenv("COZEFLOW_NON_INTERACTIVE", "true")

	origStdin, origCan := stdin, canPrompt
	t.Cleanup(func() { stdin, canPrompt = origStdin, origCan })
	stdin = strings.NewReader(input)
	canPrompt = func() bool { return false }
	t.Cleanup(shared.ResetFlagsForTest)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand()
	root.AddCommand(NewCommand())

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func status(t *testing.T) Response {
	t.Helper()
	out, err := execute(t, "token", "status", "--json")
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestSet_FromStdin(t *testing.T) {
	setup(t, testToken+"\n")

	out, err := execute(t, "token", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "keychain")

	stored, err := keyring.Get("cozeflow", secrets.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, testToken, stored)

	resp := status(t)
	assert.True(t, resp.Configured)
	assert.Equal(t, "keychain", resp.Source)
	assert.Equal(t, "pat_0123...", resp.Masked)
}

func TestSet_Prompted(t *testing.T) {
	setup(t, "")
	canPrompt = func() bool { return true }
	origNew := newPrompter
	t.Cleanup(func() { newPrompter = origNew })
	mock := prompt.NewMockPrompter(true, "  "+testToken+"  ")
	newPrompter = func() prompt.Prompter { return mock }

	_, err := execute(t, "token", "set", "--json")
	require.NoError(t, err)
	assert.Equal(t, []string{"Password(Coze API token)"}, mock.CallLog())

	stored, err := keyring.Get("cozeflow", secrets.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, testToken, stored)
}

func TestSet_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank line", "   \n"},
		{"inner whitespace", "pat abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, tt.input)

			_, err := execute(t, "token", "set")
			require.Error(t, err)
			assert.Equal(t, shared.ExitInvalidInput, shared.Classify(err).Code)
		})
	}
}

func TestStatus_EnvWins(t *testing.T) {
	setup(t, testToken)
	_, err := execute(t, "token", "set")
	require.NoError(t, err)

	t.Setenv("COZE_API_TOKEN", "pat_fromenvironment")
	resp := status(t)
	assert.Equal(t, "env", resp.Source)
	assert.Equal(t, "pat_from...", resp.Masked)
	assert.Equal(t, []string{"env", "keychain"}, resp.Backends)
}

func TestStatus_NotConfigured(t *testing.T) {
	setup(t, "")

	out, err := execute(t, "token", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No API token configured")

	resp := status(t)
	assert.False(t, resp.Configured)
	assert.Empty(t, resp.Source)
}

func TestClear(t *testing.T) {
	setup(t, testToken)
	_, err := execute(t, "token", "set")
	require.NoError(t, err)

	_, err = execute(t, "token", "clear")
	require.NoError(t, err)
	assert.False(t, status(t).Configured)

	_, err = execute(t, "token", "clear")
	require.Error(t, err)
	assert.Equal(t, shared.ExitNotFound, shared.Classify(err).Code)
}
