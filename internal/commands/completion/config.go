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
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/internal/commands/shared"
)

// openRuntime is replaced in tests.
var openRuntime = shared.NewRuntime

// withRuntime opens a runtime, runs fn and closes it. Components built from
// rt inside fn log nowhere. Any failure yields no completions.
func withRuntime(ctx context.Context, fn func(rt *shared.Runtime) []string) []string {
	rt, err := openRuntime(ctx)
	if err != nil {
		return nil
	}
	rt.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	defer rt.Close(ctx)
	return fn(rt)
}

// SafeCompletionWrapper wraps a completion function with panic recovery.
// Returns empty completion list on panic or error.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	// Set defaults for panic recovery
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}
