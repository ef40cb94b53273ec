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
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// CompleteModes provides completion for --mode flag values.
func CompleteModes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		modes := []string{
			"stream\tWait for the result over a streaming response",
			"async\tSubmit and fetch the result later with 'query'",
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompletePublishStatus provides completion for --status flag values.
func CompletePublishStatus(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		statuses := []string{
			"all\tPublished and draft workflows",
			"published\tPublished workflows only",
			"draft\tUnpublished workflows only",
		}
		return statuses, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteParam provides completion for --param values: once a name and a
// colon are typed, the parameter types are offered.
func CompleteParam(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		name, _, ok := strings.Cut(toComplete, ":")
		if !ok || name == "" || strings.Contains(toComplete, "=") {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		types := parameter.Types
		completions := make([]string, 0, len(types))
		for _, t := range types {
			completions = append(completions, name+":"+strings.ToLower(string(t))+"=")
		}
		return completions, cobra.ShellCompDirectiveNoSpace
	})
}
