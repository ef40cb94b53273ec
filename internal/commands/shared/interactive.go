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
	"os"

	"golang.org/x/term"
)

// ciVars are environment variables set by common CI systems.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "JENKINS_HOME", "BUILDKITE"}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// CanPrompt reports whether the command may ask the user questions.
// Prompts are disabled under --json, with COZEFLOW_NON_INTERACTIVE=true,
// on CI, and when stdin is not a terminal.
func CanPrompt() bool {
	if GetJSON() {
		return false
	}
	return !IsNonInteractive()
}

// IsNonInteractive detects a non-interactive execution context from the
// environment and stdin.
func IsNonInteractive() bool {
	if os.Getenv("COZEFLOW_NON_INTERACTIVE") == "true" {
		return true
	}
	if isCIEnvironment() {
		return true
	}
	return !stdinIsTerminal()
}

// isCIEnvironment checks for common CI environment variables.
func isCIEnvironment() bool {
	for _, envVar := range ciVars {
		value := os.Getenv(envVar)
		if value == "true" || value == "1" {
			return true
		}
		// JENKINS_HOME is a path.
		if envVar == "JENKINS_HOME" && value != "" {
			return true
		}
	}
	return false
}
