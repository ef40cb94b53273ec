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

package errors

// ErrorClassifier is implemented by every error type in this package so
// callers can branch on the category without a type switch.
type ErrorClassifier interface {
	error

	// ErrorType returns a string identifying the error category.
	// One of: "validation", "transport", "workflow_execution",
	// "persistence", "directory".
	ErrorType() string

	// IsRetryable reports whether the operation may be repeated as-is.
	// Every remote call is single-attempt, so this is currently always false.
	IsRetryable() bool
}

// Compile-time interface assertions.
var (
	_ ErrorClassifier = (*ValidationError)(nil)
	_ ErrorClassifier = (*TransportError)(nil)
	_ ErrorClassifier = (*WorkflowExecutionError)(nil)
	_ ErrorClassifier = (*PersistenceError)(nil)
	_ ErrorClassifier = (*DirectoryFetchError)(nil)
)
