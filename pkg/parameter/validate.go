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

package parameter

import (
	"fmt"
	"strings"

	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// Validate checks that params is non-empty and that every entry has a
// non-blank name and value. It does not inspect values against their type.
func Validate(params []Parameter) error {
	if len(params) == 0 {
		return &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeEmptyParameterSet,
			Message:    "at least one parameter is required",
			Suggestion: "add a parameter with -p name=value",
		}
	}

	for i, p := range params {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Value) == "" {
			return &cozeerrors.ValidationError{
				Code:       cozeerrors.CodeIncompleteParameter,
				Field:      fmt.Sprintf("parameters[%d]", i),
				Message:    "every parameter needs a name and a value",
				Suggestion: "fill in or remove the incomplete parameter",
			}
		}
	}
	return nil
}
