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

package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// ValidateString checks size and rejects control characters other than
// newline, carriage return and tab.
func ValidateString(input string) error {
	if len(input) > MaxInputSize {
		return fmt.Errorf("input exceeds maximum size of %d bytes", MaxInputSize)
	}

	for i, r := range input {
		if r == 0 {
			return fmt.Errorf("input contains null byte at position %d", i)
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return fmt.Errorf("input contains invalid control character at position %d", i)
		}
	}

	return nil
}

// ValidateRequired rejects blank answers.
func ValidateRequired(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("a value is required")
	}
	return ValidateString(input)
}

// ValidateName checks a parameter name. Names are sent as JSON object keys
// and joined into history input text, so they must be single-line.
func ValidateName(input string) error {
	if err := ValidateRequired(input); err != nil {
		return err
	}
	if strings.ContainsAny(input, "\r\n") {
		return fmt.Errorf("name must be a single line")
	}
	return nil
}

// ValidateValue checks that raw coerces to typ without falling back.
// Coercion itself never fails; this catches values that would be sent as
// null or as a plain string by accident.
func ValidateValue(raw string, typ parameter.Type) error {
	if err := ValidateRequired(raw); err != nil {
		return err
	}

	switch typ {
	case parameter.TypeNumber:
		return validateNumber(raw)
	case parameter.TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "false":
			return nil
		}
		return fmt.Errorf("input must be true or false")
	case parameter.TypeObject:
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return fmt.Errorf("input must be a JSON object")
		}
	case parameter.TypeArray:
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") {
			var arr []any
			if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
				return fmt.Errorf("invalid JSON array: %w", err)
			}
		}
	}
	return nil
}

func validateNumber(raw string) error {
	s := strings.TrimSpace(raw)
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return nil
	}
	if _, err := strconv.ParseInt(s, 0, 64); err == nil {
		return nil
	}
	return fmt.Errorf("input must be a number")
}
