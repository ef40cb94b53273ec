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

import "strings"

const (
	pairSeparator  = ", "
	fieldSeparator = ": "
)

// Input renders params as the human-readable "name: value" encoding stored
// in history records. Raw values are used so the text can be restored.
func Input(params []Parameter) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, p.Name+fieldSeparator+p.Value)
	}
	return strings.Join(pairs, pairSeparator)
}

// ParseInput restores parameters from text produced by Input. Every
// restored parameter is STRING since the encoding drops types. Text that
// contains no "name: value" pair restores as a single "input" parameter.
func ParseInput(input string) []Parameter {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	var params []Parameter
	for _, pair := range strings.Split(input, pairSeparator) {
		name, value, ok := strings.Cut(pair, fieldSeparator)
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		params = append(params, New(strings.TrimSpace(name), value, TypeString))
	}

	if len(params) == 0 {
		return []Parameter{New("input", input, TypeString)}
	}
	return params
}
