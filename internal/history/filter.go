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

package history

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
)

// filterEnv is the variable set visible to filter expressions.
type filterEnv struct {
	ID        string    `expr:"id"`
	Input     string    `expr:"input"`
	Result    string    `expr:"result"`
	Success   bool      `expr:"success"`
	Error     string    `expr:"error"`
	Timestamp int64     `expr:"timestamp"`
	Time      time.Time `expr:"time"`
}

// Filter returns the records for which the boolean expression holds, for
// example `!success && error contains "timeout"` or
// `time > now() - duration("24h")`. An empty expression keeps everything.
func Filter(records []Record, expression string) ([]Record, error) {
	if expression == "" {
		return records, nil
	}

	program, err := expr.Compile(expression, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", err)
	}

	var out []Record
	for _, r := range records {
		env := filterEnv{
			ID:        r.ID,
			Input:     r.Input,
			Result:    r.Result,
			Success:   r.Success,
			Error:     r.Error,
			Timestamp: r.Timestamp,
			Time:      time.UnixMilli(r.Timestamp),
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("filter failed on record %s: %w", r.ID, err)
		}
		if matched, _ := result.(bool); matched {
			out = append(out, r)
		}
	}
	return out, nil
}
