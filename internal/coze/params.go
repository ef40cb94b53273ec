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

package coze

import (
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

// WireParameters returns a copy of params safe for JSON encoding. Values
// that JSON cannot represent (NaN, ±Inf) are sent as null.
func WireParameters(params *parameter.Map) *parameter.Map {
	out := orderedmap.New[string, any]()
	if params == nil {
		return out
	}
	for pair := params.Oldest(); pair != nil; pair = pair.Next() {
		v := pair.Value
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		out.Set(pair.Key, v)
	}
	return out
}
