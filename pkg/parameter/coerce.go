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
	"encoding/json"
	"math"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is a coerced parameter map. Keys keep the order of first appearance
// in the source list.
type Map = orderedmap.OrderedMap[string, any]

// Coerce converts each parameter value to its native form. A repeated name
// overwrites the earlier value but keeps the earlier position.
//
// Coercion never fails. A NUMBER that does not parse yields NaN, an OBJECT
// that is not valid JSON stays a string, and an ARRAY that is not valid JSON
// is split on commas.
func Coerce(params []Parameter) *Map {
	m := orderedmap.New[string, any](len(params))
	for _, p := range params {
		m.Set(p.Name, CoerceValue(p.Value, p.Type))
	}
	return m
}

// CoerceValue converts a single raw value according to typ.
func CoerceValue(raw string, typ Type) any {
	switch typ {
	case TypeNumber:
		return parseNumber(raw)
	case TypeBoolean:
		return strings.ToLower(raw) == "true"
	case TypeObject:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return json.RawMessage(raw)
		}
		return raw
	case TypeArray:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return json.RawMessage(raw)
		}
		parts := strings.Split(raw, ",")
		out := make([]string, len(parts))
		for i, part := range parts {
			out[i] = strings.TrimSpace(part)
		}
		return out
	default:
		return raw
	}
}

func parseNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(i)
	}
	return math.NaN()
}
