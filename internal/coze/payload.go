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
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// PayloadKind tags the shape of a remote payload.
type PayloadKind int

const (
	// PayloadNone means the field was absent, null or an empty string.
	PayloadNone PayloadKind = iota
	// PayloadText is a JSON string, unquoted.
	PayloadText
	// PayloadStructured is any other JSON value, kept verbatim.
	PayloadStructured
)

// Payload is a remote value that is either text or structured JSON.
type Payload struct {
	Kind PayloadKind
	Text string
	Raw  json.RawMessage
}

// TextPayload wraps s, or returns the empty payload when s is empty.
func TextPayload(s string) Payload {
	if s == "" {
		return Payload{}
	}
	return Payload{Kind: PayloadText, Text: s}
}

// DecodePayload classifies a raw value. Input that is not valid JSON is
// kept as text.
func DecodePayload(raw json.RawMessage) Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Payload{}
	}

	if !json.Valid(trimmed) {
		return TextPayload(string(raw))
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return TextPayload(s)
		}
	}

	return Payload{Kind: PayloadStructured, Raw: append(json.RawMessage(nil), trimmed...)}
}

// IsZero reports whether the payload carries nothing.
func (p Payload) IsZero() bool {
	return p.Kind == PayloadNone
}

// String renders text as-is and structured values indented by two spaces
// with their original key order.
func (p Payload) String() string {
	switch p.Kind {
	case PayloadText:
		return p.Text
	case PayloadStructured:
		var buf bytes.Buffer
		if err := json.Indent(&buf, p.Raw, "", "  "); err != nil {
			return string(p.Raw)
		}
		return buf.String()
	default:
		return ""
	}
}

// MarshalJSON encodes the payload back to its JSON form.
func (p Payload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PayloadText:
		return json.Marshal(p.Text)
	case PayloadStructured:
		return p.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = DecodePayload(data)
	return nil
}

// flexInt decodes integers sent either as JSON numbers or numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		n = int64(fl)
	}
	*f = flexInt(n)
	return nil
}
