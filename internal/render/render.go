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

// Package render turns the terminal payload of a workflow run into a
// display document: JSON is re-indented and absolute URLs are split out
// into addressable link segments.
package render

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	urlPattern      = regexp.MustCompile("https?://[^\\s`\"']+")
	backtickPattern = regexp.MustCompile("`([^`]*)`\\s*\"")
)

// SegmentKind distinguishes literal text from a hyperlink.
type SegmentKind int

const (
	// Literal is plain text between links.
	Literal SegmentKind = iota
	// Link is an absolute http or https URL.
	Link
)

// String returns the kind name used in JSON output.
func (k SegmentKind) String() string {
	if k == Link {
		return "link"
	}
	return "text"
}

// MarshalText implements encoding.TextMarshaler.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment is one ordered piece of a rendered payload.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// Document is a payload prepared for display.
type Document struct {
	// Text is the normalized payload. Concatenating all segment texts
	// yields Text exactly.
	Text string `json:"text"`

	// Structured reports whether the payload parsed as JSON.
	Structured bool `json:"structured"`

	Segments []Segment `json:"segments"`
}

// Links returns the link segments in order of appearance.
func (d Document) Links() []string {
	var links []string
	for _, s := range d.Segments {
		if s.Kind == Link {
			links = append(links, s.Text)
		}
	}
	return links
}

// Format normalizes payload and splits it into literal and link segments.
// A payload that parses as JSON is re-serialized with 2-space indentation
// first; anything else is split as plain text.
func Format(payload string) Document {
	text, structured := PrettyJSON(FixLinks(payload))
	return Document{
		Text:       text,
		Structured: structured,
		Segments:   Split(text),
	}
}

// Normalize applies the link fix and JSON re-indentation without splitting.
// It produces the text stored in history for async results.
func Normalize(payload string) string {
	text, _ := PrettyJSON(FixLinks(payload))
	return text
}

// FixLinks rewrites URLs wrapped as `url` followed by a double quote into
// a plain quoted URL, dropping one trailing slash.
func FixLinks(s string) string {
	if !strings.Contains(s, "`") {
		return s
	}
	return backtickPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := backtickPattern.FindStringSubmatch(match)
		return `"` + strings.TrimSuffix(m[1], "/") + `"`
	})
}

// PrettyJSON re-indents s with two spaces when it is a valid JSON text.
// Key order and number literals are preserved. Otherwise s is returned
// unchanged with ok false.
func PrettyJSON(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return s, false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", "  "); err != nil {
		return s, false
	}
	return buf.String(), true
}

// Split cuts text into ordered literal and link segments. Text without
// URLs yields a single literal segment; empty text yields none.
func Split(text string) []Segment {
	if text == "" {
		return nil
	}
	matches := urlPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{Kind: Literal, Text: text}}
	}

	segments := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Segment{Kind: Literal, Text: text[last:m[0]]})
		}
		segments = append(segments, Segment{Kind: Link, Text: text[m[0]:m[1]]})
		last = m[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Kind: Literal, Text: text[last:]})
	}
	return segments
}
