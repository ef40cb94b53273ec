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

package output

import (
	"fmt"
	"io"
	"os"
)

// Formatter writes command results.
type Formatter interface {
	// FormatSuccess writes a successful command result.
	FormatSuccess(command string, data any) error

	// FormatError writes an error response.
	FormatError(command string, errs []JSONError) error

	// SetOutput sets the output writer.
	SetOutput(w io.Writer)
}

// DefaultFormatter returns a formatter for the JSON mode flag, writing to
// stdout.
func DefaultFormatter(jsonMode bool) Formatter {
	if jsonMode {
		return &JSONFormatter{out: os.Stdout}
	}
	return &TextFormatter{out: os.Stdout}
}

// JSONFormatter writes JSON envelopes. data is emitted as given, so
// commands embed JSONResponse in their result types.
type JSONFormatter struct {
	out io.Writer
}

// FormatSuccess writes data as JSON.
func (f *JSONFormatter) FormatSuccess(command string, data any) error {
	return EmitJSON(f.writer(), data)
}

// FormatError writes a failed envelope.
func (f *JSONFormatter) FormatError(command string, errs []JSONError) error {
	return EmitJSONError(f.writer(), command, errs)
}

// SetOutput sets the output writer.
func (f *JSONFormatter) SetOutput(w io.Writer) {
	f.out = w
}

func (f *JSONFormatter) writer() io.Writer {
	if f.out == nil {
		return os.Stdout
	}
	return f.out
}

// TextFormatter writes human-readable output. Commands pass pre-rendered
// text or a fmt.Stringer.
type TextFormatter struct {
	out io.Writer
}

// FormatSuccess prints data followed by a newline.
func (f *TextFormatter) FormatSuccess(command string, data any) error {
	var text string
	switch v := data.(type) {
	case nil:
		return nil
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprint(v)
	}
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(f.writer(), text)
	return err
}

// FormatError prints one "Error:" line per error.
func (f *TextFormatter) FormatError(command string, errs []JSONError) error {
	for _, e := range errs {
		if _, err := fmt.Fprintln(f.writer(), "Error:", e.Message); err != nil {
			return err
		}
		if e.Suggestion != "" {
			if _, err := fmt.Fprintf(f.writer(), "\nSuggestion: %s\n", e.Suggestion); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetOutput sets the output writer.
func (f *TextFormatter) SetOutput(w io.Writer) {
	f.out = w
}

func (f *TextFormatter) writer() io.Writer {
	if f.out == nil {
		return os.Stdout
	}
	return f.out
}
