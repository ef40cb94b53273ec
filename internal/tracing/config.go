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

package tracing

import (
	"fmt"
	"io"
	"time"
)

// Exporter names accepted in configuration.
const (
	ExporterNone     = "none"
	ExporterConsole  = "console"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlp_http"
)

// Config holds tracing configuration.
type Config struct {
	// Exporter selects the span destination. Empty means none.
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP receiver address.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for OTLP exporters.
	Insecure bool `yaml:"insecure"`

	// Headers are sent with every OTLP export request.
	Headers map[string]string `yaml:"headers"`

	// SampleRate is the fraction of root spans recorded (0.0 - 1.0).
	SampleRate float64 `yaml:"sample_rate"`

	// ServiceName identifies this process in traces.
	ServiceName string `yaml:"-"`

	// ServiceVersion is the application version.
	ServiceVersion string `yaml:"-"`

	// BatchTimeout is how often spans are flushed to OTLP receivers.
	BatchTimeout time.Duration `yaml:"-"`

	// Writer receives console exporter output. Defaults to stderr.
	Writer io.Writer `yaml:"-"`
}

// DefaultConfig returns tracing disabled with full sampling.
func DefaultConfig() Config {
	return Config{
		Exporter:       ExporterNone,
		SampleRate:     1.0,
		ServiceName:    "cozeflow",
		ServiceVersion: "unknown",
		BatchTimeout:   5 * time.Second,
	}
}

// Enabled reports whether spans leave the process.
func (c Config) Enabled() bool {
	return c.Exporter != "" && c.Exporter != ExporterNone
}

// Validate checks the exporter name and sample rate.
func (c Config) Validate() error {
	switch c.Exporter {
	case "", ExporterNone, ExporterConsole, ExporterOTLP, ExporterOTLPHTTP:
	default:
		return fmt.Errorf("unknown tracing exporter %q (expected none, console, otlp or otlp_http)", c.Exporter)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be between 0 and 1, got %v", c.SampleRate)
	}
	return nil
}
