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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "empty exporter", cfg: Config{}},
		{name: "otlp", cfg: Config{Exporter: ExporterOTLP, SampleRate: 0.5}},
		{name: "unknown exporter", cfg: Config{Exporter: "jaeger"}, wantErr: true},
		{name: "rate too high", cfg: Config{Exporter: ExporterConsole, SampleRate: 1.5}, wantErr: true},
		{name: "negative rate", cfg: Config{SampleRate: -0.1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), DefaultConfig())
	require.NoError(t, err)

	_, span := StartExecution(context.Background(), p.Tracer("test"), "wf", "stream")
	assert.Empty(t, span.TraceID())
	span.End()

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSetup_Console(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Exporter = ExporterConsole
	cfg.Writer = &buf

	p, err := Setup(context.Background(), cfg)
	require.NoError(t, err)

	_, span := StartQuery(context.Background(), p.Tracer("test"), "wf-1", "exec-1")
	span.Succeed()
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "workflow.query")
	assert.Contains(t, buf.String(), "exec-1")
}

func TestSetup_InvalidConfig(t *testing.T) {
	_, err := Setup(context.Background(), Config{Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestNewExporter_None(t *testing.T) {
	exp, err := NewExporter(context.Background(), Config{Exporter: ExporterNone})
	require.NoError(t, err)
	assert.Nil(t, exp)
}

func TestSpan_Lifecycle(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	p, err := Setup(context.Background(), Config{}, sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	ctx, span := StartExecution(context.Background(), p.Tracer("test"), "wf-9", "async")
	assert.NotNil(t, ctx)
	assert.NotEmpty(t, span.TraceID())
	span.AddEvent("submitted", AttrExecuteID.String("e-1"))
	span.RecordError(errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "workflow.execute", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	require.Len(t, ended[0].Events(), 2) // submitted + exception
	assert.Equal(t, "submitted", ended[0].Events()[0].Name)
}

func TestSpan_NilSafe(t *testing.T) {
	var s *Span
	s.AddEvent("x")
	s.RecordError(errors.New("x"))
	s.Succeed()
	s.End()
	assert.Empty(t, s.TraceID())
}

func TestNewSampler(t *testing.T) {
	assert.Contains(t, NewSampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, NewSampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, NewSampler(0.25).Description(), "root:TraceIDRatioBased")
}
