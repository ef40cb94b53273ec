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
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on cozeflow spans.
const (
	AttrWorkflowID = attribute.Key("coze.workflow_id")
	AttrExecuteID  = attribute.Key("coze.execute_id")
	AttrMode       = attribute.Key("coze.mode")
	AttrStatus     = attribute.Key("coze.execute_status")
	AttrWorkspace  = attribute.Key("coze.workspace_id")
	AttrChunks     = attribute.Key("coze.chunks")
)

// Span wraps an OpenTelemetry span with execution helpers. A nil *Span is
// safe to use.
type Span struct {
	span trace.Span
}

// StartExecution creates the root span of a workflow run.
func StartExecution(ctx context.Context, tracer trace.Tracer, workflowID, mode string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, "workflow.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrWorkflowID.String(workflowID),
			AttrMode.String(mode),
		),
	)
	return ctx, &Span{span: span}
}

// StartQuery creates the span of an async run-history query.
func StartQuery(ctx context.Context, tracer trace.Tracer, workflowID, executeID string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, "workflow.query",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrWorkflowID.String(workflowID),
			AttrExecuteID.String(executeID),
		),
	)
	return ctx, &Span{span: span}
}

// StartDirectory creates the span of a workflow directory listing.
func StartDirectory(ctx context.Context, tracer trace.Tracer, workspaceID string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, "workflow.list",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrWorkspace.String(workspaceID)),
	)
	return ctx, &Span{span: span}
}

// SetAttributes adds attributes to the span.
func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetAttributes(attrs...)
}

// AddEvent records a timestamped event within the span.
func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	if s == nil || s.span == nil {
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError marks the span failed with err.
func (s *Span) RecordError(err error) {
	if s == nil || s.span == nil || err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// Succeed marks the span successful.
func (s *Span) Succeed() {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// End marks the span as complete.
func (s *Span) End() {
	if s == nil || s.span == nil {
		return
	}
	s.span.End()
}

// TraceID returns the trace id as a hex string, empty when not sampled.
func (s *Span) TraceID() string {
	if s == nil || s.span == nil || !s.span.SpanContext().HasTraceID() {
		return ""
	}
	return s.span.SpanContext().TraceID().String()
}
