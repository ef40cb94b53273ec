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

/*
Package tracing wires OpenTelemetry spans around workflow executions,
async queries and directory listings.

Tracing is off unless an exporter is configured. Setup installs the
provider globally so that the HTTP logging transport can stamp outbound
requests with the active trace id.

# Quick Start

	provider, err := tracing.Setup(ctx, tracing.Config{
	    Exporter: tracing.ExporterOTLP,
	    Endpoint: "localhost:4317",
	    Insecure: true,
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(context.Background())

	ctx, span := tracing.StartExecution(ctx, provider.Tracer("cozeflow/engine"), workflowID, "stream")
	defer span.End()

# Exporters

  - none: spans are discarded (default)
  - console: pretty-printed JSON on stderr
  - otlp: OTLP over gRPC (default endpoint localhost:4317)
  - otlp_http: OTLP over HTTP (default endpoint localhost:4318)
*/
package tracing
