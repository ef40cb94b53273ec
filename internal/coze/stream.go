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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// EventType is the SSE event name sent by the stream endpoint.
type EventType string

const (
	EventMessage   EventType = "Message"
	EventError     EventType = "Error"
	EventDone      EventType = "Done"
	EventInterrupt EventType = "Interrupt"
	EventPing      EventType = "PING"
)

// ChunkKind classifies a chunk for the consumer.
type ChunkKind int

const (
	// ChunkData carries partial output.
	ChunkData ChunkKind = iota
	// ChunkCompletion terminates the stream successfully.
	ChunkCompletion
	// ChunkError terminates the stream with a remote failure.
	ChunkError
)

// RunRequest identifies a workflow and its coerced parameters.
type RunRequest struct {
	WorkflowID string
	Parameters *parameter.Map
}

type runBody struct {
	WorkflowID string         `json:"workflow_id"`
	Parameters *parameter.Map `json:"parameters"`
	IsAsync    bool           `json:"is_async,omitempty"`
}

func (r RunRequest) body(async bool) runBody {
	return runBody{
		WorkflowID: r.WorkflowID,
		Parameters: WireParameters(r.Parameters),
		IsAsync:    async,
	}
}

// Chunk is one server-sent event of a streamed run.
type Chunk struct {
	ID    string          `json:"id,omitempty"`
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Kind maps the event name to its role in the stream.
func (c Chunk) Kind() ChunkKind {
	switch c.Event {
	case EventDone:
		return ChunkCompletion
	case EventError:
		return ChunkError
	default:
		return ChunkData
	}
}

// Payload decodes the chunk data.
func (c Chunk) Payload() Payload {
	return DecodePayload(c.Data)
}

// ErrorDetail extracts error_message and error_code from an error chunk.
func (c Chunk) ErrorDetail() (message string, code int) {
	if !gjson.ValidBytes(c.Data) {
		return "", 0
	}
	return gjson.GetBytes(c.Data, "error_message").String(), int(gjson.GetBytes(c.Data, "error_code").Int())
}

// String renders the whole chunk as indented JSON for progress logs.
func (c Chunk) String() string {
	if len(c.Data) > 0 && !json.Valid(c.Data) {
		c.Data, _ = json.Marshal(string(c.Data))
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return string(c.Event)
	}
	return string(data)
}

// StreamEvent is delivered on the channel returned by StreamRun. Exactly
// one of Chunk or Err is meaningful; an event with Err is always the last.
type StreamEvent struct {
	Chunk Chunk
	Err   error
}

// StreamRun starts a streamed run. Chunks are delivered in arrival order on
// the returned channel, which is closed when the body ends, a read fails or
// ctx is cancelled.
func (c *Client) StreamRun(ctx context.Context, req RunRequest) (<-chan StreamEvent, error) {
	const op = "stream_run"

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/v1/workflow/stream_run", nil, req.body(false))
	if err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Cause: err}
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, &cozeerrors.TransportError{Operation: op, Cause: err}
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, statusError(op, resp, body)
	}

	// Request errors (bad workflow id, bad token) arrive as a JSON envelope
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		terr := &cozeerrors.TransportError{Operation: op, StatusCode: resp.StatusCode}
		terr.Code = int(gjson.GetBytes(body, "code").Int())
		terr.Message = gjson.GetBytes(body, "msg").String()
		if terr.Message == "" {
			terr.Message = "expected an event stream, got: " + truncate(strings.TrimSpace(string(body)))
		}
		return nil, terr
	}

	events := make(chan StreamEvent)
	go c.readStream(ctx, resp.Body, events)
	return events, nil
}

// readStream parses the SSE body into chunks.
func (c *Client) readStream(ctx context.Context, body io.ReadCloser, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	send := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	reader := bufio.NewReader(body)
	var (
		current Chunk
		data    [][]byte
		pending bool
	)

	dispatch := func() bool {
		if !pending {
			return true
		}
		if current.Event == "" {
			current.Event = EventMessage
		}
		current.Data = bytes.Join(data, []byte("\n"))
		ok := send(StreamEvent{Chunk: current})
		current, data, pending = Chunk{}, nil, false
		return ok
	}

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			if len(line) == 0 {
				if !dispatch() {
					return
				}
			} else {
				field, value := parseField(line)
				switch field {
				case "id":
					current.ID = string(value)
					pending = true
				case "event":
					current.Event = EventType(value)
					pending = true
				case "data":
					data = append(data, value)
					pending = true
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				dispatch()
				return
			}
			if ctx.Err() != nil {
				return
			}
			send(StreamEvent{Err: &cozeerrors.TransportError{
				Operation: "stream_run",
				Message:   "stream read error: " + err.Error(),
				Cause:     err,
			}})
			return
		}
	}
}

// parseField splits an SSE line into field name and value. Comment lines
// yield an empty field.
func parseField(line []byte) (string, []byte) {
	if line[0] == ':' {
		return "", nil
	}
	name, value, found := bytes.Cut(line, []byte(":"))
	if !found {
		return string(name), nil
	}
	value = bytes.TrimPrefix(value, []byte(" "))
	return string(name), value
}
