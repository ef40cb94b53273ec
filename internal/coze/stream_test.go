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
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

func sseHandler(t *testing.T, frames string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workflow/stream_run", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, frames)
	}
}

func collect(t *testing.T, events <-chan StreamEvent) ([]Chunk, error) {
	t.Helper()
	var chunks []Chunk
	for ev := range events {
		if ev.Err != nil {
			return chunks, ev.Err
		}
		chunks = append(chunks, ev.Chunk)
	}
	return chunks, nil
}

func TestStreamRun_ParsesFrames(t *testing.T) {
	frames := strings.Join([]string{
		"id: 0",
		"event: Message",
		`data: {"content":"x","node_is_finish":false}`,
		"",
		": keep-alive comment",
		"id: 1",
		"event: PING",
		"",
		"id: 2",
		"event: Message",
		`data: "plain"`,
		"",
		"id: 3",
		"event: Done",
		`data: {"debug_url":"https://www.coze.cn/work_flow?execute_id=1"}`,
		"",
	}, "\n")

	c := newTestClient(t, sseHandler(t, frames))

	events, err := c.StreamRun(context.Background(), RunRequest{WorkflowID: "7340"})
	require.NoError(t, err)

	chunks, err := collect(t, events)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	assert.Equal(t, "0", chunks[0].ID)
	assert.Equal(t, ChunkData, chunks[0].Kind())
	assert.Equal(t, PayloadStructured, chunks[0].Payload().Kind)

	assert.Equal(t, EventPing, chunks[1].Event)
	assert.True(t, chunks[1].Payload().IsZero())

	assert.Equal(t, "plain", chunks[2].Payload().String())

	assert.Equal(t, ChunkCompletion, chunks[3].Kind())
}

func TestStreamRun_ErrorChunk(t *testing.T) {
	frames := "event: Error\ndata: {\"error_code\":720701002,\"error_message\":\"node timeout\"}\n\n"
	c := newTestClient(t, sseHandler(t, frames))

	events, err := c.StreamRun(context.Background(), RunRequest{WorkflowID: "7340"})
	require.NoError(t, err)

	chunks, err := collect(t, events)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, ChunkError, chunks[0].Kind())
	msg, code := chunks[0].ErrorDetail()
	assert.Equal(t, "node timeout", msg)
	assert.Equal(t, 720701002, code)
}

func TestStreamRun_CRLFAndMultilineData(t *testing.T) {
	frames := "event: Message\r\ndata: line1\r\ndata: line2\r\n\r\ndata: {\"tail\":true}"
	c := newTestClient(t, sseHandler(t, frames))

	events, err := c.StreamRun(context.Background(), RunRequest{WorkflowID: "7340"})
	require.NoError(t, err)

	chunks, err := collect(t, events)
	require.NoError(t, err)
	require.Len(t, chunks, 2, "trailing frame without blank line is still delivered")

	assert.Equal(t, "line1\nline2", string(chunks[0].Data))
	assert.Equal(t, EventMessage, chunks[1].Event, "missing event name defaults to Message")
}

func TestStreamRun_JSONEnvelopeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, `{"code":4000,"msg":"The requested workflow does not exist"}`)
	})

	_, err := c.StreamRun(context.Background(), RunRequest{WorkflowID: "missing"})
	var terr *cozeerrors.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 4000, terr.Code)
	assert.Equal(t, "The requested workflow does not exist", terr.Message)
}

func TestStreamRun_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"code":4100,"msg":"authentication is invalid"}`)
	})

	_, err := c.StreamRun(context.Background(), RunRequest{WorkflowID: "7340"})
	var terr *cozeerrors.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusUnauthorized, terr.StatusCode)
	assert.Equal(t, "stream_run", terr.Operation)
}

func TestStreamRun_CancelStopsProducer(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for i := 0; i < 3; i++ {
			io.WriteString(w, "event: Message\ndata: \"x\"\n\n")
		}
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.StreamRun(ctx, RunRequest{WorkflowID: "7340"})
	require.NoError(t, err)

	first := <-events
	require.NoError(t, first.Err)
	cancel()

	done := make(chan struct{})
	go func() {
		for range events {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream channel was not closed after cancellation")
	}
}

func TestChunk_String(t *testing.T) {
	c := Chunk{ID: "1", Event: EventMessage, Data: []byte(`{"content":"hi"}`)}
	assert.Equal(t, "{\n  \"id\": \"1\",\n  \"event\": \"Message\",\n  \"data\": {\n    \"content\": \"hi\"\n  }\n}", c.String())

	raw := Chunk{Event: EventMessage, Data: []byte("not json")}
	assert.Contains(t, raw.String(), `"data": "not json"`)
}
