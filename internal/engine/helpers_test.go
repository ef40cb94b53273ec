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

package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	"github.com/davidwuwu001/coze-workflow-api/internal/history"
	"github.com/davidwuwu001/coze-workflow-api/internal/storage/memory"
	"github.com/davidwuwu001/coze-workflow-api/pkg/parameter"
)

const (
	testToken    = "pat_0123456789abcdefghijKLMNOP"
	testWorkflow = "7340000000000000001"
)

// mapSettings is an in-memory Settings.
type mapSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapSettings() *mapSettings {
	return &mapSettings{values: map[string]string{}}
}

func (s *mapSettings) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *mapSettings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

type fixture struct {
	engine   *Engine
	history  *history.Store
	settings *mapSettings
	hits     *atomic.Int32
}

func newFixture(t *testing.T, handler http.HandlerFunc, token string, opts ...Option) *fixture {
	t.Helper()

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := coze.New(coze.WithBaseURL(server.URL), coze.WithToken(token))
	require.NoError(t, err)

	store := history.New(memory.New())
	settings := newMapSettings()
	all := append([]Option{WithHistory(store), WithSettings(settings)}, opts...)

	return &fixture{
		engine:   New(client, all...),
		history:  store,
		settings: settings,
		hits:     hits,
	}
}

func sse(frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, strings.Join(frames, "\n")+"\n")
	}
}

func jsonResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func textParams() []parameter.Parameter {
	return []parameter.Parameter{parameter.New("text", "hello", parameter.TypeString)}
}

func streamRequest() Request {
	return Request{WorkflowID: testWorkflow, Parameters: textParams(), Mode: ModeStream}
}

func asyncRequest() Request {
	return Request{WorkflowID: testWorkflow, Parameters: textParams(), Mode: ModeAsync}
}

func mustExecute(t *testing.T, e *Engine, req Request) *Outcome {
	t.Helper()
	out, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}
