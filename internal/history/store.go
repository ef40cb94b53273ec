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

// Package history keeps a bounded, newest-first log of workflow execution
// attempts. Persistence failures are logged and counted but never returned,
// so losing history can never abort an execution.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidwuwu001/coze-workflow-api/internal/metrics"
	"github.com/davidwuwu001/coze-workflow-api/internal/storage"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// MaxRecords is the hard cap on stored records.
const MaxRecords = 100

// BlobKey names the persisted collection.
const BlobKey = "coze-workflow-history"

// Record is one terminal execution attempt. Records are never modified
// after creation.
type Record struct {
	ID        string `json:"id"`
	Input     string `json:"input"`
	Result    string `json:"result"`
	Timestamp int64  `json:"timestamp"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Entry is a record before the store assigns its id and timestamp.
type Entry struct {
	Input   string
	Result  string
	Success bool
	Error   string
}

// collection is the persisted blob layout.
type collection struct {
	Records []Record `json:"records"`
}

// Store is the history log. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	blobs  storage.BlobStore
	logger *slog.Logger
	now    func() time.Time
	limit  int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report swallowed persistence errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLimit lowers the record cap. Values outside [1, MaxRecords] are ignored.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 && n <= MaxRecords {
			s.limit = n
		}
	}
}

// New creates a Store persisting into blobs.
func New(blobs storage.BlobStore, opts ...Option) *Store {
	s := &Store{
		blobs:  blobs,
		logger: slog.Default(),
		now:    time.Now,
		limit:  MaxRecords,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append assigns a fresh id and the current time to e, prepends it and
// trims the log to the record cap. The created record is returned even when
// it could not be persisted.
func (s *Store) Append(ctx context.Context, e Entry) Record {
	record := Record{
		ID:        uuid.NewString(),
		Input:     e.Input,
		Result:    e.Result,
		Timestamp: s.now().UnixMilli(),
		Success:   e.Success,
		Error:     e.Error,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load(ctx)
	records = append([]Record{record}, records...)
	if len(records) > s.limit {
		records = records[:s.limit]
	}

	s.save(ctx, "append", records)
	return record
}

// List returns all records, newest first. Missing or unreadable data yields
// an empty list.
func (s *Store) List(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (Record, bool) {
	for _, r := range s.List(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Remove deletes the record with the given id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load(ctx)
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(records) {
		return
	}

	s.save(ctx, "remove", kept)
}

// Clear deletes every record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(ctx, BlobKey); err != nil {
		s.report("clear", err)
	}
}

// load reads the collection. Callers hold s.mu.
func (s *Store) load(ctx context.Context) []Record {
	data, err := s.blobs.Load(ctx, BlobKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []Record{}
	}
	if err != nil {
		s.report("list", err)
		return []Record{}
	}

	var c collection
	if err := json.Unmarshal(data, &c); err != nil {
		s.report("list", err)
		return []Record{}
	}
	if c.Records == nil {
		return []Record{}
	}
	return c.Records
}

// save writes the collection. Callers hold s.mu.
func (s *Store) save(ctx context.Context, op string, records []Record) {
	data, err := json.Marshal(collection{Records: records})
	if err == nil {
		err = s.blobs.Save(ctx, BlobKey, data)
	}
	if err != nil {
		s.report(op, err)
	}
}

func (s *Store) report(op string, err error) {
	perr := &cozeerrors.PersistenceError{Operation: op, Cause: err}
	metrics.RecordPersistenceError(op, metrics.ErrorType(err))
	s.logger.Warn("history persistence failed",
		slog.String("operation", op),
		slog.Any("error", perr),
	)
}

// FormatTimestamp renders a millisecond Unix timestamp in local time.
func FormatTimestamp(ts int64) string {
	return time.UnixMilli(ts).Local().Format("2006/01/02 15:04:05")
}
