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

// Package directory lists the workflows of a Coze workspace.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/davidwuwu001/coze-workflow-api/internal/coze"
	cozelog "github.com/davidwuwu001/coze-workflow-api/internal/log"
	"github.com/davidwuwu001/coze-workflow-api/internal/metrics"
	"github.com/davidwuwu001/coze-workflow-api/internal/tracing"
	cozeerrors "github.com/davidwuwu001/coze-workflow-api/pkg/errors"
)

// KeyLastWorkspaceID is the settings key of the last listed workspace.
const KeyLastWorkspaceID = "last_workspace_id"

// Listing defaults.
const (
	DefaultPage          = 1
	DefaultPageSize      = 20
	MaxPageSize          = 100
	DefaultPublishStatus = StatusAll
)

// Publish status filters.
const (
	StatusAll       = "all"
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Client is the subset of the Coze API used for listing.
type Client interface {
	Token() string
	ListWorkflows(ctx context.Context, req coze.ListWorkflowsRequest) (*coze.WorkflowPage, error)
}

// Settings is the key/value store for values remembered between runs.
type Settings interface {
	Get(key string) string
	Set(key, value string) error
}

// Request selects one page of a workspace directory.
type Request struct {
	// WorkspaceID is the numeric workspace id. Blank falls back to the
	// last listed workspace.
	WorkspaceID   string `validate:"required,digits,min=10"`
	Page          int    `validate:"min=1"`
	PageSize      int    `validate:"min=1,max=100"`
	PublishStatus string `validate:"oneof=all published draft"`
}

// NewRequest returns a request for the first page of workspaceID.
func NewRequest(workspaceID string) Request {
	return Request{
		WorkspaceID:   workspaceID,
		Page:          DefaultPage,
		PageSize:      DefaultPageSize,
		PublishStatus: DefaultPublishStatus,
	}
}

// Page is one page of workflow descriptors.
type Page struct {
	WorkspaceID string          `json:"workspace_id"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	Items       []coze.Workflow `json:"items"`
	HasMore     bool            `json:"has_more"`
	Total       int             `json:"total,omitempty"`
}

// Directory fetches workflow listings.
type Directory struct {
	client   Client
	settings Settings
	logger   *slog.Logger
	tracer   trace.Tracer
	validate *validator.Validate
}

// Option configures a Directory.
type Option func(*Directory)

// WithSettings sets the store for the remembered workspace id.
func WithSettings(s Settings) Option {
	return func(d *Directory) {
		if s != nil {
			d.settings = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTracer sets the tracer used for listing spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Directory) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// New creates a Directory bound to client.
func New(client Client, opts ...Option) *Directory {
	d := &Directory{
		client:   client,
		settings: nopSettings{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("cozeflow/directory"),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = cozelog.WithComponent(d.logger, "directory")
	return d
}

func newValidator() *validator.Validate {
	v := validator.New()
	// "numeric" also accepts signs and decimals; workspace ids are plain digits.
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return s != ""
	})
	return v
}

// LastWorkspace returns the last successfully listed workspace id.
func (d *Directory) LastWorkspace() string {
	return d.settings.Get(KeyLastWorkspaceID)
}

// List fetches one page of the directory. Invalid input fails with a
// *errors.ValidationError before any request is made; a failed request
// fails with a *errors.DirectoryFetchError.
func (d *Directory) List(ctx context.Context, req Request) (*Page, error) {
	req.WorkspaceID = strings.TrimSpace(req.WorkspaceID)
	if req.WorkspaceID == "" {
		req.WorkspaceID = d.LastWorkspace()
	}
	if req.PublishStatus == "" {
		req.PublishStatus = DefaultPublishStatus
	}

	if err := d.check(req); err != nil {
		metrics.RecordDirectoryRequest(metrics.OutcomeInvalid)
		return nil, err
	}

	ctx, span := tracing.StartDirectory(ctx, d.tracer, req.WorkspaceID)
	defer span.End()

	logger := d.logger.With(
		slog.String("workspace_id", req.WorkspaceID),
		slog.Int("page", req.Page),
		slog.Int("page_size", req.PageSize),
		slog.String("publish_status", req.PublishStatus),
	)
	logger.Debug("listing workflows")

	result, err := d.client.ListWorkflows(ctx, coze.ListWorkflowsRequest{
		WorkspaceID:   req.WorkspaceID,
		PageNum:       req.Page,
		PageSize:      req.PageSize,
		PublishStatus: req.PublishStatus,
	})
	if err != nil {
		fetchErr := fetchError(err)
		span.RecordError(fetchErr)
		metrics.RecordDirectoryRequest(metrics.OutcomeFailure)
		logger.Warn("workflow listing failed", cozelog.Error(fetchErr))
		return nil, fetchErr
	}

	if err := d.settings.Set(KeyLastWorkspaceID, req.WorkspaceID); err != nil {
		logger.Warn("failed to save setting", slog.String("key", KeyLastWorkspaceID), cozelog.Error(err))
	}

	span.SetAttributes(attribute.Int("coze.workflow_count", len(result.Items)))
	span.Succeed()
	metrics.RecordDirectoryRequest(metrics.OutcomeSuccess)
	logger.Debug("workflows listed",
		slog.Int("count", len(result.Items)),
		slog.Bool("has_more", result.HasMore))

	items := result.Items
	if items == nil {
		items = []coze.Workflow{}
	}
	return &Page{
		WorkspaceID: req.WorkspaceID,
		Page:        req.Page,
		PageSize:    req.PageSize,
		Items:       items,
		HasMore:     result.HasMore,
		Total:       result.Total,
	}, nil
}

func (d *Directory) check(req Request) error {
	if strings.TrimSpace(d.client.Token()) == "" {
		return &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeInvalidCredential,
			Field:      "token",
			Message:    "API token is empty",
			Suggestion: "set COZE_API_TOKEN or run 'cozeflow token set'",
		}
	}

	err := d.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate directory request: %w", err)
	}
	return fieldError(fieldErrs[0], req)
}

func fieldError(fe validator.FieldError, req Request) error {
	switch fe.StructField() {
	case "WorkspaceID":
		msg := "workspace id must be a numeric string of at least 10 digits"
		if req.WorkspaceID == "" {
			msg = "workspace id is empty"
		}
		return &cozeerrors.ValidationError{
			Code:       cozeerrors.CodeInvalidWorkspaceID,
			Field:      "workspace_id",
			Message:    msg,
			Suggestion: "copy the id from the workspace URL in the Coze console",
		}
	case "Page":
		return cozeerrors.NewValidationError(cozeerrors.CodeInvalidPage, "page",
			fmt.Sprintf("page must be an integer of at least 1, got %d", req.Page))
	case "PageSize":
		return cozeerrors.NewValidationError(cozeerrors.CodeInvalidPageSize, "page_size",
			fmt.Sprintf("page size must be between 1 and %d, got %d", MaxPageSize, req.PageSize))
	default:
		return cozeerrors.NewValidationError(cozeerrors.CodeInvalidPublishStatus, "publish_status",
			fmt.Sprintf("publish status must be one of all, published, draft, got %q", req.PublishStatus))
	}
}

func fetchError(err error) error {
	var terr *cozeerrors.TransportError
	if !errors.As(err, &terr) {
		return &cozeerrors.DirectoryFetchError{Message: err.Error(), Cause: err}
	}
	msg := terr.Message
	if msg == "" && terr.Cause != nil {
		msg = terr.Cause.Error()
	}
	return &cozeerrors.DirectoryFetchError{
		StatusCode: terr.StatusCode,
		Code:       terr.Code,
		Message:    msg,
		Cause:      err,
	}
}

// Match returns the workflows whose name matches the glob pattern. An
// empty pattern matches everything.
func Match(items []coze.Workflow, pattern string) ([]coze.Workflow, error) {
	if pattern == "" {
		return items, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, cozeerrors.NewValidationError(cozeerrors.CodeInvalidPattern, "match",
			fmt.Sprintf("invalid glob pattern %q", pattern))
	}
	matched := make([]coze.Workflow, 0, len(items))
	for _, item := range items {
		ok, err := doublestar.Match(pattern, item.WorkflowName)
		if err != nil {
			return nil, fmt.Errorf("failed to match %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

type nopSettings struct{}

func (nopSettings) Get(string) string        { return "" }
func (nopSettings) Set(string, string) error { return nil }
