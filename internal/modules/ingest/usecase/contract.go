package usecase

import (
	"context"
	"time"
)

// -------- DTOs --------

type ProcessDocumentRequest struct {
	FileName   string         `json:"file_name" validate:"required,max=500" label:"File name"`
	Content    []byte         `json:"-" validate:"required" label:"File content"`
	Channel    string         `json:"channel" validate:"omitempty,max=100" label:"Channel"`
	Workflow   string         `json:"workflow" validate:"omitempty,max=100" label:"Workflow"`
	ExternalID string         `json:"external_id" validate:"omitempty,max=255" label:"External ID"`
	Metadata   map[string]any `json:"metadata" label:"Metadata"`
}

type ProcessDocumentResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type GetStatusRequest struct {
	RequestID string `json:"request_id" validate:"required,uuid" label:"Request ID"`
}

// StageProgress reports the live fan-in state of the round the request is
// currently waiting on.
type StageProgress struct {
	Stage    string `json:"stage"`
	Received int    `json:"received"`
	Expected int    `json:"expected"`
}

type GetStatusResponse struct {
	RequestID     string         `json:"request_id"`
	Status        string         `json:"status"`
	WorkflowName  string         `json:"workflow_name"`
	CreatedAt     time.Time      `json:"created_at"`
	DeadlineUTC   *time.Time     `json:"deadline_utc,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	PageCount     *int           `json:"page_count,omitempty"`
	DocumentCount *int           `json:"document_count,omitempty"`
	Result        map[string]any `json:"result,omitempty"`
	Error         *string        `json:"error,omitempty"`
	Progress      *StageProgress `json:"progress,omitempty"`
}

// -------- Usecase Interfaces --------

// ProcessDocumentUseCase receives an upload, persists the request row, and
// publishes the initial pipeline message after the row is committed.
type ProcessDocumentUseCase interface {
	Execute(ctx context.Context, req *ProcessDocumentRequest) (*ProcessDocumentResponse, error)
}

// GetStatusUseCase reads a request's user-visible progress. Terminal results
// are served from cache once a request can no longer change.
type GetStatusUseCase interface {
	Execute(ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error)
}
