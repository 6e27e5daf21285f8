package usecase

import (
	"context"
	"time"
)

// -------- DTOs --------

type ListTasksRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=pending assigned completed" label:"Status"`
	Skill  string `json:"skill" validate:"omitempty,max=100" label:"Skill"`
}

type TaskSummary struct {
	ID          string         `json:"id"`
	RequestID   string         `json:"request_id"`
	TaskType    string         `json:"task_type"`
	Status      string         `json:"status"`
	Priority    int            `json:"priority"`
	AssignedTo  *string        `json:"assigned_to"`
	CreatedAt   time.Time      `json:"created_at"`
	DeadlineUTC *time.Time     `json:"deadline_utc"`
	InputData   map[string]any `json:"input_data"`
}

type ListTasksResponse struct {
	Tasks []TaskSummary `json:"tasks"`
}

type ClaimTaskRequest struct {
	TaskID   string `json:"task_id" validate:"required,uuid" label:"Task ID"`
	Operator string `json:"operator" validate:"required,min=1,max=100" label:"Operator"`
}

type ClaimTaskResponse struct {
	TaskID     string `json:"task_id"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

type SubmitTaskRequest struct {
	TaskID   string `json:"task_id" validate:"required,uuid" label:"Task ID"`
	Operator string `json:"operator" validate:"required,min=1,max=100" label:"Operator"`

	// DocType is the operator's classification verdict (classification tasks).
	DocType string `json:"doc_type" validate:"omitempty,max=100" label:"Document type"`

	// ExtractedData is the operator's corrected extraction (extraction tasks).
	ExtractedData map[string]any `json:"extracted_data" label:"Extracted data"`
}

type SubmitTaskResponse struct {
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

// -------- Usecase Interfaces --------

type ListTasksUseCase interface {
	Execute(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
}

type ClaimTaskUseCase interface {
	Execute(ctx context.Context, req *ClaimTaskRequest) (*ClaimTaskResponse, error)
}

// SubmitTaskUseCase closes the human-review loop: the operator's verdict is
// written to the underlying page or document, the task is completed, and the
// pipeline message is re-published on the same logical routing key the
// automatic path would have used.
type SubmitTaskUseCase interface {
	Execute(ctx context.Context, req *SubmitTaskRequest) (*SubmitTaskResponse, error)
}
