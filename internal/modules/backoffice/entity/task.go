package entity

import (
	"time"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

// [ENTITY STANDARD: DOMAIN SPECIFIC ERROR]
const (
	CodeTaskNotFound     = "TASK_NOT_FOUND"
	CodeTaskNotClaimable = "TASK_NOT_CLAIMABLE"
	CodeTaskNotAssigned  = "TASK_NOT_ASSIGNED"
)

var (
	ErrTaskNotFound = apperror.NewPersistance(
		CodeTaskNotFound,
		"back-office task not found",
	)

	ErrTaskNotClaimable = apperror.NewPersistance(
		CodeTaskNotClaimable,
		"task is no longer pending and cannot be claimed",
	)

	ErrTaskNotAssigned = apperror.NewPersistance(
		CodeTaskNotAssigned,
		"task must be assigned before a result can be submitted",
	)
)

type TaskType string

const (
	TaskTypeClassification TaskType = "classification"
	TaskTypeExtraction     TaskType = "extraction"
)

type TaskStatus string

// Task lifecycle: pending -> assigned -> completed. Completion is terminal.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusAssigned  TaskStatus = "assigned"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is a human work item created when machine confidence falls below a
// stage's threshold. ReferenceID points at a page (classification) or a
// document (extraction) of the owning request. InputData snapshots the
// machine output so the operator sees exactly what the pipeline saw.
type Task struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey"`
	RequestID      string         `gorm:"column:request_id;type:uuid;not null;index:idx_bo_tasks_request"`
	TaskType       TaskType       `gorm:"column:task_type;type:varchar(50);not null"`
	ReferenceID    string         `gorm:"column:reference_id;type:uuid;not null"`
	Status         TaskStatus     `gorm:"column:status;type:varchar(50);not null;default:'pending';index:idx_bo_tasks_status,priority:1"`
	Priority       int            `gorm:"column:priority;type:int;not null;default:5;index:idx_bo_tasks_status,priority:2"`
	AssignedTo     *string        `gorm:"column:assigned_to;type:varchar(100)"`
	AssignedAt     *time.Time     `gorm:"column:assigned_at;type:timestamptz"`
	InputData      map[string]any `gorm:"column:input_data;type:jsonb;serializer:json;not null"`
	OutputData     map[string]any `gorm:"column:output_data;type:jsonb;serializer:json"`
	DeadlineUTC    *time.Time     `gorm:"column:deadline_utc;type:timestamptz"`
	RequiredSkills []string       `gorm:"column:required_skills;type:jsonb;serializer:json"`
	SourceStage    *string        `gorm:"column:source_stage;type:varchar(100)"`
	WorkflowName   *string        `gorm:"column:workflow_name;type:varchar(100)"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
	CompletedAt    *time.Time     `gorm:"column:completed_at;type:timestamptz"`
}

func (Task) TableName() string {
	return "backoffice_tasks"
}
