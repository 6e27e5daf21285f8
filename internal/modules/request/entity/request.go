package entity

import (
	"time"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

// [ENTITY STANDARD: DOMAIN SPECIFIC ERROR]
const (
	CodeRequestNotFound      = "REQUEST_NOT_FOUND"
	CodeRequestTerminalState = "REQUEST_TERMINAL_STATE"
)

var (
	ErrRequestNotFound = apperror.NewPersistance(
		CodeRequestNotFound,
		"request record not found",
	)

	ErrRequestTerminalState = apperror.NewPersistance(
		CodeRequestTerminalState,
		"request is in a terminal state and cannot transition",
	)
)

type RequestStatus string

// Request lifecycle. Transitions are monotonic through the processing chain;
// the SLA monitor may override any non-terminal status to SLA_BREACHED, and
// nothing ever transitions out of a terminal status.
const (
	RequestStatusReceived      RequestStatus = "received"
	RequestStatusRouting       RequestStatus = "routing"
	RequestStatusSplitting     RequestStatus = "splitting"
	RequestStatusClassifying   RequestStatus = "classifying"
	RequestStatusExtracting    RequestStatus = "extracting"
	RequestStatusConsolidating RequestStatus = "consolidating"
	RequestStatusCompleted     RequestStatus = "completed"
	RequestStatusFailed        RequestStatus = "failed"
	RequestStatusSLABreached   RequestStatus = "sla_breached"
)

// TerminalStatuses are the states no later stage may overwrite.
var TerminalStatuses = []RequestStatus{
	RequestStatusCompleted,
	RequestStatusFailed,
	RequestStatusSLABreached,
}

// IsTerminal reports whether s admits no further transitions.
func (s RequestStatus) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// Request is the central tracking row for one client submission. It owns its
// pages, documents, back-office tasks, and aggregation rounds.
type Request struct {
	ID              string         `gorm:"column:id;type:uuid;primaryKey"`
	ExternalID      *string        `gorm:"column:external_id;type:varchar(255)"`
	Channel         string         `gorm:"column:channel;type:varchar(100);not null"`
	WorkflowName    string         `gorm:"column:workflow_name;type:varchar(100);not null"`
	Status          RequestStatus  `gorm:"column:status;type:varchar(50);not null;default:'received';index:idx_requests_status"`
	Priority        int            `gorm:"column:priority;type:int;not null;default:5"`
	DeadlineUTC     *time.Time     `gorm:"column:deadline_utc;type:timestamptz"`
	SLASeconds      *int           `gorm:"column:sla_seconds;type:int"`
	OriginalName    *string        `gorm:"column:original_filename;type:varchar(500)"`
	FileStoragePath *string        `gorm:"column:file_storage_path;type:varchar(1000)"`
	PageCount       *int           `gorm:"column:page_count;type:int"`
	DocumentCount   *int           `gorm:"column:document_count;type:int"`
	ResultPayload   map[string]any `gorm:"column:result_payload;type:jsonb;serializer:json"`
	ErrorMessage    *string        `gorm:"column:error_message;type:text"`
	Metadata        map[string]any `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;type:timestamptz;not null;autoUpdateTime"`
	CompletedAt     *time.Time     `gorm:"column:completed_at;type:timestamptz"`

	Pages     []Page     `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE"`
	Documents []Document `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Request) TableName() string {
	return "requests"
}
