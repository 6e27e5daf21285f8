package entity

import (
	"time"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

const CodeDocumentNotFound = "DOCUMENT_NOT_FOUND"

var ErrDocumentNotFound = apperror.NewPersistance(
	CodeDocumentNotFound,
	"document record not found",
)

type DocumentStatus string

const (
	DocumentStatusCreated          DocumentStatus = "created"
	DocumentStatusExtracted        DocumentStatus = "extracted"
	DocumentStatusExtractionReview DocumentStatus = "extraction_review"
	DocumentStatusCompleted        DocumentStatus = "completed"
)

// Document is a logical document produced by grouping contiguous pages of the
// same type. PageIndices is non-empty, contiguous, ascending, and disjoint
// across documents of the same request.
type Document struct {
	ID            string         `gorm:"column:id;type:uuid;primaryKey"`
	RequestID     string         `gorm:"column:request_id;type:uuid;not null;index:idx_documents_request"`
	DocType       string         `gorm:"column:doc_type;type:varchar(100);not null"`
	PageIndices   []int          `gorm:"column:page_indices;type:jsonb;serializer:json;not null"`
	Status        DocumentStatus `gorm:"column:status;type:varchar(50);not null;default:'created'"`
	ExtractedData map[string]any `gorm:"column:extracted_data;type:jsonb;serializer:json"`
	ExtConfidence *float64       `gorm:"column:extraction_confidence;type:real"`
	Metadata      map[string]any `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt     time.Time      `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (Document) TableName() string {
	return "documents"
}
