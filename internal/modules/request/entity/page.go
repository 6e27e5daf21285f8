package entity

import (
	"time"

	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

const CodePageNotFound = "PAGE_NOT_FOUND"

var ErrPageNotFound = apperror.NewPersistance(
	CodePageNotFound,
	"page record not found",
)

type PageStatus string

const (
	PageStatusExtracted            PageStatus = "extracted"
	PageStatusOCRComplete          PageStatus = "ocr_complete"
	PageStatusClassified           PageStatus = "classified"
	PageStatusClassificationReview PageStatus = "classification_review"
	PageStatusGrouped              PageStatus = "grouped"
)

// Page is one extracted page of a request. (request_id, page_index) is
// unique; document_id stays null until grouping assigns the page to a logical
// document and never changes afterwards.
type Page struct {
	ID              string         `gorm:"column:id;type:uuid;primaryKey"`
	RequestID       string         `gorm:"column:request_id;type:uuid;not null;uniqueIndex:uq_pages_request_page_index;index:idx_pages_request"`
	PageIndex       int            `gorm:"column:page_index;type:int;not null;uniqueIndex:uq_pages_request_page_index"`
	Status          PageStatus     `gorm:"column:status;type:varchar(50);not null;default:'extracted'"`
	FileStoragePath *string        `gorm:"column:file_storage_path;type:varchar(1000)"`
	OCRText         *string        `gorm:"column:ocr_text;type:text"`
	OCRConfidence   *float64       `gorm:"column:ocr_confidence;type:real"`
	DocType         *string        `gorm:"column:doc_type;type:varchar(100)"`
	ClassConfidence *float64       `gorm:"column:classification_confidence;type:real"`
	DocumentID      *string        `gorm:"column:document_id;type:uuid;index:idx_pages_document"`
	Metadata        map[string]any `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (Page) TableName() string {
	return "pages"
}

// TypeOrUnknown buckets unclassified pages for the grouping pass.
func (p *Page) TypeOrUnknown() string {
	if p.DocType == nil || *p.DocType == "" {
		return "unknown"
	}
	return *p.DocType
}
