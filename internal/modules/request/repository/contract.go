package repository

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
)

// -------- Repository Command --------

type RequestCommandRepository interface {
	Create(ctx context.Context, request *entity.Request) error

	// SetRouting stamps the SLA budget and absolute deadline while advancing
	// to the routing status. Returns false when the request is already
	// terminal (e.g. breached before the router ran).
	SetRouting(ctx context.Context, id string, deadline time.Time, slaSeconds int) (bool, error)

	// SetSplitResult records the page count exactly once and advances the
	// status. Returns false when the count was already set or the request is
	// terminal, which makes splitter redelivery a no-op.
	SetSplitResult(ctx context.Context, id string, pageCount int, status entity.RequestStatus) (bool, error)

	// SetDocumentCount records the document count exactly once and advances
	// the status.
	SetDocumentCount(ctx context.Context, id string, documentCount int, status entity.RequestStatus) (bool, error)

	// TransitionStatus performs a guarded status advance: terminal statuses
	// are never overwritten. Returns false when the guard refused the update.
	TransitionStatus(ctx context.Context, id string, status entity.RequestStatus) (bool, error)

	// Complete sets the result payload, the completed status, and
	// completed_at in one guarded update.
	Complete(ctx context.Context, id string, resultPayload map[string]any, completedAt time.Time) (bool, error)

	// MarkSLABreached overrides any non-terminal status with sla_breached and
	// records the breach message.
	MarkSLABreached(ctx context.Context, id string, errorMessage string, at time.Time) (bool, error)
}

type PageCommandRepository interface {
	Create(ctx context.Context, page *entity.Page) error

	// UpdateOCR writes the OCR result for (request, page_index). Re-applying
	// the same result on redelivery is harmless.
	UpdateOCR(ctx context.Context, requestID string, pageIndex int, text string, confidence float64) error

	// UpdateClassification writes doc type, confidence, and status for
	// (request, page_index).
	UpdateClassification(ctx context.Context, requestID string, pageIndex int, docType string, confidence float64, status entity.PageStatus) error

	// UpdateClassificationByID is the back-office variant, addressed by page id.
	UpdateClassificationByID(ctx context.Context, pageID string, docType string, confidence float64, status entity.PageStatus) error

	// AssignDocument links a page to its logical document. The link is
	// write-once: pages already assigned are left untouched.
	AssignDocument(ctx context.Context, pageID string, documentID string) error
}

type DocumentCommandRepository interface {
	Create(ctx context.Context, document *entity.Document) error

	// UpdateExtraction writes the extraction result and status for a document.
	UpdateExtraction(ctx context.Context, id string, data map[string]any, confidence float64, status entity.DocumentStatus) error

	// MarkAllCompleted flips every document of the request to completed.
	MarkAllCompleted(ctx context.Context, requestID string) error
}

// -------- Repository Query --------

type RequestQueryRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Request, error)

	// FindBreached returns active requests whose deadline has passed.
	FindBreached(ctx context.Context, now time.Time) ([]entity.Request, error)

	// FindAtRisk returns active requests whose remaining time is below the
	// given fraction of their SLA budget (deadline still in the future).
	FindAtRisk(ctx context.Context, now time.Time, remainingFraction float64) ([]AtRiskRequest, error)
}

// AtRiskRequest is the monitor's warning projection.
type AtRiskRequest struct {
	ID               string
	Status           entity.RequestStatus
	DeadlineUTC      time.Time
	RemainingSeconds float64
}

type PageQueryRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Page, error)

	// FindByRequestIndex returns the page at (request_id, page_index).
	FindByRequestIndex(ctx context.Context, requestID string, pageIndex int) (*entity.Page, error)

	// FindByRequestOrdered returns every page of the request in page_index
	// order. Grouping correctness depends on this ordering.
	FindByRequestOrdered(ctx context.Context, requestID string) ([]entity.Page, error)
}

type DocumentQueryRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Document, error)

	// FindByRequestOrdered returns the request's documents in creation order.
	FindByRequestOrdered(ctx context.Context, requestID string) ([]entity.Document, error)
}
