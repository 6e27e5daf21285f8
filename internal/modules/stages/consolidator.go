package stages

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
	"github.com/SergioST90/document-processing-system/internal/pkg/ptr"
)

// Consolidator is the terminal stage: it assembles the final result artifact
// from the request's documents and closes the request. It emits nothing.
type Consolidator struct {
	log        logger.Logger
	requestCmd requestrepo.RequestCommandRepository
	requestQry requestrepo.RequestQueryRepository
	docCmd     requestrepo.DocumentCommandRepository
	docQry     requestrepo.DocumentQueryRepository
}

var _ runtime.Stage = (*Consolidator)(nil)

func NewConsolidator(deps Dependencies) *Consolidator {
	return &Consolidator{
		log:        deps.Log.WithField("component", ComponentConsolidator),
		requestCmd: deps.Repo.RequestCmd,
		requestQry: deps.Repo.RequestQry,
		docCmd:     deps.Repo.DocCmd,
		docQry:     deps.Repo.DocQry,
	}
}

func (s *Consolidator) Component() string { return ComponentConsolidator }

func (s *Consolidator) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	request, err := s.requestQry.FindByID(ctx, msg.RequestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		s.log.WithField("request_id", msg.RequestID).Error("request not found")
		return nil, nil
	}

	documents, err := s.docQry.FindByRequestOrdered(ctx, msg.RequestID)
	if err != nil {
		return nil, err
	}

	summaries := make([]any, 0, len(documents))
	for _, doc := range documents {
		data := doc.ExtractedData
		if data == nil {
			data = map[string]any{}
		}
		summaries = append(summaries, map[string]any{
			"document_id":           doc.ID,
			"doc_type":              doc.DocType,
			"page_indices":          doc.PageIndices,
			"extracted_data":        data,
			"extraction_confidence": doc.ExtConfidence,
			"status":                string(entity.DocumentStatusCompleted),
		})
	}

	totalPages := ptr.ToValue(request.PageCount)

	resultPayload := map[string]any{
		"request_id":      request.ID,
		"workflow":        request.WorkflowName,
		"total_pages":     totalPages,
		"total_documents": len(documents),
		"documents":       summaries,
	}

	if err := s.docCmd.MarkAllCompleted(ctx, msg.RequestID); err != nil {
		return nil, err
	}

	// Guarded completion: a request breached mid-flight keeps its terminal
	// status; the result payload write is simply skipped.
	completed, err := s.requestCmd.Complete(ctx, msg.RequestID, resultPayload, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !completed {
		s.log.WithFields(map[string]any{
			"request_id": msg.RequestID,
			"status":     string(request.Status),
		}).Warn("request already terminal, consolidation result discarded")
		return nil, nil
	}

	s.log.WithFields(map[string]any{
		"request_id":  msg.RequestID,
		"documents":   len(documents),
		"total_pages": totalPages,
	}).Info("consolidation complete")

	return nil, nil
}
