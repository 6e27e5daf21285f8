package stages

import (
	"context"
	"strconv"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	aggentity "github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	aggrepo "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
)

// Routing keys emitted by the aggregators. These are deliberate literals:
// the destinations are not the sequential successor of the incoming message,
// so sentinel routing does not apply.
const (
	extractRoutingKey     = "doc.extract"
	consolidateRoutingKey = "request.consolidate"
)

// Stage names stamped on fan-out messages so downstream Next resolution
// starts from the right place.
const (
	extractionStageName    = "extraction"
	consolidationStageName = "consolidation"
)

// ClassificationAggregator is the fan-in for classified pages. Every sibling
// increments the (request, classification) counter; the one that lands the
// final count runs the grouping finalization: materialize logical documents,
// seed the extraction round, and fan out one message per document.
type ClassificationAggregator struct {
	log        logger.Logger
	aggCmd     aggrepo.StateCommandRepository
	requestCmd requestrepo.RequestCommandRepository
	pageCmd    requestrepo.PageCommandRepository
	pageQry    requestrepo.PageQueryRepository
	docCmd     requestrepo.DocumentCommandRepository
}

var _ runtime.Stage = (*ClassificationAggregator)(nil)

func NewClassificationAggregator(deps Dependencies) *ClassificationAggregator {
	return &ClassificationAggregator{
		log:        deps.Log.WithField("component", ComponentClassificationAggregator),
		aggCmd:     deps.Repo.AggCmd,
		requestCmd: deps.Repo.RequestCmd,
		pageCmd:    deps.Repo.PageCmd,
		pageQry:    deps.Repo.PageQry,
		docCmd:     deps.Repo.DocCmd,
	}
}

func (s *ClassificationAggregator) Component() string { return ComponentClassificationAggregator }

func (s *ClassificationAggregator) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	progress, err := s.aggCmd.IncrementAndGet(ctx, msg.RequestID, aggentity.StageClassification)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		// Never blocks other siblings: the message is absorbed and the round
		// continues without it.
		s.log.WithField("request_id", msg.RequestID).Error("aggregation state not found")
		return nil, nil
	}

	s.log.WithFields(map[string]any{
		"request_id": msg.RequestID,
		"received":   progress.Received,
		"expected":   progress.Expected,
	}).Info("classification progress")

	if !progress.Done() {
		return nil, nil
	}

	// The completion flag flips exactly once; a redelivered final sibling
	// (counter clamped at expected) loses this guard and emits nothing.
	finalize, err := s.aggCmd.MarkComplete(ctx, msg.RequestID, aggentity.StageClassification)
	if err != nil {
		return nil, err
	}
	if !finalize {
		s.log.WithField("request_id", msg.RequestID).Warn("round already finalized, absorbing redelivery")
		return nil, nil
	}

	return s.finalize(ctx, msg)
}

func (s *ClassificationAggregator) finalize(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	pages, err := s.pageQry.FindByRequestOrdered(ctx, msg.RequestID)
	if err != nil {
		return nil, err
	}

	groups := GroupPages(pages)
	docCount := len(groups)

	if _, err := s.requestCmd.SetDocumentCount(ctx, msg.RequestID, docCount, entity.RequestStatusExtracting); err != nil {
		return nil, err
	}

	if err := s.aggCmd.Create(ctx, &aggentity.State{
		ID:            uid.NewUUID(),
		RequestID:     msg.RequestID,
		Stage:         aggentity.StageExtraction,
		ExpectedCount: docCount,
	}); err != nil {
		return nil, err
	}

	if docCount == 0 {
		// No pages means no documents and no extraction siblings will ever
		// arrive. The round still finalizes here so the request can reach
		// completion instead of hanging on an empty fan-in.
		if _, err := s.aggCmd.MarkComplete(ctx, msg.RequestID, aggentity.StageExtraction); err != nil {
			return nil, err
		}
		if _, err := s.requestCmd.TransitionStatus(ctx, msg.RequestID, entity.RequestStatusConsolidating); err != nil {
			return nil, err
		}

		s.log.WithField("request_id", msg.RequestID).Warn("no pages to group, consolidating empty request")

		out := msg.WithPayload(ComponentClassificationAggregator, nil)
		out.CurrentStage = consolidationStageName
		out.DocumentCount = envelope.IntPtr(0)
		return []runtime.Outgoing{{Key: consolidateRoutingKey, Message: out}}, nil
	}

	ocrByIndex := make(map[int]string, len(pages))
	for i := range pages {
		if pages[i].OCRText != nil {
			ocrByIndex[pages[i].PageIndex] = *pages[i].OCRText
		}
	}
	pageIDByIndex := make(map[int]string, len(pages))
	for i := range pages {
		pageIDByIndex[pages[i].PageIndex] = pages[i].ID
	}

	outgoing := make([]runtime.Outgoing, 0, docCount)
	for _, group := range groups {
		doc := &entity.Document{
			ID:          uid.NewUUID(),
			RequestID:   msg.RequestID,
			DocType:     group.DocType,
			PageIndices: group.PageIndices,
			Status:      entity.DocumentStatusCreated,
		}
		if err := s.docCmd.Create(ctx, doc); err != nil {
			return nil, err
		}

		ocrTexts := make(map[string]any, len(group.PageIndices))
		for _, pi := range group.PageIndices {
			if err := s.pageCmd.AssignDocument(ctx, pageIDByIndex[pi], doc.ID); err != nil {
				return nil, err
			}
			ocrTexts[strconv.Itoa(pi)] = ocrByIndex[pi]
		}

		docMsg := msg.WithPayload(ComponentClassificationAggregator, map[string]any{
			"document_id":  doc.ID,
			"doc_type":     group.DocType,
			"page_indices": group.PageIndices,
			"ocr_texts":    ocrTexts,
		})
		docMsg.CurrentStage = extractionStageName
		docMsg.DocumentID = doc.ID
		docMsg.DocumentCount = envelope.IntPtr(docCount)
		outgoing = append(outgoing, runtime.Outgoing{Key: extractRoutingKey, Message: docMsg})
	}

	s.log.WithFields(map[string]any{
		"request_id":        msg.RequestID,
		"documents_created": docCount,
	}).Info("classification aggregation complete")
	return outgoing, nil
}
