package stages

import (
	"context"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	aggentity "github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	aggrepo "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
)

// ExtractionAggregator is the fan-in for extracted documents. Finalization
// is a single hand-off to the consolidator.
type ExtractionAggregator struct {
	log        logger.Logger
	aggCmd     aggrepo.StateCommandRepository
	requestCmd requestrepo.RequestCommandRepository
}

var _ runtime.Stage = (*ExtractionAggregator)(nil)

func NewExtractionAggregator(deps Dependencies) *ExtractionAggregator {
	return &ExtractionAggregator{
		log:        deps.Log.WithField("component", ComponentExtractionAggregator),
		aggCmd:     deps.Repo.AggCmd,
		requestCmd: deps.Repo.RequestCmd,
	}
}

func (s *ExtractionAggregator) Component() string { return ComponentExtractionAggregator }

func (s *ExtractionAggregator) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	progress, err := s.aggCmd.IncrementAndGet(ctx, msg.RequestID, aggentity.StageExtraction)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		s.log.WithField("request_id", msg.RequestID).Error("aggregation state not found")
		return nil, nil
	}

	s.log.WithFields(map[string]any{
		"request_id": msg.RequestID,
		"received":   progress.Received,
		"expected":   progress.Expected,
	}).Info("extraction progress")

	if !progress.Done() {
		return nil, nil
	}

	finalize, err := s.aggCmd.MarkComplete(ctx, msg.RequestID, aggentity.StageExtraction)
	if err != nil {
		return nil, err
	}
	if !finalize {
		s.log.WithField("request_id", msg.RequestID).Warn("round already finalized, absorbing redelivery")
		return nil, nil
	}

	if _, err := s.requestCmd.TransitionStatus(ctx, msg.RequestID, entity.RequestStatusConsolidating); err != nil {
		return nil, err
	}

	s.log.WithField("request_id", msg.RequestID).Info("extraction aggregation complete")

	out := msg.WithPayload(ComponentExtractionAggregator, nil)
	return []runtime.Outgoing{{Key: routing.Next, Message: out}}, nil
}
