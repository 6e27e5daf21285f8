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
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
)

// Splitter fans a request out into per-page work. In the same transaction it
// records the page count, seeds the classification fan-in counter, and
// inserts the page rows; only after that commits do the page messages go out.
// That ordering is what guarantees every downstream increment finds its
// counter row.
type Splitter struct {
	log        logger.Logger
	requestCmd requestrepo.RequestCommandRepository
	pageCmd    requestrepo.PageCommandRepository
	aggCmd     aggrepo.StateCommandRepository
}

var _ runtime.Stage = (*Splitter)(nil)

func NewSplitter(deps Dependencies) *Splitter {
	return &Splitter{
		log:        deps.Log.WithField("component", ComponentSplitter),
		requestCmd: deps.Repo.RequestCmd,
		pageCmd:    deps.Repo.PageCmd,
		aggCmd:     deps.Repo.AggCmd,
	}
}

func (s *Splitter) Component() string { return ComponentSplitter }

func (s *Splitter) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	filePath, _ := msg.Payload["file_path"].(string)

	// Stub page decoder: 3-5 pages, derived from the request id so a
	// redelivered split decides the same count.
	pageCount := 3 + pickHash(msg.RequestID, 3)

	s.log.WithFields(map[string]any{
		"request_id": msg.RequestID,
		"file_path":  filePath,
		"page_count": pageCount,
	}).Info("splitting file")

	// page_count is write-once: a replayed split finds it already set and
	// emits nothing, so the fan-out fires at most once.
	applied, err := s.requestCmd.SetSplitResult(ctx, msg.RequestID, pageCount, entity.RequestStatusSplitting)
	if err != nil {
		return nil, err
	}
	if !applied {
		s.log.WithField("request_id", msg.RequestID).Warn("split already applied, absorbing redelivery")
		return nil, nil
	}

	if err := s.aggCmd.Create(ctx, &aggentity.State{
		ID:            uid.NewUUID(),
		RequestID:     msg.RequestID,
		Stage:         aggentity.StageClassification,
		ExpectedCount: pageCount,
	}); err != nil {
		return nil, err
	}

	outgoing := make([]runtime.Outgoing, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		page := &entity.Page{
			ID:              uid.NewUUID(),
			RequestID:       msg.RequestID,
			PageIndex:       i,
			Status:          entity.PageStatusExtracted,
			FileStoragePath: &filePath,
		}
		if err := s.pageCmd.Create(ctx, page); err != nil {
			return nil, err
		}

		pageMsg := msg.WithPayload(ComponentSplitter, map[string]any{
			"page_id":    page.ID,
			"page_index": i,
		})
		pageMsg.PageIndex = envelope.IntPtr(i)
		pageMsg.PageCount = envelope.IntPtr(pageCount)
		outgoing = append(outgoing, runtime.Outgoing{Key: routing.Next, Message: pageMsg})
	}

	// The request is now waiting on its pages.
	if _, err := s.requestCmd.TransitionStatus(ctx, msg.RequestID, entity.RequestStatusClassifying); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"request_id":    msg.RequestID,
		"pages_created": pageCount,
	}).Info("split complete")
	return outgoing, nil
}
