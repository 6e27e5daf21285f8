package stages

import (
	"context"
	"math"
	"strconv"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

// OCR extracts text from one page. The engine is a stub: text and confidence
// are derived deterministically from the page identity, which keeps replays
// byte-identical.
type OCR struct {
	log     logger.Logger
	pageCmd requestrepo.PageCommandRepository
}

var _ runtime.Stage = (*OCR)(nil)

func NewOCR(deps Dependencies) *OCR {
	return &OCR{
		log:     deps.Log.WithField("component", ComponentOCR),
		pageCmd: deps.Repo.PageCmd,
	}
}

func (s *OCR) Component() string { return ComponentOCR }

func (s *OCR) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	if msg.PageIndex == nil {
		return nil, apperror.NewPersistance(apperror.CodeEnvelopeInvalid, "ocr message missing page_index")
	}
	pageIndex := *msg.PageIndex

	seed := msg.RequestID + ":" + strconv.Itoa(pageIndex)
	ocrText := stubOCRTexts[pickHash(seed, len(stubOCRTexts))]
	confidence := round2(scaledHash(seed, 0.85, 0.99))

	if err := s.pageCmd.UpdateOCR(ctx, msg.RequestID, pageIndex, ocrText, confidence); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"request_id": msg.RequestID,
		"page_index": pageIndex,
		"confidence": confidence,
	}).Info("ocr complete")

	out := msg.WithPayload(ComponentOCR, map[string]any{
		"ocr_text":       ocrText,
		"ocr_confidence": confidence,
	})
	return []runtime.Outgoing{{Key: routing.Next, Message: out}}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
