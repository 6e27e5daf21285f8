package stages

import (
	"context"
	"strconv"
	"strings"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	boentity "github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	borepo "github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
)

// Classifier assigns a doc type to one page. Confidence below the stage
// threshold is normal control flow, not an error: the page parks in review,
// a back-office task is created in the same transaction, and the message is
// diverted through the back-office exchange instead of advancing.
type Classifier struct {
	log     logger.Logger
	cfg     *config.PipelineConfig
	catalog *workflow.Catalog
	pageCmd requestrepo.PageCommandRepository
	pageQry requestrepo.PageQueryRepository
	taskCmd borepo.TaskCommandRepository
}

var _ runtime.Stage = (*Classifier)(nil)

func NewClassifier(deps Dependencies) *Classifier {
	return &Classifier{
		log:     deps.Log.WithField("component", ComponentClassifier),
		cfg:     &deps.Cfg.Pipeline,
		catalog: deps.Catalog,
		pageCmd: deps.Repo.PageCmd,
		pageQry: deps.Repo.PageQry,
		taskCmd: deps.Repo.TaskCmd,
	}
}

func (s *Classifier) Component() string { return ComponentClassifier }

func (s *Classifier) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	if msg.PageIndex == nil {
		return nil, apperror.NewPersistance(apperror.CodeEnvelopeInvalid, "classify message missing page_index")
	}
	pageIndex := *msg.PageIndex
	ocrText, _ := msg.Payload["ocr_text"].(string)

	seed := msg.RequestID + ":classify:" + strconv.Itoa(pageIndex)
	docType := s.classify(ocrText, seed)
	confidence := round2(scaledHash(seed, 0.60, 0.99))

	threshold := s.threshold(msg.WorkflowName)

	if confidence >= threshold {
		if err := s.pageCmd.UpdateClassification(ctx, msg.RequestID, pageIndex, docType, confidence, entity.PageStatusClassified); err != nil {
			return nil, err
		}

		s.log.WithFields(map[string]any{
			"request_id": msg.RequestID,
			"page_index": pageIndex,
			"doc_type":   docType,
			"confidence": confidence,
		}).Info("classified automatically")

		out := msg.WithPayload(ComponentClassifier, map[string]any{
			"doc_type":                  docType,
			"classification_confidence": confidence,
		})
		return []runtime.Outgoing{{Key: routing.Next, Message: out}}, nil
	}

	// Low confidence: park the page and hand the verdict to a human.
	if err := s.pageCmd.UpdateClassification(ctx, msg.RequestID, pageIndex, docType, confidence, entity.PageStatusClassificationReview); err != nil {
		return nil, err
	}

	page, err := s.pageQry.FindByRequestIndex(ctx, msg.RequestID, pageIndex)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, entity.ErrPageNotFound
	}

	stageName := msg.CurrentStage
	task := &boentity.Task{
		ID:             uid.NewUUID(),
		RequestID:      msg.RequestID,
		TaskType:       boentity.TaskTypeClassification,
		ReferenceID:    page.ID,
		Status:         boentity.TaskStatusPending,
		Priority:       3,
		DeadlineUTC:    msg.DeadlineUTC,
		RequiredSkills: []string{"classification"},
		SourceStage:    &stageName,
		WorkflowName:   &msg.WorkflowName,
		InputData: map[string]any{
			"page_index":     pageIndex,
			"ocr_text":       ocrText,
			"suggested_type": docType,
			"confidence":     confidence,
		},
	}
	if err := s.taskCmd.Create(ctx, task); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"request_id":     msg.RequestID,
		"page_index":     pageIndex,
		"suggested_type": docType,
		"confidence":     confidence,
		"task_id":        task.ID,
	}).Info("classification sent to back office")

	bo := msg.WithPayload(ComponentClassifier, map[string]any{
		"task_id":                   task.ID,
		"doc_type":                  docType,
		"classification_confidence": confidence,
	})
	return []runtime.Outgoing{{Key: routing.Backoffice, Message: bo}}, nil
}

// threshold prefers the workflow stage's confidence_threshold and falls back
// to the environment-level default.
func (s *Classifier) threshold(workflowName string) float64 {
	stage, err := s.catalog.StageByComponent(workflowName, ComponentClassifier)
	if err == nil && stage.ConfidenceThreshold != nil {
		return *stage.ConfidenceThreshold
	}
	return s.cfg.ClassificationConfidenceThreshold
}

// classify is the stub engine: keyword matching over the OCR text, with a
// deterministic fallback pick for unrecognized content.
func (s *Classifier) classify(ocrText, seed string) string {
	text := strings.ToLower(ocrText)
	switch {
	case strings.Contains(text, "factura") || strings.Contains(text, "invoice"):
		return "invoice"
	case strings.Contains(text, "nómina") || strings.Contains(text, "salario"):
		return "payslip"
	case strings.Contains(text, "documento nacional") || strings.Contains(text, "dni"):
		return "id_card"
	case strings.Contains(text, "recibo"):
		return "receipt"
	case strings.Contains(text, "contrato"):
		return "contract"
	}
	return stubDocTypes[pickHash(seed, len(stubDocTypes))]
}
