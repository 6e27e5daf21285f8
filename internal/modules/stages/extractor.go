package stages

import (
	"context"

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

// Extractor produces structured data for one logical document. The engine is
// a stub keyed by doc type; when the workflow defines an extraction schema
// for the type, the output is projected onto the schema's fields. Low
// confidence diverts to the back office like the classifier does.
type Extractor struct {
	log     logger.Logger
	cfg     *config.PipelineConfig
	catalog *workflow.Catalog
	docCmd  requestrepo.DocumentCommandRepository
	docQry  requestrepo.DocumentQueryRepository
	taskCmd borepo.TaskCommandRepository
}

var _ runtime.Stage = (*Extractor)(nil)

func NewExtractor(deps Dependencies) *Extractor {
	return &Extractor{
		log:     deps.Log.WithField("component", ComponentExtractor),
		cfg:     &deps.Cfg.Pipeline,
		catalog: deps.Catalog,
		docCmd:  deps.Repo.DocCmd,
		docQry:  deps.Repo.DocQry,
		taskCmd: deps.Repo.TaskCmd,
	}
}

func (s *Extractor) Component() string { return ComponentExtractor }

func (s *Extractor) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	if msg.DocumentID == "" {
		return nil, apperror.NewPersistance(apperror.CodeEnvelopeInvalid, "extract message missing document_id")
	}
	docType, _ := msg.Payload["doc_type"].(string)
	if docType == "" {
		docType = "unknown"
	}

	extracted := s.extract(msg.WorkflowName, docType)
	confidence := round2(scaledHash(msg.DocumentID+":extract", 0.65, 0.99))

	threshold := s.threshold(msg.WorkflowName)

	if confidence >= threshold {
		if err := s.docCmd.UpdateExtraction(ctx, msg.DocumentID, extracted, confidence, entity.DocumentStatusExtracted); err != nil {
			return nil, err
		}

		s.log.WithFields(map[string]any{
			"request_id":  msg.RequestID,
			"document_id": msg.DocumentID,
			"doc_type":    docType,
			"confidence":  confidence,
		}).Info("extracted automatically")

		out := msg.WithPayload(ComponentExtractor, map[string]any{
			"extracted_data":        extracted,
			"extraction_confidence": confidence,
		})
		return []runtime.Outgoing{{Key: routing.Next, Message: out}}, nil
	}

	if err := s.docCmd.UpdateExtraction(ctx, msg.DocumentID, extracted, confidence, entity.DocumentStatusExtractionReview); err != nil {
		return nil, err
	}

	stageName := msg.CurrentStage
	task := &boentity.Task{
		ID:             uid.NewUUID(),
		RequestID:      msg.RequestID,
		TaskType:       boentity.TaskTypeExtraction,
		ReferenceID:    msg.DocumentID,
		Status:         boentity.TaskStatusPending,
		Priority:       3,
		DeadlineUTC:    msg.DeadlineUTC,
		RequiredSkills: []string{"extraction", docType},
		SourceStage:    &stageName,
		WorkflowName:   &msg.WorkflowName,
		InputData: map[string]any{
			"document_id":    msg.DocumentID,
			"doc_type":       docType,
			"extracted_data": extracted,
			"confidence":     confidence,
			"ocr_texts":      msg.Payload["ocr_texts"],
		},
	}
	if err := s.taskCmd.Create(ctx, task); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"request_id":  msg.RequestID,
		"document_id": msg.DocumentID,
		"doc_type":    docType,
		"confidence":  confidence,
		"task_id":     task.ID,
	}).Info("extraction sent to back office")

	bo := msg.WithPayload(ComponentExtractor, map[string]any{
		"task_id":               task.ID,
		"extracted_data":        extracted,
		"extraction_confidence": confidence,
	})
	return []runtime.Outgoing{{Key: routing.Backoffice, Message: bo}}, nil
}

func (s *Extractor) threshold(workflowName string) float64 {
	stage, err := s.catalog.StageByComponent(workflowName, ComponentExtractor)
	if err == nil && stage.ConfidenceThreshold != nil {
		return *stage.ConfidenceThreshold
	}
	return s.cfg.ExtractionConfidenceThreshold
}

// extract returns the stub output for the doc type, projected onto the
// workflow's extraction schema when one is defined.
func (s *Extractor) extract(workflowName, docType string) map[string]any {
	stub, ok := stubExtractions[docType]
	if !ok {
		return map[string]any{"raw_text": "Unrecognized document"}
	}

	schema, err := s.catalog.ExtractionSchemaFor(workflowName, docType)
	if err != nil || schema == nil {
		out := make(map[string]any, len(stub))
		for k, v := range stub {
			out[k] = v
		}
		return out
	}

	out := make(map[string]any, len(schema.Fields))
	for _, field := range schema.Fields {
		if v, ok := stub[field.Name]; ok {
			out[field.Name] = v
		} else if field.Required {
			out[field.Name] = nil
		}
	}
	return out
}
