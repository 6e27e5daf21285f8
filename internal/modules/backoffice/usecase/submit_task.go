package usecase

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	borepo "github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	requestentity "github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
	"github.com/SergioST90/document-processing-system/internal/pkg/utils"
)

// Routing keys the automatic path would have used; the back-office re-entry
// publishes onto the same keys so the pipeline resumes without special cases.
const (
	classifiedRoutingKey = "page.classified"
	extractedRoutingKey  = "doc.extracted"
)

const backofficeComponent = "backoffice"

type SubmitTaskRepositories struct {
	TaskCmd borepo.TaskCommandRepository
	TaskQry borepo.TaskQueryRepository
	PageCmd requestrepo.PageCommandRepository
	PageQry requestrepo.PageQueryRepository
	DocCmd  requestrepo.DocumentCommandRepository
	DocQry  requestrepo.DocumentQueryRepository
}

type submitTaskUseCase struct {
	Log       logger.Logger
	Tracer    tracer.Tracer
	Runner    baserepo.TransactionManager
	Repo      SubmitTaskRepositories
	Publisher broker.Publisher
}

const submitTaskUseCaseName = "usecase:backoffice.submit_task"

var _ SubmitTaskUseCase = (*submitTaskUseCase)(nil)

func NewSubmitTaskUseCase(
	log logger.Logger,
	trc tracer.Tracer,
	runner baserepo.TransactionManager,
	repo SubmitTaskRepositories,
	publisher broker.Publisher,
) SubmitTaskUseCase {
	return &submitTaskUseCase{
		Log:       log.WithField("action", submitTaskUseCaseName),
		Tracer:    trc,
		Runner:    runner,
		Repo:      repo,
		Publisher: publisher,
	}
}

// Execute applies the operator's verdict. The DB mutations (page or document
// update + task completion) commit atomically; the pipeline message is
// published only after the commit, mirroring the worker runtime's
// commit-before-publish contract. A manual verdict always carries
// confidence 1.0.
func (uc *submitTaskUseCase) Execute(ctx context.Context, req *SubmitTaskRequest) (*SubmitTaskResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, submitTaskUseCaseName)
	defer span.Finish()

	log := uc.Log.WithContext(ctx).WithField("method", "Exec")
	log.WithFields(map[string]any{
		"business_key": map[string]any{"task_id": req.TaskID, "operator": req.Operator},
	}).Info("usecase started")

	task, err := uc.Repo.TaskQry.FindByID(ctx, req.TaskID)
	if err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}
	if task.Status != entity.TaskStatusAssigned {
		utils.RecordSpanError(span, entity.ErrTaskNotAssigned)
		return nil, entity.ErrTaskNotAssigned
	}

	var outMsg *envelope.Message

	errRunner := uc.Runner.Atomic(ctx, func(txCtx context.Context) error {
		switch task.TaskType {
		case entity.TaskTypeClassification:
			outMsg, err = uc.submitClassification(txCtx, task, req)
		case entity.TaskTypeExtraction:
			outMsg, err = uc.submitExtraction(txCtx, task, req)
		default:
			err = entity.ErrTaskNotFound
		}
		return err
	})
	if errRunner != nil {
		utils.RecordSpanError(span, errRunner)
		return nil, errRunner
	}

	// Publish after commit. A publish failure here leaves the task completed
	// but unemitted and returns the error to the caller. Nothing re-sends the
	// message: submitting the task again is refused since it is no longer
	// assigned.
	routingKey := classifiedRoutingKey
	if task.TaskType == entity.TaskTypeExtraction {
		routingKey = extractedRoutingKey
	}
	if err := uc.Publisher.Publish(ctx, broker.ExchangePipeline, routingKey, outMsg); err != nil {
		utils.RecordSpanError(span, err)
		log.WithFields(map[string]any{
			"task_id":     req.TaskID,
			"routing_key": routingKey,
			"error":       err.Error(),
		}).Error("task completed but pipeline publish failed")
		return nil, err
	}

	log.Info("usecase completed")
	return &SubmitTaskResponse{
		TaskID:    task.ID,
		Status:    string(entity.TaskStatusCompleted),
		RequestID: task.RequestID,
	}, nil
}

func (uc *submitTaskUseCase) submitClassification(ctx context.Context, task *entity.Task, req *SubmitTaskRequest) (*envelope.Message, error) {
	finalType := req.DocType
	if finalType == "" {
		if suggested, ok := task.InputData["suggested_type"].(string); ok {
			finalType = suggested
		} else {
			finalType = "unknown"
		}
	}

	page, err := uc.Repo.PageQry.FindByID(ctx, task.ReferenceID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, requestentity.ErrPageNotFound
	}

	if err := uc.Repo.PageCmd.UpdateClassificationByID(ctx, page.ID, finalType, 1.0, requestentity.PageStatusClassified); err != nil {
		return nil, err
	}

	output := map[string]any{"doc_type": finalType, "operator": req.Operator}
	done, err := uc.Repo.TaskCmd.Complete(ctx, task.ID, output, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, entity.ErrTaskNotAssigned
	}

	msg := uc.reentryMessage(task)
	msg.PageIndex = envelope.IntPtr(page.PageIndex)
	msg.Payload = map[string]any{
		"page_id":                   page.ID,
		"page_index":                page.PageIndex,
		"doc_type":                  finalType,
		"classification_confidence": 1.0,
		"origin":                    backofficeComponent,
	}
	return msg, nil
}

func (uc *submitTaskUseCase) submitExtraction(ctx context.Context, task *entity.Task, req *SubmitTaskRequest) (*envelope.Message, error) {
	doc, err := uc.Repo.DocQry.FindByID(ctx, task.ReferenceID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, requestentity.ErrDocumentNotFound
	}

	merged := make(map[string]any, len(doc.ExtractedData)+len(req.ExtractedData))
	for k, v := range doc.ExtractedData {
		merged[k] = v
	}
	for k, v := range req.ExtractedData {
		merged[k] = v
	}

	if err := uc.Repo.DocCmd.UpdateExtraction(ctx, doc.ID, merged, 1.0, requestentity.DocumentStatusExtracted); err != nil {
		return nil, err
	}

	output := map[string]any{"extracted_data": merged, "operator": req.Operator}
	done, err := uc.Repo.TaskCmd.Complete(ctx, task.ID, output, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, entity.ErrTaskNotAssigned
	}

	msg := uc.reentryMessage(task)
	msg.DocumentID = doc.ID
	msg.Payload = map[string]any{
		"document_id":           doc.ID,
		"doc_type":              doc.DocType,
		"extracted_data":        merged,
		"extraction_confidence": 1.0,
		"origin":                backofficeComponent,
	}
	return msg, nil
}

// reentryMessage rebuilds the workflow context from the task's audit fields.
// CurrentStage is deliberately left empty: the consuming aggregator resolves
// its own stage via the by-component fallback, exactly as it would for an
// automatic hand-off.
func (uc *submitTaskUseCase) reentryMessage(task *entity.Task) *envelope.Message {
	workflowName := "default"
	if task.WorkflowName != nil && *task.WorkflowName != "" {
		workflowName = *task.WorkflowName
	}

	msg := envelope.New(task.RequestID, workflowName)
	msg.SourceComponent = backofficeComponent
	msg.DeadlineUTC = task.DeadlineUTC
	return msg
}
