package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"
	"github.com/SergioST90/document-processing-system/internal/pkg/utils"
)

// ingressRoutingKey is where every new request enters the pipeline.
const ingressRoutingKey = "request.new"

const gatewayComponent = "api_gateway"

type processDocumentUseCase struct {
	Log        logger.Logger
	Tracer     tracer.Tracer
	Cfg        *config.PipelineConfig
	Runner     baserepo.TransactionManager
	RequestCmd requestrepo.RequestCommandRepository
	Publisher  broker.Publisher
}

const processDocumentUseCaseName = "usecase:ingest.process_document"

var _ ProcessDocumentUseCase = (*processDocumentUseCase)(nil)

func NewProcessDocumentUseCase(
	log logger.Logger,
	trc tracer.Tracer,
	cfg *config.PipelineConfig,
	runner baserepo.TransactionManager,
	requestCmd requestrepo.RequestCommandRepository,
	publisher broker.Publisher,
) ProcessDocumentUseCase {
	return &processDocumentUseCase{
		Log:        log.WithField("action", processDocumentUseCaseName),
		Tracer:     trc,
		Cfg:        cfg,
		Runner:     runner,
		RequestCmd: requestCmd,
		Publisher:  publisher,
	}
}

func (uc *processDocumentUseCase) Execute(ctx context.Context, req *ProcessDocumentRequest) (*ProcessDocumentResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, processDocumentUseCaseName)
	defer span.Finish()

	log := uc.Log.WithContext(ctx).WithField("method", "Exec")

	workflowName := req.Workflow
	if workflowName == "" {
		workflowName = workflow.DefaultWorkflowName
	}
	channel := req.Channel
	if channel == "" {
		channel = "api"
	}

	requestID := uid.NewUUID()
	log.WithFields(map[string]any{
		"business_key": map[string]any{
			"request_id": requestID,
			"workflow":   workflowName,
			"channel":    channel,
		},
	}).Info("usecase started")

	// The file lands on shared storage first; the path is carried through
	// the pipeline as an opaque string.
	storageDir := filepath.Join(uc.Cfg.StoragePath, requestID)
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		wrapped := apperror.NewInternal(apperror.CodeInternalError, "failed to create storage directory", err)
		utils.RecordSpanError(span, wrapped)
		return nil, wrapped
	}
	filePath := filepath.Join(storageDir, filepath.Base(req.FileName))
	if err := os.WriteFile(filePath, req.Content, 0o644); err != nil {
		wrapped := apperror.NewInternal(apperror.CodeInternalError, "failed to store uploaded file", err)
		utils.RecordSpanError(span, wrapped)
		return nil, wrapped
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	var externalID *string
	if req.ExternalID != "" {
		externalID = &req.ExternalID
	}
	fileName := req.FileName

	request := &entity.Request{
		ID:              requestID,
		ExternalID:      externalID,
		Channel:         channel,
		WorkflowName:    workflowName,
		Status:          entity.RequestStatusReceived,
		Priority:        5,
		OriginalName:    &fileName,
		FileStoragePath: &filePath,
		Metadata:        metadata,
	}

	errRunner := uc.Runner.Atomic(ctx, func(txCtx context.Context) error {
		return uc.RequestCmd.Create(txCtx, request)
	})
	if errRunner != nil {
		utils.RecordSpanError(span, errRunner)
		return nil, errRunner
	}

	// Publish only after the row is durable: the router's lookup must never
	// race the insert.
	msg := envelope.New(requestID, workflowName)
	msg.SourceComponent = gatewayComponent
	msg.Payload = map[string]any{
		"channel":           channel,
		"file_path":         filePath,
		"original_filename": req.FileName,
		"metadata":          metadata,
	}
	if err := uc.Publisher.Publish(ctx, broker.ExchangePipeline, ingressRoutingKey, msg); err != nil {
		utils.RecordSpanError(span, err)
		log.WithFields(map[string]any{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("request persisted but ingress publish failed")
		return nil, err
	}

	log.Info("usecase completed")
	return &ProcessDocumentResponse{
		RequestID: requestID,
		Status:    string(entity.RequestStatusReceived),
	}, nil
}
