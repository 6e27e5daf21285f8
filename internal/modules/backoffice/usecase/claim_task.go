package usecase

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	"github.com/SergioST90/document-processing-system/internal/pkg/utils"
)

type claimTaskUseCase struct {
	Log         logger.Logger
	Tracer      tracer.Tracer
	TaskCmd     repository.TaskCommandRepository
	TaskQry     repository.TaskQueryRepository
	OperatorCmd repository.OperatorCommandRepository
}

const claimTaskUseCaseName = "usecase:backoffice.claim_task"

var _ ClaimTaskUseCase = (*claimTaskUseCase)(nil)

func NewClaimTaskUseCase(
	log logger.Logger,
	trc tracer.Tracer,
	taskCmd repository.TaskCommandRepository,
	taskQry repository.TaskQueryRepository,
	operatorCmd repository.OperatorCommandRepository,
) ClaimTaskUseCase {
	return &claimTaskUseCase{
		Log:         log.WithField("action", claimTaskUseCaseName),
		Tracer:      trc,
		TaskCmd:     taskCmd,
		TaskQry:     taskQry,
		OperatorCmd: operatorCmd,
	}
}

func (uc *claimTaskUseCase) Execute(ctx context.Context, req *ClaimTaskRequest) (*ClaimTaskResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, claimTaskUseCaseName)
	defer span.Finish()

	log := uc.Log.WithContext(ctx).WithField("method", "Exec")
	log.WithFields(map[string]any{
		"business_key": map[string]any{"task_id": req.TaskID, "operator": req.Operator},
	}).Info("usecase started")

	task, err := uc.TaskQry.FindByID(ctx, req.TaskID)
	if err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}
	if task == nil {
		return nil, entity.ErrTaskNotFound
	}

	// First contact registers the operator; an existing row is untouched.
	if err := uc.OperatorCmd.EnsureRegistered(ctx, req.Operator); err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}

	claimed, err := uc.TaskCmd.Claim(ctx, req.TaskID, req.Operator, time.Now().UTC())
	if err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}
	if !claimed {
		// Someone else got it between the read and the guarded update.
		utils.RecordSpanError(span, entity.ErrTaskNotClaimable)
		log.WithField("task_id", req.TaskID).Warn("task claim lost race")
		return nil, entity.ErrTaskNotClaimable
	}

	log.Info("usecase completed")
	return &ClaimTaskResponse{
		TaskID:     req.TaskID,
		Status:     string(entity.TaskStatusAssigned),
		AssignedTo: req.Operator,
	}, nil
}
