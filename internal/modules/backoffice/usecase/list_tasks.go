package usecase

import (
	"context"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	"github.com/SergioST90/document-processing-system/internal/pkg/utils"
)

type listTasksUseCase struct {
	Log     logger.Logger
	Tracer  tracer.Tracer
	TaskQry repository.TaskQueryRepository
}

const listTasksUseCaseName = "usecase:backoffice.list_tasks"

var _ ListTasksUseCase = (*listTasksUseCase)(nil)

func NewListTasksUseCase(log logger.Logger, trc tracer.Tracer, taskQry repository.TaskQueryRepository) ListTasksUseCase {
	return &listTasksUseCase{
		Log:     log.WithField("action", listTasksUseCaseName),
		Tracer:  trc,
		TaskQry: taskQry,
	}
}

func (uc *listTasksUseCase) Execute(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	span, ctx := uc.Tracer.StartSpan(ctx, listTasksUseCaseName)
	defer span.Finish()

	status := entity.TaskStatus(req.Status)
	if status == "" {
		status = entity.TaskStatusPending
	}

	tasks, err := uc.TaskQry.List(ctx, status, req.Skill)
	if err != nil {
		utils.RecordSpanError(span, err)
		return nil, err
	}

	out := make([]TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskSummary{
			ID:          t.ID,
			RequestID:   t.RequestID,
			TaskType:    string(t.TaskType),
			Status:      string(t.Status),
			Priority:    t.Priority,
			AssignedTo:  t.AssignedTo,
			CreatedAt:   t.CreatedAt,
			DeadlineUTC: t.DeadlineUTC,
			InputData:   t.InputData,
		})
	}
	return &ListTasksResponse{Tasks: out}, nil
}
