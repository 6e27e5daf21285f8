package command

import (
	"context"
	"time"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
)

type taskRepository struct {
	*baserepo.BaseRepository[entity.Task]
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.TaskCommandRepository = (*taskRepository)(nil)

func NewTaskRepository(db database.Database) repository.TaskCommandRepository {
	return &taskRepository{
		BaseRepository: &baserepo.BaseRepository[entity.Task]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

func (r *taskRepository) Claim(ctx context.Context, id, operator string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Task{}).
		Where("id = ? AND status = ?", id, entity.TaskStatusPending).
		Updates(map[string]any{
			"status":      entity.TaskStatusAssigned,
			"assigned_to": operator,
			"assigned_at": at,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *taskRepository) Complete(ctx context.Context, id string, outputData map[string]any, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Task{}).
		Where("id = ? AND status = ?", id, entity.TaskStatusAssigned).
		Updates(map[string]any{
			"status":       entity.TaskStatusCompleted,
			"output_data":  outputData,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
