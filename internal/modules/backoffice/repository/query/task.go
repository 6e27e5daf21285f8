package query

import (
	"context"
	"errors"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"

	"gorm.io/gorm"
)

type taskRepository struct {
	DB database.Database
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.TaskQueryRepository = (*taskRepository)(nil)

func NewTaskRepository(db database.Database) repository.TaskQueryRepository {
	return &taskRepository{DB: db}
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	if id == "" {
		return nil, nil
	}
	var task entity.Task
	err := r.DB.WithContext(ctx).
		Model(&entity.Task{}).
		Where("id = ?", id).
		First(&task).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.MapDBError(err)
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, status entity.TaskStatus, skill string) ([]entity.Task, error) {
	q := r.DB.WithContext(ctx).
		Model(&entity.Task{}).
		Where("status = ?", status)
	if skill != "" {
		q = q.Where("required_skills @> ?", `["`+skill+`"]`)
	}

	var tasks []entity.Task
	err := q.Order("priority ASC, created_at ASC").Find(&tasks).Error
	if err != nil {
		return nil, database.MapDBError(err)
	}
	return tasks, nil
}
