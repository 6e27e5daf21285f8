package query

import (
	"context"
	"errors"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"

	"gorm.io/gorm"
)

type stateRepository struct {
	DB database.Database
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.StateQueryRepository = (*stateRepository)(nil)

func NewStateRepository(db database.Database) repository.StateQueryRepository {
	return &stateRepository{DB: db}
}

func (r *stateRepository) FindByRequestStage(ctx context.Context, requestID, stage string) (*entity.State, error) {
	var state entity.State
	err := r.DB.WithContext(ctx).
		Model(&entity.State{}).
		Where("request_id = ? AND stage = ?", requestID, stage).
		First(&state).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.MapDBError(err)
	}
	return &state, nil
}
