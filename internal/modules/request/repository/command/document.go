package command

import (
	"context"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
)

type documentRepository struct {
	*baserepo.BaseRepository[entity.Document]
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.DocumentCommandRepository = (*documentRepository)(nil)

func NewDocumentRepository(db database.Database) repository.DocumentCommandRepository {
	return &documentRepository{
		BaseRepository: &baserepo.BaseRepository[entity.Document]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

func (r *documentRepository) UpdateExtraction(ctx context.Context, id string, data map[string]any, confidence float64, status entity.DocumentStatus) error {
	res := r.DB.WithContext(ctx).
		Model(&entity.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"extracted_data":        data,
			"extraction_confidence": confidence,
			"status":                status,
		})
	if res.Error != nil {
		return database.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepository) MarkAllCompleted(ctx context.Context, requestID string) error {
	res := r.DB.WithContext(ctx).
		Model(&entity.Document{}).
		Where("request_id = ?", requestID).
		Update("status", entity.DocumentStatusCompleted)
	return database.MapDBError(res.Error)
}
