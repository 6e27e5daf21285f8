package command

import (
	"context"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
)

type pageRepository struct {
	*baserepo.BaseRepository[entity.Page]
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.PageCommandRepository = (*pageRepository)(nil)

func NewPageRepository(db database.Database) repository.PageCommandRepository {
	return &pageRepository{
		BaseRepository: &baserepo.BaseRepository[entity.Page]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

func (r *pageRepository) UpdateOCR(ctx context.Context, requestID string, pageIndex int, text string, confidence float64) error {
	res := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("request_id = ? AND page_index = ?", requestID, pageIndex).
		Updates(map[string]any{
			"ocr_text":       text,
			"ocr_confidence": confidence,
			"status":         entity.PageStatusOCRComplete,
		})
	if res.Error != nil {
		return database.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.ErrPageNotFound
	}
	return nil
}

func (r *pageRepository) UpdateClassification(ctx context.Context, requestID string, pageIndex int, docType string, confidence float64, status entity.PageStatus) error {
	res := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("request_id = ? AND page_index = ?", requestID, pageIndex).
		Updates(map[string]any{
			"doc_type":                  docType,
			"classification_confidence": confidence,
			"status":                    status,
		})
	if res.Error != nil {
		return database.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.ErrPageNotFound
	}
	return nil
}

func (r *pageRepository) UpdateClassificationByID(ctx context.Context, pageID string, docType string, confidence float64, status entity.PageStatus) error {
	res := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("id = ?", pageID).
		Updates(map[string]any{
			"doc_type":                  docType,
			"classification_confidence": confidence,
			"status":                    status,
		})
	if res.Error != nil {
		return database.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return entity.ErrPageNotFound
	}
	return nil
}

func (r *pageRepository) AssignDocument(ctx context.Context, pageID string, documentID string) error {
	// document_id is write-once: an already-assigned page is left untouched
	// so grouping replays cannot re-home a page.
	res := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("id = ? AND document_id IS NULL", pageID).
		Updates(map[string]any{
			"document_id": documentID,
			"status":      entity.PageStatusGrouped,
		})
	if res.Error != nil {
		return database.MapDBError(res.Error)
	}
	return nil
}
