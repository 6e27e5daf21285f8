package query

import (
	"context"
	"errors"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"

	"gorm.io/gorm"
)

type pageRepository struct {
	DB database.Database
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.PageQueryRepository = (*pageRepository)(nil)

func NewPageRepository(db database.Database) repository.PageQueryRepository {
	return &pageRepository{DB: db}
}

func (r *pageRepository) FindByID(ctx context.Context, id string) (*entity.Page, error) {
	if id == "" {
		return nil, nil
	}
	var page entity.Page
	err := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("id = ?", id).
		First(&page).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.MapDBError(err)
	}
	return &page, nil
}

func (r *pageRepository) FindByRequestIndex(ctx context.Context, requestID string, pageIndex int) (*entity.Page, error) {
	var page entity.Page
	err := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("request_id = ? AND page_index = ?", requestID, pageIndex).
		First(&page).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.MapDBError(err)
	}
	return &page, nil
}

func (r *pageRepository) FindByRequestOrdered(ctx context.Context, requestID string) ([]entity.Page, error) {
	var pages []entity.Page
	err := r.DB.WithContext(ctx).
		Model(&entity.Page{}).
		Where("request_id = ?", requestID).
		Order("page_index ASC").
		Find(&pages).
		Error
	if err != nil {
		return nil, database.MapDBError(err)
	}
	return pages, nil
}
