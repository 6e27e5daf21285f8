package query

import (
	"context"
	"errors"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"

	"gorm.io/gorm"
)

type documentRepository struct {
	DB database.Database
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.DocumentQueryRepository = (*documentRepository)(nil)

func NewDocumentRepository(db database.Database) repository.DocumentQueryRepository {
	return &documentRepository{DB: db}
}

func (r *documentRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	if id == "" {
		return nil, nil
	}
	var doc entity.Document
	err := r.DB.WithContext(ctx).
		Model(&entity.Document{}).
		Where("id = ?", id).
		First(&doc).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.MapDBError(err)
	}
	return &doc, nil
}

func (r *documentRepository) FindByRequestOrdered(ctx context.Context, requestID string) ([]entity.Document, error) {
	var docs []entity.Document
	err := r.DB.WithContext(ctx).
		Model(&entity.Document{}).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&docs).
		Error
	if err != nil {
		return nil, database.MapDBError(err)
	}
	return docs, nil
}
