package command

import (
	"context"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
	"github.com/SergioST90/document-processing-system/internal/pkg/uid"

	"gorm.io/gorm/clause"
)

type operatorRepository struct {
	*baserepo.BaseRepository[entity.Operator]
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.OperatorCommandRepository = (*operatorRepository)(nil)

func NewOperatorRepository(db database.Database) repository.OperatorCommandRepository {
	return &operatorRepository{
		BaseRepository: &baserepo.BaseRepository[entity.Operator]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

func (r *operatorRepository) EnsureRegistered(ctx context.Context, username string) error {
	op := entity.Operator{
		ID:       uid.NewUUID(),
		Username: username,
		IsActive: true,
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).
		Create(&op).
		Error
	return database.MapDBError(err)
}
