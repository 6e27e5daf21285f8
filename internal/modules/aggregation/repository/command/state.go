package command

import (
	"context"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
)

type stateRepository struct {
	*baserepo.BaseRepository[entity.State]
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.StateCommandRepository = (*stateRepository)(nil)

func NewStateRepository(db database.Database) repository.StateCommandRepository {
	return &stateRepository{
		BaseRepository: &baserepo.BaseRepository[entity.State]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

// IncrementAndGet is the aggregator's only correctness guarantee against
// concurrent sibling deliveries: a single update-and-return statement, so the
// row lock is held from the increment until the surrounding transaction
// commits. A select-then-update split here would race.
func (r *stateRepository) IncrementAndGet(ctx context.Context, requestID, stage string) (*repository.Progress, error) {
	rows, err := r.DB.WithContext(ctx).Raw(`
		UPDATE aggregation_state
		SET received_count = LEAST(received_count + 1, expected_count),
		    updated_at = NOW()
		WHERE request_id = ? AND stage = ?
		RETURNING received_count, expected_count
	`, requestID, stage).Rows()
	if err != nil {
		return nil, database.MapDBError(err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil // row missing; caller absorbs the message
	}

	var p repository.Progress
	if err := rows.Scan(&p.Received, &p.Expected); err != nil {
		return nil, database.MapDBError(err)
	}
	return &p, database.MapDBError(rows.Err())
}

func (r *stateRepository) MarkComplete(ctx context.Context, requestID, stage string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.State{}).
		Where("request_id = ? AND stage = ? AND is_complete = ?", requestID, stage, false).
		Update("is_complete", true)
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
