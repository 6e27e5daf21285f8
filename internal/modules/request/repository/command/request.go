/*
|------------------------------------------------------------------------------------
| REPOSITORY ARCHITECTURAL STANDARDS & PERSISTENCE MANIFESTO
|------------------------------------------------------------------------------------
|
| The Repository layer is responsible for low-level data persistence. It acts as
| a bridge between the Domain Entities and the Physical Database.
|
| [1. ERROR MAPPING & TRANSLATION]
| - Repositories MUST NOT return raw database errors. All errors pass through
|   database.MapDBError into the standardized apperror taxonomy.
|
| [2. ATOMICITY COMPLIANCE]
| - Commands MUST respect the 'ctx' (context) so they participate in the
|   per-message transaction opened by the worker runtime.
|
| [3. GUARDED TRANSITIONS]
| - Lifecycle writes are conditional UPDATEs. Terminal statuses are never
|   overwritten and write-once columns are never re-written; the RowsAffected
|   count tells the caller whether the guard held. This is what makes stage
|   logic safe to replay under at-least-once delivery.
|
|------------------------------------------------------------------------------------
*/
package command

import (
	"context"
	"time"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	baserepo "github.com/SergioST90/document-processing-system/internal/pkg/repository"
)

type requestRepository struct {
	*baserepo.BaseRepository[entity.Request]
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.RequestCommandRepository = (*requestRepository)(nil)

func NewRequestRepository(db database.Database) repository.RequestCommandRepository {
	return &requestRepository{
		BaseRepository: &baserepo.BaseRepository[entity.Request]{
			DB:          db,
			ErrorMapper: database.MapDBError,
		},
	}
}

func (r *requestRepository) SetRouting(ctx context.Context, id string, deadline time.Time, slaSeconds int) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND status NOT IN ?", id, entity.TerminalStatuses).
		Updates(map[string]any{
			"status":       entity.RequestStatusRouting,
			"deadline_utc": deadline,
			"sla_seconds":  slaSeconds,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) SetSplitResult(ctx context.Context, id string, pageCount int, status entity.RequestStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND page_count IS NULL AND status NOT IN ?", id, entity.TerminalStatuses).
		Updates(map[string]any{
			"page_count": pageCount,
			"status":     status,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) SetDocumentCount(ctx context.Context, id string, documentCount int, status entity.RequestStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND document_count IS NULL AND status NOT IN ?", id, entity.TerminalStatuses).
		Updates(map[string]any{
			"document_count": documentCount,
			"status":         status,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) TransitionStatus(ctx context.Context, id string, status entity.RequestStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND status NOT IN ?", id, entity.TerminalStatuses).
		Update("status", status)
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) Complete(ctx context.Context, id string, resultPayload map[string]any, completedAt time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND status NOT IN ?", id, entity.TerminalStatuses).
		Updates(map[string]any{
			"status":         entity.RequestStatusCompleted,
			"result_payload": resultPayload,
			"completed_at":   completedAt,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *requestRepository) MarkSLABreached(ctx context.Context, id string, errorMessage string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ? AND status NOT IN ?", id, entity.TerminalStatuses).
		Updates(map[string]any{
			"status":        entity.RequestStatusSLABreached,
			"error_message": errorMessage,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, database.MapDBError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
