/*
|------------------------------------------------------------------------------------
| REPOSITORY ARCHITECTURAL STANDARDS & QUERY OPTIMIZATION MANIFESTO
|------------------------------------------------------------------------------------
|
| The Query Repository is dedicated to data retrieval. It follows the R-side of
| CQRS, focusing on filtering and non-mutating operations.
|
| [1. NULLABLE VS ERROR]
| - If a record is NOT FOUND, return (nil, nil) instead of an error for Query
|   methods. Connection issues and syntax errors are still mapped and returned.
|
| [2. READ-ONLY CONTEXT]
| - .WithContext(ctx) is always called so queries respect timeouts,
|   cancellations, and any active per-message transaction.
|
|------------------------------------------------------------------------------------
*/
package query

import (
	"context"
	"errors"
	"time"

	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"

	"gorm.io/gorm"
)

type requestRepository struct {
	DB database.Database
}

// [INTERFACE COMPLIANCE CHECK]
var _ repository.RequestQueryRepository = (*requestRepository)(nil)

func NewRequestRepository(db database.Database) repository.RequestQueryRepository {
	return &requestRepository{DB: db}
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*entity.Request, error) {
	if id == "" {
		return nil, nil
	}
	var request entity.Request
	err := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("id = ?", id).
		First(&request).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.MapDBError(err)
	}
	return &request, nil
}

func (r *requestRepository) FindBreached(ctx context.Context, now time.Time) ([]entity.Request, error) {
	var requests []entity.Request
	err := r.DB.WithContext(ctx).
		Model(&entity.Request{}).
		Where("status NOT IN ?", entity.TerminalStatuses).
		Where("deadline_utc IS NOT NULL AND deadline_utc <= ?", now).
		Find(&requests).
		Error
	if err != nil {
		return nil, database.MapDBError(err)
	}
	return requests, nil
}

func (r *requestRepository) FindAtRisk(ctx context.Context, now time.Time, remainingFraction float64) ([]repository.AtRiskRequest, error) {
	rows, err := r.DB.WithContext(ctx).Raw(`
		SELECT id, status, deadline_utc,
		       EXTRACT(EPOCH FROM (deadline_utc - ?)) AS remaining_seconds
		FROM requests
		WHERE status NOT IN ('completed', 'failed', 'sla_breached')
		  AND deadline_utc IS NOT NULL
		  AND deadline_utc > ?
		  AND EXTRACT(EPOCH FROM (deadline_utc - ?)) < (sla_seconds * ?)
	`, now, now, now, remainingFraction).Rows()
	if err != nil {
		return nil, database.MapDBError(err)
	}
	defer rows.Close()

	var out []repository.AtRiskRequest
	for rows.Next() {
		var at repository.AtRiskRequest
		if err := rows.Scan(&at.ID, &at.Status, &at.DeadlineUTC, &at.RemainingSeconds); err != nil {
			return nil, database.MapDBError(err)
		}
		out = append(out, at)
	}
	return out, database.MapDBError(rows.Err())
}
