package repository

import (
	"context"

	"github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
)

// Progress is the result of one counted delivery.
type Progress struct {
	Received int
	Expected int
}

// Done reports whether the round has collected every expected sibling.
func (p Progress) Done() bool {
	return p.Received >= p.Expected
}

// -------- Repository Command --------

type StateCommandRepository interface {
	// Create seeds the counter for a fan-in round. It must be called in the
	// same transaction as the fan-out's row inserts so the row is visible
	// before the first sibling can increment it (commit-before-publish makes
	// this ordering global).
	Create(ctx context.Context, state *entity.State) error

	// IncrementAndGet atomically counts one delivery and reads back the new
	// state, as a single UPDATE ... RETURNING guarded by the store's
	// row-level lock. The increment is clamped at expected_count so a
	// redelivered sibling overshoots by nothing. A missing row returns
	// (nil, nil): the caller logs and absorbs the message.
	IncrementAndGet(ctx context.Context, requestID, stage string) (*Progress, error)

	// MarkComplete flips is_complete exactly once. The returned bool is the
	// finalization gate: true for exactly one caller per round.
	MarkComplete(ctx context.Context, requestID, stage string) (bool, error)
}

// -------- Repository Query --------

type StateQueryRepository interface {
	FindByRequestStage(ctx context.Context, requestID, stage string) (*entity.State, error)
}
