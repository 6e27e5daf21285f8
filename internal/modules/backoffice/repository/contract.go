package repository

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
)

// -------- Repository Command --------

type TaskCommandRepository interface {
	Create(ctx context.Context, task *entity.Task) error

	// Claim moves a pending task to assigned for the given operator. The
	// transition is a guarded update: a second claimer loses the race and
	// gets false back.
	Claim(ctx context.Context, id, operator string, at time.Time) (bool, error)

	// Complete records the operator's output and flips the task to its
	// terminal status. Only assigned tasks can complete.
	Complete(ctx context.Context, id string, outputData map[string]any, at time.Time) (bool, error)
}

type OperatorCommandRepository interface {
	// EnsureRegistered records the operator on first contact. Existing rows
	// are left untouched.
	EnsureRegistered(ctx context.Context, username string) error
}

// -------- Repository Query --------

type TaskQueryRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Task, error)

	// List returns tasks in priority order, filtered by status and
	// optionally by a required skill.
	List(ctx context.Context, status entity.TaskStatus, skill string) ([]entity.Task, error)
}
