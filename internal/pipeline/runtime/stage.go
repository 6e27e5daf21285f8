// Package runtime hosts the per-stage worker: consume one durable queue,
// process each delivery inside a single database transaction, publish the
// results after commit, acknowledge. Stage business logic plugs in through
// the Stage interface and stays unaware of the broker.
package runtime

import (
	"context"

	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
)

// Outgoing is one (routing key, message) pair a stage wants published.
// The key may be a sentinel (routing.Next, routing.Backoffice) or a literal
// pipeline key.
type Outgoing struct {
	Key     string
	Message *envelope.Message
}

// Stage is the single capability every pipeline step shares: consume one
// envelope, return outgoing pairs, within the caller-provided transaction.
//
// The context passed to Process carries the open transaction; all repository
// calls made through it join that transaction and commit or roll back
// together. Stage logic must be idempotent under redelivery: conditional
// writes and write-once guards make a second application a no-op.
type Stage interface {
	// Component is the unique worker-type name, e.g. "ocr" or "splitter".
	// It names the input queue (q.<component>) and is the fallback for
	// resolving the current workflow stage.
	Component() string

	// Process executes the stage's business logic for one message.
	Process(ctx context.Context, msg *envelope.Message) ([]Outgoing, error)
}
