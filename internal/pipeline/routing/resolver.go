// Package routing translates sentinel routing keys into concrete broker
// destinations. Sentinels keep stage code decoupled from workflow topology:
// a stage says "next" or "back office" and the workflow definition decides
// where that actually is.
package routing

import (
	"fmt"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
)

// Sentinel routing keys returned by stage logic.
const (
	Next       = "__next__"
	Backoffice = "__backoffice__"
)

// Destination is a resolved publish target. Message is the (possibly updated)
// copy to put on the wire.
type Destination struct {
	Exchange   string
	RoutingKey string
	Message    *envelope.Message
}

// Resolve maps a proposed routing key to a concrete destination.
//
//   - Next: advance to the stage after the message's current stage. A nil
//     Destination with nil error means the current stage is terminal and
//     nothing should be published.
//   - Backoffice: divert to the current stage's configured back-office queue.
//     Emitting this sentinel from a stage without backoffice_queue is a
//     programmer error and is surfaced as such.
//   - anything else: a literal key on the pipeline exchange, message
//     unchanged. Fan-out emitters whose destination is not the sequential
//     successor use literals (e.g. the classification aggregator emitting
//     doc.extract per document).
//
// The resolver never mutates the message beyond CurrentStage, and only on a
// copy.
func Resolve(key string, msg *envelope.Message, catalog *workflow.Catalog, component string) (*Destination, error) {
	currentStage := msg.CurrentStage
	if currentStage == "" {
		// Fallback: infer the current stage from the executing component.
		stage, err := catalog.StageByComponent(msg.WorkflowName, component)
		if err != nil {
			return nil, err
		}
		currentStage = stage.Name
	}

	switch key {
	case Next:
		next, err := catalog.NextStage(msg.WorkflowName, currentStage)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil // terminal stage, nothing to publish
		}
		updated := msg.Clone()
		updated.CurrentStage = next.Name
		return &Destination{
			Exchange:   broker.ExchangePipeline,
			RoutingKey: next.RoutingKey,
			Message:    updated,
		}, nil

	case Backoffice:
		stage, err := catalog.StageByName(msg.WorkflowName, currentStage)
		if err != nil {
			return nil, err
		}
		if stage.BackofficeQueue == "" {
			return nil, apperror.NewInternal(
				apperror.CodeInternalError,
				fmt.Sprintf("stage '%s' has no backoffice_queue configured but routed to the backoffice sentinel", currentStage),
			)
		}
		return &Destination{
			Exchange:   broker.ExchangeBackoffice,
			RoutingKey: stage.BackofficeQueue,
			Message:    msg,
		}, nil

	default:
		// Not a sentinel: pass through as a literal pipeline key.
		return &Destination{
			Exchange:   broker.ExchangePipeline,
			RoutingKey: key,
			Message:    msg,
		}, nil
	}
}
