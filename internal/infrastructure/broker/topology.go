// Package broker provides the RabbitMQ infrastructure: connection lifecycle,
// idempotent topology declaration, and persistent JSON publishing.
package broker

import (
	"fmt"

	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange names. Every intra-pipeline message rides the direct pipeline
// exchange; human work is diverted through the back-office exchange; expired
// and rejected messages fan out to the dead-letter exchange.
const (
	ExchangePipeline   = "doc.direct"
	ExchangeBackoffice = "doc.backoffice"
	ExchangeDeadLetter = "doc.dlx"
)

// DeadLetterQueue collects everything routed through the DLX.
const DeadLetterQueue = "q.dead_letters"

// The workflow router sits ahead of every workflow: the ingress publishes
// request.new and the router forwards to the workflow's first stage. Its
// queue is therefore a static binding rather than a stage-derived one.
var routerBinding = Binding{Queue: "q.workflow_router", Exchange: ExchangePipeline, RoutingKey: "request.new"}

// Back-office task types and their static queue bindings.
var backofficeBindings = []Binding{
	{Queue: "q.backoffice.classification", Exchange: ExchangeBackoffice, RoutingKey: "task.classification"},
	{Queue: "q.backoffice.extraction", Exchange: ExchangeBackoffice, RoutingKey: "task.extraction"},
}

// Binding is one queue-to-(exchange, routing key) edge of the topology.
type Binding struct {
	Queue      string
	Exchange   string
	RoutingKey string
}

// QueueForComponent names the durable input queue of a worker component.
func QueueForComponent(component string) string {
	return fmt.Sprintf("q.%s", component)
}

// BindingsFor derives the full topology for a workflow: one queue per stage
// (named by component, bound to the stage's routing key on the pipeline
// exchange), the static back-office queues, and the dead-letter queue.
func BindingsFor(wf *workflow.Workflow) []Binding {
	bindings := make([]Binding, 0, len(wf.Stages)+len(backofficeBindings)+2)
	bindings = append(bindings, routerBinding)
	for _, stage := range wf.Stages {
		bindings = append(bindings, Binding{
			Queue:      QueueForComponent(stage.Component),
			Exchange:   ExchangePipeline,
			RoutingKey: stage.RoutingKey,
		})
	}
	bindings = append(bindings, backofficeBindings...)
	bindings = append(bindings, Binding{Queue: DeadLetterQueue, Exchange: ExchangeDeadLetter, RoutingKey: ""})
	return bindings
}

// DeclareTopology declares all exchanges, queues, and bindings for the given
// workflow. Declarations are idempotent; every worker declares the full
// topology before it begins consuming so startup order does not matter.
//
// Every non-DLQ queue dead-letters into the DLX and carries a per-message TTL
// so poison messages drain out of the pipeline instead of cycling forever.
func DeclareTopology(ch *amqp.Channel, wf *workflow.Workflow, messageTTLMS int) error {
	exchanges := map[string]string{
		ExchangePipeline:   amqp.ExchangeDirect,
		ExchangeBackoffice: amqp.ExchangeDirect,
		ExchangeDeadLetter: amqp.ExchangeFanout,
	}
	for name, kind := range exchanges {
		if err := ch.ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}

	queueArgs := amqp.Table{
		"x-dead-letter-exchange": ExchangeDeadLetter,
		"x-message-ttl":          int32(messageTTLMS),
	}

	for _, b := range BindingsFor(wf) {
		// The dead-letter queue must not dead-letter into itself.
		var args amqp.Table
		if b.Queue != DeadLetterQueue {
			args = queueArgs
		}

		if _, err := ch.QueueDeclare(b.Queue, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.Queue, err)
		}
		if err := ch.QueueBind(b.Queue, b.RoutingKey, b.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s/%s: %w", b.Queue, b.Exchange, b.RoutingKey, err)
		}
	}
	return nil
}
