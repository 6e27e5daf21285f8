package broker_test

import (
	"testing"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueForComponent(t *testing.T) {
	assert.Equal(t, "q.splitter", broker.QueueForComponent("splitter"))
	assert.Equal(t, "q.classification_aggregator", broker.QueueForComponent("classification_aggregator"))
}

func TestBindingsFor_DerivedFromWorkflow(t *testing.T) {
	wf := &workflow.Workflow{
		Name: "default",
		Stages: []workflow.Stage{
			{Name: "splitting", Component: "splitter", RoutingKey: "request.split"},
			{Name: "ocr", Component: "ocr", RoutingKey: "page.ocr"},
		},
	}

	bindings := broker.BindingsFor(wf)

	byQueue := map[string]broker.Binding{}
	for _, b := range bindings {
		byQueue[b.Queue] = b
	}

	require.Len(t, bindings, 6)

	// The router queue is always present even though it is not a stage.
	b := byQueue["q.workflow_router"]
	assert.Equal(t, broker.ExchangePipeline, b.Exchange)
	assert.Equal(t, "request.new", b.RoutingKey)

	b = byQueue["q.splitter"]
	assert.Equal(t, "request.split", b.RoutingKey)

	// Back-office queues ride their own exchange.
	b = byQueue["q.backoffice.classification"]
	assert.Equal(t, broker.ExchangeBackoffice, b.Exchange)
	assert.Equal(t, "task.classification", b.RoutingKey)

	b = byQueue["q.backoffice.extraction"]
	assert.Equal(t, "task.extraction", b.RoutingKey)

	// The dead-letter queue binds to the fanout DLX with an empty key.
	b = byQueue[broker.DeadLetterQueue]
	assert.Equal(t, broker.ExchangeDeadLetter, b.Exchange)
	assert.Equal(t, "", b.RoutingKey)
}
