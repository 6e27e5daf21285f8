package routing_test

import (
	"testing"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The resolver tests run against the same catalog fixture as the workflow
// package, loaded through the real loader.
func catalog() *workflow.Catalog {
	return workflow.NewCatalog("../workflow/testdata")
}

func message(stage string) *envelope.Message {
	m := envelope.New("r1", "default")
	m.CurrentStage = stage
	return m
}

func TestResolve_NextAdvancesStage(t *testing.T) {
	msg := message("ocr")
	msg.Payload["ocr_text"] = "FACTURA"

	dest, err := routing.Resolve(routing.Next, msg, catalog(), "ocr")
	require.NoError(t, err)
	require.NotNil(t, dest)

	assert.Equal(t, broker.ExchangePipeline, dest.Exchange)
	assert.Equal(t, "page.classify", dest.RoutingKey)
	assert.Equal(t, "classification", dest.Message.CurrentStage)

	// Only current_stage changed, and only on the copy.
	assert.Equal(t, "ocr", msg.CurrentStage)
	assert.Equal(t, "FACTURA", dest.Message.Payload["ocr_text"])
	assert.Equal(t, msg.RequestID, dest.Message.RequestID)
}

func TestResolve_NextOnTerminalStage(t *testing.T) {
	dest, err := routing.Resolve(routing.Next, message("consolidation"), catalog(), "consolidator")
	require.NoError(t, err)
	assert.Nil(t, dest)
}

func TestResolve_NextFallsBackToComponentLookup(t *testing.T) {
	msg := message("") // no current_stage on the wire

	dest, err := routing.Resolve(routing.Next, msg, catalog(), "splitter")
	require.NoError(t, err)
	require.NotNil(t, dest)
	assert.Equal(t, "page.ocr", dest.RoutingKey)
	assert.Equal(t, "ocr", dest.Message.CurrentStage)
}

func TestResolve_Backoffice(t *testing.T) {
	dest, err := routing.Resolve(routing.Backoffice, message("classification"), catalog(), "classifier")
	require.NoError(t, err)
	require.NotNil(t, dest)

	assert.Equal(t, broker.ExchangeBackoffice, dest.Exchange)
	assert.Equal(t, "task.classification", dest.RoutingKey)
}

func TestResolve_BackofficeWithoutQueueIsProgrammerError(t *testing.T) {
	_, err := routing.Resolve(routing.Backoffice, message("ocr"), catalog(), "ocr")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.KindInternal, appErr.Kind)
}

func TestResolve_LiteralKeyPassesThrough(t *testing.T) {
	msg := message("classification_aggregation")

	dest, err := routing.Resolve("doc.extract", msg, catalog(), "classification_aggregator")
	require.NoError(t, err)
	require.NotNil(t, dest)

	assert.Equal(t, broker.ExchangePipeline, dest.Exchange)
	assert.Equal(t, "doc.extract", dest.RoutingKey)
	assert.Same(t, msg, dest.Message)
}

func TestResolve_UnknownWorkflowBubbles(t *testing.T) {
	msg := envelope.New("r1", "ghost-workflow")

	_, err := routing.Resolve(routing.Next, msg, catalog(), "ocr")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeWorkflowNotFound, appErr.Code)
}
