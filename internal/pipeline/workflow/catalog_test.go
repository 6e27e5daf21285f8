package workflow_test

import (
	"testing"

	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() *workflow.Catalog {
	return workflow.NewCatalog("testdata")
}

func TestCatalog_Load(t *testing.T) {
	c := newCatalog()

	wf, err := c.Load("default")
	require.NoError(t, err)
	assert.Equal(t, "default", wf.Name)
	assert.Len(t, wf.Stages, 7)
	assert.Equal(t, 60, wf.SLA.DeadlineSeconds)

	// Cached instance is returned on subsequent loads.
	again, err := c.Load("default")
	require.NoError(t, err)
	assert.Same(t, wf, again)
}

func TestCatalog_LoadUnknownWorkflow(t *testing.T) {
	_, err := newCatalog().Load("does-not-exist")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeWorkflowNotFound, appErr.Code)
	assert.False(t, appErr.IsRetryable())
}

func TestCatalog_FirstStage(t *testing.T) {
	stage, err := newCatalog().FirstStage("default")
	require.NoError(t, err)
	assert.Equal(t, "splitting", stage.Name)
	assert.Equal(t, "splitter", stage.Component)
	assert.Equal(t, "request.split", stage.RoutingKey)
}

func TestCatalog_NextStage(t *testing.T) {
	c := newCatalog()

	next, err := c.NextStage("default", "ocr")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "classification", next.Name)
	assert.Equal(t, "page.classify", next.RoutingKey)

	// Terminal stage has no successor and no error.
	next, err = c.NextStage("default", "consolidation")
	require.NoError(t, err)
	assert.Nil(t, next)

	// Unknown stage is surfaced as a retryable error.
	_, err = c.NextStage("default", "ghost")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeStageNotFound, appErr.Code)
	assert.True(t, appErr.IsRetryable())
}

func TestCatalog_StageByComponent(t *testing.T) {
	c := newCatalog()

	stage, err := c.StageByComponent("default", "classifier")
	require.NoError(t, err)
	assert.Equal(t, "classification", stage.Name)
	require.NotNil(t, stage.ConfidenceThreshold)
	assert.InDelta(t, 0.80, *stage.ConfidenceThreshold, 1e-9)
	assert.Equal(t, "task.classification", stage.BackofficeQueue)

	_, err = c.StageByComponent("default", "ghost")
	assert.Error(t, err)
}

func TestCatalog_AggregationDescriptors(t *testing.T) {
	c := newCatalog()

	stage, err := c.StageByName("default", "classification_aggregation")
	require.NoError(t, err)
	require.NotNil(t, stage.Aggregation)
	assert.Equal(t, workflow.AggregationKindFanIn, stage.Aggregation.Type)
	assert.Equal(t, workflow.ExpectFromPageCount, stage.Aggregation.ExpectCountFrom)

	stage, err = c.StageByName("default", "extraction_aggregation")
	require.NoError(t, err)
	require.NotNil(t, stage.Aggregation)
	assert.Equal(t, workflow.ExpectFromDocumentCount, stage.Aggregation.ExpectCountFrom)
}

func TestCatalog_ExtractionSchemaFor(t *testing.T) {
	c := newCatalog()

	schema, err := c.ExtractionSchemaFor("default", "invoice")
	require.NoError(t, err)
	require.NotNil(t, schema)
	assert.Equal(t, "invoice_number", schema.Fields[0].Name)
	assert.True(t, schema.Fields[0].Required)

	schema, err = c.ExtractionSchemaFor("default", "receipt")
	require.NoError(t, err)
	assert.Nil(t, schema)
}
