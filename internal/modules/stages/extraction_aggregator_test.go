package stages

import (
	"context"
	"testing"

	aggentity "github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	aggrepo "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExtractionAggregator_WaitsForSiblings(t *testing.T) {
	aggCmd := new(MockStateCommandRepository)
	requestCmd := new(MockRequestCommandRepository)
	deps := testDeps(Repositories{AggCmd: aggCmd, RequestCmd: requestCmd}, realCatalogDir, 0.8, 0.75)

	aggCmd.On("IncrementAndGet", mock.Anything, "r1", aggentity.StageExtraction).
		Return(&aggrepo.Progress{Received: 1, Expected: 2}, nil)

	outgoing, err := NewExtractionAggregator(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestExtractionAggregator_FinalizationHandsOffToConsolidator(t *testing.T) {
	aggCmd := new(MockStateCommandRepository)
	requestCmd := new(MockRequestCommandRepository)
	deps := testDeps(Repositories{AggCmd: aggCmd, RequestCmd: requestCmd}, realCatalogDir, 0.8, 0.75)

	aggCmd.On("IncrementAndGet", mock.Anything, "r1", aggentity.StageExtraction).
		Return(&aggrepo.Progress{Received: 2, Expected: 2}, nil)
	aggCmd.On("MarkComplete", mock.Anything, "r1", aggentity.StageExtraction).Return(true, nil)
	requestCmd.On("TransitionStatus", mock.Anything, "r1", entity.RequestStatusConsolidating).Return(true, nil)

	// The back-office re-entry path leaves current_stage empty; resolution
	// must work through the by-component fallback.
	msg := envelope.New("r1", "default")

	outgoing, err := NewExtractionAggregator(deps).Process(context.Background(), msg)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, routing.Next, outgoing[0].Key)

	requestCmd.AssertExpectations(t)
}

func TestExtractionAggregator_FinalizationFiresOnce(t *testing.T) {
	aggCmd := new(MockStateCommandRepository)
	requestCmd := new(MockRequestCommandRepository)
	deps := testDeps(Repositories{AggCmd: aggCmd, RequestCmd: requestCmd}, realCatalogDir, 0.8, 0.75)

	aggCmd.On("IncrementAndGet", mock.Anything, "r1", aggentity.StageExtraction).
		Return(&aggrepo.Progress{Received: 2, Expected: 2}, nil)
	aggCmd.On("MarkComplete", mock.Anything, "r1", aggentity.StageExtraction).Return(false, nil)

	outgoing, err := NewExtractionAggregator(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	requestCmd.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionAggregator_MissingRowIsAbsorbed(t *testing.T) {
	aggCmd := new(MockStateCommandRepository)
	deps := testDeps(Repositories{AggCmd: aggCmd}, realCatalogDir, 0.8, 0.75)

	aggCmd.On("IncrementAndGet", mock.Anything, "r1", aggentity.StageExtraction).Return(nil, nil)

	outgoing, err := NewExtractionAggregator(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}
