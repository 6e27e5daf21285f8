package stages

import (
	"context"
	"testing"

	aggentity "github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSplitter_FansOutPages(t *testing.T) {
	requestCmd := new(MockRequestCommandRepository)
	pageCmd := new(MockPageCommandRepository)
	aggCmd := new(MockStateCommandRepository)

	deps := testDeps(Repositories{
		RequestCmd: requestCmd,
		PageCmd:    pageCmd,
		AggCmd:     aggCmd,
	}, realCatalogDir, 0.8, 0.75)

	msg := envelope.New("r1", "default")
	msg.CurrentStage = "splitting"
	msg.Payload["file_path"] = "/data/r1/upload.pdf"

	var seededState *aggentity.State
	requestCmd.On("SetSplitResult", mock.Anything, "r1", mock.Anything, entity.RequestStatusSplitting).Return(true, nil)
	requestCmd.On("TransitionStatus", mock.Anything, "r1", entity.RequestStatusClassifying).Return(true, nil)
	aggCmd.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		seededState = args.Get(1).(*aggentity.State)
	}).Return(nil)
	pageCmd.On("Create", mock.Anything, mock.Anything).Return(nil)

	outgoing, err := NewSplitter(deps).Process(context.Background(), msg)
	require.NoError(t, err)

	// The stub decoder is deterministic per request id; whatever count it
	// chose must be consistent everywhere.
	pageCount := len(outgoing)
	assert.GreaterOrEqual(t, pageCount, 3)
	assert.LessOrEqual(t, pageCount, 5)

	require.NotNil(t, seededState)
	assert.Equal(t, aggentity.StageClassification, seededState.Stage)
	assert.Equal(t, pageCount, seededState.ExpectedCount)

	pageCmd.AssertNumberOfCalls(t, "Create", pageCount)

	for i, out := range outgoing {
		assert.Equal(t, routing.Next, out.Key)
		require.NotNil(t, out.Message.PageIndex)
		assert.Equal(t, i, *out.Message.PageIndex)
		require.NotNil(t, out.Message.PageCount)
		assert.Equal(t, pageCount, *out.Message.PageCount)
		assert.Equal(t, ComponentSplitter, out.Message.SourceComponent)
		assert.NotEmpty(t, out.Message.Payload["page_id"])
		// The original file context is carried forward on every page message.
		assert.Equal(t, "/data/r1/upload.pdf", out.Message.Payload["file_path"])
	}

	requestCmd.AssertExpectations(t)
	aggCmd.AssertExpectations(t)
}

func TestSplitter_DeterministicPageCount(t *testing.T) {
	count := func() int {
		requestCmd := new(MockRequestCommandRepository)
		pageCmd := new(MockPageCommandRepository)
		aggCmd := new(MockStateCommandRepository)

		deps := testDeps(Repositories{RequestCmd: requestCmd, PageCmd: pageCmd, AggCmd: aggCmd}, realCatalogDir, 0.8, 0.75)
		requestCmd.On("SetSplitResult", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		requestCmd.On("TransitionStatus", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		aggCmd.On("Create", mock.Anything, mock.Anything).Return(nil)
		pageCmd.On("Create", mock.Anything, mock.Anything).Return(nil)

		msg := envelope.New("same-request", "default")
		msg.CurrentStage = "splitting"
		out, err := NewSplitter(deps).Process(context.Background(), msg)
		require.NoError(t, err)
		return len(out)
	}

	assert.Equal(t, count(), count())
}

func TestSplitter_RedeliveryIsAbsorbed(t *testing.T) {
	requestCmd := new(MockRequestCommandRepository)
	pageCmd := new(MockPageCommandRepository)
	aggCmd := new(MockStateCommandRepository)

	deps := testDeps(Repositories{RequestCmd: requestCmd, PageCmd: pageCmd, AggCmd: aggCmd}, realCatalogDir, 0.8, 0.75)

	// page_count already written by the first delivery.
	requestCmd.On("SetSplitResult", mock.Anything, "r1", mock.Anything, entity.RequestStatusSplitting).Return(false, nil)

	msg := envelope.New("r1", "default")
	msg.CurrentStage = "splitting"

	outgoing, err := NewSplitter(deps).Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	aggCmd.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pageCmd.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
