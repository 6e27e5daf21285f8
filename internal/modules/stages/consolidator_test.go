package stages

import (
	"context"
	"testing"

	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConsolidator_AssemblesResultAndCompletes(t *testing.T) {
	requestCmd := new(MockRequestCommandRepository)
	requestQry := new(MockRequestQueryRepository)
	docCmd := new(MockDocumentCommandRepository)
	docQry := new(MockDocumentQueryRepository)

	deps := testDeps(Repositories{
		RequestCmd: requestCmd,
		RequestQry: requestQry,
		DocCmd:     docCmd,
		DocQry:     docQry,
	}, realCatalogDir, 0.8, 0.75)

	pageCount := 3
	request := &entity.Request{
		ID:           "r1",
		WorkflowName: "default",
		Status:       entity.RequestStatusConsolidating,
		PageCount:    &pageCount,
	}
	conf := 0.91
	documents := []entity.Document{{
		ID:            "doc-1",
		RequestID:     "r1",
		DocType:       "invoice",
		PageIndices:   []int{0, 1, 2},
		Status:        entity.DocumentStatusExtracted,
		ExtractedData: map[string]any{"invoice_number": "F-1"},
		ExtConfidence: &conf,
	}}

	requestQry.On("FindByID", mock.Anything, "r1").Return(request, nil)
	docQry.On("FindByRequestOrdered", mock.Anything, "r1").Return(documents, nil)
	docCmd.On("MarkAllCompleted", mock.Anything, "r1").Return(nil)

	var payload map[string]any
	requestCmd.On("Complete", mock.Anything, "r1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			payload = args.Get(2).(map[string]any)
		}).Return(true, nil)

	msg := envelope.New("r1", "default")
	msg.CurrentStage = "consolidation"

	outgoing, err := NewConsolidator(deps).Process(context.Background(), msg)
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	require.NotNil(t, payload)
	assert.Equal(t, 3, payload["total_pages"])
	assert.Equal(t, 1, payload["total_documents"])

	summaries := payload["documents"].([]any)
	require.Len(t, summaries, 1)
	first := summaries[0].(map[string]any)
	assert.Equal(t, "invoice", first["doc_type"])
	assert.Equal(t, []int{0, 1, 2}, first["page_indices"])
	assert.Equal(t, map[string]any{"invoice_number": "F-1"}, first["extracted_data"])
}

func TestConsolidator_BreachedRequestKeepsTerminalStatus(t *testing.T) {
	requestCmd := new(MockRequestCommandRepository)
	requestQry := new(MockRequestQueryRepository)
	docCmd := new(MockDocumentCommandRepository)
	docQry := new(MockDocumentQueryRepository)

	deps := testDeps(Repositories{
		RequestCmd: requestCmd,
		RequestQry: requestQry,
		DocCmd:     docCmd,
		DocQry:     docQry,
	}, realCatalogDir, 0.8, 0.75)

	request := &entity.Request{ID: "r1", Status: entity.RequestStatusSLABreached}
	requestQry.On("FindByID", mock.Anything, "r1").Return(request, nil)
	docQry.On("FindByRequestOrdered", mock.Anything, "r1").Return([]entity.Document{}, nil)
	docCmd.On("MarkAllCompleted", mock.Anything, "r1").Return(nil)

	// The guarded update refuses the completion; no error is surfaced.
	requestCmd.On("Complete", mock.Anything, "r1", mock.Anything, mock.Anything).Return(false, nil)

	outgoing, err := NewConsolidator(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestConsolidator_MissingRequestIsAbsorbed(t *testing.T) {
	requestQry := new(MockRequestQueryRepository)
	deps := testDeps(Repositories{RequestQry: requestQry}, realCatalogDir, 0.8, 0.75)

	requestQry.On("FindByID", mock.Anything, "r1").Return(nil, nil)

	outgoing, err := NewConsolidator(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}
