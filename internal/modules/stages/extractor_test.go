package stages

import (
	"context"
	"testing"

	boentity "github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func extractMessage(docType string) *envelope.Message {
	msg := envelope.New("r1", "default")
	msg.CurrentStage = "extraction"
	msg.DocumentID = "doc-1"
	msg.Payload["doc_type"] = docType
	msg.Payload["ocr_texts"] = map[string]any{"0": "FACTURA"}
	return msg
}

func TestExtractor_HighConfidenceAdvances(t *testing.T) {
	docCmd := new(MockDocumentCommandRepository)
	taskCmd := new(MockTaskCommandRepository)

	deps := testDeps(Repositories{DocCmd: docCmd, TaskCmd: taskCmd}, noCatalogDir, 0.0, 0.0)

	var writtenData map[string]any
	docCmd.On("UpdateExtraction", mock.Anything, "doc-1", mock.Anything, mock.Anything, entity.DocumentStatusExtracted).
		Run(func(args mock.Arguments) {
			writtenData = args.Get(2).(map[string]any)
		}).Return(nil)

	outgoing, err := NewExtractor(deps).Process(context.Background(), extractMessage("invoice"))
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	assert.Equal(t, routing.Next, outgoing[0].Key)
	assert.Equal(t, "F-2024-00142", writtenData["invoice_number"])
	assert.Equal(t, writtenData, outgoing[0].Message.Payload["extracted_data"])

	taskCmd.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtractor_LowConfidenceDivertsToBackoffice(t *testing.T) {
	docCmd := new(MockDocumentCommandRepository)
	taskCmd := new(MockTaskCommandRepository)

	deps := testDeps(Repositories{DocCmd: docCmd, TaskCmd: taskCmd}, noCatalogDir, 0.0, 1.1)

	docCmd.On("UpdateExtraction", mock.Anything, "doc-1", mock.Anything, mock.Anything, entity.DocumentStatusExtractionReview).Return(nil)

	var createdTask *boentity.Task
	taskCmd.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		createdTask = args.Get(1).(*boentity.Task)
	}).Return(nil)

	outgoing, err := NewExtractor(deps).Process(context.Background(), extractMessage("payslip"))
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, routing.Backoffice, outgoing[0].Key)

	require.NotNil(t, createdTask)
	assert.Equal(t, boentity.TaskTypeExtraction, createdTask.TaskType)
	assert.Equal(t, "doc-1", createdTask.ReferenceID)
	assert.Equal(t, []string{"extraction", "payslip"}, createdTask.RequiredSkills)
	assert.NotNil(t, createdTask.InputData["extracted_data"])
	assert.NotNil(t, createdTask.InputData["ocr_texts"])
}

func TestExtractor_MissingDocumentIDIsPermanent(t *testing.T) {
	deps := testDeps(Repositories{}, noCatalogDir, 0.0, 0.0)

	msg := envelope.New("r1", "default")
	_, err := NewExtractor(deps).Process(context.Background(), msg)
	require.Error(t, err)
}

func TestExtractor_SchemaProjection(t *testing.T) {
	// The real catalog defines an invoice schema; the stub output must be
	// projected onto exactly those fields.
	deps := testDeps(Repositories{}, realCatalogDir, 0.8, 0.75)
	s := NewExtractor(deps)

	out := s.extract("default", "invoice")
	assert.Equal(t, map[string]any{
		"invoice_number": "F-2024-00142",
		"total_amount":   1250.00,
		"vendor_name":    "Empresa ABC S.L.",
		"date":           "2024-01-15",
	}, out)

	// No schema for receipts: the full stub passes through.
	out = s.extract("default", "receipt")
	assert.Equal(t, 47.85, out["total"])

	// Unknown doc type gets the fallback shape.
	out = s.extract("default", "mystery")
	assert.Equal(t, "Unrecognized document", out["raw_text"])
}
