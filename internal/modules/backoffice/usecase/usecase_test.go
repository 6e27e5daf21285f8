package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/usecase"
	requestentity "github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// MOCKS
// ============================================================================

type MockTaskCommandRepository struct{ mock.Mock }

func (m *MockTaskCommandRepository) Create(ctx context.Context, task *entity.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskCommandRepository) Claim(ctx context.Context, id, operator string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, operator, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskCommandRepository) Complete(ctx context.Context, id string, outputData map[string]any, at time.Time) (bool, error) {
	args := m.Called(ctx, id, outputData, at)
	return args.Bool(0), args.Error(1)
}

type MockTaskQueryRepository struct{ mock.Mock }

func (m *MockTaskQueryRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Task), args.Error(1)
}

func (m *MockTaskQueryRepository) List(ctx context.Context, status entity.TaskStatus, skill string) ([]entity.Task, error) {
	args := m.Called(ctx, status, skill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Task), args.Error(1)
}

type MockOperatorCommandRepository struct{ mock.Mock }

func (m *MockOperatorCommandRepository) EnsureRegistered(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type MockPageCommandRepository struct{ mock.Mock }

func (m *MockPageCommandRepository) Create(ctx context.Context, page *requestentity.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageCommandRepository) UpdateOCR(ctx context.Context, requestID string, pageIndex int, text string, confidence float64) error {
	args := m.Called(ctx, requestID, pageIndex, text, confidence)
	return args.Error(0)
}

func (m *MockPageCommandRepository) UpdateClassification(ctx context.Context, requestID string, pageIndex int, docType string, confidence float64, status requestentity.PageStatus) error {
	args := m.Called(ctx, requestID, pageIndex, docType, confidence, status)
	return args.Error(0)
}

func (m *MockPageCommandRepository) UpdateClassificationByID(ctx context.Context, pageID string, docType string, confidence float64, status requestentity.PageStatus) error {
	args := m.Called(ctx, pageID, docType, confidence, status)
	return args.Error(0)
}

func (m *MockPageCommandRepository) AssignDocument(ctx context.Context, pageID string, documentID string) error {
	args := m.Called(ctx, pageID, documentID)
	return args.Error(0)
}

type MockPageQueryRepository struct{ mock.Mock }

func (m *MockPageQueryRepository) FindByID(ctx context.Context, id string) (*requestentity.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestentity.Page), args.Error(1)
}

func (m *MockPageQueryRepository) FindByRequestIndex(ctx context.Context, requestID string, pageIndex int) (*requestentity.Page, error) {
	args := m.Called(ctx, requestID, pageIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestentity.Page), args.Error(1)
}

func (m *MockPageQueryRepository) FindByRequestOrdered(ctx context.Context, requestID string) ([]requestentity.Page, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestentity.Page), args.Error(1)
}

type MockDocumentCommandRepository struct{ mock.Mock }

func (m *MockDocumentCommandRepository) Create(ctx context.Context, document *requestentity.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentCommandRepository) UpdateExtraction(ctx context.Context, id string, data map[string]any, confidence float64, status requestentity.DocumentStatus) error {
	args := m.Called(ctx, id, data, confidence, status)
	return args.Error(0)
}

func (m *MockDocumentCommandRepository) MarkAllCompleted(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

type MockDocumentQueryRepository struct{ mock.Mock }

func (m *MockDocumentQueryRepository) FindByID(ctx context.Context, id string) (*requestentity.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*requestentity.Document), args.Error(1)
}

func (m *MockDocumentQueryRepository) FindByRequestOrdered(ctx context.Context, requestID string) ([]requestentity.Document, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestentity.Document), args.Error(1)
}

// MockTransactionManager runs the handler inline so the submit flow can be
// exercised without a live database.
type MockTransactionManager struct{ mock.Mock }

func (m *MockTransactionManager) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) == nil {
		return fn(ctx)
	}
	return args.Error(0)
}

type publishedMessage struct {
	Exchange   string
	RoutingKey string
	Message    *envelope.Message
}

type fakePublisher struct {
	err       error
	published []publishedMessage
}

func (f *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, msg *envelope.Message) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{exchange, routingKey, msg})
	return nil
}

// ============================================================================
// TESTS
// ============================================================================

func TestClaimTask_AssignsPendingTask(t *testing.T) {
	taskCmd := new(MockTaskCommandRepository)
	taskQry := new(MockTaskQueryRepository)
	operatorCmd := new(MockOperatorCommandRepository)

	uc := usecase.NewClaimTaskUseCase(logger.NewNoOpLogger(), tracer.NewNoOpTracer(), taskCmd, taskQry, operatorCmd)

	task := &entity.Task{ID: "t1", Status: entity.TaskStatusPending}
	taskQry.On("FindByID", mock.Anything, "t1").Return(task, nil)
	operatorCmd.On("EnsureRegistered", mock.Anything, "alice").Return(nil)
	taskCmd.On("Claim", mock.Anything, "t1", "alice", mock.Anything).Return(true, nil)

	resp, err := uc.Execute(context.Background(), &usecase.ClaimTaskRequest{TaskID: "t1", Operator: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.AssignedTo)
	assert.Equal(t, string(entity.TaskStatusAssigned), resp.Status)
}

func TestClaimTask_LostRace(t *testing.T) {
	taskCmd := new(MockTaskCommandRepository)
	taskQry := new(MockTaskQueryRepository)
	operatorCmd := new(MockOperatorCommandRepository)

	uc := usecase.NewClaimTaskUseCase(logger.NewNoOpLogger(), tracer.NewNoOpTracer(), taskCmd, taskQry, operatorCmd)

	task := &entity.Task{ID: "t1", Status: entity.TaskStatusPending}
	taskQry.On("FindByID", mock.Anything, "t1").Return(task, nil)
	operatorCmd.On("EnsureRegistered", mock.Anything, "bob").Return(nil)
	taskCmd.On("Claim", mock.Anything, "t1", "bob", mock.Anything).Return(false, nil)

	_, err := uc.Execute(context.Background(), &usecase.ClaimTaskRequest{TaskID: "t1", Operator: "bob"})
	assert.ErrorIs(t, err, entity.ErrTaskNotClaimable)
}

func newSubmitUseCase(
	taskCmd *MockTaskCommandRepository,
	taskQry *MockTaskQueryRepository,
	pageCmd *MockPageCommandRepository,
	pageQry *MockPageQueryRepository,
	docCmd *MockDocumentCommandRepository,
	docQry *MockDocumentQueryRepository,
	runner *MockTransactionManager,
	pub *fakePublisher,
) usecase.SubmitTaskUseCase {
	return usecase.NewSubmitTaskUseCase(
		logger.NewNoOpLogger(),
		tracer.NewNoOpTracer(),
		runner,
		usecase.SubmitTaskRepositories{
			TaskCmd: taskCmd,
			TaskQry: taskQry,
			PageCmd: pageCmd,
			PageQry: pageQry,
			DocCmd:  docCmd,
			DocQry:  docQry,
		},
		pub,
	)
}

func TestSubmitTask_ClassificationReentersPipeline(t *testing.T) {
	taskCmd := new(MockTaskCommandRepository)
	taskQry := new(MockTaskQueryRepository)
	pageCmd := new(MockPageCommandRepository)
	pageQry := new(MockPageQueryRepository)
	runner := new(MockTransactionManager)
	pub := &fakePublisher{}

	workflowName := "default"
	sourceStage := "classification"
	task := &entity.Task{
		ID:           "t1",
		RequestID:    "r1",
		TaskType:     entity.TaskTypeClassification,
		ReferenceID:  "page-1",
		Status:       entity.TaskStatusAssigned,
		WorkflowName: &workflowName,
		SourceStage:  &sourceStage,
		InputData:    map[string]any{"suggested_type": "receipt"},
	}

	taskQry.On("FindByID", mock.Anything, "t1").Return(task, nil)
	runner.On("Atomic", mock.Anything, mock.Anything).Return(nil)

	page := &requestentity.Page{ID: "page-1", RequestID: "r1", PageIndex: 1}
	pageQry.On("FindByID", mock.Anything, "page-1").Return(page, nil)

	// Manual verdicts always land with confidence 1.0.
	pageCmd.On("UpdateClassificationByID", mock.Anything, "page-1", "invoice", 1.0, requestentity.PageStatusClassified).Return(nil)

	var output map[string]any
	taskCmd.On("Complete", mock.Anything, "t1", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			output = args.Get(2).(map[string]any)
		}).Return(true, nil)

	uc := newSubmitUseCase(taskCmd, taskQry, pageCmd, pageQry, new(MockDocumentCommandRepository), new(MockDocumentQueryRepository), runner, pub)

	resp, err := uc.Execute(context.Background(), &usecase.SubmitTaskRequest{
		TaskID:   "t1",
		Operator: "alice",
		DocType:  "invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.RequestID)

	assert.Equal(t, "invoice", output["doc_type"])
	assert.Equal(t, "alice", output["operator"])

	// The re-entry lands on the same logical key the automatic path uses,
	// with back-office provenance and no current_stage (resolved downstream
	// via the by-component fallback).
	require.Len(t, pub.published, 1)
	p := pub.published[0]
	assert.Equal(t, broker.ExchangePipeline, p.Exchange)
	assert.Equal(t, "page.classified", p.RoutingKey)
	assert.Equal(t, "backoffice", p.Message.SourceComponent)
	assert.Empty(t, p.Message.CurrentStage)
	assert.Equal(t, "backoffice", p.Message.Payload["origin"])
	assert.Equal(t, 1.0, p.Message.Payload["classification_confidence"])
	require.NotNil(t, p.Message.PageIndex)
	assert.Equal(t, 1, *p.Message.PageIndex)
}

func TestSubmitTask_ExtractionMergesOperatorData(t *testing.T) {
	taskCmd := new(MockTaskCommandRepository)
	taskQry := new(MockTaskQueryRepository)
	docCmd := new(MockDocumentCommandRepository)
	docQry := new(MockDocumentQueryRepository)
	runner := new(MockTransactionManager)
	pub := &fakePublisher{}

	task := &entity.Task{
		ID:          "t2",
		RequestID:   "r1",
		TaskType:    entity.TaskTypeExtraction,
		ReferenceID: "doc-1",
		Status:      entity.TaskStatusAssigned,
	}
	taskQry.On("FindByID", mock.Anything, "t2").Return(task, nil)
	runner.On("Atomic", mock.Anything, mock.Anything).Return(nil)

	doc := &requestentity.Document{
		ID:            "doc-1",
		RequestID:     "r1",
		DocType:       "invoice",
		ExtractedData: map[string]any{"invoice_number": "F-1", "total_amount": 10.0},
	}
	docQry.On("FindByID", mock.Anything, "doc-1").Return(doc, nil)

	var merged map[string]any
	docCmd.On("UpdateExtraction", mock.Anything, "doc-1", mock.Anything, 1.0, requestentity.DocumentStatusExtracted).
		Run(func(args mock.Arguments) {
			merged = args.Get(2).(map[string]any)
		}).Return(nil)
	taskCmd.On("Complete", mock.Anything, "t2", mock.Anything, mock.Anything).Return(true, nil)

	uc := newSubmitUseCase(taskCmd, taskQry, new(MockPageCommandRepository), new(MockPageQueryRepository), docCmd, docQry, runner, pub)

	resp, err := uc.Execute(context.Background(), &usecase.SubmitTaskRequest{
		TaskID:        "t2",
		Operator:      "alice",
		ExtractedData: map[string]any{"total_amount": 12.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.RequestID)

	// Operator corrections win over machine output; untouched fields survive.
	assert.Equal(t, 12.5, merged["total_amount"])
	assert.Equal(t, "F-1", merged["invoice_number"])

	require.Len(t, pub.published, 1)
	assert.Equal(t, "doc.extracted", pub.published[0].RoutingKey)
	assert.Equal(t, "doc-1", pub.published[0].Message.DocumentID)
}

func TestSubmitTask_RequiresAssignedStatus(t *testing.T) {
	taskCmd := new(MockTaskCommandRepository)
	taskQry := new(MockTaskQueryRepository)
	runner := new(MockTransactionManager)

	task := &entity.Task{ID: "t3", Status: entity.TaskStatusPending, TaskType: entity.TaskTypeClassification}
	taskQry.On("FindByID", mock.Anything, "t3").Return(task, nil)

	uc := newSubmitUseCase(taskCmd, taskQry, new(MockPageCommandRepository), new(MockPageQueryRepository), new(MockDocumentCommandRepository), new(MockDocumentQueryRepository), runner, &fakePublisher{})

	_, err := uc.Execute(context.Background(), &usecase.SubmitTaskRequest{TaskID: "t3", Operator: "alice"})
	assert.ErrorIs(t, err, entity.ErrTaskNotAssigned)

	runner.AssertNotCalled(t, "Atomic", mock.Anything, mock.Anything)
}
