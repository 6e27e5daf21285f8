package stages

import (
	"context"
	"time"

	aggentity "github.com/SergioST90/document-processing-system/internal/modules/aggregation/entity"
	aggrepo "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository"
	boentity "github.com/SergioST90/document-processing-system/internal/modules/backoffice/entity"
	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// MOCKS
// ============================================================================

type MockRequestCommandRepository struct {
	mock.Mock
}

func (m *MockRequestCommandRepository) Create(ctx context.Context, request *entity.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestCommandRepository) SetRouting(ctx context.Context, id string, deadline time.Time, slaSeconds int) (bool, error) {
	args := m.Called(ctx, id, deadline, slaSeconds)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestCommandRepository) SetSplitResult(ctx context.Context, id string, pageCount int, status entity.RequestStatus) (bool, error) {
	args := m.Called(ctx, id, pageCount, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestCommandRepository) SetDocumentCount(ctx context.Context, id string, documentCount int, status entity.RequestStatus) (bool, error) {
	args := m.Called(ctx, id, documentCount, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestCommandRepository) TransitionStatus(ctx context.Context, id string, status entity.RequestStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestCommandRepository) Complete(ctx context.Context, id string, resultPayload map[string]any, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, resultPayload, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestCommandRepository) MarkSLABreached(ctx context.Context, id string, errorMessage string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, errorMessage, at)
	return args.Bool(0), args.Error(1)
}

type MockRequestQueryRepository struct {
	mock.Mock
}

func (m *MockRequestQueryRepository) FindByID(ctx context.Context, id string) (*entity.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Request), args.Error(1)
}

func (m *MockRequestQueryRepository) FindBreached(ctx context.Context, now time.Time) ([]entity.Request, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Request), args.Error(1)
}

func (m *MockRequestQueryRepository) FindAtRisk(ctx context.Context, now time.Time, remainingFraction float64) ([]requestrepo.AtRiskRequest, error) {
	args := m.Called(ctx, now, remainingFraction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]requestrepo.AtRiskRequest), args.Error(1)
}

type MockPageCommandRepository struct {
	mock.Mock
}

func (m *MockPageCommandRepository) Create(ctx context.Context, page *entity.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageCommandRepository) UpdateOCR(ctx context.Context, requestID string, pageIndex int, text string, confidence float64) error {
	args := m.Called(ctx, requestID, pageIndex, text, confidence)
	return args.Error(0)
}

func (m *MockPageCommandRepository) UpdateClassification(ctx context.Context, requestID string, pageIndex int, docType string, confidence float64, status entity.PageStatus) error {
	args := m.Called(ctx, requestID, pageIndex, docType, confidence, status)
	return args.Error(0)
}

func (m *MockPageCommandRepository) UpdateClassificationByID(ctx context.Context, pageID string, docType string, confidence float64, status entity.PageStatus) error {
	args := m.Called(ctx, pageID, docType, confidence, status)
	return args.Error(0)
}

func (m *MockPageCommandRepository) AssignDocument(ctx context.Context, pageID string, documentID string) error {
	args := m.Called(ctx, pageID, documentID)
	return args.Error(0)
}

type MockPageQueryRepository struct {
	mock.Mock
}

func (m *MockPageQueryRepository) FindByID(ctx context.Context, id string) (*entity.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page), args.Error(1)
}

func (m *MockPageQueryRepository) FindByRequestIndex(ctx context.Context, requestID string, pageIndex int) (*entity.Page, error) {
	args := m.Called(ctx, requestID, pageIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page), args.Error(1)
}

func (m *MockPageQueryRepository) FindByRequestOrdered(ctx context.Context, requestID string) ([]entity.Page, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Page), args.Error(1)
}

type MockDocumentCommandRepository struct {
	mock.Mock
}

func (m *MockDocumentCommandRepository) Create(ctx context.Context, document *entity.Document) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}

func (m *MockDocumentCommandRepository) UpdateExtraction(ctx context.Context, id string, data map[string]any, confidence float64, status entity.DocumentStatus) error {
	args := m.Called(ctx, id, data, confidence, status)
	return args.Error(0)
}

func (m *MockDocumentCommandRepository) MarkAllCompleted(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

type MockDocumentQueryRepository struct {
	mock.Mock
}

func (m *MockDocumentQueryRepository) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Document), args.Error(1)
}

func (m *MockDocumentQueryRepository) FindByRequestOrdered(ctx context.Context, requestID string) ([]entity.Document, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Document), args.Error(1)
}

type MockStateCommandRepository struct {
	mock.Mock
}

func (m *MockStateCommandRepository) Create(ctx context.Context, state *aggentity.State) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateCommandRepository) IncrementAndGet(ctx context.Context, requestID, stage string) (*aggrepo.Progress, error) {
	args := m.Called(ctx, requestID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggrepo.Progress), args.Error(1)
}

func (m *MockStateCommandRepository) MarkComplete(ctx context.Context, requestID, stage string) (bool, error) {
	args := m.Called(ctx, requestID, stage)
	return args.Bool(0), args.Error(1)
}

type MockTaskCommandRepository struct {
	mock.Mock
}

func (m *MockTaskCommandRepository) Create(ctx context.Context, task *boentity.Task) error {
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
