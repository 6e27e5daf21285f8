package stages

import (
	"context"
	"testing"
	"time"

	"github.com/SergioST90/document-processing-system/internal/modules/request/entity"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWorkflowRouter_RoutesToFirstStage(t *testing.T) {
	requestCmd := new(MockRequestCommandRepository)
	requestQry := new(MockRequestQueryRepository)

	deps := testDeps(Repositories{RequestCmd: requestCmd, RequestQry: requestQry}, realCatalogDir, 0.8, 0.75)

	request := &entity.Request{ID: "r1", Status: entity.RequestStatusReceived, WorkflowName: "default"}
	requestQry.On("FindByID", mock.Anything, "r1").Return(request, nil)

	var stampedDeadline time.Time
	requestCmd.On("SetRouting", mock.Anything, "r1", mock.Anything, 60).
		Run(func(args mock.Arguments) {
			stampedDeadline = args.Get(2).(time.Time)
		}).Return(true, nil)

	outgoing, err := NewWorkflowRouter(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	require.Len(t, outgoing, 1)

	// First stage comes from the catalog, not a hard-coded key.
	assert.Equal(t, "request.split", outgoing[0].Key)
	assert.Equal(t, "splitting", outgoing[0].Message.CurrentStage)
	require.NotNil(t, outgoing[0].Message.DeadlineUTC)
	assert.Equal(t, stampedDeadline, *outgoing[0].Message.DeadlineUTC)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Minute), stampedDeadline, 5*time.Second)
}

func TestWorkflowRouter_UnknownWorkflowIsPermanent(t *testing.T) {
	deps := testDeps(Repositories{}, realCatalogDir, 0.8, 0.75)

	_, err := NewWorkflowRouter(deps).Process(context.Background(), envelope.New("r1", "ghost"))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeWorkflowNotFound, appErr.Code)
	assert.False(t, appErr.IsRetryable())
}

func TestWorkflowRouter_MissingRequestIsAbsorbed(t *testing.T) {
	requestQry := new(MockRequestQueryRepository)
	deps := testDeps(Repositories{RequestQry: requestQry}, realCatalogDir, 0.8, 0.75)

	requestQry.On("FindByID", mock.Anything, "r1").Return(nil, nil)

	outgoing, err := NewWorkflowRouter(deps).Process(context.Background(), envelope.New("r1", "default"))
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestRegistry_BuildsEveryComponent(t *testing.T) {
	deps := testDeps(Repositories{}, realCatalogDir, 0.8, 0.75)

	for _, name := range Names() {
		stage, err := Build(name, deps)
		require.NoError(t, err, name)
		assert.Equal(t, name, stage.Component())
	}

	_, err := Build("ghost", deps)
	assert.Error(t, err)
}
