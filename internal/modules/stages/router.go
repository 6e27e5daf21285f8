package stages

import (
	"context"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	requestrepo "github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/SergioST90/document-processing-system/internal/pipeline/envelope"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
	"github.com/SergioST90/document-processing-system/internal/pipeline/sla"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"
)

// WorkflowRouter is the entry stage: it resolves the named workflow, stamps
// the SLA budget and absolute deadline on the request, and hands the message
// to the workflow's first stage as resolved from the catalog.
type WorkflowRouter struct {
	log        logger.Logger
	catalog    *workflow.Catalog
	requestCmd requestrepo.RequestCommandRepository
	requestQry requestrepo.RequestQueryRepository
}

var _ runtime.Stage = (*WorkflowRouter)(nil)

func NewWorkflowRouter(deps Dependencies) *WorkflowRouter {
	return &WorkflowRouter{
		log:        deps.Log.WithField("component", ComponentWorkflowRouter),
		catalog:    deps.Catalog,
		requestCmd: deps.Repo.RequestCmd,
		requestQry: deps.Repo.RequestQry,
	}
}

func (s *WorkflowRouter) Component() string { return ComponentWorkflowRouter }

func (s *WorkflowRouter) Process(ctx context.Context, msg *envelope.Message) ([]runtime.Outgoing, error) {
	wf, err := s.catalog.Load(msg.WorkflowName)
	if err != nil {
		return nil, err
	}

	request, err := s.requestQry.FindByID(ctx, msg.RequestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		// The ingress commits the row before publishing, so a missing row is
		// not a matter of timing; absorb the message.
		s.log.WithField("request_id", msg.RequestID).Error("request not found")
		return nil, nil
	}

	deadline := sla.CalculateDeadline(wf.SLA.DeadlineSeconds, time.Now().UTC())
	if _, err := s.requestCmd.SetRouting(ctx, msg.RequestID, deadline, wf.SLA.DeadlineSeconds); err != nil {
		return nil, err
	}

	first, err := s.catalog.FirstStage(msg.WorkflowName)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]any{
		"request_id":  msg.RequestID,
		"workflow":    msg.WorkflowName,
		"sla_seconds": wf.SLA.DeadlineSeconds,
		"first_stage": first.Name,
	}).Info("workflow resolved")

	out := msg.WithPayload(ComponentWorkflowRouter, nil)
	out.CurrentStage = first.Name
	out.DeadlineUTC = &deadline
	return []runtime.Outgoing{{Key: first.RoutingKey, Message: out}}, nil
}
