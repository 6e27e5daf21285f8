package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/metrics"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository"
	"github.com/robfig/cron/v3"
)

// atRiskRemainingFraction mirrors the monitor's warning rule: a request is
// at risk once fewer than 30% of its SLA budget remains.
const atRiskRemainingFraction = 0.3

// MonitorRepositories groups the persistence dependencies of the monitor.
type MonitorRepositories struct {
	RequestCmd repository.RequestCommandRepository
	RequestQry repository.RequestQueryRepository
}

// Monitor is the standalone periodic task that scans active requests. It is
// not a queue consumer: it never cancels in-flight stage work, it only marks
// state. Later stages treat sla_breached as read-only on status, so a
// breached request keeps flowing but can never leave its terminal status.
type Monitor struct {
	log     logger.Logger
	metrics metrics.Metrics
	repo    MonitorRepositories

	schedule string
	cron     *cron.Cron
}

// NewMonitor builds a monitor sweeping every five seconds.
func NewMonitor(log logger.Logger, m metrics.Metrics, repo MonitorRepositories) *Monitor {
	return &Monitor{
		log:      log.WithField("component", "sla_monitor"),
		metrics:  m,
		repo:     repo,
		schedule: "@every 5s",
	}
}

// Run starts the sweep schedule and blocks until the context is cancelled,
// then waits for an in-flight sweep to finish.
func (m *Monitor) Run(ctx context.Context) error {
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.schedule, func() {
		if err := m.CheckDeadlines(ctx); err != nil {
			m.log.WithField("error", err.Error()).Error("sla sweep failed")
		}
	}); err != nil {
		return err
	}

	m.log.WithField("schedule", m.schedule).Info("sla monitor started")
	m.cron.Start()

	<-ctx.Done()
	stopped := m.cron.Stop()
	<-stopped.Done()
	m.log.Info("sla monitor stopped")
	return nil
}

// CheckDeadlines performs one sweep: breach everything overdue, warn about
// everything at risk.
func (m *Monitor) CheckDeadlines(ctx context.Context) error {
	now := time.Now().UTC()

	breached, err := m.repo.RequestQry.FindBreached(ctx, now)
	if err != nil {
		return err
	}
	for _, request := range breached {
		msg := fmt.Sprintf("SLA breached at %s", now.Format(time.RFC3339))
		marked, err := m.repo.RequestCmd.MarkSLABreached(ctx, request.ID, msg, now)
		if err != nil {
			return err
		}
		if !marked {
			// Lost the race with a concurrent sweep or a terminal transition.
			continue
		}

		m.metrics.Incr("pipeline.sla.breached", []string{"workflow:" + request.WorkflowName})
		fields := map[string]any{
			"request_id":  request.ID,
			"sla_seconds": request.SLASeconds,
		}
		if request.DeadlineUTC != nil {
			fields["deadline"] = request.DeadlineUTC.Format(time.RFC3339)
		}
		m.log.WithFields(fields).Warn("sla breached")
	}

	atRisk, err := m.repo.RequestQry.FindAtRisk(ctx, now, atRiskRemainingFraction)
	if err != nil {
		return err
	}
	for _, r := range atRisk {
		m.metrics.Incr("pipeline.sla.at_risk", nil)
		m.log.WithFields(map[string]any{
			"request_id":        r.ID,
			"status":            string(r.Status),
			"remaining_seconds": fmt.Sprintf("%.1f", r.RemainingSeconds),
		}).Warn("sla at risk")
	}

	return nil
}
