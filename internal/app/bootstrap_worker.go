package app

import (
	"context"
	"fmt"
	"time"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/metrics"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	aggcommand "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository/command"
	bocommand "github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository/command"
	requestcommand "github.com/SergioST90/document-processing-system/internal/modules/request/repository/command"
	requestquery "github.com/SergioST90/document-processing-system/internal/modules/request/repository/query"
	"github.com/SergioST90/document-processing-system/internal/modules/stages"
	"github.com/SergioST90/document-processing-system/internal/pipeline/runtime"
	"github.com/SergioST90/document-processing-system/internal/pipeline/sla"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"

	"github.com/gofiber/fiber/v2"
)

// ComponentSLAMonitor selects the standalone periodic monitor instead of a
// queue-consuming stage.
const ComponentSLAMonitor = "sla_monitor"

// BootstrapWorkerConfig wires one worker process: a stage (or the SLA
// monitor), its database, and its health endpoint.
type BootstrapWorkerConfig struct {
	Config  *config.Config
	Log     logger.Logger
	Tracer  tracer.Tracer
	Metrics metrics.Metrics

	db    database.Database
	ready bool
}

// Run blocks until ctx is cancelled, then tears everything down in order:
// consumer first, then broker channel, then DB pool, then health endpoint.
func (b *BootstrapWorkerConfig) Run(ctx context.Context) error {
	component := b.Config.Pipeline.ComponentName
	log := b.Log.WithField("component", "app")

	health := b.startHealthServer(log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = health.ShutdownWithContext(shutdownCtx)
	}()

	b.db = database.NewDatabase(&b.Config.Database, b.Log, b.Tracer)
	defer b.closeDB(log)

	repo := stages.Repositories{
		RequestCmd: requestcommand.NewRequestRepository(b.db),
		RequestQry: requestquery.NewRequestRepository(b.db),
		PageCmd:    requestcommand.NewPageRepository(b.db),
		PageQry:    requestquery.NewPageRepository(b.db),
		DocCmd:     requestcommand.NewDocumentRepository(b.db),
		DocQry:     requestquery.NewDocumentRepository(b.db),
		AggCmd:     aggcommand.NewStateRepository(b.db),
		TaskCmd:    bocommand.NewTaskRepository(b.db),
	}

	if component == ComponentSLAMonitor {
		b.ready = true
		monitor := sla.NewMonitor(b.Log, b.Metrics, sla.MonitorRepositories{
			RequestCmd: repo.RequestCmd,
			RequestQry: repo.RequestQry,
		})
		return monitor.Run(ctx)
	}

	catalog := workflow.NewCatalog(b.Config.Pipeline.WorkflowsDir)
	stage, err := stages.Build(component, stages.Dependencies{
		Cfg:     b.Config,
		Log:     b.Log,
		Catalog: catalog,
		Repo:    repo,
	})
	if err != nil {
		return err
	}

	worker := runtime.NewWorker(b.Config, b.Log, b.db, b.Metrics, b.Tracer, catalog, stage)
	worker.Ready = func() { b.ready = true }
	return worker.Run(ctx)
}

// startHealthServer exposes /health and /ready for probes on the component's
// health port.
func (b *BootstrapWorkerConfig) startHealthServer(log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/ready", func(c *fiber.Ctx) error {
		if b.ready {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ready"})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not_ready"})
	})

	go func() {
		addr := fmt.Sprintf(":%d", b.Config.Pipeline.HealthPort)
		if err := app.Listen(addr); err != nil {
			log.WithFields(map[string]any{
				"addr":  addr,
				"error": err.Error(),
			}).Warn("health server stopped")
		}
	}()
	return app
}

func (b *BootstrapWorkerConfig) closeDB(log logger.Logger) {
	if b.db == nil {
		return
	}
	if err := b.db.Close(); err != nil {
		log.WithFields(map[string]any{
			"component":    "database",
			"error_detail": err.Error(),
		}).Error("Failed to close database connection")
	} else {
		log.WithField("component", "database").Info("Database connection closed gracefully")
	}
}
