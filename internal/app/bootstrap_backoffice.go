package app

import (
	"context"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/middleware"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/metrics"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/validator"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice"
	"github.com/SergioST90/document-processing-system/internal/pipeline/workflow"

	"github.com/gofiber/fiber/v2"
)

const backofficeComponentName = "backoffice"

// BootstrapBackofficeConfig wires the operator surface: task listing,
// claiming, and submission with pipeline re-entry.
type BootstrapBackofficeConfig struct {
	App     *fiber.App
	Config  *config.Config
	Val     validator.Validator
	Log     logger.Logger
	Tracer  tracer.Tracer
	Metrics metrics.Metrics

	db     database.Database
	broker *broker.Connection
}

func (b *BootstrapBackofficeConfig) Run(ctx context.Context) error {
	b.setupMiddleware()

	b.db = database.NewDatabase(&b.Config.Database, b.Log, b.Tracer)

	conn, err := broker.Connect(ctx, &b.Config.Broker, b.Log)
	if err != nil {
		return err
	}
	b.broker = conn

	catalog := workflow.NewCatalog(b.Config.Pipeline.WorkflowsDir)
	wf, err := catalog.Load(workflow.DefaultWorkflowName)
	if err != nil {
		return err
	}
	if err := broker.DeclareTopology(conn.Channel(), wf, b.Config.Broker.MessageTTLMS); err != nil {
		return err
	}

	backoffice.RegisterModule(backoffice.ModuleConfig{
		Config:    b.Config,
		Server:    b.App,
		DB:        b.db,
		Log:       b.Log,
		Val:       b.Val,
		Tracer:    b.Tracer,
		Publisher: broker.NewPublisher(conn.Channel(), backofficeComponentName),
	})

	b.setupHealthRoute()
	return nil
}

func (b *BootstrapBackofficeConfig) Stop() {
	log := b.Log.WithField("component", "app")

	if b.broker != nil {
		if err := b.broker.Close(); err != nil {
			log.WithField("error_detail", err.Error()).Error("Failed to close broker connection")
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.WithField("error_detail", err.Error()).Error("Failed to close database connection")
		} else {
			log.WithField("component", "database").Info("Database connection closed gracefully")
		}
	}
}

func (b *BootstrapBackofficeConfig) setupMiddleware() {
	t := middleware.NewTelemetrist(b.Log, b.Tracer, b.Metrics)

	b.App.Use(middleware.RequestID())
	b.App.Use(t.HandleMetrics())
	b.App.Use(t.HandleTrace())
	b.App.Use(t.HandleLog())
}

func (b *BootstrapBackofficeConfig) setupHealthRoute() {
	h := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	}

	b.App.Get("/", h)
	b.App.Get("/health", h)
}
