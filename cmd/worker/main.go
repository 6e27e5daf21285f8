package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SergioST90/document-processing-system/internal/app"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/metrics"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
)

func main() {
	// ----- Load config -----
	globalCfgPath := "config/config.yaml"
	globalCfg := config.InitGlobalConfig(globalCfgPath)
	// ----- Load config -----

	component := globalCfg.Pipeline.ComponentName

	// ----- Initialize metrics -----
	m, err := metrics.New(&globalCfg.Telemetry, globalCfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer m.Close()
	// ----- Initialize metrics -----

	// ----- Initialize tracer -----
	trc, err := tracer.New(&globalCfg.Telemetry, globalCfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer trc.Close()
	// ----- Initialize tracer -----

	// ----- Initialize global logger -----
	log := logger.New(globalCfg, trc)
	appLogger := log.WithFields(map[string]any{
		"service":   globalCfg.App.Name,
		"version":   globalCfg.App.Version,
		"env":       globalCfg.App.Env,
		"component": component,
	})
	// ----- Initialize global logger -----

	l := appLogger.WithField("component", "app")
	l.Info("Worker starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	bootstrap := app.BootstrapWorkerConfig{
		Config:  globalCfg,
		Log:     appLogger,
		Tracer:  trc,
		Metrics: m,
	}
	if err := bootstrap.Run(ctx); err != nil {
		l.WithField("error_detail", err.Error()).Error("worker exited with error")
		os.Exit(1)
	}
	l.Info("Worker stopped")
}
