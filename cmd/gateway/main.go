package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergioST90/document-processing-system/internal/app"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	server "github.com/SergioST90/document-processing-system/internal/infrastructure/http"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/metrics"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/validator"
)

func main() {
	// ----- Load config -----
	globalCfgPath := "config/config.yaml"
	globalCfg := config.InitGlobalConfig(globalCfgPath)
	// ----- Load config -----

	// ----- Initialize validator -----
	val := validator.NewPlaygroundValidator()
	// ----- Initialize validator -----

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
		"service": globalCfg.App.Name,
		"version": globalCfg.App.Version,
		"env":     globalCfg.App.Env,
		"port":    globalCfg.Http.Port,
		"domain":  "gateway",
	})
	// ----- Initialize global logger -----

	l := appLogger.WithField("component", "app")
	l.Info("Gateway starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv := server.NewServer(globalCfg, appLogger)
	bootstrap := app.BootstrapGatewayConfig{
		App:     srv.App,
		Config:  globalCfg,
		Val:     val,
		Log:     appLogger,
		Tracer:  trc,
		Metrics: m,
	}
	if err := bootstrap.Run(ctx); err != nil {
		l.WithField("error_detail", err.Error()).Error("failed to bootstrap gateway")
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			l.WithField("error_detail", err.Error()).Error("Server forced to shutdown")
		}
		bootstrap.Stop()
	}()

	if err := srv.Start(); err != nil {
		l.WithField("error_detail", err.Error()).Error("failed to start server")
	}
}
