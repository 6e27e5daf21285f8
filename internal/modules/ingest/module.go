package ingest

import (
	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/validator"
	aggquery "github.com/SergioST90/document-processing-system/internal/modules/aggregation/repository/query"
	"github.com/SergioST90/document-processing-system/internal/modules/ingest/delivery/http"
	"github.com/SergioST90/document-processing-system/internal/modules/ingest/usecase"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository/command"
	"github.com/SergioST90/document-processing-system/internal/modules/request/repository/query"

	"github.com/gofiber/fiber/v2"
)

type ModuleConfig struct {
	Config    *config.Config
	Server    *fiber.App
	DB        database.Database
	Cache     database.CacheDatabase
	Log       logger.Logger
	Val       validator.Validator
	Tracer    tracer.Tracer
	Publisher broker.Publisher
}

func RegisterModule(cfg ModuleConfig) {
	ucLogger := cfg.Log.WithField("component", "usecase")
	hdlrLogger := cfg.Log.WithField("component", "handler")

	// setup repositories
	requestCmdRepository := command.NewRequestRepository(cfg.DB)
	requestQryRepository := query.NewRequestRepository(cfg.DB)
	aggQryRepository := aggquery.NewStateRepository(cfg.DB)

	// setup use cases
	processDocumentUseCase := usecase.NewProcessDocumentUseCase(
		ucLogger,
		cfg.Tracer,
		&cfg.Config.Pipeline,
		cfg.DB,
		requestCmdRepository,
		cfg.Publisher,
	)
	getStatusUseCase := usecase.NewGetStatusUseCase(
		ucLogger,
		cfg.Tracer,
		&cfg.Config.Redis,
		cfg.Cache,
		requestQryRepository,
		aggQryRepository,
	)

	// setup handler
	h := http.NewHandler(
		cfg.Config,
		hdlrLogger,
		cfg.Val,
		http.HandlerUseCases{
			ProcessDocumentUseCase: processDocumentUseCase,
			GetStatusUseCase:       getStatusUseCase,
		},
	)

	routeConfig := http.RouteConfig{
		Server:  cfg.Server,
		Config:  cfg.Config,
		Handler: h,
	}
	routeConfig.Setup()
}
