package backoffice

import (
	"github.com/SergioST90/document-processing-system/internal/infrastructure/broker"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	database "github.com/SergioST90/document-processing-system/internal/infrastructure/db"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/telemetry/tracer"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/validator"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/delivery/http"
	bocommand "github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository/command"
	boquery "github.com/SergioST90/document-processing-system/internal/modules/backoffice/repository/query"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/usecase"
	requestcommand "github.com/SergioST90/document-processing-system/internal/modules/request/repository/command"
	requestquery "github.com/SergioST90/document-processing-system/internal/modules/request/repository/query"

	"github.com/gofiber/fiber/v2"
)

type ModuleConfig struct {
	Config    *config.Config
	Server    *fiber.App
	DB        database.Database
	Log       logger.Logger
	Val       validator.Validator
	Tracer    tracer.Tracer
	Publisher broker.Publisher
}

func RegisterModule(cfg ModuleConfig) {
	ucLogger := cfg.Log.WithField("component", "usecase")
	hdlrLogger := cfg.Log.WithField("component", "handler")

	// setup repositories
	taskCmdRepository := bocommand.NewTaskRepository(cfg.DB)
	taskQryRepository := boquery.NewTaskRepository(cfg.DB)
	operatorCmdRepository := bocommand.NewOperatorRepository(cfg.DB)
	pageCmdRepository := requestcommand.NewPageRepository(cfg.DB)
	pageQryRepository := requestquery.NewPageRepository(cfg.DB)
	docCmdRepository := requestcommand.NewDocumentRepository(cfg.DB)
	docQryRepository := requestquery.NewDocumentRepository(cfg.DB)

	// setup use cases
	listTasksUseCase := usecase.NewListTasksUseCase(ucLogger, cfg.Tracer, taskQryRepository)
	claimTaskUseCase := usecase.NewClaimTaskUseCase(ucLogger, cfg.Tracer, taskCmdRepository, taskQryRepository, operatorCmdRepository)
	submitTaskUseCase := usecase.NewSubmitTaskUseCase(
		ucLogger,
		cfg.Tracer,
		cfg.DB,
		usecase.SubmitTaskRepositories{
			TaskCmd: taskCmdRepository,
			TaskQry: taskQryRepository,
			PageCmd: pageCmdRepository,
			PageQry: pageQryRepository,
			DocCmd:  docCmdRepository,
			DocQry:  docQryRepository,
		},
		cfg.Publisher,
	)

	// setup handler
	h := http.NewHandler(
		cfg.Config,
		hdlrLogger,
		cfg.Val,
		http.HandlerUseCases{
			ListTasksUseCase:  listTasksUseCase,
			ClaimTaskUseCase:  claimTaskUseCase,
			SubmitTaskUseCase: submitTaskUseCase,
		},
	)

	routeConfig := http.RouteConfig{
		Server:  cfg.Server,
		Config:  cfg.Config,
		Handler: h,
	}
	routeConfig.Setup()
}
