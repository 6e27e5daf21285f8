package http

import (
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/validator"
	"github.com/SergioST90/document-processing-system/internal/modules/backoffice/usecase"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/SergioST90/document-processing-system/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const handlerName = "http:handler.backoffice"

type HandlerUseCases struct {
	ListTasksUseCase  usecase.ListTasksUseCase
	ClaimTaskUseCase  usecase.ClaimTaskUseCase
	SubmitTaskUseCase usecase.SubmitTaskUseCase
}

type Handler struct {
	Cfg *config.Config
	Log logger.Logger
	Val validator.Validator
	Uc  HandlerUseCases
}

func NewHandler(cfg *config.Config, log logger.Logger, val validator.Validator, useCases HandlerUseCases) *Handler {
	return &Handler{
		Cfg: cfg,
		Log: log,
		Val: val,
		Uc:  useCases,
	}
}

// ListTasks returns the operator work queue, optionally filtered by status
// and required skill.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	request := &usecase.ListTasksRequest{
		Status: c.Query("status", "pending"),
		Skill:  c.Query("skill"),
	}
	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}

	result, err := h.Uc.ListTasksUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).OK(response.Http{
		Message: "Tasks retrieved",
		Data:    result,
	})
}

type claimBody struct {
	Operator string `json:"operator"`
}

// ClaimTask assigns a pending task to the calling operator.
func (h *Handler) ClaimTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.Log.WithContext(ctx).WithField("method", "ClaimTask")

	var body claimBody
	if err := c.BodyParser(&body); err != nil {
		return apperror.ErrCodeMalformedRequest.WithError(err)
	}

	request := &usecase.ClaimTaskRequest{
		TaskID:   c.Params("task_id"),
		Operator: body.Operator,
	}
	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}

	log.WithFields(map[string]any{
		"business_key": map[string]any{"task_id": request.TaskID, "operator": request.Operator},
	}).Info("request received")

	result, err := h.Uc.ClaimTaskUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).OK(response.Http{
		Message: "Task claimed",
		Data:    result,
	})
}

type submitBody struct {
	Operator      string         `json:"operator"`
	DocType       string         `json:"doc_type"`
	ExtractedData map[string]any `json:"extracted_data"`
}

// SubmitTask records the operator's verdict and re-enters the pipeline.
func (h *Handler) SubmitTask(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.Log.WithContext(ctx).WithField("method", "SubmitTask")

	var body submitBody
	if err := c.BodyParser(&body); err != nil {
		return apperror.ErrCodeMalformedRequest.WithError(err)
	}

	request := &usecase.SubmitTaskRequest{
		TaskID:        c.Params("task_id"),
		Operator:      body.Operator,
		DocType:       body.DocType,
		ExtractedData: body.ExtractedData,
	}
	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}

	log.WithFields(map[string]any{
		"business_key": map[string]any{"task_id": request.TaskID, "operator": request.Operator},
	}).Info("request received")

	result, err := h.Uc.SubmitTaskUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).OK(response.Http{
		Message: "Task submitted",
		Data:    result,
	})
}
