/*
|------------------------------------------------------------------------------------
| HTTP HANDLER ARCHITECTURAL STANDARDS
|------------------------------------------------------------------------------------
|
| The Handler layer is the ingress "Front Gate": request orchestration, DTO
| enforcement, and response normalization. Parsing and validation failures are
| bubbled as AppErrors to the global error handler; observability past the
| entry point belongs to the UseCase layer via TraceID correlation.
|
|------------------------------------------------------------------------------------
*/
package http

import (
	"encoding/json"
	"io"

	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/logger"
	"github.com/SergioST90/document-processing-system/internal/infrastructure/validator"
	"github.com/SergioST90/document-processing-system/internal/modules/ingest/usecase"
	"github.com/SergioST90/document-processing-system/internal/pkg/apperror"
	"github.com/SergioST90/document-processing-system/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const handlerName = "http:handler.ingest"

type HandlerUseCases struct {
	ProcessDocumentUseCase usecase.ProcessDocumentUseCase
	GetStatusUseCase       usecase.GetStatusUseCase
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

// ProcessDocument accepts a multipart upload plus form fields (metadata JSON,
// channel, workflow, external_id) and enqueues the request.
func (h *Handler) ProcessDocument(c *fiber.Ctx) error {
	ctx := c.UserContext()
	log := h.Log.WithContext(ctx).WithField("method", "ProcessDocument")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).WithDetail("field", "file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).WithDetail("field", "file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).WithDetail("field", "file")
	}

	metadata := map[string]any{}
	if raw := c.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			return apperror.ErrCodeMalformedRequest.WithError(err).WithDetail("field", "metadata")
		}
	}

	request := &usecase.ProcessDocumentRequest{
		FileName:   fileHeader.Filename,
		Content:    content,
		Channel:    c.FormValue("channel"),
		Workflow:   c.FormValue("workflow"),
		ExternalID: c.FormValue("external_id"),
		Metadata:   metadata,
	}

	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}

	log.WithFields(map[string]any{
		"business_key": map[string]any{
			"filename": fileHeader.Filename,
			"workflow": request.Workflow,
		},
	}).Info("request received")

	result, err := h.Uc.ProcessDocumentUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).Accepted(response.Http{
		Message: "Document accepted for processing",
		Data:    result,
	})
}

// GetStatus returns the user-visible progress of one request.
func (h *Handler) GetStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	request := &usecase.GetStatusRequest{RequestID: c.Params("request_id")}
	if err := h.Val.Validate(request); err != nil {
		return apperror.ErrCodeInvalidRequest.WithError(err).AddValidationErrors(h.Val.ToDetails(err))
	}

	result, err := h.Uc.GetStatusUseCase.Execute(ctx, request)
	if err != nil {
		return err
	}

	return response.NewHttp(c).OK(response.Http{
		Message: "Request status retrieved",
		Data:    result,
	})
}
