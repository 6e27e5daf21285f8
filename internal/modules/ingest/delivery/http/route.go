package http

import (
	"github.com/SergioST90/document-processing-system/internal/infrastructure/config"

	"github.com/gofiber/fiber/v2"
)

type RouteConfig struct {
	Config  *config.Config
	Server  *fiber.App
	Handler *Handler
}

func (r *RouteConfig) Setup() {
	r.Server.Post("/process", r.Handler.ProcessDocument)
	r.Server.Get("/status/:request_id", r.Handler.GetStatus)
}
