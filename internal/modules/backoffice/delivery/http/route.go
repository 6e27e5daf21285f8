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

const routeGroup = "/api/tasks"

func (r *RouteConfig) Setup() {
	tasks := r.Server.Group(routeGroup)
	tasks.Get("/", r.Handler.ListTasks)
	tasks.Post("/:task_id/claim", r.Handler.ClaimTask)
	tasks.Post("/:task_id/submit", r.Handler.SubmitTask)
}
