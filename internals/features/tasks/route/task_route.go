package route

import (
	"github.com/gofiber/fiber/v2"

	taskController "auditku_backend/internals/features/tasks/controller"
	"auditku_backend/internals/features/tasks/service"
)

// TaskRoutes (org scope)
//   - GET  /tasks
//   - POST /tasks/:id/complete
func TaskRoutes(r fiber.Router, svc *service.TaskService) {
	ctl := taskController.NewTaskController(svc)

	g := r.Group("/tasks")
	g.Get("/", ctl.List)
	g.Post("/:id/complete", ctl.Complete)
}
