package route

import (
	"github.com/gofiber/fiber/v2"

	formController "auditku_backend/internals/features/audits/forms/controller"
	"auditku_backend/internals/features/audits/forms/service"
)

// FormRoutes (org scope)
//   - POST   /forms                 (admin)
//   - GET    /forms
//   - GET    /forms/:id
//   - PUT    /forms/:id             (admin)
//   - DELETE /forms/:id             (admin)
//   - POST   /forms/:id/visibility
func FormRoutes(r fiber.Router, svc *service.FormService) {
	ctl := formController.NewFormController(svc)

	g := r.Group("/forms")
	g.Post("/", ctl.Create)
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
	g.Put("/:id", ctl.Update)
	g.Delete("/:id", ctl.Delete)
	g.Post("/:id/visibility", ctl.Visibility)
}
