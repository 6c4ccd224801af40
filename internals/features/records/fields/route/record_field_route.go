package route

import (
	"github.com/gofiber/fiber/v2"

	fieldController "auditku_backend/internals/features/records/fields/controller"
	"auditku_backend/internals/features/records/fields/service"
)

// RecordFieldRoutes (org scope)
//   - GET    /records/:entity/fields
//   - PUT    /records/:entity/fields          (admin)
//   - DELETE /records/:entity/fields/:key     (admin)
//   - POST   /records/:entity/field-states
func RecordFieldRoutes(r fiber.Router, svc *service.FieldService) {
	ctl := fieldController.NewFieldController(svc)

	g := r.Group("/records/:entity")
	g.Get("/fields", ctl.List)
	g.Put("/fields", ctl.Upsert)
	g.Delete("/fields/:key", ctl.Delete)
	g.Post("/field-states", ctl.States)
}
