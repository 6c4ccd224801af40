package route

import (
	"github.com/gofiber/fiber/v2"

	responseController "auditku_backend/internals/features/audits/responses/controller"
	"auditku_backend/internals/features/audits/responses/service"
	"auditku_backend/internals/middlewares"
)

// ResponseRoutes (org scope)
//   - POST /forms/:id/responses (rate limited)
//   - GET  /responses, /responses/:id, /:id/compare, /:id/trend, /:id/report
//   - PUT  /responses/:id/corrective-actions/:question_id
//   - POST /responses/:id/corrective-actions/:question_id/verify
//   - POST /responses/:id/approve, /responses/:id/reject
func ResponseRoutes(r fiber.Router, svc *service.ResponseService) {
	ctl := responseController.NewResponseController(svc)

	r.Post("/forms/:id/responses", middlewares.SubmissionRateLimiter(), ctl.Submit)

	g := r.Group("/responses")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.Get)
	g.Get("/:id/compare", ctl.Compare)
	g.Get("/:id/trend", ctl.Trend)
	g.Get("/:id/report", ctl.Report)

	g.Put("/:id/corrective-actions/:question_id", ctl.UpsertCorrectiveAction)
	g.Post("/:id/corrective-actions/:question_id/verify", ctl.VerifyCorrectiveAction)
	g.Post("/:id/approve", ctl.Approve)
	g.Post("/:id/reject", ctl.Reject)
}
