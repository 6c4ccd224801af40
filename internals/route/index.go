// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"auditku_backend/internals/configs"
	formRoute "auditku_backend/internals/features/audits/forms/route"
	formService "auditku_backend/internals/features/audits/forms/service"
	"auditku_backend/internals/features/audits/reports"
	responseRoute "auditku_backend/internals/features/audits/responses/route"
	responseService "auditku_backend/internals/features/audits/responses/service"
	fieldRoute "auditku_backend/internals/features/records/fields/route"
	fieldService "auditku_backend/internals/features/records/fields/service"
	taskRoute "auditku_backend/internals/features/tasks/route"
	taskService "auditku_backend/internals/features/tasks/service"
	helperOSS "auditku_backend/internals/helpers/oss"
	orgMiddleware "auditku_backend/internals/middlewares/auth_org"
	"auditku_backend/internals/observability/metrics"
)

var startTime time.Time

// Services = semua service yang di-mount; main memakai Tasks untuk scheduler.
type Services struct {
	Forms     *formService.FormService
	Responses *responseService.ResponseService
	Fields    *fieldService.FieldService
	Tasks     *taskService.TaskService
}

func NewServices(db *gorm.DB, m *metrics.AuditMetrics) *Services {
	forms := formService.NewFormService(db, configs.FormCacheTTL, m)
	tasks := taskService.NewTaskService(db, m)
	responses := responseService.NewResponseService(db, forms, tasks, m, configs.RemediationDueDays)

	// arsip laporan ke OSS hanya bila env OSS diset
	if helperOSS.Configured() {
		store, err := helperOSS.NewOSSServiceFromEnv("reports")
		if err != nil {
			log.Printf("[WARN] report archive disabled: %v", err)
		} else {
			responses.Renderer = reports.NewJSONArchiver(store)
		}
	}

	return &Services{
		Forms:     forms,
		Responses: responses,
		Fields:    fieldService.NewFieldService(db),
		Tasks:     tasks,
	}
}

func SetupRoutes(app *fiber.App, db *gorm.DB, svc *Services, m *metrics.AuditMetrics) {
	startTime = time.Now()

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db, m)

	// ===================== ORG (JWT + org context) =====================
	log.Println("[INFO] Setting up ORG group...")
	org := app.Group("/api/o",
		orgMiddleware.AuthJWT(orgMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
			AllowOrgHeader:      true,
		}),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Form routes...")
	formRoute.FormRoutes(org, svc.Forms)

	log.Println("[INFO] Mounting Response routes...")
	responseRoute.ResponseRoutes(org, svc.Responses)

	log.Println("[INFO] Mounting Record field routes...")
	fieldRoute.RecordFieldRoutes(org, svc.Fields)

	log.Println("[INFO] Mounting Task routes...")
	taskRoute.TaskRoutes(org, svc.Tasks)
}
