// file: internals/features/audits/responses/controller/response_controller.go
package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"auditku_backend/internals/features/audits/comparison"
	fmodel "auditku_backend/internals/features/audits/forms/model"
	formService "auditku_backend/internals/features/audits/forms/service"
	"auditku_backend/internals/features/audits/lifecycle"
	dto "auditku_backend/internals/features/audits/responses/dto"
	"auditku_backend/internals/features/audits/responses/service"
	helper "auditku_backend/internals/helpers"
	helperAuth "auditku_backend/internals/helpers/auth"
)

type ResponseController struct {
	Service   *service.ResponseService
	Validator *validator.Validate
}

func NewResponseController(svc *service.ResponseService) *ResponseController {
	return &ResponseController{Service: svc, Validator: helper.NewValidator()}
}

func parseID(c *fiber.Ctx, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, label+" tidak valid")
	}
	return id, nil
}

// writeServiceError: mapping error service/lifecycle → HTTP.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *fmodel.ValidationError
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve.Fields)
	case errors.Is(err, service.ErrResponseNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Response tidak ditemukan")
	case errors.Is(err, formService.ErrFormNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Form tidak ditemukan")
	case errors.Is(err, lifecycle.ErrQuestionNotFound), errors.Is(err, lifecycle.ErrActionNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, lifecycle.ErrNotFailed):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrVersionConflict):
		return helper.JsonError(c, fiber.StatusConflict, "Response sudah diubah, muat ulang lalu coba lagi")
	case errors.Is(err, lifecycle.ErrInvalidRemediationStatus):
		return helper.JsonValidationError(c, map[string][]string{"status": {err.Error()}})
	case errors.Is(err, comparison.ErrInvalidStrategy):
		return helper.JsonError(c, fiber.StatusBadRequest, "strategy harus last_audit, average, atau response id")
	case errors.Is(err, comparison.ErrNoBaseline):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	default:
		log.Printf("[ResponseController] unexpected error: %v", err)
		return helper.WritePGError(c, err)
	}
}

func writeValidatorError(c *fiber.Ctx, err error) error {
	if fields, ok := helper.ValidatorFieldErrors(err); ok {
		return helper.JsonValidationError(c, fields)
	}
	return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
}

// POST /forms/:id/responses
func (ctl *ResponseController) Submit(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	formID, err := parseID(c, "form_id")
	if err != nil {
		return err
	}

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return writeValidatorError(c, err)
	}

	res, err := ctl.Service.Submit(c.UserContext(), service.SubmitInput{
		OrgID:          orgID,
		FormID:         formID,
		UserID:         userID,
		LinkedRecordID: req.LinkedRecordID,
		Answers:        req.Answers,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonCreated(c, "Response tersimpan", dto.SubmitResponse{
		ResponseDTO: dto.FromDomain(res.Response, true),
		TaskID:      res.TaskID,
		TaskError:   res.TaskError,
	})
}

// GET /responses?form_id=&status=&linked_record_id=&submitted_by=&mine=true
func (ctl *ResponseController) List(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	var q dto.ListResponsesQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	f, errs := q.Parse()
	if errs != nil {
		return helper.JsonValidationError(c, errs)
	}
	if q.Mine {
		uid, err := helperAuth.GetUserID(c)
		if err != nil {
			return err
		}
		f.SubmittedBy = &uid
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Service.List(c.UserContext(), orgID, service.ListFilter{
		FormID:         f.FormID,
		Status:         f.Status,
		LinkedRecordID: f.LinkedRecordID,
		SubmittedBy:    f.SubmittedBy,
	}, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", dto.FromDomains(rows), helper.BuildPagination(total, paging, len(rows)))
}

// GET /responses/:id
func (ctl *ResponseController) Get(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}
	resp, err := ctl.Service.Get(c.UserContext(), orgID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromDomain(resp, true))
}

// PUT /responses/:id/corrective-actions/:question_id (manager/admin)
func (ctl *ResponseController) UpsertCorrectiveAction(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleManager, helperAuth.RoleAdmin); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}

	var req dto.CorrectiveActionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return writeValidatorError(c, err)
	}

	resp, action, err := ctl.Service.UpsertCorrectiveAction(c.UserContext(), orgID, id, lifecycle.ManagerInput{
		QuestionID: c.Params("question_id"),
		Comment:    req.Comment,
		Proofs:     req.Proofs,
		Status:     req.Status,
		Author:     userID,
	}, req.Version)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Corrective action tersimpan", dto.CorrectiveActionResponse{
		Response: dto.FromDomain(resp, false),
		Action:   *action,
	})
}

// POST /responses/:id/corrective-actions/:question_id/verify (auditor)
func (ctl *ResponseController) VerifyCorrectiveAction(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAuditor); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}

	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return writeValidatorError(c, err)
	}

	resp, action, err := ctl.Service.VerifyCorrectiveAction(c.UserContext(), orgID, id, lifecycle.VerifyInput{
		QuestionID: c.Params("question_id"),
		Approved:   *req.Approved,
		Comment:    req.Comment,
		Verifier:   userID,
	}, req.Version)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Verifikasi tersimpan", dto.CorrectiveActionResponse{
		Response: dto.FromDomain(resp, false),
		Action:   *action,
	})
}

// POST /responses/:id/approve
func (ctl *ResponseController) Approve(c *fiber.Ctx) error {
	return ctl.review(c, true)
}

// POST /responses/:id/reject
func (ctl *ResponseController) Reject(c *fiber.Ctx) error {
	return ctl.review(c, false)
}

func (ctl *ResponseController) review(c *fiber.Ctx, approve bool) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAuditor, helperAuth.RoleAdmin); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}

	var req dto.ReviewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		return writeValidatorError(c, err)
	}

	review := ctl.Service.Reject
	msg := "Response ditolak"
	if approve {
		review = ctl.Service.Approve
		msg = "Response disetujui"
	}
	resp, err := review(c.UserContext(), orgID, id, userID, req.Comment, req.Version)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonUpdated(c, msg, dto.FromDomain(resp, false))
}

// GET /responses/:id/compare?strategy=last_audit|average|<response id>
func (ctl *ResponseController) Compare(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}
	res, err := ctl.Service.Compare(c.UserContext(), orgID, id, c.Query("strategy"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /responses/:id/trend?limit=
func (ctl *ResponseController) Trend(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return helper.JsonError(c, fiber.StatusBadRequest, "limit harus 1..100")
		}
		limit = n
	}
	points, err := ctl.Service.Trend(c.UserContext(), orgID, id, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", points)
}

// GET /responses/:id/report?render=true
func (ctl *ResponseController) Report(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "response_id")
	if err != nil {
		return err
	}
	rep, rendered, err := ctl.Service.Report(c.UserContext(), orgID, id, c.QueryBool("render", false))
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"report": rep,
		"render": rendered,
	})
}
