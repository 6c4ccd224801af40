// file: internals/features/audits/forms/controller/form_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "auditku_backend/internals/features/audits/forms/dto"
	fmodel "auditku_backend/internals/features/audits/forms/model"
	"auditku_backend/internals/features/audits/forms/service"
	helper "auditku_backend/internals/helpers"
	helperAuth "auditku_backend/internals/helpers/auth"
)

type FormController struct {
	Service   *service.FormService
	Validator *validator.Validate
}

func NewFormController(svc *service.FormService) *FormController {
	return &FormController{Service: svc, Validator: helper.NewValidator()}
}

func parseFormID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "form_id tidak valid")
	}
	return id, nil
}

// writeServiceError: mapping error service → HTTP.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *fmodel.ValidationError
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve.Fields)
	case errors.Is(err, service.ErrFormNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Form tidak ditemukan")
	default:
		return helper.WritePGError(c, err)
	}
}

// POST /forms (admin)
func (ctl *FormController) Create(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAdmin); err != nil {
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

	var req dto.CreateFormRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validator.Struct(&req); err != nil {
		if fields, ok := helper.ValidatorFieldErrors(err); ok {
			return helper.JsonValidationError(c, fields)
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	row, err := ctl.Service.Create(c.UserContext(), orgID, userID, req.ToDefinition(), req.Description, active)
	if err != nil {
		log.Printf("[FormController] create failed org_id=%s: %v", orgID, err)
		return writeServiceError(c, err)
	}
	out, err := dto.FromModel(row, true)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonCreated(c, "Form berhasil dibuat", out)
}

// GET /forms?type=&q=&active=&page=&per_page=
func (ctl *FormController) List(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	var q dto.ListFormsQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Service.List(c.UserContext(), orgID, service.ListFilter{
		Type:   q.Type,
		Search: q.Q,
		Active: q.Active,
	}, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	out, err := dto.FromModels(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", out, helper.BuildPagination(total, paging, len(out)))
}

// GET /forms/:id
func (ctl *FormController) Get(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseFormID(c)
	if err != nil {
		return err
	}
	row, err := ctl.Service.Get(c.UserContext(), orgID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	out, err := dto.FromModel(row, true)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", out)
}

// PUT /forms/:id (admin, partial)
func (ctl *FormController) Update(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAdmin); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseFormID(c)
	if err != nil {
		return err
	}

	var req dto.PatchFormRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	row, err := ctl.Service.Update(c.UserContext(), orgID, id, req.Apply)
	if err != nil {
		return writeServiceError(c, err)
	}
	out, err := dto.FromModel(row, true)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Form diperbarui", out)
}

// DELETE /forms/:id (admin)
func (ctl *FormController) Delete(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAdmin); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseFormID(c)
	if err != nil {
		return err
	}
	if err := ctl.Service.Delete(c.UserContext(), orgID, id); err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Form dihapus", fiber.Map{"form_id": id})
}

// POST /forms/:id/visibility
// Body: jawaban sementara → question id → tampil/tidak (show_if).
func (ctl *FormController) Visibility(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	id, err := parseFormID(c)
	if err != nil {
		return err
	}
	var req dto.VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	def, err := ctl.Service.Definition(c.UserContext(), orgID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return helper.JsonOK(c, "ok", def.VisibleQuestions(fmodel.AnswerValues(req.Answers)))
}
