// file: internals/features/records/fields/controller/record_field_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	dto "auditku_backend/internals/features/records/fields/dto"
	fieldModel "auditku_backend/internals/features/records/fields/model"
	"auditku_backend/internals/features/records/fields/service"
	helper "auditku_backend/internals/helpers"
	helperAuth "auditku_backend/internals/helpers/auth"
)

type FieldController struct {
	Service   *service.FieldService
	Validator *validator.Validate
}

func NewFieldController(svc *service.FieldService) *FieldController {
	return &FieldController{Service: svc, Validator: helper.NewValidator()}
}

func entityParam(c *fiber.Ctx) (string, error) {
	e, err := service.NormalizeEntity(c.Params("entity"))
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Entity tidak valid")
	}
	return e, nil
}

// GET /records/:entity/fields
func (ctl *FieldController) List(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	entity, err := entityParam(c)
	if err != nil {
		return err
	}

	rows, err := ctl.Service.List(c.UserContext(), orgID, entity)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	out, err := dto.FromModels(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", out)
}

// PUT /records/:entity/fields (admin)
func (ctl *FieldController) Upsert(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAdmin); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	entity, err := entityParam(c)
	if err != nil {
		return err
	}

	var req dto.UpsertFieldsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if errs := req.Normalize(); len(errs) > 0 {
		return helper.JsonValidationError(c, errs)
	}
	if err := ctl.Validator.Struct(&req); err != nil {
		if fields, ok := helper.ValidatorFieldErrors(err); ok {
			return helper.JsonValidationError(c, fields)
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	rows := make([]fieldModel.RecordFieldModel, 0, len(req.Fields))
	for _, f := range req.Fields {
		m, err := f.ToModel(orgID, entity)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		rows = append(rows, m)
	}

	saved, err := ctl.Service.Upsert(c.UserContext(), orgID, entity, rows)
	if err != nil {
		log.Printf("[FieldController] upsert failed org_id=%s entity=%s: %v", orgID, entity, err)
		return helper.WritePGError(c, err)
	}
	out, err := dto.FromModels(saved)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Field berhasil disimpan", out)
}

// DELETE /records/:entity/fields/:key (admin)
func (ctl *FieldController) Delete(c *fiber.Ctx) error {
	if err := helperAuth.RequireRole(c, helperAuth.RoleAdmin); err != nil {
		return err
	}
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	entity, err := entityParam(c)
	if err != nil {
		return err
	}

	key := c.Params("key")
	if err := ctl.Service.Delete(c.UserContext(), orgID, entity, key); err != nil {
		if errors.Is(err, service.ErrFieldNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Field tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonDeleted(c, "Field dihapus", fiber.Map{"record_field_key": key})
}

// POST /records/:entity/field-states
func (ctl *FieldController) States(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	entity, err := entityParam(c)
	if err != nil {
		return err
	}

	var req dto.FieldStatesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}

	states, err := ctl.Service.ResolveStates(c.UserContext(), orgID, entity, req.DependencyValues(), req.Keys)
	if err != nil {
		if errors.Is(err, service.ErrFieldNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "ok", states)
}
