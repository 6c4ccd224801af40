// file: internals/features/tasks/controller/task_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	dto "auditku_backend/internals/features/tasks/dto"
	"auditku_backend/internals/features/tasks/service"
	helper "auditku_backend/internals/helpers"
	helperAuth "auditku_backend/internals/helpers/auth"
)

type TaskController struct {
	Service *service.TaskService
}

func NewTaskController(svc *service.TaskService) *TaskController {
	return &TaskController{Service: svc}
}

// GET /tasks?status=&assignee_id=&response_id=&mine=true&page=&per_page=
func (ctl *TaskController) List(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}

	var q dto.ListTasksQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query tidak valid")
	}
	status, assignee, response, msg := q.Normalize()
	if msg != "" {
		return helper.JsonError(c, fiber.StatusBadRequest, msg)
	}
	if q.Mine {
		uid, err := helperAuth.GetUserID(c)
		if err != nil {
			return err
		}
		assignee = &uid
	}

	paging := helper.ResolvePaging(c, 20, 200)
	rows, total, err := ctl.Service.List(c.UserContext(), orgID, service.ListFilter{
		Status:     status,
		AssigneeID: assignee,
		ResponseID: response,
	}, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, paging, len(rows)))
}

// POST /tasks/:id/complete
func (ctl *TaskController) Complete(c *fiber.Ctx) error {
	orgID, err := helperAuth.GetOrgID(c)
	if err != nil {
		return err
	}
	userID, err := helperAuth.GetUserID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	row, err := ctl.Service.Complete(c.UserContext(), orgID, id, userID)
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Task tidak ditemukan")
	case errors.Is(err, service.ErrTaskAlreadyDone):
		return helper.JsonError(c, fiber.StatusConflict, "Task sudah selesai")
	case err != nil:
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonUpdated(c, "Task selesai", dto.FromModel(row))
}
