package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	tmodel "auditku_backend/internals/features/tasks/model"
)

type ListTasksQuery struct {
	Status     string `query:"status"`
	AssigneeID string `query:"assignee_id"`
	ResponseID string `query:"response_id"`
	Mine       bool   `query:"mine"`
}

// Normalize: string query → pointer filter; nilai invalid dilaporkan lewat error string.
func (q ListTasksQuery) Normalize() (status *tmodel.TaskStatus, assignee, response *uuid.UUID, errMsg string) {
	if s := strings.ToLower(strings.TrimSpace(q.Status)); s != "" {
		st := tmodel.TaskStatus(s)
		if !st.Valid() {
			return nil, nil, nil, "status harus open/done/overdue"
		}
		status = &st
	}
	if s := strings.TrimSpace(q.AssigneeID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, nil, nil, "assignee_id tidak valid"
		}
		assignee = &id
	}
	if s := strings.TrimSpace(q.ResponseID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, nil, nil, "response_id tidak valid"
		}
		response = &id
	}
	return status, assignee, response, ""
}

type TaskResponse struct {
	TaskID             uuid.UUID         `json:"task_id"`
	TaskResponseID     uuid.UUID         `json:"task_response_id"`
	TaskLinkedRecordID uuid.UUID         `json:"task_linked_record_id"`
	TaskTitle          string            `json:"task_title"`
	TaskDescription    string            `json:"task_description"`
	TaskPriority       string            `json:"task_priority"`
	TaskStatus         tmodel.TaskStatus `json:"task_status"`
	TaskQuestionIDs    []string          `json:"task_question_ids"`
	TaskAssigneeID     uuid.UUID         `json:"task_assignee_id"`
	TaskDueAt          time.Time         `json:"task_due_at"`
	TaskDoneAt         *time.Time        `json:"task_done_at,omitempty"`
	TaskDoneBy         *uuid.UUID        `json:"task_done_by,omitempty"`
	TaskCreatedAt      time.Time         `json:"task_created_at"`
}

func FromModel(m *tmodel.TaskModel) TaskResponse {
	qids := []string(m.TaskQuestionIDs)
	if qids == nil {
		qids = []string{}
	}
	return TaskResponse{
		TaskID:             m.TaskID,
		TaskResponseID:     m.TaskResponseID,
		TaskLinkedRecordID: m.TaskLinkedRecordID,
		TaskTitle:          m.TaskTitle,
		TaskDescription:    m.TaskDescription,
		TaskPriority:       m.TaskPriority,
		TaskStatus:         m.TaskStatus,
		TaskQuestionIDs:    qids,
		TaskAssigneeID:     m.TaskAssigneeID,
		TaskDueAt:          m.TaskDueAt,
		TaskDoneAt:         m.TaskDoneAt,
		TaskDoneBy:         m.TaskDoneBy,
		TaskCreatedAt:      m.TaskCreatedAt,
	}
}

func FromModels(rows []tmodel.TaskModel) []TaskResponse {
	out := make([]TaskResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
