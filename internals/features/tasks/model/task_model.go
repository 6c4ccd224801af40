// file: internals/features/tasks/model/task_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"auditku_backend/internals/helpers/dbtypes"
)

type TaskStatus string

const (
	TaskStatusOpen    TaskStatus = "open"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusOverdue TaskStatus = "overdue"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusOpen, TaskStatusDone, TaskStatusOverdue:
		return true
	}
	return false
}

// TaskModel = task remediasi yang di-spawn dari response audit.
// Satu response maksimal satu task (uq_remediation_tasks_response).
type TaskModel struct {
	TaskID    uuid.UUID `gorm:"type:uuid;primaryKey;column:task_id" json:"task_id"`
	TaskOrgID uuid.UUID `gorm:"type:uuid;not null;index:idx_remediation_tasks_org_status,priority:1;column:task_org_id" json:"task_org_id"`

	TaskResponseID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_remediation_tasks_response;column:task_response_id" json:"task_response_id"`
	TaskLinkedRecordID uuid.UUID `gorm:"type:uuid;not null;index;column:task_linked_record_id" json:"task_linked_record_id"`

	TaskTitle       string            `gorm:"type:varchar(255);not null;column:task_title" json:"task_title"`
	TaskDescription string            `gorm:"type:text;column:task_description" json:"task_description"`
	TaskPriority    string            `gorm:"type:varchar(16);not null;default:'high';column:task_priority" json:"task_priority"`
	TaskStatus      TaskStatus        `gorm:"type:varchar(16);not null;default:'open';index:idx_remediation_tasks_org_status,priority:2;column:task_status" json:"task_status"`
	TaskQuestionIDs dbtypes.TextArray `gorm:"column:task_question_ids" json:"task_question_ids"`

	TaskAssigneeID uuid.UUID  `gorm:"type:uuid;not null;index;column:task_assignee_id" json:"task_assignee_id"`
	TaskDueAt      time.Time  `gorm:"not null;index;column:task_due_at" json:"task_due_at"`
	TaskDoneAt     *time.Time `gorm:"column:task_done_at" json:"task_done_at,omitempty"`
	TaskDoneBy     *uuid.UUID `gorm:"type:uuid;column:task_done_by" json:"task_done_by,omitempty"`

	TaskCreatedAt time.Time      `gorm:"column:task_created_at;autoCreateTime" json:"task_created_at"`
	TaskUpdatedAt time.Time      `gorm:"column:task_updated_at;autoUpdateTime" json:"task_updated_at"`
	TaskDeletedAt gorm.DeletedAt `gorm:"column:task_deleted_at;index" json:"-"`
}

func (TaskModel) TableName() string { return "remediation_tasks" }

func (m *TaskModel) BeforeCreate(tx *gorm.DB) error {
	if m.TaskID == uuid.Nil {
		m.TaskID = uuid.New()
	}
	if m.TaskStatus == "" {
		m.TaskStatus = TaskStatusOpen
	}
	return nil
}
