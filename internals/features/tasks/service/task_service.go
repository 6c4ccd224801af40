// file: internals/features/tasks/service/task_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auditku_backend/internals/features/audits/lifecycle"
	tmodel "auditku_backend/internals/features/tasks/model"
	"auditku_backend/internals/observability/metrics"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskAlreadyDone = errors.New("task already completed")
)

type TaskService struct {
	DB      *gorm.DB
	Metrics *metrics.AuditMetrics
	Now     func() time.Time
}

func NewTaskService(db *gorm.DB, m *metrics.AuditMetrics) *TaskService {
	return &TaskService{DB: db, Metrics: m, Now: time.Now}
}

// SpawnRemediation menyimpan permintaan task dari lifecycle.
// Idempoten per response: task kedua untuk response yang sama diabaikan.
func (s *TaskService) SpawnRemediation(ctx context.Context, req *lifecycle.RemediationTask) (*tmodel.TaskModel, error) {
	if req == nil {
		return nil, nil
	}
	log.Printf("[TaskService] SpawnRemediation called. org_id=%s response_id=%s failed=%d assignee=%s",
		req.OrgID, req.ResponseID, len(req.FailedQuestionIDs), req.AssigneeID)

	row := &tmodel.TaskModel{
		TaskOrgID:          req.OrgID,
		TaskResponseID:     req.ResponseID,
		TaskLinkedRecordID: req.LinkedRecordID,
		TaskTitle:          req.Title,
		TaskDescription:    req.Description,
		TaskPriority:       req.Priority,
		TaskStatus:         tmodel.TaskStatusOpen,
		TaskQuestionIDs:    req.FailedQuestionIDs,
		TaskAssigneeID:     req.AssigneeID,
		TaskDueAt:          req.DueAt.UTC(),
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_response_id"}},
			DoNothing: true,
		}).
		Create(row)
	s.Metrics.RecordTaskSpawn(res.Error)
	if res.Error != nil {
		log.Printf("[TaskService] ERROR create task: %v", res.Error)
		return nil, fmt.Errorf("create remediation task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// sudah ada task untuk response ini
		var existing tmodel.TaskModel
		if err := s.DB.WithContext(ctx).Where("task_response_id = ?", req.ResponseID).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	return row, nil
}

type ListFilter struct {
	Status     *tmodel.TaskStatus
	AssigneeID *uuid.UUID
	ResponseID *uuid.UUID
}

func (s *TaskService) List(ctx context.Context, orgID uuid.UUID, f ListFilter, offset, limit int) ([]tmodel.TaskModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&tmodel.TaskModel{}).Where("task_org_id = ?", orgID)
	if f.Status != nil {
		q = q.Where("task_status = ?", *f.Status)
	}
	if f.AssigneeID != nil {
		q = q.Where("task_assignee_id = ?", *f.AssigneeID)
	}
	if f.ResponseID != nil {
		q = q.Where("task_response_id = ?", *f.ResponseID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]tmodel.TaskModel, 0)
	if err := q.Order("task_due_at ASC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Complete: open/overdue → done.
func (s *TaskService) Complete(ctx context.Context, orgID, taskID, userID uuid.UUID) (*tmodel.TaskModel, error) {
	var row tmodel.TaskModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ? AND task_org_id = ?", taskID, orgID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		if row.TaskStatus == tmodel.TaskStatusDone {
			return ErrTaskAlreadyDone
		}
		now := s.Now().UTC()
		uid := userID
		row.TaskStatus = tmodel.TaskStatusDone
		row.TaskDoneAt = &now
		row.TaskDoneBy = &uid
		return tx.Model(&row).Updates(map[string]any{
			"task_status":  row.TaskStatus,
			"task_done_at": now,
			"task_done_by": uid,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[TaskService] task_id=%s completed by user_id=%s", taskID, userID)
	return &row, nil
}

// MarkOverdue: semua task open yang lewat due → overdue. Dipanggil scheduler.
func (s *TaskService) MarkOverdue(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&tmodel.TaskModel{}).
		Where("task_status = ? AND task_due_at < ?", tmodel.TaskStatusOpen, s.Now().UTC()).
		Update("task_status", tmodel.TaskStatusOverdue)
	if res.Error != nil {
		return 0, res.Error
	}
	s.Metrics.RecordOverdue(int(res.RowsAffected))
	return res.RowsAffected, nil
}
