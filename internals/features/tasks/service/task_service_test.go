package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditku_backend/internals/databases"
	"auditku_backend/internals/features/audits/lifecycle"
	tmodel "auditku_backend/internals/features/tasks/model"
)

func newTestService(t *testing.T, now time.Time) *TaskService {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tmodel.TaskModel{}))

	svc := NewTaskService(db, nil)
	svc.Now = func() time.Time { return now }
	return svc
}

func remediation(org, response uuid.UUID, due time.Time) *lifecycle.RemediationTask {
	return &lifecycle.RemediationTask{
		OrgID:             org,
		ResponseID:        response,
		LinkedRecordID:    uuid.New(),
		Title:             "Corrective action: Kitchen (2 failed)",
		DueAt:             due,
		Priority:          lifecycle.RemediationPriority,
		AssigneeID:        uuid.New(),
		FailedQuestionIDs: []string{"q1", "q2"},
	}
}

func TestSpawnRemediationIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	ctx := context.Background()
	org, response := uuid.New(), uuid.New()

	first, err := svc.SpawnRemediation(ctx, remediation(org, response, now.AddDate(0, 0, 7)))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, tmodel.TaskStatusOpen, first.TaskStatus)

	second, err := svc.SpawnRemediation(ctx, remediation(org, response, now.AddDate(0, 0, 14)))
	require.NoError(t, err)
	assert.Equal(t, first.TaskID, second.TaskID)
	assert.Equal(t, []string{"q1", "q2"}, second.TaskQuestionIDs.Strings())

	var count int64
	require.NoError(t, svc.DB.Model(&tmodel.TaskModel{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	none, err := svc.SpawnRemediation(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestListCompleteAndOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, now)
	ctx := context.Background()
	org := uuid.New()

	late, err := svc.SpawnRemediation(ctx, remediation(org, uuid.New(), now.AddDate(0, 0, -2)))
	require.NoError(t, err)
	soon, err := svc.SpawnRemediation(ctx, remediation(org, uuid.New(), now.AddDate(0, 0, 3)))
	require.NoError(t, err)
	_, err = svc.SpawnRemediation(ctx, remediation(uuid.New(), uuid.New(), now.AddDate(0, 0, -5)))
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, org, ListFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, late.TaskID, rows[0].TaskID, "sorted by due date")

	n, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "overdue sweep spans every org")

	overdue := tmodel.TaskStatusOverdue
	rows, total, err = svc.List(ctx, org, ListFilter{Status: &overdue}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, late.TaskID, rows[0].TaskID)

	user := uuid.New()
	done, err := svc.Complete(ctx, org, late.TaskID, user)
	require.NoError(t, err)
	assert.Equal(t, tmodel.TaskStatusDone, done.TaskStatus)
	require.NotNil(t, done.TaskDoneBy)
	assert.Equal(t, user, *done.TaskDoneBy)

	_, err = svc.Complete(ctx, org, late.TaskID, user)
	assert.ErrorIs(t, err, ErrTaskAlreadyDone)

	_, err = svc.Complete(ctx, uuid.New(), soon.TaskID, user)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	assignee := soon.TaskAssigneeID
	rows, _, err = svc.List(ctx, org, ListFilter{AssigneeID: &assignee}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, soon.TaskID, rows[0].TaskID)
}
