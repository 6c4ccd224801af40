package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/helpers/answer"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newResponse(linked bool, details ...rmodel.ResponseDetail) *rmodel.Response {
	r := &rmodel.Response{
		ID:          uuid.New(),
		OrgID:       uuid.New(),
		FormID:      uuid.New(),
		FormName:    "Kitchen hygiene",
		SubmittedBy: uuid.New(),
		SubmittedAt: fixedNow,
		Details:     details,
		Status:      rmodel.StatusPendingCorrectiveAction,
	}
	if linked {
		id := uuid.New()
		r.LinkedRecordID = &id
	}
	return r
}

func failed(qid string) rmodel.ResponseDetail {
	return rmodel.ResponseDetail{QuestionID: qid, Answer: answer.NewString("No"), PassFail: rmodel.PassFailFail}
}

func passed(qid string) rmodel.ResponseDetail {
	return rmodel.ResponseDetail{QuestionID: qid, Answer: answer.NewString("Yes"), Score: 100, PassFail: rmodel.PassFailPass}
}

func TestDetermineInitialStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		form fmodel.FormDefinition
		kpis rmodel.KPIs
	}{
		{"approval required", fmodel.FormDefinition{Type: fmodel.FormTypeAudit, ApprovalRequired: true}, rmodel.KPIs{CompliancePercentage: 100}},
		{"audit below partial", fmodel.FormDefinition{Type: fmodel.FormTypeAudit, PartialThreshold: 60}, rmodel.KPIs{CompliancePercentage: 40}},
		{"compliant audit", fmodel.FormDefinition{Type: fmodel.FormTypeAudit, PartialThreshold: 60}, rmodel.KPIs{CompliancePercentage: 100}},
		{"feedback", fmodel.FormDefinition{Type: fmodel.FormTypeFeedback}, rmodel.KPIs{}},
		{"zero scoreable", fmodel.FormDefinition{Type: fmodel.FormTypeAudit}, rmodel.KPIs{TotalQuestions: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, rmodel.StatusPendingCorrectiveAction, DetermineInitialStatus(tc.form, tc.kpis))
		})
	}
}

func TestBuildRemediationTask(t *testing.T) {
	t.Parallel()

	t.Run("linked with failures", func(t *testing.T) {
		resp := newResponse(true, passed("q1"), failed("q2"), failed("q3"))
		task := BuildRemediationTask(fmodel.FormDefinition{Name: "ignored"}, resp, fixedNow, 0)
		require.NotNil(t, task)
		assert.Contains(t, task.Title, "Kitchen hygiene")
		assert.Contains(t, task.Title, "2")
		assert.Equal(t, fixedNow.AddDate(0, 0, 7), task.DueAt)
		assert.Equal(t, "high", task.Priority)
		assert.Equal(t, resp.SubmittedBy, task.AssigneeID)
		assert.Equal(t, []string{"q2", "q3"}, task.FailedQuestionIDs)
		assert.Equal(t, *resp.LinkedRecordID, task.LinkedRecordID)
	})

	t.Run("reviewer is preferred assignee", func(t *testing.T) {
		reviewer := uuid.New()
		resp := newResponse(true, failed("q1"))
		task := BuildRemediationTask(fmodel.FormDefinition{ReviewerID: &reviewer}, resp, fixedNow, 3)
		require.NotNil(t, task)
		assert.Equal(t, reviewer, task.AssigneeID)
		assert.Equal(t, fixedNow.AddDate(0, 0, 3), task.DueAt)
	})

	t.Run("unlinked response spawns nothing", func(t *testing.T) {
		resp := newResponse(false, failed("q1"))
		assert.Nil(t, BuildRemediationTask(fmodel.FormDefinition{}, resp, fixedNow, 7))
	})

	t.Run("no failures spawns nothing", func(t *testing.T) {
		resp := newResponse(true, passed("q1"))
		assert.Nil(t, BuildRemediationTask(fmodel.FormDefinition{}, resp, fixedNow, 7))
	})
}

func TestUpsertCorrectiveAction(t *testing.T) {
	t.Parallel()

	manager := uuid.New()

	t.Run("creates then merges", func(t *testing.T) {
		resp := newResponse(true, failed("q1"), passed("q2"))

		a, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: "q1", Comment: "cleaned", Proofs: []string{"p1"}, Author: manager}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, rmodel.RemediationPending, a.Manager.Status)
		assert.Equal(t, "No", a.Finding.String())
		assert.Equal(t, rmodel.StatusNeedsAuditorReview, resp.Status)

		later := fixedNow.Add(time.Hour)
		a, err = UpsertCorrectiveAction(resp, ManagerInput{QuestionID: "q1", Proofs: []string{"p1", "p2"}, Status: rmodel.RemediationResolved, Author: manager}, later)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, a.Manager.Proofs)
		assert.Equal(t, "cleaned", a.Manager.Comment)
		assert.Equal(t, rmodel.RemediationResolved, a.Manager.Status)
		assert.Equal(t, later, a.Manager.UpdatedAt)
		assert.Equal(t, fixedNow, a.CreatedAt)
		assert.Equal(t, 1, resp.Actions().Len())
	})

	t.Run("idempotent per question", func(t *testing.T) {
		resp := newResponse(true, failed("q1"), failed("q2"))
		for i := 0; i < 5; i++ {
			for _, q := range []string{"q1", "q2"} {
				_, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: q, Author: manager}, fixedNow)
				require.NoError(t, err)
			}
		}
		assert.Equal(t, 2, resp.Actions().Len())
	})

	t.Run("unknown question", func(t *testing.T) {
		resp := newResponse(true, failed("q1"))
		_, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: "nope", Author: manager}, fixedNow)
		assert.ErrorIs(t, err, ErrQuestionNotFound)
		assert.Equal(t, 0, resp.Actions().Len())
	})

	t.Run("passed question rejected", func(t *testing.T) {
		resp := newResponse(true, passed("q1"))
		_, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: "q1", Author: manager}, fixedNow)
		assert.ErrorIs(t, err, ErrNotFailed)
		assert.Equal(t, rmodel.StatusPendingCorrectiveAction, resp.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		resp := newResponse(true, failed("q1"))
		_, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: "q1", Status: "Done", Author: manager}, fixedNow)
		assert.ErrorIs(t, err, ErrInvalidRemediationStatus)
	})

	t.Run("missing author", func(t *testing.T) {
		resp := newResponse(true, failed("q1"))
		_, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: "q1"}, fixedNow)
		assert.ErrorIs(t, err, ErrMissingActor)
	})
}

func TestVerifyCorrectiveAction(t *testing.T) {
	t.Parallel()

	manager, auditor := uuid.New(), uuid.New()

	setup := func(t *testing.T) *rmodel.Response {
		resp := newResponse(true, failed("q1"), failed("q2"))
		for _, q := range []string{"q1", "q2"} {
			_, err := UpsertCorrectiveAction(resp, ManagerInput{QuestionID: q, Author: manager}, fixedNow)
			require.NoError(t, err)
		}
		return resp
	}

	t.Run("partial verification keeps status", func(t *testing.T) {
		resp := setup(t)
		a, err := VerifyCorrectiveAction(resp, VerifyInput{QuestionID: "q1", Approved: true, Verifier: auditor}, fixedNow)
		require.NoError(t, err)
		require.NotNil(t, a.Verification.VerifiedBy)
		assert.Equal(t, auditor, *a.Verification.VerifiedBy)
		assert.Equal(t, rmodel.StatusNeedsAuditorReview, resp.Status)
	})

	t.Run("all approved closes, re-verification reopens", func(t *testing.T) {
		resp := setup(t)
		for _, q := range []string{"q1", "q2"} {
			_, err := VerifyCorrectiveAction(resp, VerifyInput{QuestionID: q, Approved: true, Verifier: auditor}, fixedNow)
			require.NoError(t, err)
		}
		assert.Equal(t, rmodel.StatusClosed, resp.Status)

		_, err := VerifyCorrectiveAction(resp, VerifyInput{QuestionID: "q2", Approved: false, Comment: "photo blurry", Verifier: auditor}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, rmodel.StatusNeedsAuditorReview, resp.Status)
	})

	t.Run("any rejection returns to review", func(t *testing.T) {
		resp := setup(t)
		_, err := VerifyCorrectiveAction(resp, VerifyInput{QuestionID: "q1", Approved: false, Verifier: auditor}, fixedNow)
		require.NoError(t, err)
		_, err = VerifyCorrectiveAction(resp, VerifyInput{QuestionID: "q2", Approved: true, Verifier: auditor}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, rmodel.StatusNeedsAuditorReview, resp.Status)
	})

	t.Run("missing action", func(t *testing.T) {
		resp := setup(t)
		_, err := VerifyCorrectiveAction(resp, VerifyInput{QuestionID: "q9", Approved: true, Verifier: auditor}, fixedNow)
		assert.ErrorIs(t, err, ErrActionNotFound)
	})
}

func TestApproveReject(t *testing.T) {
	t.Parallel()

	reviewer := uuid.New()

	resp := newResponse(false, passed("q1"))
	require.NoError(t, Approve(resp, reviewer, " looks good ", fixedNow))
	assert.Equal(t, rmodel.StatusApproved, resp.Status)
	require.NotNil(t, resp.ReviewComment)
	assert.Equal(t, "looks good", *resp.ReviewComment)
	assert.Equal(t, reviewer, *resp.ReviewedBy)
	assert.Equal(t, fixedNow, *resp.ReviewedAt)

	require.NoError(t, Reject(resp, reviewer, "", fixedNow))
	assert.Equal(t, rmodel.StatusRejected, resp.Status)
	assert.Nil(t, resp.ReviewComment)

	assert.ErrorIs(t, Approve(resp, uuid.Nil, "", fixedNow), ErrMissingActor)
}
