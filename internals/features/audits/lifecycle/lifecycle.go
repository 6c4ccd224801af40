// Package lifecycle berisi state machine response audit:
// triage awal, permintaan task remediasi, corrective action manager,
// verifikasi auditor, dan approve/reject.
//
// Semua operasi murni di atas *model.Response; persist & kirim task
// dilakukan oleh service pemanggil.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
)

const (
	DefaultRemediationDueDays = 7
	RemediationPriority       = "high"
)

var (
	ErrQuestionNotFound         = errors.New("question not found in response")
	ErrNotFailed                = errors.New("question did not fail; corrective action not allowed")
	ErrActionNotFound           = errors.New("corrective action not found")
	ErrInvalidRemediationStatus = errors.New("invalid remediation status")
	ErrMissingActor             = errors.New("actor id is required")
)

// DetermineInitialStatus: status awal setelah submit.
//
// Semua cabang berakhir di Pending Corrective Action; belum ada jalur
// yang langsung Approved untuk submission yang sudah compliant.
func DetermineInitialStatus(form fmodel.FormDefinition, kpis rmodel.KPIs) rmodel.ResponseStatus {
	switch {
	case form.ApprovalRequired:
		return rmodel.StatusPendingCorrectiveAction
	case form.Type == fmodel.FormTypeAudit && kpis.CompliancePercentage < form.PartialThreshold:
		return rmodel.StatusPendingCorrectiveAction
	default:
		return rmodel.StatusPendingCorrectiveAction
	}
}

// RemediationTask = permintaan pembuatan task untuk collaborator task.
type RemediationTask struct {
	OrgID             uuid.UUID
	ResponseID        uuid.UUID
	LinkedRecordID    uuid.UUID
	Title             string
	Description       string
	DueAt             time.Time
	Priority          string
	AssigneeID        uuid.UUID
	FailedQuestionIDs []string
}

// BuildRemediationTask mengembalikan nil bila tidak ada jawaban Fail
// atau response tidak terhubung ke record lain.
func BuildRemediationTask(form fmodel.FormDefinition, resp *rmodel.Response, now time.Time, dueDays int) *RemediationTask {
	if resp == nil || !resp.IsLinked() {
		return nil
	}
	failed := resp.FailedDetails()
	if len(failed) == 0 {
		return nil
	}
	if dueDays <= 0 {
		dueDays = DefaultRemediationDueDays
	}

	assignee := resp.SubmittedBy
	if form.ReviewerID != nil && *form.ReviewerID != uuid.Nil {
		assignee = *form.ReviewerID
	}

	qids := make([]string, 0, len(failed))
	for _, d := range failed {
		qids = append(qids, d.QuestionID)
	}

	name := resp.FormName
	if name == "" {
		name = form.Name
	}

	return &RemediationTask{
		OrgID:          resp.OrgID,
		ResponseID:     resp.ID,
		LinkedRecordID: *resp.LinkedRecordID,
		Title:          fmt.Sprintf("Corrective action: %s (%d failed)", name, len(failed)),
		Description: fmt.Sprintf("Audit \"%s\" has %d failed question(s): %s. Compliance %.1f%%.",
			name, len(failed), strings.Join(qids, ", "), resp.KPIs.CompliancePercentage),
		DueAt:             now.AddDate(0, 0, dueDays),
		Priority:          RemediationPriority,
		AssigneeID:        assignee,
		FailedQuestionIDs: qids,
	}
}

// ManagerInput = payload remediasi dari manager untuk satu pertanyaan.
type ManagerInput struct {
	QuestionID string
	Comment    string
	Proofs     []string
	Status     rmodel.RemediationStatus
	Author     uuid.UUID
}

// UpsertCorrectiveAction membuat / memperbarui action untuk questionId.
// Proof ditambahkan (bukan diganti); status response → Needs Auditor Review.
func UpsertCorrectiveAction(resp *rmodel.Response, in ManagerInput, now time.Time) (*rmodel.CorrectiveAction, error) {
	qid := strings.TrimSpace(in.QuestionID)
	detail, ok := resp.Detail(qid)
	if !ok {
		return nil, ErrQuestionNotFound
	}
	if detail.PassFail != rmodel.PassFailFail {
		return nil, ErrNotFailed
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRemediationStatus, in.Status)
	}
	if in.Author == uuid.Nil {
		return nil, ErrMissingActor
	}

	actions := resp.Actions()
	action, exists := actions.Get(qid)
	var next rmodel.CorrectiveAction
	if exists {
		next = *action
	} else {
		next = rmodel.CorrectiveAction{
			QuestionID: qid,
			Finding:    detail.Answer,
			CreatedAt:  now,
			Manager: rmodel.ManagerRemediation{
				Status: rmodel.RemediationPending,
				Proofs: []string{},
			},
		}
	}

	if c := strings.TrimSpace(in.Comment); c != "" {
		next.Manager.Comment = c
	}
	if in.Status != "" {
		next.Manager.Status = in.Status
	}
	next.Manager.Proofs = appendProofs(next.Manager.Proofs, in.Proofs)
	next.Manager.Author = in.Author
	next.Manager.UpdatedAt = now

	actions.Put(next)
	resp.Status = rmodel.StatusNeedsAuditorReview

	out, _ := actions.Get(qid)
	return out, nil
}

func appendProofs(existing, add []string) []string {
	out := make([]string, 0, len(existing)+len(add))
	seen := make(map[string]struct{}, len(existing)+len(add))
	for _, list := range [][]string{existing, add} {
		for _, p := range list {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// VerifyInput = keputusan auditor atas satu corrective action.
type VerifyInput struct {
	QuestionID string
	Approved   bool
	Comment    string
	Verifier   uuid.UUID
}

// VerifyCorrectiveAction mencatat verifikasi lalu mengevaluasi ulang status:
// belum semua terverifikasi → status tetap; semua approved → Closed;
// ada yang ditolak → kembali ke Needs Auditor Review.
func VerifyCorrectiveAction(resp *rmodel.Response, in VerifyInput, now time.Time) (*rmodel.CorrectiveAction, error) {
	if in.Verifier == uuid.Nil {
		return nil, ErrMissingActor
	}
	qid := strings.TrimSpace(in.QuestionID)
	actions := resp.Actions()
	action, ok := actions.Get(qid)
	if !ok {
		return nil, ErrActionNotFound
	}

	next := *action
	verifier := in.Verifier
	at := now
	next.Verification = rmodel.AuditorVerification{
		Approved:   in.Approved,
		Comment:    strings.TrimSpace(in.Comment),
		VerifiedBy: &verifier,
		VerifiedAt: &at,
	}
	actions.Put(next)

	allVerified, allApproved := verificationState(actions)
	if allVerified {
		if allApproved {
			resp.Status = rmodel.StatusClosed
		} else {
			resp.Status = rmodel.StatusNeedsAuditorReview
		}
	}

	out, _ := actions.Get(qid)
	return out, nil
}

func verificationState(actions *rmodel.CorrectiveActions) (allVerified, allApproved bool) {
	allVerified, allApproved = true, true
	for _, a := range actions.List() {
		if !a.IsVerified() {
			allVerified = false
		}
		if !a.Verification.Approved {
			allApproved = false
		}
	}
	return allVerified, allApproved
}

// Approve / Reject: keputusan terminal reviewer, lepas dari corrective action.
func Approve(resp *rmodel.Response, reviewer uuid.UUID, comment string, now time.Time) error {
	return review(resp, rmodel.StatusApproved, reviewer, comment, now)
}

func Reject(resp *rmodel.Response, reviewer uuid.UUID, comment string, now time.Time) error {
	return review(resp, rmodel.StatusRejected, reviewer, comment, now)
}

func review(resp *rmodel.Response, status rmodel.ResponseStatus, reviewer uuid.UUID, comment string, now time.Time) error {
	if reviewer == uuid.Nil {
		return ErrMissingActor
	}
	r := reviewer
	at := now
	resp.Status = status
	resp.ReviewedBy = &r
	resp.ReviewedAt = &at
	if c := strings.TrimSpace(comment); c != "" {
		resp.ReviewComment = &c
	} else {
		resp.ReviewComment = nil
	}
	return nil
}
