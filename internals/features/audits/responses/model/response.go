// file: internals/features/audits/responses/model/response.go
package model

import (
	"time"

	"github.com/google/uuid"

	"auditku_backend/internals/helpers/answer"
)

type PassFail string

const (
	PassFailPass PassFail = "Pass"
	PassFailFail PassFail = "Fail"
	PassFailNA   PassFail = "N/A"
)

// ResponseStatus: state machine response (lihat package lifecycle).
type ResponseStatus string

const (
	StatusPendingCorrectiveAction ResponseStatus = "Pending Corrective Action"
	StatusNeedsAuditorReview      ResponseStatus = "Needs Auditor Review"
	StatusApproved                ResponseStatus = "Approved"
	StatusRejected                ResponseStatus = "Rejected"
	StatusClosed                  ResponseStatus = "Closed"
)

func (s ResponseStatus) Valid() bool {
	switch s {
	case StatusPendingCorrectiveAction, StatusNeedsAuditorReview, StatusApproved, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// ResponseDetail = satu jawaban yang sudah dinilai.
type ResponseDetail struct {
	QuestionID  string       `json:"questionId"`
	Answer      answer.Value `json:"answer"`
	Attachments []string     `json:"attachments,omitempty"`
	Score       float64      `json:"score"`
	PassFail    PassFail     `json:"passFail"`
}

type SectionScore struct {
	SectionID    string  `json:"sectionId"`
	SectionTitle string  `json:"sectionTitle,omitempty"`
	Weightage    float64 `json:"weightage"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	Total        int     `json:"total"`
	Percentage   float64 `json:"percentage"`
	Score        float64 `json:"score"`
}

// KPIs: nama field json stabil, dipakai renderer laporan.
type KPIs struct {
	TotalQuestions         int     `json:"totalQuestions"`
	TotalPassed            int     `json:"totalPassed"`
	TotalFailed            int     `json:"totalFailed"`
	CompliancePercentage   float64 `json:"compliancePercentage"`
	AvgRating              float64 `json:"avgRating"`
	SatisfactionPercentage float64 `json:"satisfactionPercentage"`
	FinalScore             float64 `json:"finalScore"`
}

// Response = dokumen response dalam bentuk domain (tanpa gorm).
type Response struct {
	ID             uuid.UUID
	OrgID          uuid.UUID
	FormID         uuid.UUID
	FormName       string
	SubmittedBy    uuid.UUID
	SubmittedAt    time.Time
	LinkedRecordID *uuid.UUID

	Details           []ResponseDetail
	SectionScores     []SectionScore
	KPIs              KPIs
	Status            ResponseStatus
	CorrectiveActions *CorrectiveActions

	ReviewedBy    *uuid.UUID
	ReviewedAt    *time.Time
	ReviewComment *string

	Version int
}

// Detail mencari detail by question id.
func (r *Response) Detail(questionID string) (ResponseDetail, bool) {
	for _, d := range r.Details {
		if d.QuestionID == questionID {
			return d, true
		}
	}
	return ResponseDetail{}, false
}

// FailedDetails = detail dengan passFail Fail, urutan asli.
func (r *Response) FailedDetails() []ResponseDetail {
	out := make([]ResponseDetail, 0)
	for _, d := range r.Details {
		if d.PassFail == PassFailFail {
			out = append(out, d)
		}
	}
	return out
}

func (r *Response) IsLinked() bool {
	return r.LinkedRecordID != nil && *r.LinkedRecordID != uuid.Nil
}

func (r *Response) Actions() *CorrectiveActions {
	if r.CorrectiveActions == nil {
		r.CorrectiveActions = NewCorrectiveActions()
	}
	return r.CorrectiveActions
}
