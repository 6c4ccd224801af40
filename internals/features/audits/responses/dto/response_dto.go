package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
)

/* =========================================================
   REQUESTS
   ========================================================= */

// POST /forms/:id/responses
type SubmitRequest struct {
	LinkedRecordID *uuid.UUID               `json:"response_linked_record_id"`
	Answers        []fmodel.SubmittedAnswer `json:"answers" validate:"max=1000"`
}

// PUT /responses/:id/corrective-actions/:question_id (manager)
type CorrectiveActionRequest struct {
	Comment string                   `json:"comment" validate:"max=4000"`
	Proofs  []string                 `json:"proofs" validate:"max=50,dive,max=1024"`
	Status  rmodel.RemediationStatus `json:"status"`
	Version *int                     `json:"response_version"`
}

// POST /responses/:id/corrective-actions/:question_id/verify (auditor)
type VerifyRequest struct {
	Approved *bool  `json:"approved" validate:"required"`
	Comment  string `json:"comment" validate:"max=4000"`
	Version  *int   `json:"response_version"`
}

// POST /responses/:id/approve | /reject
type ReviewRequest struct {
	Comment string `json:"comment" validate:"max=4000"`
	Version *int   `json:"response_version"`
}

type ListResponsesQuery struct {
	FormID         string `query:"form_id"`
	Status         string `query:"status"`
	LinkedRecordID string `query:"linked_record_id"`
	SubmittedBy    string `query:"submitted_by"`
	Mine           bool   `query:"mine"`
}

// Parsed = filter hasil parse query; field invalid dilaporkan per nama query.
type Parsed struct {
	FormID         *uuid.UUID
	Status         *rmodel.ResponseStatus
	LinkedRecordID *uuid.UUID
	SubmittedBy    *uuid.UUID
}

func (q ListResponsesQuery) Parse() (Parsed, map[string][]string) {
	var out Parsed
	errs := map[string][]string{}

	parseID := func(name, raw string) *uuid.UUID {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			errs[name] = append(errs[name], "harus UUID")
			return nil
		}
		return &id
	}
	out.FormID = parseID("form_id", q.FormID)
	out.LinkedRecordID = parseID("linked_record_id", q.LinkedRecordID)
	out.SubmittedBy = parseID("submitted_by", q.SubmittedBy)

	if s := strings.TrimSpace(q.Status); s != "" {
		st := rmodel.ResponseStatus(s)
		if !st.Valid() {
			errs["status"] = append(errs["status"], "status tidak dikenal")
		} else {
			out.Status = &st
		}
	}
	if len(errs) == 0 {
		return out, nil
	}
	return out, errs
}

/* =========================================================
   RESPONSES
   ========================================================= */

type ResponseDTO struct {
	ResponseID                uuid.UUID                 `json:"response_id"`
	ResponseFormID            uuid.UUID                 `json:"response_form_id"`
	ResponseFormName          string                    `json:"response_form_name"`
	ResponseSubmittedBy       uuid.UUID                 `json:"response_submitted_by"`
	ResponseSubmittedAt       time.Time                 `json:"response_submitted_at"`
	ResponseLinkedRecordID    *uuid.UUID                `json:"response_linked_record_id,omitempty"`
	ResponseStatus            rmodel.ResponseStatus     `json:"response_status"`
	ResponseKPIs              rmodel.KPIs               `json:"response_kpis"`
	ResponseSectionScores     []rmodel.SectionScore     `json:"response_section_scores"`
	ResponseDetails           []rmodel.ResponseDetail   `json:"response_details,omitempty"`
	ResponseCorrectiveActions []rmodel.CorrectiveAction `json:"response_corrective_actions"`
	ResponseReviewedBy        *uuid.UUID                `json:"response_reviewed_by,omitempty"`
	ResponseReviewedAt        *time.Time                `json:"response_reviewed_at,omitempty"`
	ResponseReviewComment     *string                   `json:"response_review_comment,omitempty"`
	ResponseVersion           int                       `json:"response_version"`
}

// FromDomain; withDetails=false dipakai untuk list (tanpa detail jawaban).
func FromDomain(r *rmodel.Response, withDetails bool) ResponseDTO {
	sections := r.SectionScores
	if sections == nil {
		sections = []rmodel.SectionScore{}
	}
	out := ResponseDTO{
		ResponseID:                r.ID,
		ResponseFormID:            r.FormID,
		ResponseFormName:          r.FormName,
		ResponseSubmittedBy:       r.SubmittedBy,
		ResponseSubmittedAt:       r.SubmittedAt,
		ResponseLinkedRecordID:    r.LinkedRecordID,
		ResponseStatus:            r.Status,
		ResponseKPIs:              r.KPIs,
		ResponseSectionScores:     sections,
		ResponseCorrectiveActions: r.Actions().List(),
		ResponseReviewedBy:        r.ReviewedBy,
		ResponseReviewedAt:        r.ReviewedAt,
		ResponseReviewComment:     r.ReviewComment,
		ResponseVersion:           r.Version,
	}
	if withDetails {
		out.ResponseDetails = r.Details
		if out.ResponseDetails == nil {
			out.ResponseDetails = []rmodel.ResponseDetail{}
		}
	}
	return out
}

func FromDomains(rs []*rmodel.Response) []ResponseDTO {
	out := make([]ResponseDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, FromDomain(r, false))
	}
	return out
}

// SubmitResponse: task_error terisi bila task remediasi gagal dibuat.
type SubmitResponse struct {
	ResponseDTO
	TaskID    *uuid.UUID `json:"task_id,omitempty"`
	TaskError string     `json:"task_error,omitempty"`
}

type CorrectiveActionResponse struct {
	Response ResponseDTO             `json:"response"`
	Action   rmodel.CorrectiveAction `json:"corrective_action"`
}
