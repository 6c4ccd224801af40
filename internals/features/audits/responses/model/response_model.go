// file: internals/features/audits/responses/model/response_model.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResponseModel struct {
	ResponseID    uuid.UUID `gorm:"type:uuid;primaryKey;column:response_id" json:"response_id"`
	ResponseOrgID uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_responses_org_form,priority:1;column:response_org_id" json:"response_org_id"`

	ResponseFormID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_responses_org_form,priority:2;column:response_form_id" json:"response_form_id"`
	ResponseFormName string    `gorm:"type:varchar(160);not null;column:response_form_name" json:"response_form_name"` // snapshot

	ResponseSubmittedBy    uuid.UUID  `gorm:"type:uuid;not null;column:response_submitted_by" json:"response_submitted_by"`
	ResponseSubmittedAt    time.Time  `gorm:"not null;index;column:response_submitted_at" json:"response_submitted_at"`
	ResponseLinkedRecordID *uuid.UUID `gorm:"type:uuid;column:response_linked_record_id" json:"response_linked_record_id,omitempty"`

	ResponseStatus ResponseStatus `gorm:"type:varchar(32);not null;index;column:response_status" json:"response_status"`

	// jawaban yang sudah dinilai + agregat (jsonb)
	ResponseDetails           datatypes.JSON `gorm:"type:jsonb;not null;column:response_details" json:"response_details"`
	ResponseSectionScores     datatypes.JSON `gorm:"type:jsonb;not null;column:response_section_scores" json:"response_section_scores"`
	ResponseKPIs              datatypes.JSON `gorm:"type:jsonb;not null;column:response_kpis" json:"response_kpis"`
	ResponseCorrectiveActions datatypes.JSON `gorm:"type:jsonb;not null;column:response_corrective_actions" json:"response_corrective_actions"`

	// kolom datar untuk sort/filter laporan
	ResponseCompliance float64 `gorm:"type:numeric(5,1);not null;default:0;column:response_compliance" json:"response_compliance"`
	ResponseFinalScore float64 `gorm:"type:numeric(6,1);not null;default:0;column:response_final_score" json:"response_final_score"`

	ResponseReviewedBy    *uuid.UUID `gorm:"type:uuid;column:response_reviewed_by" json:"response_reviewed_by,omitempty"`
	ResponseReviewedAt    *time.Time `gorm:"column:response_reviewed_at" json:"response_reviewed_at,omitempty"`
	ResponseReviewComment *string    `gorm:"type:text;column:response_review_comment" json:"response_review_comment,omitempty"`

	// optimistic lock: tiap write wajib cocok dengan versi yang dibaca
	ResponseVersion int `gorm:"not null;default:1;column:response_version" json:"response_version"`

	ResponseCreatedAt time.Time      `gorm:"column:response_created_at;autoCreateTime" json:"response_created_at"`
	ResponseUpdatedAt time.Time      `gorm:"column:response_updated_at;autoUpdateTime" json:"response_updated_at"`
	ResponseDeletedAt gorm.DeletedAt `gorm:"column:response_deleted_at;index" json:"response_deleted_at,omitempty"`
}

func (ResponseModel) TableName() string { return "audit_responses" }

func (m *ResponseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ResponseID == uuid.Nil {
		m.ResponseID = uuid.New()
	}
	if m.ResponseVersion == 0 {
		m.ResponseVersion = 1
	}
	return nil
}

// ToDomain decode semua kolom jsonb.
func (m *ResponseModel) ToDomain() (*Response, error) {
	r := &Response{
		ID:             m.ResponseID,
		OrgID:          m.ResponseOrgID,
		FormID:         m.ResponseFormID,
		FormName:       m.ResponseFormName,
		SubmittedBy:    m.ResponseSubmittedBy,
		SubmittedAt:    m.ResponseSubmittedAt,
		LinkedRecordID: m.ResponseLinkedRecordID,
		Status:         m.ResponseStatus,
		ReviewedBy:     m.ResponseReviewedBy,
		ReviewedAt:     m.ResponseReviewedAt,
		ReviewComment:  m.ResponseReviewComment,
		Version:        m.ResponseVersion,
		Details:        []ResponseDetail{},
		SectionScores:  []SectionScore{},
	}
	if err := decodeJSON(m.ResponseDetails, &r.Details); err != nil {
		return nil, fmt.Errorf("decode response_details: %w", err)
	}
	if err := decodeJSON(m.ResponseSectionScores, &r.SectionScores); err != nil {
		return nil, fmt.Errorf("decode response_section_scores: %w", err)
	}
	if err := decodeJSON(m.ResponseKPIs, &r.KPIs); err != nil {
		return nil, fmt.Errorf("decode response_kpis: %w", err)
	}
	actions := NewCorrectiveActions()
	if err := decodeJSON(m.ResponseCorrectiveActions, actions); err != nil {
		return nil, fmt.Errorf("decode response_corrective_actions: %w", err)
	}
	r.CorrectiveActions = actions
	return r, nil
}

// FromDomain menulis ulang semua kolom dari domain (versi TIDAK disentuh).
func (m *ResponseModel) FromDomain(r *Response) error {
	details, err := json.Marshal(nonNilDetails(r.Details))
	if err != nil {
		return fmt.Errorf("encode response_details: %w", err)
	}
	sections, err := json.Marshal(nonNilSections(r.SectionScores))
	if err != nil {
		return fmt.Errorf("encode response_section_scores: %w", err)
	}
	kpis, err := json.Marshal(r.KPIs)
	if err != nil {
		return fmt.Errorf("encode response_kpis: %w", err)
	}
	actions, err := json.Marshal(r.Actions())
	if err != nil {
		return fmt.Errorf("encode response_corrective_actions: %w", err)
	}

	m.ResponseID = r.ID
	m.ResponseOrgID = r.OrgID
	m.ResponseFormID = r.FormID
	m.ResponseFormName = r.FormName
	m.ResponseSubmittedBy = r.SubmittedBy
	m.ResponseSubmittedAt = r.SubmittedAt
	m.ResponseLinkedRecordID = r.LinkedRecordID
	m.ResponseStatus = r.Status
	m.ResponseDetails = datatypes.JSON(details)
	m.ResponseSectionScores = datatypes.JSON(sections)
	m.ResponseKPIs = datatypes.JSON(kpis)
	m.ResponseCorrectiveActions = datatypes.JSON(actions)
	m.ResponseCompliance = r.KPIs.CompliancePercentage
	m.ResponseFinalScore = r.KPIs.FinalScore
	m.ResponseReviewedBy = r.ReviewedBy
	m.ResponseReviewedAt = r.ReviewedAt
	m.ResponseReviewComment = r.ReviewComment
	return nil
}

func decodeJSON(raw datatypes.JSON, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nonNilDetails(in []ResponseDetail) []ResponseDetail {
	if in == nil {
		return []ResponseDetail{}
	}
	return in
}

func nonNilSections(in []SectionScore) []SectionScore {
	if in == nil {
		return []SectionScore{}
	}
	return in
}
