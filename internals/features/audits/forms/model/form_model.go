// file: internals/features/audits/forms/model/form_model.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FormModel struct {
	FormID    uuid.UUID `gorm:"type:uuid;primaryKey;column:form_id" json:"form_id"`
	FormOrgID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_audit_forms_org_slug,priority:1;column:form_org_id" json:"form_org_id"`

	FormName        string   `gorm:"type:varchar(160);not null;column:form_name" json:"form_name"`
	FormSlug        string   `gorm:"type:varchar(160);not null;uniqueIndex:uq_audit_forms_org_slug,priority:2;column:form_slug" json:"form_slug"`
	FormType        FormType `gorm:"type:varchar(24);not null;column:form_type" json:"form_type"`
	FormDescription *string  `gorm:"type:text;column:form_description" json:"form_description,omitempty"`

	// sections → subsections → questions (jsonb)
	FormSections datatypes.JSON `gorm:"type:jsonb;not null;column:form_sections" json:"form_sections"`

	FormPassThreshold    float64    `gorm:"type:numeric(5,2);not null;default:0;column:form_pass_threshold" json:"form_pass_threshold"`
	FormPartialThreshold float64    `gorm:"type:numeric(5,2);not null;default:0;column:form_partial_threshold" json:"form_partial_threshold"`
	FormApprovalRequired bool       `gorm:"not null;default:false;column:form_approval_required" json:"form_approval_required"`
	FormReviewerID       *uuid.UUID `gorm:"type:uuid;column:form_reviewer_id" json:"form_reviewer_id,omitempty"`
	FormIsActive         bool       `gorm:"not null;default:true;column:form_is_active" json:"form_is_active"`
	FormCreatedBy        *uuid.UUID `gorm:"type:uuid;column:form_created_by" json:"form_created_by,omitempty"`

	FormCreatedAt time.Time      `gorm:"column:form_created_at;autoCreateTime" json:"form_created_at"`
	FormUpdatedAt time.Time      `gorm:"column:form_updated_at;autoUpdateTime" json:"form_updated_at"`
	FormDeletedAt gorm.DeletedAt `gorm:"column:form_deleted_at;index" json:"form_deleted_at,omitempty"`
}

func (FormModel) TableName() string { return "audit_forms" }

func (m *FormModel) BeforeCreate(tx *gorm.DB) error {
	if m.FormID == uuid.Nil {
		m.FormID = uuid.New()
	}
	return nil
}

// Sections decode kolom jsonb.
func (m *FormModel) Sections() ([]Section, error) {
	if len(m.FormSections) == 0 {
		return []Section{}, nil
	}
	var out []Section
	if err := json.Unmarshal(m.FormSections, &out); err != nil {
		return nil, fmt.Errorf("decode form_sections: %w", err)
	}
	return out, nil
}

func (m *FormModel) SetSections(sections []Section) error {
	if sections == nil {
		sections = []Section{}
	}
	b, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("encode form_sections: %w", err)
	}
	m.FormSections = datatypes.JSON(b)
	return nil
}

// Definition → struct murni untuk scoring/lifecycle.
func (m *FormModel) Definition() (FormDefinition, error) {
	sections, err := m.Sections()
	if err != nil {
		return FormDefinition{}, err
	}
	return FormDefinition{
		ID:               m.FormID,
		OrgID:            m.FormOrgID,
		Name:             m.FormName,
		Slug:             m.FormSlug,
		Type:             m.FormType,
		Sections:         sections,
		PassThreshold:    m.FormPassThreshold,
		PartialThreshold: m.FormPartialThreshold,
		ApprovalRequired: m.FormApprovalRequired,
		ReviewerID:       m.FormReviewerID,
	}, nil
}

// ApplyDefinition menyalin field definisi ke model (tanpa id/org/slug).
func (m *FormModel) ApplyDefinition(d FormDefinition) error {
	if err := m.SetSections(d.Sections); err != nil {
		return err
	}
	m.FormName = d.Name
	m.FormType = d.Type
	m.FormPassThreshold = d.PassThreshold
	m.FormPartialThreshold = d.PartialThreshold
	m.FormApprovalRequired = d.ApprovalRequired
	m.FormReviewerID = d.ReviewerID
	return nil
}
