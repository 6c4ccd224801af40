package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	fmodel "auditku_backend/internals/features/audits/forms/model"
)

/* =========================================================
   PATCH FIELD: tri-state (absent | null | value)
   ========================================================= */

type PatchField[T any] struct {
	Present bool
	Value   *T
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Present = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

func (p PatchField[T]) Get() (*T, bool) { return p.Value, p.Present }

/* =========================================================
   CREATE
   ========================================================= */

type CreateFormRequest struct {
	Name             string           `json:"form_name" validate:"required,max=160"`
	Type             fmodel.FormType  `json:"form_type" validate:"required,oneof=Audit Feedback Survey"`
	Description      *string          `json:"form_description"`
	Sections         []fmodel.Section `json:"form_sections"`
	PassThreshold    float64          `json:"form_pass_threshold" validate:"min=0,max=100"`
	PartialThreshold float64          `json:"form_partial_threshold" validate:"min=0,max=100"`
	ApprovalRequired bool             `json:"form_approval_required"`
	ReviewerID       *uuid.UUID       `json:"form_reviewer_id"`
	IsActive         *bool            `json:"form_is_active"`
}

func (r *CreateFormRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		if d == "" {
			r.Description = nil
		} else {
			r.Description = &d
		}
	}
}

func (r CreateFormRequest) ToDefinition() fmodel.FormDefinition {
	sections := r.Sections
	if sections == nil {
		sections = []fmodel.Section{}
	}
	return fmodel.FormDefinition{
		Name:             r.Name,
		Type:             r.Type,
		Sections:         sections,
		PassThreshold:    r.PassThreshold,
		PartialThreshold: r.PartialThreshold,
		ApprovalRequired: r.ApprovalRequired,
		ReviewerID:       r.ReviewerID,
	}
}

/* =========================================================
   PATCH (PUT /forms/:id, partial)
   ========================================================= */

type PatchFormRequest struct {
	Name             PatchField[string]           `json:"form_name"`
	Type             PatchField[fmodel.FormType]  `json:"form_type"`
	Description      PatchField[string]           `json:"form_description"`
	Sections         PatchField[[]fmodel.Section] `json:"form_sections"`
	PassThreshold    PatchField[float64]          `json:"form_pass_threshold"`
	PartialThreshold PatchField[float64]          `json:"form_partial_threshold"`
	ApprovalRequired PatchField[bool]             `json:"form_approval_required"`
	ReviewerID       PatchField[uuid.UUID]        `json:"form_reviewer_id"`
	IsActive         PatchField[bool]             `json:"form_is_active"`
}

// Apply menimpa definisi lama dengan field yang dikirim.
// Field wajib (name/type/sections/threshold) yang dikirim null diabaikan.
func (p PatchFormRequest) Apply(def fmodel.FormDefinition, desc *string, active bool) (fmodel.FormDefinition, *string, bool) {
	if v, ok := p.Name.Get(); ok && v != nil {
		def.Name = strings.TrimSpace(*v)
	}
	if v, ok := p.Type.Get(); ok && v != nil {
		def.Type = *v
	}
	if v, ok := p.Sections.Get(); ok && v != nil {
		def.Sections = *v
	}
	if v, ok := p.PassThreshold.Get(); ok && v != nil {
		def.PassThreshold = *v
	}
	if v, ok := p.PartialThreshold.Get(); ok && v != nil {
		def.PartialThreshold = *v
	}
	if v, ok := p.ApprovalRequired.Get(); ok && v != nil {
		def.ApprovalRequired = *v
	}
	if v, ok := p.ReviewerID.Get(); ok {
		def.ReviewerID = v
	}
	if v, ok := p.Description.Get(); ok {
		desc = nil
		if v != nil && strings.TrimSpace(*v) != "" {
			d := strings.TrimSpace(*v)
			desc = &d
		}
	}
	if v, ok := p.IsActive.Get(); ok && v != nil {
		active = *v
	}
	return def, desc, active
}

/* =========================================================
   QUERY & RESPONSE
   ========================================================= */

type ListFormsQuery struct {
	Type   string `query:"type"`
	Q      string `query:"q"`
	Active *bool  `query:"active"`
}

type FormResponse struct {
	FormID               uuid.UUID        `json:"form_id"`
	FormName             string           `json:"form_name"`
	FormSlug             string           `json:"form_slug"`
	FormType             fmodel.FormType  `json:"form_type"`
	FormDescription      *string          `json:"form_description,omitempty"`
	FormSections         []fmodel.Section `json:"form_sections,omitempty"`
	FormQuestionCount    int              `json:"form_question_count"`
	FormPassThreshold    float64          `json:"form_pass_threshold"`
	FormPartialThreshold float64          `json:"form_partial_threshold"`
	FormApprovalRequired bool             `json:"form_approval_required"`
	FormReviewerID       *uuid.UUID       `json:"form_reviewer_id,omitempty"`
	FormIsActive         bool             `json:"form_is_active"`
	FormCreatedAt        time.Time        `json:"form_created_at"`
	FormUpdatedAt        time.Time        `json:"form_updated_at"`
}

// FromModel: withSections=false untuk list (payload ringan).
func FromModel(m *fmodel.FormModel, withSections bool) (FormResponse, error) {
	def, err := m.Definition()
	if err != nil {
		return FormResponse{}, err
	}
	out := FormResponse{
		FormID:               m.FormID,
		FormName:             m.FormName,
		FormSlug:             m.FormSlug,
		FormType:             m.FormType,
		FormDescription:      m.FormDescription,
		FormQuestionCount:    len(def.Questions()),
		FormPassThreshold:    m.FormPassThreshold,
		FormPartialThreshold: m.FormPartialThreshold,
		FormApprovalRequired: m.FormApprovalRequired,
		FormReviewerID:       m.FormReviewerID,
		FormIsActive:         m.FormIsActive,
		FormCreatedAt:        m.FormCreatedAt,
		FormUpdatedAt:        m.FormUpdatedAt,
	}
	if withSections {
		out.FormSections = def.Sections
	}
	return out, nil
}

func FromModels(rows []fmodel.FormModel) ([]FormResponse, error) {
	out := make([]FormResponse, 0, len(rows))
	for i := range rows {
		r, err := FromModel(&rows[i], false)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// VisibilityRequest: jawaban sementara untuk menghitung show_if.
type VisibilityRequest struct {
	Answers []fmodel.SubmittedAnswer `json:"answers"`
}
