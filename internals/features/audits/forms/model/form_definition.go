// file: internals/features/audits/forms/model/form_definition.go
package model

import (
	"github.com/google/uuid"

	"auditku_backend/internals/features/records/dependencies"
	"auditku_backend/internals/helpers/answer"
)

type FormType string

const (
	FormTypeAudit    FormType = "Audit"
	FormTypeFeedback FormType = "Feedback"
	FormTypeSurvey   FormType = "Survey"
)

type QuestionType string

const (
	QuestionTypeText      QuestionType = "Text"
	QuestionTypeDropdown  QuestionType = "Dropdown"
	QuestionTypeRating    QuestionType = "Rating"
	QuestionTypeFile      QuestionType = "File"
	QuestionTypeSignature QuestionType = "Signature"
	QuestionTypeYesNo     QuestionType = "YesNo"
)

// ScoringRule: PassValue nil = pertanyaan tidak bisa dinilai (N/A).
type ScoringRule struct {
	PassValue *answer.Value `json:"pass_value,omitempty"`
	FailValue *answer.Value `json:"fail_value,omitempty"`
	Weightage float64       `json:"weightage" validate:"min=0,max=100"`
}

type Question struct {
	ID        string                  `json:"id" validate:"required"`
	Text      string                  `json:"text"`
	Type      QuestionType            `json:"type" validate:"required,oneof=Text Dropdown Rating File Signature YesNo"`
	Options   []string                `json:"options,omitempty"`
	Mandatory bool                    `json:"mandatory"`
	Scoring   *ScoringRule            `json:"scoring,omitempty"`
	ShowIf    *dependencies.Condition `json:"show_if,omitempty"`
}

type Subsection struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title"`
	Weightage float64    `json:"weightage" validate:"min=0,max=100"`
	Questions []Question `json:"questions" validate:"dive"`
}

type Section struct {
	ID          string       `json:"id" validate:"required"`
	Title       string       `json:"title"`
	Weightage   float64      `json:"weightage" validate:"min=0,max=100"`
	Subsections []Subsection `json:"subsections" validate:"dive"`
}

// FormDefinition = skema form yang dipakai engine (lepas dari gorm).
type FormDefinition struct {
	ID               uuid.UUID  `json:"form_id"`
	OrgID            uuid.UUID  `json:"form_org_id"`
	Name             string     `json:"form_name" validate:"required,max=160"`
	Slug             string     `json:"form_slug"`
	Type             FormType   `json:"form_type" validate:"required"`
	Sections         []Section  `json:"form_sections" validate:"dive"`
	PassThreshold    float64    `json:"form_pass_threshold" validate:"min=0,max=100"`
	PartialThreshold float64    `json:"form_partial_threshold" validate:"min=0,max=100"`
	ApprovalRequired bool       `json:"form_approval_required"`
	ReviewerID       *uuid.UUID `json:"form_reviewer_id,omitempty"`
}

// Questions mengembalikan semua pertanyaan sesuai urutan section → subsection.
func (d FormDefinition) Questions() []Question {
	out := make([]Question, 0)
	for _, s := range d.Sections {
		for _, ss := range s.Subsections {
			out = append(out, ss.Questions...)
		}
	}
	return out
}

// QuestionIndex: question id → question.
func (d FormDefinition) QuestionIndex() map[string]Question {
	idx := make(map[string]Question)
	for _, q := range d.Questions() {
		idx[q.ID] = q
	}
	return idx
}

// VisibleQuestions menilai show_if tiap pertanyaan terhadap jawaban saat ini.
func (d FormDefinition) VisibleQuestions(values dependencies.Values) map[string]bool {
	out := make(map[string]bool)
	for _, q := range d.Questions() {
		if q.ShowIf == nil {
			out[q.ID] = true
			continue
		}
		out[q.ID] = dependencies.Evaluate(*q.ShowIf, values)
	}
	return out
}
