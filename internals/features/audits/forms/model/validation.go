// file: internals/features/audits/forms/model/validation.go
package model

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"auditku_backend/internals/features/records/dependencies"
	"auditku_backend/internals/helpers/answer"
)

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	// pakai nama json di pesan error (form_sections[0].subsections[1]...)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError mengumpulkan pesan per field. Bentuknya sama dengan
// payload helper.JsonValidationError.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// Err = nil kalau tidak ada pesan.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate memeriksa struktur form sebelum disimpan.
func (d FormDefinition) Validate() error {
	ve := NewValidationError()

	if err := structValidator.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			ve.Add(trimRootNamespace(fe.Namespace()), describeTag(fe))
		}
	}

	sectionIDs := map[string]bool{}
	subsectionIDs := map[string]bool{}
	questionIDs := map[string]bool{}

	for si, s := range d.Sections {
		if s.ID != "" {
			if sectionIDs[s.ID] {
				ve.Add(fmt.Sprintf("form_sections[%d].id", si), "duplikat section id "+s.ID)
			}
			sectionIDs[s.ID] = true
		}
		for ssi, ss := range s.Subsections {
			if ss.ID != "" {
				if subsectionIDs[ss.ID] {
					ve.Add(fmt.Sprintf("form_sections[%d].subsections[%d].id", si, ssi), "duplikat subsection id "+ss.ID)
				}
				subsectionIDs[ss.ID] = true
			}
			for qi, q := range ss.Questions {
				path := fmt.Sprintf("form_sections[%d].subsections[%d].questions[%d]", si, ssi, qi)
				if q.ID != "" {
					if questionIDs[q.ID] {
						ve.Add(path+".id", "duplikat question id "+q.ID)
					}
					questionIDs[q.ID] = true
				}
				validateScoringRule(ve, path, q)
			}
		}
	}

	return ve.Err()
}

func validateScoringRule(ve *ValidationError, path string, q Question) {
	if q.Scoring == nil || q.Scoring.PassValue == nil {
		return
	}
	pass := *q.Scoring.PassValue
	switch q.Type {
	case QuestionTypeRating:
		if _, ok := pass.Number(); !ok {
			ve.Add(path+".scoring.pass_value", "pass_value rating harus angka")
		}
	case QuestionTypeDropdown:
		if len(q.Options) > 0 && !containsOption(q.Options, pass.String()) {
			ve.Add(path+".scoring.pass_value", "pass_value tidak ada di options")
		}
	}
}

func trimRootNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "wajib diisi"
	case "min":
		return "minimal " + fe.Param()
	case "max":
		return "maksimal " + fe.Param()
	case "oneof":
		return "harus salah satu dari: " + fe.Param()
	default:
		return "tidak valid (" + fe.Tag() + ")"
	}
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if strings.TrimSpace(o) == v {
			return true
		}
	}
	return false
}

/* =========================================================
   Submission validation
========================================================= */

// SubmittedAnswer = satu jawaban yang dikirim user.
type SubmittedAnswer struct {
	QuestionID  string       `json:"question_id"`
	Answer      answer.Value `json:"answer"`
	Attachments []string     `json:"attachments,omitempty"`
}

// AnswerValues mengubah jawaban jadi dependencies.Values (key = question id).
func AnswerValues(answers []SubmittedAnswer) dependencies.Values {
	values := make(dependencies.Values, len(answers))
	for _, a := range answers {
		values[strings.TrimSpace(a.QuestionID)] = a.Answer
	}
	return values
}

// ValidateSubmission dijalankan SEBELUM scoring; error di sini memblokir persist.
//   - question_id kosong / tidak dikenal / ganda
//   - jawaban dropdown di luar options
//   - pertanyaan mandatory yang tampil (show_if) tapi belum dijawab
func ValidateSubmission(def FormDefinition, answers []SubmittedAnswer) error {
	ve := NewValidationError()
	index := def.QuestionIndex()
	answered := map[string]bool{}

	for i, a := range answers {
		qid := strings.TrimSpace(a.QuestionID)
		key := fmt.Sprintf("answers[%d].question_id", i)
		if qid == "" {
			ve.Add(key, "wajib diisi")
			continue
		}
		q, ok := index[qid]
		if !ok {
			ve.Add(key, "question_id tidak dikenal: "+qid)
			continue
		}
		if _, dup := answered[qid]; dup {
			ve.Add(key, "jawaban ganda untuk "+qid)
			continue
		}
		hasAnswer := !a.Answer.IsBlank() || len(a.Attachments) > 0
		answered[qid] = hasAnswer

		if q.Type == QuestionTypeDropdown && len(q.Options) > 0 && !a.Answer.IsBlank() {
			if !containsOption(q.Options, a.Answer.String()) {
				ve.Add(qid, "jawaban di luar options")
			}
		}
	}

	visible := def.VisibleQuestions(AnswerValues(answers))
	for _, q := range def.Questions() {
		if !q.Mandatory || !visible[q.ID] {
			continue
		}
		if !answered[q.ID] {
			ve.Add(q.ID, "pertanyaan wajib belum dijawab")
		}
	}

	return ve.Err()
}
