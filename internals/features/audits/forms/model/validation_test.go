package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditku_backend/internals/features/records/dependencies"
	"auditku_backend/internals/helpers/answer"
)

func inspectionForm() FormDefinition {
	yes := answer.NewString("Yes")
	four := answer.NewNumber(4)
	clean := answer.NewString("Clean")
	return FormDefinition{
		Name: "Store inspection",
		Type: FormTypeAudit,
		Sections: []Section{{
			ID: "front", Weightage: 60,
			Subsections: []Subsection{{
				ID: "front-a", Weightage: 100,
				Questions: []Question{
					{ID: "door", Type: QuestionTypeYesNo, Mandatory: true, Scoring: &ScoringRule{PassValue: &yes, Weightage: 50}},
					{ID: "door_note", Type: QuestionTypeText, Mandatory: true,
						ShowIf: &dependencies.Condition{FieldKey: "door", Operator: dependencies.OpEquals, Value: answer.NewString("No")}},
					{ID: "floor", Type: QuestionTypeDropdown, Options: []string{"Clean", "Dirty"}, Scoring: &ScoringRule{PassValue: &clean, Weightage: 50}},
				},
			}},
		}, {
			ID: "back", Weightage: 40,
			Subsections: []Subsection{{
				ID: "back-a", Weightage: 100,
				Questions: []Question{
					{ID: "stock", Type: QuestionTypeRating, Scoring: &ScoringRule{PassValue: &four, Weightage: 100}},
				},
			}},
		}},
	}
}

func TestFormDefinitionValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, inspectionForm().Validate())

	bad := inspectionForm()
	dirty := answer.NewString("Sparkling")
	bad.Sections[0].Subsections[0].Questions[2].Scoring.PassValue = &dirty
	bad.Sections[1].Weightage = 120
	bad.Sections[1].Subsections[0].Questions[0].Type = "Slider"

	err := bad.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Has("form_sections[0].subsections[0].questions[2].scoring.pass_value"))
	assert.True(t, ve.Has("form_sections[1].weightage"))
	assert.True(t, ve.Has("form_sections[1].subsections[0].questions[0].type"))
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateSubmission(t *testing.T) {
	t.Parallel()
	form := inspectionForm()

	t.Run("hidden mandatory question is not required", func(t *testing.T) {
		err := ValidateSubmission(form, []SubmittedAnswer{
			{QuestionID: "door", Answer: answer.NewString("Yes")},
		})
		assert.NoError(t, err)
	})

	t.Run("visible mandatory question must be answered", func(t *testing.T) {
		err := ValidateSubmission(form, []SubmittedAnswer{
			{QuestionID: "door", Answer: answer.NewString("No")},
			{QuestionID: "door_note", Answer: answer.NewString("   ")},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("door_note"))
	})

	t.Run("attachment counts as an answer", func(t *testing.T) {
		err := ValidateSubmission(form, []SubmittedAnswer{
			{QuestionID: "door", Answer: answer.NewString("No")},
			{QuestionID: "door_note", Answer: answer.Null(), Attachments: []string{"proof/1.jpg"}},
		})
		assert.NoError(t, err)
	})

	t.Run("unknown duplicate and out-of-options answers", func(t *testing.T) {
		err := ValidateSubmission(form, []SubmittedAnswer{
			{QuestionID: "door", Answer: answer.NewString("Yes")},
			{QuestionID: "door", Answer: answer.NewString("No")},
			{QuestionID: "ghost", Answer: answer.NewString("x")},
			{QuestionID: "floor", Answer: answer.NewString("Muddy")},
			{QuestionID: " ", Answer: answer.NewString("x")},
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("answers[1].question_id"))
		assert.True(t, ve.Has("answers[2].question_id"))
		assert.True(t, ve.Has("floor"))
		assert.True(t, ve.Has("answers[4].question_id"))
	})

	t.Run("missing mandatory answer", func(t *testing.T) {
		err := ValidateSubmission(form, nil)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.True(t, ve.Has("door"))
		assert.False(t, ve.Has("door_note"))
	})
}

func TestFormModelDefinitionRoundTrip(t *testing.T) {
	t.Parallel()

	var m FormModel
	require.NoError(t, m.ApplyDefinition(inspectionForm()))
	def, err := m.Definition()
	require.NoError(t, err)
	assert.Len(t, def.Questions(), 4)
	assert.Equal(t, "Store inspection", def.Name)

	idx := def.QuestionIndex()
	require.Contains(t, idx, "stock")
	n, ok := idx["stock"].Scoring.PassValue.Number()
	assert.True(t, ok)
	assert.Equal(t, 4.0, n)
}
