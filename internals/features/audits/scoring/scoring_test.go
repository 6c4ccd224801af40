package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/helpers/answer"
)

func valuePtr(v answer.Value) *answer.Value { return &v }

func rule(pass answer.Value, weight float64) *fmodel.ScoringRule {
	return &fmodel.ScoringRule{PassValue: valuePtr(pass), Weightage: weight}
}

func question(id string, typ fmodel.QuestionType, r *fmodel.ScoringRule) fmodel.Question {
	return fmodel.Question{ID: id, Type: typ, Scoring: r}
}

func formOf(formType fmodel.FormType, sections ...fmodel.Section) fmodel.FormDefinition {
	return fmodel.FormDefinition{Name: "Store audit", Type: formType, Sections: sections}
}

func section(id string, weight float64, qs ...fmodel.Question) fmodel.Section {
	return fmodel.Section{ID: id, Weightage: weight, Subsections: []fmodel.Subsection{{ID: id + "-sub", Questions: qs}}}
}

func TestScoreQuestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		q         fmodel.Question
		ans       answer.Value
		wantScore float64
		wantPF    rmodel.PassFail
	}{
		{"no rule", question("q", fmodel.QuestionTypeYesNo, nil), answer.NewString("Yes"), 0, rmodel.PassFailNA},
		{"no pass value", question("q", fmodel.QuestionTypeYesNo, &fmodel.ScoringRule{Weightage: 50}), answer.NewString("Yes"), 0, rmodel.PassFailNA},

		{"yesno pass weighted", question("q", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 40)), answer.NewString("Yes"), 40, rmodel.PassFailPass},
		{"yesno pass unweighted", question("q", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 0)), answer.NewBool(true), 100, rmodel.PassFailPass},
		{"yesno fail literal", question("q", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 40)), answer.NewString("No"), 0, rmodel.PassFailFail},
		{"yesno fail boolean", question("q", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 40)), answer.NewBool(false), 0, rmodel.PassFailFail},
		{"yesno inverted pass value", question("q", fmodel.QuestionTypeYesNo, rule(answer.NewString("No"), 10)), answer.NewString("No"), 10, rmodel.PassFailPass},
		{"yesno other answer stays NA", question("q", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 40)), answer.NewString("Maybe"), 0, rmodel.PassFailNA},
		{"yesno explicit fail value", question("q", fmodel.QuestionTypeYesNo, &fmodel.ScoringRule{PassValue: valuePtr(answer.NewString("Ya")), FailValue: valuePtr(answer.NewString("Tidak"))}), answer.NewString("Tidak"), 0, rmodel.PassFailFail},

		{"rating at threshold passes", question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(4), 20)), answer.NewNumber(4), 20, rmodel.PassFailPass},
		{"rating string answer", question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(4), 20)), answer.NewString("5"), 20, rmodel.PassFailPass},
		{"rating pass unweighted", question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(3), 0)), answer.NewNumber(4), 80, rmodel.PassFailPass},
		{"rating partial credit", question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(4), 20)), answer.NewNumber(2), 10, rmodel.PassFailFail},
		{"rating fail unweighted", question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(4), 0)), answer.NewNumber(2), 40, rmodel.PassFailFail},
		{"rating unparsable", question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(4), 20)), answer.NewString("great"), 0, rmodel.PassFailNA},

		{"dropdown exact", question("q", fmodel.QuestionTypeDropdown, rule(answer.NewString("Clean"), 0)), answer.NewString("Clean"), 100, rmodel.PassFailPass},
		{"dropdown other", question("q", fmodel.QuestionTypeDropdown, rule(answer.NewString("Clean"), 30)), answer.NewString("Dirty"), 0, rmodel.PassFailFail},

		{"text loose equal", question("q", fmodel.QuestionTypeText, rule(answer.NewNumber(5), 25)), answer.NewString("5"), 25, rmodel.PassFailPass},
		{"text mismatch", question("q", fmodel.QuestionTypeText, rule(answer.NewString("ok"), 25)), answer.NewString("nope"), 0, rmodel.PassFailFail},
		{"signature", question("q", fmodel.QuestionTypeSignature, rule(answer.NewString("signed"), 0)), answer.NewString("signed"), 100, rmodel.PassFailPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, pf := ScoreQuestion(tt.q, tt.ans)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantPF, pf)
		})
	}
}

func TestRatingAtThresholdAlwaysPasses(t *testing.T) {
	t.Parallel()

	for _, th := range []float64{0, 1, 2.5, 3, 4.5, 5} {
		for _, w := range []float64{0, 10, 100} {
			q := question("q", fmodel.QuestionTypeRating, rule(answer.NewNumber(th), w))
			_, pf := ScoreQuestion(q, answer.NewNumber(th))
			assert.Equal(t, rmodel.PassFailPass, pf, "threshold=%v weight=%v", th, w)
		}
	}
}

func TestTwoSectionWeightedScenario(t *testing.T) {
	t.Parallel()

	def := formOf(fmodel.FormTypeAudit,
		section("A", 60, question("qa", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 100))),
		section("B", 40, question("qb", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 100))),
	)
	res := Score(def, []fmodel.SubmittedAnswer{
		{QuestionID: "qa", Answer: answer.NewString("Yes")},
		{QuestionID: "qb", Answer: answer.NewString("No")},
	})

	require.Len(t, res.ScoredDetails, 2)
	assert.Equal(t, rmodel.PassFailPass, res.ScoredDetails[0].PassFail)
	assert.InDelta(t, 100, res.ScoredDetails[0].Score, 1e-9)
	assert.Equal(t, rmodel.PassFailFail, res.ScoredDetails[1].PassFail)

	require.Len(t, res.SectionScores, 2)
	assert.InDelta(t, 60, res.SectionScores[0].Score, 1e-9)
	assert.InDelta(t, 0, res.SectionScores[1].Score, 1e-9)
	assert.InDelta(t, 100, res.SectionScores[0].Percentage, 1e-9)

	assert.InDelta(t, 50.0, res.KPIs.CompliancePercentage, 1e-9)
	assert.InDelta(t, 36.0, res.KPIs.FinalScore, 1e-9)
	assert.Equal(t, 2, res.KPIs.TotalQuestions)
	assert.Equal(t, 1, res.KPIs.TotalPassed)
	assert.Equal(t, 1, res.KPIs.TotalFailed)
}

func TestZeroScoreableQuestions(t *testing.T) {
	t.Parallel()

	def := formOf(fmodel.FormTypeAudit,
		section("A", 50, question("q1", fmodel.QuestionTypeText, nil), question("q2", fmodel.QuestionTypeText, nil)),
	)
	res := Score(def, []fmodel.SubmittedAnswer{
		{QuestionID: "q1", Answer: answer.NewString("x")},
		{QuestionID: "q2", Answer: answer.NewString("y")},
	})

	assert.Equal(t, 2, res.KPIs.TotalQuestions)
	assert.InDelta(t, 0, res.KPIs.CompliancePercentage, 1e-9)
	assert.InDelta(t, 0, res.KPIs.FinalScore, 1e-9)
	for _, d := range res.ScoredDetails {
		assert.Equal(t, rmodel.PassFailNA, d.PassFail)
	}
}

func TestNADilutesCompliance(t *testing.T) {
	t.Parallel()

	def := formOf(fmodel.FormTypeAudit,
		section("A", 0,
			question("q1", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 0)),
			question("q2", fmodel.QuestionTypeText, nil),
			question("q3", fmodel.QuestionTypeText, nil),
		),
	)
	res := Score(def, []fmodel.SubmittedAnswer{
		{QuestionID: "q1", Answer: answer.NewString("Yes")},
		{QuestionID: "q2", Answer: answer.NewString("a")},
		{QuestionID: "q3", Answer: answer.NewString("b")},
	})

	assert.InDelta(t, 33.3, res.KPIs.CompliancePercentage, 1e-9)
	assert.Equal(t, 3, res.SectionScores[0].Total)
	assert.InDelta(t, 33.3, res.SectionScores[0].Percentage, 1e-9)
}

func TestFinalScoreFallsBackToComplianceWhenNoWeightage(t *testing.T) {
	t.Parallel()

	def := formOf(fmodel.FormTypeAudit,
		section("A", 0, question("q1", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 10))),
		section("B", 0, question("q2", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 10)), question("q3", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 10))),
	)
	res := Score(def, []fmodel.SubmittedAnswer{
		{QuestionID: "q1", Answer: answer.NewString("Yes")},
		{QuestionID: "q2", Answer: answer.NewString("No")},
		{QuestionID: "q3", Answer: answer.NewString("Yes")},
	})

	assert.InDelta(t, 66.7, res.KPIs.CompliancePercentage, 1e-9)
	assert.Equal(t, res.KPIs.CompliancePercentage, res.KPIs.FinalScore)
}

func TestComplianceMatchesPassedRatio(t *testing.T) {
	t.Parallel()

	qs := make([]fmodel.Question, 0, 7)
	answers := make([]fmodel.SubmittedAnswer, 0, 7)
	for i, a := range []string{"Yes", "No", "Yes", "Yes", "No", "Yes", "No"} {
		id := string(rune('a' + i))
		qs = append(qs, question(id, fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 0)))
		answers = append(answers, fmodel.SubmittedAnswer{QuestionID: id, Answer: answer.NewString(a)})
	}
	res := Score(formOf(fmodel.FormTypeAudit, section("S", 100, qs...)), answers)

	want := Round1(float64(res.KPIs.TotalPassed) / float64(res.KPIs.TotalQuestions) * 100)
	assert.Equal(t, want, res.KPIs.CompliancePercentage)
	assert.InDelta(t, 57.1, res.KPIs.CompliancePercentage, 1e-9)
}

func TestFeedbackSatisfaction(t *testing.T) {
	t.Parallel()

	def := formOf(fmodel.FormTypeFeedback,
		section("A", 100,
			question("r1", fmodel.QuestionTypeRating, rule(answer.NewNumber(3), 0)),
			question("r2", fmodel.QuestionTypeRating, nil),
			question("t1", fmodel.QuestionTypeText, nil),
		),
	)
	res := Score(def, []fmodel.SubmittedAnswer{
		{QuestionID: "r1", Answer: answer.NewNumber(4)},
		{QuestionID: "r2", Answer: answer.NewString("5")},
		{QuestionID: "t1", Answer: answer.NewString("7")},
	})

	assert.InDelta(t, 4.5, res.KPIs.AvgRating, 1e-9)
	assert.InDelta(t, 90, res.KPIs.SatisfactionPercentage, 1e-9)

	audit := def
	audit.Type = fmodel.FormTypeAudit
	res = Score(audit, []fmodel.SubmittedAnswer{{QuestionID: "r1", Answer: answer.NewNumber(4)}})
	assert.Equal(t, res.KPIs.CompliancePercentage, res.KPIs.SatisfactionPercentage)
}

func TestSectionWithoutAnswersReportsZero(t *testing.T) {
	t.Parallel()

	def := formOf(fmodel.FormTypeAudit,
		section("A", 50, question("q1", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 0))),
		section("B", 50, question("q2", fmodel.QuestionTypeYesNo, rule(answer.NewString("Yes"), 0))),
	)
	res := Score(def, []fmodel.SubmittedAnswer{{QuestionID: "q1", Answer: answer.NewString("Yes")}})

	require.Len(t, res.SectionScores, 2)
	assert.Equal(t, 0, res.SectionScores[1].Total)
	assert.InDelta(t, 0, res.SectionScores[1].Percentage, 1e-9)
	assert.InDelta(t, 50, res.SectionScores[0].Score, 1e-9)
	// (50*50/100) / 100 * 100
	assert.InDelta(t, 25, res.KPIs.FinalScore, 1e-9)
}
