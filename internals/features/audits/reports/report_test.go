package reports

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/helpers/answer"
)

var now = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func sampleForm() fmodel.FormDefinition {
	return fmodel.FormDefinition{
		Name:             "Branch audit",
		Type:             fmodel.FormTypeAudit,
		PassThreshold:    80,
		PartialThreshold: 50,
		Sections: []fmodel.Section{{
			ID: "front", Title: "Front office", Weightage: 100,
			Subsections: []fmodel.Subsection{{ID: "s1", Questions: []fmodel.Question{
				{ID: "q1", Text: "Counter clean?", Type: fmodel.QuestionTypeYesNo},
				{ID: "q2", Text: "Signage ok?", Type: fmodel.QuestionTypeYesNo},
				{ID: "q3", Text: "Notes", Type: fmodel.QuestionTypeText},
			}}},
		}},
	}
}

func sampleResponse() *rmodel.Response {
	return &rmodel.Response{
		ID:       uuid.New(),
		FormID:   uuid.New(),
		FormName: "Branch audit",
		Status:   rmodel.StatusNeedsAuditorReview,
		Details: []rmodel.ResponseDetail{
			{QuestionID: "q1", Answer: answer.NewString("Yes"), Score: 100, PassFail: rmodel.PassFailPass},
			{QuestionID: "q2", Answer: answer.NewString("No"), PassFail: rmodel.PassFailFail},
			{QuestionID: "q3", Answer: answer.NewString("fine"), PassFail: rmodel.PassFailNA},
		},
		SectionScores: []rmodel.SectionScore{{SectionID: "front", SectionTitle: "Front office", Weightage: 100, Passed: 1, Failed: 1, Total: 3, Percentage: 33.3, Score: 33.3}},
		KPIs:          rmodel.KPIs{TotalQuestions: 3, TotalPassed: 1, TotalFailed: 1, CompliancePercentage: 33.3, FinalScore: 33.3},
	}
}

func TestPassRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 50, PassRate(rmodel.KPIs{TotalQuestions: 3, TotalPassed: 1, TotalFailed: 1}), 1e-9)
	assert.InDelta(t, 66.7, PassRate(rmodel.KPIs{TotalPassed: 2, TotalFailed: 1}), 1e-9)
	assert.Zero(t, PassRate(rmodel.KPIs{TotalQuestions: 4}))
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	f := sampleForm()
	assert.Equal(t, VerdictPass, Verdict(f, 80))
	assert.Equal(t, VerdictPartial, Verdict(f, 50))
	assert.Equal(t, VerdictFail, Verdict(f, 49.9))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	rep := Build(sampleForm(), sampleResponse(), now)

	assert.InDelta(t, 33.3, rep.CompliancePercentage, 1e-9)
	assert.InDelta(t, 50, rep.PassRate, 1e-9)
	assert.Equal(t, 1, rep.TotalFailed)
	assert.Equal(t, VerdictFail, rep.Verdict)
	require.Contains(t, rep.SectionScores, "front")
	assert.Equal(t, "Front office", rep.SectionScores["front"].SectionTitle)
	require.Len(t, rep.FailedQuestions, 1)
	assert.Equal(t, "Signage ok?", rep.FailedQuestions[0].Text)
	assert.Equal(t, "front", rep.FailedQuestions[0].SectionID)
	assert.Empty(t, rep.CorrectiveActions)
}

func TestBuildStableFieldNames(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Build(sampleForm(), sampleResponse(), now))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, key := range []string{"compliancePercentage", "finalScore", "passRate", "totalFailed", "sectionScores"} {
		assert.Contains(t, m, key)
	}
	sections, ok := m["sectionScores"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, sections, "front")
}

type renderFunc func(ctx context.Context, r Report) (string, error)

func (f renderFunc) Render(ctx context.Context, r Report) (string, error) { return f(ctx, r) }

func TestRenderIsolation(t *testing.T) {
	t.Parallel()

	rep := Build(sampleForm(), sampleResponse(), now)

	ok := Render(context.Background(), renderFunc(func(context.Context, Report) (string, error) {
		return "reports/branch.pdf", nil
	}), rep)
	assert.Equal(t, "reports/branch.pdf", ok.Location)
	assert.Empty(t, ok.Error)

	failed := Render(context.Background(), renderFunc(func(context.Context, Report) (string, error) {
		return "", errors.New("renderer offline")
	}), rep)
	assert.Equal(t, "renderer offline", failed.Error)

	panicked := Render(context.Background(), renderFunc(func(context.Context, Report) (string, error) {
		panic("boom")
	}), rep)
	assert.Contains(t, panicked.Error, "boom")

	assert.Equal(t, RenderResult{}, Render(context.Background(), nil, rep))
}
