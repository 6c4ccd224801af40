// Package reports menyusun data agregat siap-render untuk satu response.
// Nama field json stabil; dipakai renderer PDF/Excel eksternal.
package reports

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/features/audits/scoring"
)

type SectionReport struct {
	SectionTitle string  `json:"sectionTitle"`
	Weightage    float64 `json:"weightage"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	Total        int     `json:"total"`
	Percentage   float64 `json:"percentage"`
	Score        float64 `json:"score"`
}

type FailedQuestion struct {
	QuestionID string  `json:"questionId"`
	Text       string  `json:"text"`
	SectionID  string  `json:"sectionId,omitempty"`
	Answer     string  `json:"answer"`
	Score      float64 `json:"score"`
}

type Report struct {
	ResponseID             uuid.UUID                 `json:"responseId"`
	FormID                 uuid.UUID                 `json:"formId"`
	FormName               string                    `json:"formName"`
	FormType               fmodel.FormType           `json:"formType"`
	SubmittedBy            uuid.UUID                 `json:"submittedBy"`
	SubmittedAt            time.Time                 `json:"submittedAt"`
	Status                 rmodel.ResponseStatus     `json:"status"`
	CompliancePercentage   float64                   `json:"compliancePercentage"`
	FinalScore             float64                   `json:"finalScore"`
	PassRate               float64                   `json:"passRate"`
	TotalQuestions         int                       `json:"totalQuestions"`
	TotalPassed            int                       `json:"totalPassed"`
	TotalFailed            int                       `json:"totalFailed"`
	AvgRating              float64                   `json:"avgRating"`
	SatisfactionPercentage float64                   `json:"satisfactionPercentage"`
	Verdict                string                    `json:"verdict"`
	SectionScores          map[string]SectionReport  `json:"sectionScores"`
	FailedQuestions        []FailedQuestion          `json:"failedQuestions"`
	CorrectiveActions      []rmodel.CorrectiveAction `json:"correctiveActions"`
	GeneratedAt            time.Time                 `json:"generatedAt"`
}

const (
	VerdictPass    = "pass"
	VerdictPartial = "partial"
	VerdictFail    = "fail"
)

// PassRate = passed / (passed + failed) * 100; N/A tidak dihitung.
func PassRate(kpis rmodel.KPIs) float64 {
	scored := kpis.TotalPassed + kpis.TotalFailed
	if scored == 0 {
		return 0
	}
	return scoring.Round1(float64(kpis.TotalPassed) / float64(scored) * 100)
}

// Verdict membandingkan final score dengan threshold form.
func Verdict(form fmodel.FormDefinition, finalScore float64) string {
	switch {
	case finalScore >= form.PassThreshold:
		return VerdictPass
	case finalScore >= form.PartialThreshold:
		return VerdictPartial
	default:
		return VerdictFail
	}
}

// Build menyusun Report. Teks pertanyaan diambil dari form saat ini;
// pertanyaan yang sudah dihapus dari form tetap tampil dengan id saja.
func Build(form fmodel.FormDefinition, resp *rmodel.Response, now time.Time) Report {
	r := Report{
		ResponseID:             resp.ID,
		FormID:                 resp.FormID,
		FormName:               resp.FormName,
		FormType:               form.Type,
		SubmittedBy:            resp.SubmittedBy,
		SubmittedAt:            resp.SubmittedAt,
		Status:                 resp.Status,
		CompliancePercentage:   resp.KPIs.CompliancePercentage,
		FinalScore:             resp.KPIs.FinalScore,
		PassRate:               PassRate(resp.KPIs),
		TotalQuestions:         resp.KPIs.TotalQuestions,
		TotalPassed:            resp.KPIs.TotalPassed,
		TotalFailed:            resp.KPIs.TotalFailed,
		AvgRating:              resp.KPIs.AvgRating,
		SatisfactionPercentage: resp.KPIs.SatisfactionPercentage,
		Verdict:                Verdict(form, resp.KPIs.FinalScore),
		SectionScores:          make(map[string]SectionReport, len(resp.SectionScores)),
		FailedQuestions:        []FailedQuestion{},
		CorrectiveActions:      resp.Actions().List(),
		GeneratedAt:            now,
	}
	if r.FormName == "" {
		r.FormName = form.Name
	}

	for _, ss := range resp.SectionScores {
		r.SectionScores[ss.SectionID] = SectionReport{
			SectionTitle: ss.SectionTitle,
			Weightage:    ss.Weightage,
			Passed:       ss.Passed,
			Failed:       ss.Failed,
			Total:        ss.Total,
			Percentage:   ss.Percentage,
			Score:        ss.Score,
		}
	}

	sectionOf := map[string]string{}
	textOf := map[string]string{}
	for _, s := range form.Sections {
		for _, sub := range s.Subsections {
			for _, q := range sub.Questions {
				sectionOf[q.ID] = s.ID
				textOf[q.ID] = q.Text
			}
		}
	}
	for _, d := range resp.FailedDetails() {
		r.FailedQuestions = append(r.FailedQuestions, FailedQuestion{
			QuestionID: d.QuestionID,
			Text:       textOf[d.QuestionID],
			SectionID:  sectionOf[d.QuestionID],
			Answer:     d.Answer.String(),
			Score:      d.Score,
		})
	}
	return r
}

// Renderer = collaborator eksternal (PDF/Excel). Mengembalikan lokasi file.
type Renderer interface {
	Render(ctx context.Context, report Report) (string, error)
}

// RenderResult: kegagalan render tidak pernah membatalkan response.
type RenderResult struct {
	Location string `json:"location,omitempty"`
	Error    string `json:"render_error,omitempty"`
}

// Render memanggil renderer dengan isolasi error & panic.
func Render(ctx context.Context, renderer Renderer, report Report) (out RenderResult) {
	if renderer == nil {
		return RenderResult{}
	}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[Reports] renderer panic response_id=%s: %v", report.ResponseID, rec)
			out = RenderResult{Error: fmt.Sprintf("renderer panic: %v", rec)}
		}
	}()

	loc, err := renderer.Render(ctx, report)
	if err != nil {
		log.Printf("[Reports] render failed response_id=%s: %v", report.ResponseID, err)
		return RenderResult{Error: err.Error()}
	}
	return RenderResult{Location: loc}
}
