// Package scoring menilai satu set jawaban terhadap FormDefinition:
// skor per pertanyaan, skor per section, dan KPI form.
//
// Semua fungsi murni, tanpa I/O.
package scoring

import (
	"math"
	"strings"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/helpers/answer"
)

// Result = output Score.
type Result struct {
	ScoredDetails []rmodel.ResponseDetail `json:"scoredDetails"`
	SectionScores []rmodel.SectionScore   `json:"sectionScores"`
	KPIs          rmodel.KPIs             `json:"kpis"`
}

var (
	answerYes = answer.NewString("Yes")
	answerNo  = answer.NewString("No")
)

// ScoreQuestion menilai satu jawaban. Tanpa scoring rule / pass value → (0, N/A).
func ScoreQuestion(q fmodel.Question, ans answer.Value) (float64, rmodel.PassFail) {
	score := 0.0
	passFail := rmodel.PassFailNA

	if q.Scoring == nil || q.Scoring.PassValue == nil {
		return score, passFail
	}
	rule := q.Scoring
	pass := *rule.PassValue
	weight := rule.Weightage

	full := 100.0
	if weight > 0 {
		full = weight
	}

	switch q.Type {
	case fmodel.QuestionTypeYesNo:
		switch {
		case ans.Same(pass) || ans.Same(answerYes) || ans.Same(answer.NewBool(true)):
			return full, rmodel.PassFailPass
		case (rule.FailValue != nil && ans.Same(*rule.FailValue)) || ans.Same(answerNo) || ans.Same(answer.NewBool(false)):
			return 0, rmodel.PassFailFail
		}

	case fmodel.QuestionTypeRating:
		rating, ok := ans.Number()
		if !ok {
			return score, passFail
		}
		threshold, ok := pass.Number()
		if !ok {
			return score, passFail
		}
		if rating >= threshold {
			if weight > 0 {
				return weight, rmodel.PassFailPass
			}
			return (rating / 5) * 100, rmodel.PassFailPass
		}
		if weight > 0 {
			// kredit parsial sebanding jarak ke threshold
			if threshold <= 0 {
				return 0, rmodel.PassFailFail
			}
			return (rating / threshold) * weight, rmodel.PassFailFail
		}
		return (rating / 5) * 100, rmodel.PassFailFail

	case fmodel.QuestionTypeDropdown:
		if ans.Same(pass) {
			return full, rmodel.PassFailPass
		}
		return 0, rmodel.PassFailFail

	default:
		if ans.LooseEqual(pass) {
			return full, rmodel.PassFailPass
		}
		return 0, rmodel.PassFailFail
	}

	return score, passFail
}

// ScoreDetails menilai semua jawaban sesuai urutan kirim.
// Jawaban untuk question id yang tidak ada di form ikut sebagai N/A;
// normalnya sudah ditolak ValidateSubmission sebelum sampai sini.
func ScoreDetails(def fmodel.FormDefinition, answers []fmodel.SubmittedAnswer) []rmodel.ResponseDetail {
	index := def.QuestionIndex()
	out := make([]rmodel.ResponseDetail, 0, len(answers))
	for _, a := range answers {
		qid := strings.TrimSpace(a.QuestionID)
		d := rmodel.ResponseDetail{
			QuestionID:  qid,
			Answer:      a.Answer,
			Attachments: a.Attachments,
			PassFail:    rmodel.PassFailNA,
		}
		if q, ok := index[qid]; ok {
			d.Score, d.PassFail = ScoreQuestion(q, a.Answer)
		}
		out = append(out, d)
	}
	return out
}

// CalculateSectionScores: satu entry per section (urutan form).
// Detail N/A tetap dihitung di total dan menyumbang skor 0.
func CalculateSectionScores(def fmodel.FormDefinition, details []rmodel.ResponseDetail) []rmodel.SectionScore {
	byQID := make(map[string]rmodel.ResponseDetail, len(details))
	for _, d := range details {
		byQID[d.QuestionID] = d
	}

	out := make([]rmodel.SectionScore, 0, len(def.Sections))
	for _, s := range def.Sections {
		ss := rmodel.SectionScore{
			SectionID:    s.ID,
			SectionTitle: s.Title,
			Weightage:    s.Weightage,
		}
		sum := 0.0
		for _, sub := range s.Subsections {
			for _, q := range sub.Questions {
				d, ok := byQID[q.ID]
				if !ok {
					continue
				}
				ss.Total++
				switch d.PassFail {
				case rmodel.PassFailPass:
					ss.Passed++
				case rmodel.PassFailFail:
					ss.Failed++
				}
				sum += d.Score
			}
		}

		avg := 0.0
		if ss.Total > 0 {
			ss.Percentage = Round1(float64(ss.Passed) / float64(ss.Total) * 100)
			avg = sum / float64(ss.Total)
		}
		ss.Score = Round1(avg * s.Weightage / 100)
		out = append(out, ss)
	}
	return out
}

// CalculateFormKPIs menghitung KPI form dari detail + skor section.
func CalculateFormKPIs(def fmodel.FormDefinition, details []rmodel.ResponseDetail, sections []rmodel.SectionScore) rmodel.KPIs {
	k := rmodel.KPIs{TotalQuestions: len(details)}
	index := def.QuestionIndex()

	ratingSum := 0.0
	ratingCount := 0
	for _, d := range details {
		switch d.PassFail {
		case rmodel.PassFailPass:
			k.TotalPassed++
		case rmodel.PassFailFail:
			k.TotalFailed++
		}
		if q, ok := index[d.QuestionID]; ok && q.Type == fmodel.QuestionTypeRating {
			if n, ok := d.Answer.Number(); ok {
				ratingSum += n
				ratingCount++
			}
		}
	}

	if k.TotalQuestions > 0 {
		k.CompliancePercentage = Round1(float64(k.TotalPassed) / float64(k.TotalQuestions) * 100)
	}
	if ratingCount > 0 {
		k.AvgRating = Round1(ratingSum / float64(ratingCount))
	}

	if def.Type == fmodel.FormTypeFeedback && ratingCount > 0 {
		k.SatisfactionPercentage = Round1(k.AvgRating / 5 * 100)
	} else {
		k.SatisfactionPercentage = k.CompliancePercentage
	}

	totalWeightage := 0.0
	weighted := 0.0
	for _, s := range sections {
		totalWeightage += s.Weightage
		weighted += s.Score * s.Weightage / 100
	}
	if totalWeightage > 0 {
		k.FinalScore = Round1(weighted / totalWeightage * 100)
	} else {
		k.FinalScore = k.CompliancePercentage
	}
	return k
}

// Score = ScoreDetails → CalculateSectionScores → CalculateFormKPIs.
func Score(def fmodel.FormDefinition, answers []fmodel.SubmittedAnswer) Result {
	details := ScoreDetails(def, answers)
	sections := CalculateSectionScores(def, details)
	return Result{
		ScoredDetails: details,
		SectionScores: sections,
		KPIs:          CalculateFormKPIs(def, details, sections),
	}
}

// Round1 membulatkan ke satu desimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
