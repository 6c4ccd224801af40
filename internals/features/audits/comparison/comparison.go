// Package comparison menghitung delta antara response sekarang dan
// pembandingnya (response sebelumnya, atau rata-rata beberapa response
// terakhir), plus deret tren.
package comparison

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/features/audits/scoring"
)

const AverageWindow = 10

type StrategyKind string

const (
	StrategyLastAudit StrategyKind = "last_audit"
	StrategyAverage   StrategyKind = "average"
	StrategyResponse  StrategyKind = "response"
)

var (
	ErrInvalidStrategy = errors.New("invalid comparison strategy")
	ErrNoBaseline      = errors.New("no earlier response to compare against")
)

type Strategy struct {
	Kind       StrategyKind
	ResponseID uuid.UUID
}

// ParseStrategy: "" / last_audit / average / <uuid response>.
func ParseStrategy(raw string) (Strategy, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", string(StrategyLastAudit):
		return Strategy{Kind: StrategyLastAudit}, nil
	case string(StrategyAverage):
		return Strategy{Kind: StrategyAverage}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return Strategy{}, ErrInvalidStrategy
	}
	return Strategy{Kind: StrategyResponse, ResponseID: id}, nil
}

// Snapshot = angka yang dibandingkan. Bisa dari satu response, atau
// pseudo-response hasil rata-rata (dibangun on demand, tidak di-cache).
type Snapshot struct {
	ResponseID           *uuid.UUID         `json:"responseId,omitempty"`
	SubmittedAt          *time.Time         `json:"submittedAt,omitempty"`
	SampleSize           int                `json:"sampleSize"`
	CompliancePercentage float64            `json:"compliancePercentage"`
	AvgRating            float64            `json:"avgRating"`
	FinalScore           float64            `json:"finalScore"`
	TotalPassed          float64            `json:"totalPassed"`
	TotalFailed          float64            `json:"totalFailed"`
	SectionScores        map[string]float64 `json:"sectionScores"`
}

// SnapshotOf mengambil angka dari satu response.
func SnapshotOf(r rmodel.Response) Snapshot {
	id := r.ID
	at := r.SubmittedAt
	s := Snapshot{
		ResponseID:           &id,
		SubmittedAt:          &at,
		SampleSize:           1,
		CompliancePercentage: r.KPIs.CompliancePercentage,
		AvgRating:            r.KPIs.AvgRating,
		FinalScore:           r.KPIs.FinalScore,
		TotalPassed:          float64(r.KPIs.TotalPassed),
		TotalFailed:          float64(r.KPIs.TotalFailed),
		SectionScores:        make(map[string]float64, len(r.SectionScores)),
	}
	for _, ss := range r.SectionScores {
		s.SectionScores[ss.SectionID] = ss.Score
	}
	return s
}

// Average merata-ratakan tiap KPI secara terpisah; skor section dirata-rata
// hanya atas response yang memuat section tersebut.
func Average(responses []rmodel.Response) (Snapshot, error) {
	if len(responses) == 0 {
		return Snapshot{}, ErrNoBaseline
	}
	if len(responses) > AverageWindow {
		responses = responses[:AverageWindow]
	}

	n := float64(len(responses))
	out := Snapshot{SampleSize: len(responses), SectionScores: map[string]float64{}}
	sectionSum := map[string]float64{}
	sectionCount := map[string]int{}

	for _, r := range responses {
		out.CompliancePercentage += r.KPIs.CompliancePercentage
		out.AvgRating += r.KPIs.AvgRating
		out.FinalScore += r.KPIs.FinalScore
		out.TotalPassed += float64(r.KPIs.TotalPassed)
		out.TotalFailed += float64(r.KPIs.TotalFailed)
		for _, ss := range r.SectionScores {
			sectionSum[ss.SectionID] += ss.Score
			sectionCount[ss.SectionID]++
		}
	}

	out.CompliancePercentage = scoring.Round1(out.CompliancePercentage / n)
	out.AvgRating = scoring.Round1(out.AvgRating / n)
	out.FinalScore = scoring.Round1(out.FinalScore / n)
	out.TotalPassed = scoring.Round1(out.TotalPassed / n)
	out.TotalFailed = scoring.Round1(out.TotalFailed / n)
	for id, sum := range sectionSum {
		out.SectionScores[id] = scoring.Round1(sum / float64(sectionCount[id]))
	}
	return out, nil
}

// Earlier menyaring kandidat: form sama, submit sebelum current,
// bukan current sendiri; urut terbaru dulu.
func Earlier(current rmodel.Response, candidates []rmodel.Response) []rmodel.Response {
	out := make([]rmodel.Response, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == current.ID || c.FormID != current.FormID {
			continue
		}
		if !c.SubmittedAt.Before(current.SubmittedAt) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

type Delta struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
}

func delta(cur, prev float64) Delta {
	return Delta{Current: cur, Previous: prev, Change: scoring.Round1(cur - prev)}
}

type SectionDelta struct {
	SectionID   string `json:"sectionId"`
	HasPrevious bool   `json:"hasPrevious"`
	Delta
}

type Comparison struct {
	CompliancePercentage Delta `json:"compliancePercentage"`
	AvgRating            Delta `json:"avgRating"`
	FinalScore           Delta `json:"finalScore"`
	TotalPassed          Delta `json:"totalPassed"`
	TotalFailed          Delta `json:"totalFailed"`
}

type Result struct {
	Strategy          StrategyKind   `json:"strategy"`
	Baseline          Snapshot       `json:"baseline"`
	Comparison        Comparison     `json:"comparison"`
	SectionComparison []SectionDelta `json:"sectionComparison"`
}

// Compare = delta field-wise (current − baseline). Section mengikuti
// urutan section response sekarang; section yang tidak ada di baseline
// dianggap 0.
func Compare(current rmodel.Response, baseline Snapshot, kind StrategyKind) Result {
	cur := SnapshotOf(current)
	res := Result{
		Strategy: kind,
		Baseline: baseline,
		Comparison: Comparison{
			CompliancePercentage: delta(cur.CompliancePercentage, baseline.CompliancePercentage),
			AvgRating:            delta(cur.AvgRating, baseline.AvgRating),
			FinalScore:           delta(cur.FinalScore, baseline.FinalScore),
			TotalPassed:          delta(cur.TotalPassed, baseline.TotalPassed),
			TotalFailed:          delta(cur.TotalFailed, baseline.TotalFailed),
		},
		SectionComparison: make([]SectionDelta, 0, len(current.SectionScores)),
	}
	for _, ss := range current.SectionScores {
		prev, ok := baseline.SectionScores[ss.SectionID]
		res.SectionComparison = append(res.SectionComparison, SectionDelta{
			SectionID:   ss.SectionID,
			HasPrevious: ok,
			Delta:       delta(ss.Score, prev),
		})
	}
	return res
}

// Resolve memilih baseline sesuai strategi dari kandidat yang sudah dimuat
// pemanggil. Untuk StrategyResponse kandidat pertama dengan id cocok dipakai.
func Resolve(current rmodel.Response, strategy Strategy, candidates []rmodel.Response) (Result, error) {
	switch strategy.Kind {
	case StrategyResponse:
		for _, c := range candidates {
			if c.ID == strategy.ResponseID && c.ID != current.ID {
				return Compare(current, SnapshotOf(c), strategy.Kind), nil
			}
		}
		return Result{}, ErrNoBaseline

	case StrategyAverage:
		avg, err := Average(Earlier(current, candidates))
		if err != nil {
			return Result{}, err
		}
		return Compare(current, avg, strategy.Kind), nil

	case StrategyLastAudit:
		earlier := Earlier(current, candidates)
		if len(earlier) == 0 {
			return Result{}, ErrNoBaseline
		}
		return Compare(current, SnapshotOf(earlier[0]), strategy.Kind), nil
	}
	return Result{}, ErrInvalidStrategy
}

type TrendPoint struct {
	ResponseID           uuid.UUID `json:"responseId"`
	SubmittedAt          time.Time `json:"submittedAt"`
	CompliancePercentage float64   `json:"compliancePercentage"`
	FinalScore           float64   `json:"finalScore"`
	TotalPassed          int       `json:"totalPassed"`
	TotalFailed          int       `json:"totalFailed"`
}

// Trend: titik kronologis (lama → baru) dari pendahulu sampai current.
func Trend(current rmodel.Response, candidates []rmodel.Response, limit int) []TrendPoint {
	earlier := Earlier(current, candidates)
	if limit > 0 && len(earlier) > limit-1 {
		if limit-1 <= 0 {
			earlier = nil
		} else {
			earlier = earlier[:limit-1]
		}
	}

	points := make([]TrendPoint, 0, len(earlier)+1)
	for i := len(earlier) - 1; i >= 0; i-- {
		points = append(points, pointOf(earlier[i]))
	}
	return append(points, pointOf(current))
}

func pointOf(r rmodel.Response) TrendPoint {
	return TrendPoint{
		ResponseID:           r.ID,
		SubmittedAt:          r.SubmittedAt,
		CompliancePercentage: r.KPIs.CompliancePercentage,
		FinalScore:           r.KPIs.FinalScore,
		TotalPassed:          r.KPIs.TotalPassed,
		TotalFailed:          r.KPIs.TotalFailed,
	}
}
