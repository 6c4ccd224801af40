// file: internals/features/audits/responses/service/response_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"auditku_backend/internals/features/audits/comparison"
	fmodel "auditku_backend/internals/features/audits/forms/model"
	"auditku_backend/internals/features/audits/lifecycle"
	"auditku_backend/internals/features/audits/reports"
	rmodel "auditku_backend/internals/features/audits/responses/model"
	"auditku_backend/internals/features/audits/scoring"
	tmodel "auditku_backend/internals/features/tasks/model"
	"auditku_backend/internals/observability/metrics"
)

var (
	ErrResponseNotFound = errors.New("response not found")
	ErrVersionConflict  = errors.New("response was modified by another request")
)

// retry otomatis bila client tidak mengirim versi
const maxWriteAttempts = 3

// FormSource = bagian FormService yang dibutuhkan submit/report.
type FormSource interface {
	Definition(ctx context.Context, orgID, formID uuid.UUID) (fmodel.FormDefinition, error)
}

// TaskSpawner = collaborator task remediasi.
type TaskSpawner interface {
	SpawnRemediation(ctx context.Context, req *lifecycle.RemediationTask) (*tmodel.TaskModel, error)
}

type ResponseService struct {
	DB       *gorm.DB
	Forms    FormSource
	Tasks    TaskSpawner
	Renderer reports.Renderer
	Metrics  *metrics.AuditMetrics
	Now      func() time.Time
	DueDays  int
}

func NewResponseService(db *gorm.DB, forms FormSource, tasks TaskSpawner, m *metrics.AuditMetrics, dueDays int) *ResponseService {
	if dueDays <= 0 {
		dueDays = lifecycle.DefaultRemediationDueDays
	}
	return &ResponseService{DB: db, Forms: forms, Tasks: tasks, Metrics: m, Now: time.Now, DueDays: dueDays}
}

func (s *ResponseService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

/* =========================================================
   SUBMIT
========================================================= */

type SubmitInput struct {
	OrgID          uuid.UUID
	FormID         uuid.UUID
	UserID         uuid.UUID
	LinkedRecordID *uuid.UUID
	Answers        []fmodel.SubmittedAnswer
}

// SubmitResult: TaskError terisi bila spawn task gagal; response tetap tersimpan.
type SubmitResult struct {
	Response  *rmodel.Response
	TaskID    *uuid.UUID
	TaskError string
}

// Submit: validasi → scoring → status awal → persist → spawn task.
func (s *ResponseService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	log.Printf("[ResponseService] Submit called. org_id=%s form_id=%s user_id=%s answers=%d",
		in.OrgID, in.FormID, in.UserID, len(in.Answers))

	def, err := s.Forms.Definition(ctx, in.OrgID, in.FormID)
	if err != nil {
		s.Metrics.RecordRejected("form_not_found")
		return nil, err
	}
	if err := fmodel.ValidateSubmission(def, in.Answers); err != nil {
		s.Metrics.RecordRejected("validation")
		return nil, err
	}

	scored := scoring.Score(def, in.Answers)
	now := s.now()

	resp := &rmodel.Response{
		ID:                uuid.New(),
		OrgID:             in.OrgID,
		FormID:            def.ID,
		FormName:          def.Name,
		SubmittedBy:       in.UserID,
		SubmittedAt:       now,
		LinkedRecordID:    in.LinkedRecordID,
		Details:           scored.ScoredDetails,
		SectionScores:     scored.SectionScores,
		KPIs:              scored.KPIs,
		Status:            lifecycle.DetermineInitialStatus(def, scored.KPIs),
		CorrectiveActions: rmodel.NewCorrectiveActions(),
		Version:           1,
	}

	var row rmodel.ResponseModel
	if err := row.FromDomain(resp); err != nil {
		return nil, err
	}
	row.ResponseVersion = 1
	if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
		s.Metrics.RecordRejected("persist")
		log.Printf("[ResponseService] ERROR persist response: %v", err)
		return nil, fmt.Errorf("persist response: %w", err)
	}
	s.Metrics.RecordSubmission(string(def.Type), string(resp.Status), resp.KPIs.CompliancePercentage)
	log.Printf("[ResponseService] response_id=%s compliance=%.1f final=%.1f status=%q",
		resp.ID, resp.KPIs.CompliancePercentage, resp.KPIs.FinalScore, resp.Status)

	out := &SubmitResult{Response: resp}
	task := lifecycle.BuildRemediationTask(def, resp, now, s.DueDays)
	if task == nil || s.Tasks == nil {
		return out, nil
	}
	created, err := s.Tasks.SpawnRemediation(ctx, task)
	if err != nil {
		log.Printf("[ResponseService] WARN spawn task response_id=%s: %v", resp.ID, err)
		out.TaskError = err.Error()
		return out, nil
	}
	if created != nil {
		id := created.TaskID
		out.TaskID = &id
	}
	return out, nil
}

/* =========================================================
   READ
========================================================= */

func (s *ResponseService) load(ctx context.Context, orgID, responseID uuid.UUID) (*rmodel.ResponseModel, error) {
	var row rmodel.ResponseModel
	err := s.DB.WithContext(ctx).
		Where("response_id = ? AND response_org_id = ?", responseID, orgID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (s *ResponseService) Get(ctx context.Context, orgID, responseID uuid.UUID) (*rmodel.Response, error) {
	row, err := s.load(ctx, orgID, responseID)
	if err != nil {
		return nil, err
	}
	return row.ToDomain()
}

type ListFilter struct {
	FormID         *uuid.UUID
	Status         *rmodel.ResponseStatus
	LinkedRecordID *uuid.UUID
	SubmittedBy    *uuid.UUID
}

func (s *ResponseService) List(ctx context.Context, orgID uuid.UUID, f ListFilter, offset, limit int) ([]*rmodel.Response, int64, error) {
	q := s.DB.WithContext(ctx).Model(&rmodel.ResponseModel{}).Where("response_org_id = ?", orgID)
	if f.FormID != nil {
		q = q.Where("response_form_id = ?", *f.FormID)
	}
	if f.Status != nil {
		q = q.Where("response_status = ?", *f.Status)
	}
	if f.LinkedRecordID != nil {
		q = q.Where("response_linked_record_id = ?", *f.LinkedRecordID)
	}
	if f.SubmittedBy != nil {
		q = q.Where("response_submitted_by = ?", *f.SubmittedBy)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]rmodel.ResponseModel, 0)
	if err := q.Order("response_submitted_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out, err := toDomain(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func toDomain(rows []rmodel.ResponseModel) ([]*rmodel.Response, error) {
	out := make([]*rmodel.Response, 0, len(rows))
	for i := range rows {
		r, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

/* =========================================================
   LIFECYCLE WRITES (optimistic version)
========================================================= */

// mutate membaca response, menjalankan fn, lalu menulis dengan syarat
// response_version masih sama. expectedVersion != nil → konflik langsung
// dikembalikan; nil → baca ulang & ulangi (maks maxWriteAttempts).
func (s *ResponseService) mutate(ctx context.Context, orgID, responseID uuid.UUID, expectedVersion *int, fn func(*rmodel.Response, time.Time) error) (*rmodel.Response, error) {
	for attempt := 1; ; attempt++ {
		row, err := s.load(ctx, orgID, responseID)
		if err != nil {
			return nil, err
		}
		if expectedVersion != nil && *expectedVersion != row.ResponseVersion {
			return nil, ErrVersionConflict
		}
		resp, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		from := resp.Status
		now := s.now()
		if err := fn(resp, now); err != nil {
			return nil, err
		}

		if err := row.FromDomain(resp); err != nil {
			return nil, err
		}
		readVersion := row.ResponseVersion
		res := s.DB.WithContext(ctx).
			Model(&rmodel.ResponseModel{}).
			Where("response_id = ? AND response_org_id = ? AND response_version = ?", responseID, orgID, readVersion).
			Updates(map[string]any{
				"response_status":             row.ResponseStatus,
				"response_corrective_actions": row.ResponseCorrectiveActions,
				"response_reviewed_by":        row.ResponseReviewedBy,
				"response_reviewed_at":        row.ResponseReviewedAt,
				"response_review_comment":     row.ResponseReviewComment,
				"response_version":            readVersion + 1,
				"response_updated_at":         now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			resp.Version = readVersion + 1
			s.Metrics.RecordTransition(string(from), string(resp.Status))
			return resp, nil
		}

		if expectedVersion != nil || attempt >= maxWriteAttempts {
			log.Printf("[ResponseService] version conflict response_id=%s read_version=%d attempt=%d", responseID, readVersion, attempt)
			return nil, ErrVersionConflict
		}
	}
}

// UpsertCorrectiveAction (manager): upsert per questionId, status → Needs Auditor Review.
func (s *ResponseService) UpsertCorrectiveAction(ctx context.Context, orgID, responseID uuid.UUID, in lifecycle.ManagerInput, version *int) (*rmodel.Response, *rmodel.CorrectiveAction, error) {
	log.Printf("[ResponseService] UpsertCorrectiveAction called. response_id=%s question_id=%s", responseID, in.QuestionID)

	var action *rmodel.CorrectiveAction
	resp, err := s.mutate(ctx, orgID, responseID, version, func(r *rmodel.Response, now time.Time) error {
		a, err := lifecycle.UpsertCorrectiveAction(r, in, now)
		action = a
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return resp, action, nil
}

// VerifyCorrectiveAction (auditor): semua approved → Closed.
func (s *ResponseService) VerifyCorrectiveAction(ctx context.Context, orgID, responseID uuid.UUID, in lifecycle.VerifyInput, version *int) (*rmodel.Response, *rmodel.CorrectiveAction, error) {
	log.Printf("[ResponseService] VerifyCorrectiveAction called. response_id=%s question_id=%s approved=%t",
		responseID, in.QuestionID, in.Approved)

	var action *rmodel.CorrectiveAction
	resp, err := s.mutate(ctx, orgID, responseID, version, func(r *rmodel.Response, now time.Time) error {
		a, err := lifecycle.VerifyCorrectiveAction(r, in, now)
		action = a
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return resp, action, nil
}

func (s *ResponseService) Approve(ctx context.Context, orgID, responseID, reviewer uuid.UUID, comment string, version *int) (*rmodel.Response, error) {
	return s.mutate(ctx, orgID, responseID, version, func(r *rmodel.Response, now time.Time) error {
		return lifecycle.Approve(r, reviewer, comment, now)
	})
}

func (s *ResponseService) Reject(ctx context.Context, orgID, responseID, reviewer uuid.UUID, comment string, version *int) (*rmodel.Response, error) {
	return s.mutate(ctx, orgID, responseID, version, func(r *rmodel.Response, now time.Time) error {
		return lifecycle.Reject(r, reviewer, comment, now)
	})
}

/* =========================================================
   COMPARISON / TREND / REPORT
========================================================= */

// earlier: response form yang sama, submit sebelum current, terbaru dulu.
func (s *ResponseService) earlier(ctx context.Context, current *rmodel.Response, limit int) ([]rmodel.Response, error) {
	rows := make([]rmodel.ResponseModel, 0)
	err := s.DB.WithContext(ctx).
		Where("response_org_id = ? AND response_form_id = ? AND response_id <> ? AND response_submitted_at < ?",
			current.OrgID, current.FormID, current.ID, current.SubmittedAt).
		Order("response_submitted_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	ptrs, err := toDomain(rows)
	if err != nil {
		return nil, err
	}
	out := make([]rmodel.Response, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out, nil
}

// Compare: strategy "" / last_audit / average / <response id>.
// Response eksplisit harus milik form yang sama, tapi tidak harus lebih lama.
func (s *ResponseService) Compare(ctx context.Context, orgID, responseID uuid.UUID, rawStrategy string) (comparison.Result, error) {
	strategy, err := comparison.ParseStrategy(rawStrategy)
	if err != nil {
		return comparison.Result{}, err
	}
	current, err := s.Get(ctx, orgID, responseID)
	if err != nil {
		return comparison.Result{}, err
	}

	var candidates []rmodel.Response
	switch strategy.Kind {
	case comparison.StrategyResponse:
		target, err := s.Get(ctx, orgID, strategy.ResponseID)
		if err != nil {
			if errors.Is(err, ErrResponseNotFound) {
				return comparison.Result{}, comparison.ErrNoBaseline
			}
			return comparison.Result{}, err
		}
		if target.FormID == current.FormID {
			candidates = []rmodel.Response{*target}
		}
	case comparison.StrategyAverage:
		candidates, err = s.earlier(ctx, current, comparison.AverageWindow)
	default:
		candidates, err = s.earlier(ctx, current, 1)
	}
	if err != nil {
		return comparison.Result{}, err
	}
	return comparison.Resolve(*current, strategy, candidates)
}

const DefaultTrendLimit = 12

func (s *ResponseService) Trend(ctx context.Context, orgID, responseID uuid.UUID, limit int) ([]comparison.TrendPoint, error) {
	if limit <= 0 {
		limit = DefaultTrendLimit
	}
	current, err := s.Get(ctx, orgID, responseID)
	if err != nil {
		return nil, err
	}
	var candidates []rmodel.Response
	if limit > 1 {
		if candidates, err = s.earlier(ctx, current, limit-1); err != nil {
			return nil, err
		}
	}
	return comparison.Trend(*current, candidates, limit), nil
}

// Report menyusun agregat laporan; render=true memanggil Renderer (bila ada).
// Gagal render hanya tercatat di RenderResult.
func (s *ResponseService) Report(ctx context.Context, orgID, responseID uuid.UUID, render bool) (reports.Report, reports.RenderResult, error) {
	resp, err := s.Get(ctx, orgID, responseID)
	if err != nil {
		return reports.Report{}, reports.RenderResult{}, err
	}
	def, err := s.Forms.Definition(ctx, orgID, resp.FormID)
	if err != nil {
		return reports.Report{}, reports.RenderResult{}, err
	}
	rep := reports.Build(def, resp, s.now())

	if !render || s.Renderer == nil {
		if render {
			s.Metrics.RecordRender("skipped")
		}
		return rep, reports.RenderResult{}, nil
	}
	result := reports.Render(ctx, s.Renderer, rep)
	if result.Error != "" {
		s.Metrics.RecordRender("error")
	} else {
		s.Metrics.RecordRender("ok")
	}
	return rep, result, nil
}
