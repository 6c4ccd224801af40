// file: internals/features/audits/forms/service/form_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	fmodel "auditku_backend/internals/features/audits/forms/model"
	helper "auditku_backend/internals/helpers"
	"auditku_backend/internals/observability/metrics"
)

var ErrFormNotFound = errors.New("form not found")

type FormService struct {
	DB      *gorm.DB
	Cache   *cache.Cache
	Metrics *metrics.AuditMetrics
}

// NewFormService: ttl <= 0 → cache dimatikan (selalu baca DB).
func NewFormService(db *gorm.DB, ttl time.Duration, m *metrics.AuditMetrics) *FormService {
	s := &FormService{DB: db, Metrics: m}
	if ttl > 0 {
		s.Cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func cacheKey(orgID, formID uuid.UUID) string {
	return orgID.String() + ":" + formID.String()
}

func (s *FormService) invalidate(orgID, formID uuid.UUID) {
	if s.Cache != nil {
		s.Cache.Delete(cacheKey(orgID, formID))
	}
}

func (s *FormService) slugOptions(orgID uuid.UUID, exclude *uuid.UUID) helper.SlugOptions {
	opts := helper.SlugOptions{
		Table:            "audit_forms",
		SlugColumn:       "form_slug",
		SoftDeleteColumn: "form_deleted_at",
		Filters:          map[string]any{"form_org_id": orgID},
		DefaultBase:      "form",
	}
	if exclude != nil {
		opts.ExcludeColumn = "form_id"
		opts.ExcludeValue = *exclude
	}
	return opts
}

// Create memvalidasi struktur lalu menyimpan form baru dengan slug unik per org.
func (s *FormService) Create(ctx context.Context, orgID, userID uuid.UUID, def fmodel.FormDefinition, desc *string, active bool) (*fmodel.FormModel, error) {
	log.Printf("[FormService] Create called. org_id=%s name=%q sections=%d", orgID, def.Name, len(def.Sections))

	if err := def.Validate(); err != nil {
		return nil, err
	}

	slug, err := helper.GenerateUniqueSlug(ctx, s.DB, s.slugOptions(orgID, nil), def.Name)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	uid := userID
	row := &fmodel.FormModel{
		FormOrgID:       orgID,
		FormSlug:        slug,
		FormDescription: desc,
		FormIsActive:    true,
		FormCreatedBy:   &uid,
	}
	if err := row.ApplyDefinition(def); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		// default:true di kolom → false harus ditulis eksplisit
		if !active {
			row.FormIsActive = false
			return tx.Model(row).Update("form_is_active", false).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("[FormService] ERROR create form: %v", err)
		return nil, err
	}
	return row, nil
}

func (s *FormService) Get(ctx context.Context, orgID, formID uuid.UUID) (*fmodel.FormModel, error) {
	var row fmodel.FormModel
	err := s.DB.WithContext(ctx).
		Where("form_id = ? AND form_org_id = ?", formID, orgID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Definition dipakai jalur submit/compare; dibaca lewat cache per (org, form).
func (s *FormService) Definition(ctx context.Context, orgID, formID uuid.UUID) (fmodel.FormDefinition, error) {
	key := cacheKey(orgID, formID)
	if s.Cache != nil {
		if v, ok := s.Cache.Get(key); ok {
			s.Metrics.RecordCacheLookup(true)
			return v.(fmodel.FormDefinition), nil
		}
		s.Metrics.RecordCacheLookup(false)
	}

	row, err := s.Get(ctx, orgID, formID)
	if err != nil {
		return fmodel.FormDefinition{}, err
	}
	def, err := row.Definition()
	if err != nil {
		return fmodel.FormDefinition{}, err
	}
	if s.Cache != nil {
		s.Cache.SetDefault(key, def)
	}
	return def, nil
}

type ListFilter struct {
	Type   string
	Search string
	Active *bool
}

func (s *FormService) List(ctx context.Context, orgID uuid.UUID, f ListFilter, offset, limit int) ([]fmodel.FormModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&fmodel.FormModel{}).Where("form_org_id = ?", orgID)
	if t := strings.TrimSpace(f.Type); t != "" {
		q = q.Where("form_type = ?", t)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		q = q.Where("LOWER(form_name) LIKE ?", "%"+term+"%")
	}
	if f.Active != nil {
		q = q.Where("form_is_active = ?", *f.Active)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]fmodel.FormModel, 0)
	if err := q.Order("form_created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateFunc menerima definisi, deskripsi, status aktif saat ini dan
// mengembalikan nilai barunya.
type UpdateFunc func(def fmodel.FormDefinition, desc *string, active bool) (fmodel.FormDefinition, *string, bool)

// Update: slug dibuat ulang hanya bila nama berubah. Response lama tidak
// disentuh (nama form di response adalah snapshot).
func (s *FormService) Update(ctx context.Context, orgID, formID uuid.UUID, apply UpdateFunc) (*fmodel.FormModel, error) {
	row, err := s.Get(ctx, orgID, formID)
	if err != nil {
		return nil, err
	}
	cur, err := row.Definition()
	if err != nil {
		return nil, err
	}

	next, desc, active := apply(cur, row.FormDescription, row.FormIsActive)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	if next.Name != cur.Name {
		slug, err := helper.GenerateUniqueSlug(ctx, s.DB, s.slugOptions(orgID, &formID), next.Name)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		row.FormSlug = slug
	}
	if err := row.ApplyDefinition(next); err != nil {
		return nil, err
	}
	row.FormDescription = desc
	row.FormIsActive = active

	err = s.DB.WithContext(ctx).Model(row).Select(
		"form_name", "form_slug", "form_type", "form_description", "form_sections",
		"form_pass_threshold", "form_partial_threshold", "form_approval_required",
		"form_reviewer_id", "form_is_active", "form_updated_at",
	).Updates(row).Error
	if err != nil {
		log.Printf("[FormService] ERROR update form_id=%s: %v", formID, err)
		return nil, err
	}
	s.invalidate(orgID, formID)
	return row, nil
}

// Delete = soft delete; response yang sudah ada tetap bisa dibaca.
func (s *FormService) Delete(ctx context.Context, orgID, formID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("form_id = ? AND form_org_id = ?", formID, orgID).
		Delete(&fmodel.FormModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFormNotFound
	}
	s.invalidate(orgID, formID)
	log.Printf("[FormService] form_id=%s deleted", formID)
	return nil
}
