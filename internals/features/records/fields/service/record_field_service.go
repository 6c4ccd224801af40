// file: internals/features/records/fields/service/record_field_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"auditku_backend/internals/features/records/dependencies"
	fieldModel "auditku_backend/internals/features/records/fields/model"
)

var (
	ErrFieldNotFound = errors.New("record field not found")
	ErrInvalidEntity = errors.New("invalid entity")
)

type FieldService struct {
	DB *gorm.DB
}

func NewFieldService(db *gorm.DB) *FieldService {
	return &FieldService{DB: db}
}

// NormalizeEntity: lower-case, huruf/angka/_/- saja, maks 64.
func NormalizeEntity(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" || len(e) > 64 {
		return "", ErrInvalidEntity
	}
	for _, r := range e {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			continue
		}
		return "", ErrInvalidEntity
	}
	return e, nil
}

func (s *FieldService) List(ctx context.Context, orgID uuid.UUID, entity string) ([]fieldModel.RecordFieldModel, error) {
	rows := make([]fieldModel.RecordFieldModel, 0)
	err := s.DB.WithContext(ctx).
		Where("record_field_org_id = ? AND record_field_entity = ?", orgID, entity).
		Order("record_field_position ASC, record_field_key ASC").
		Find(&rows).Error
	return rows, err
}

// Upsert menyimpan field berdasarkan (org, entity, key). Field lain milik
// entity yang tidak dikirim dibiarkan.
func (s *FieldService) Upsert(ctx context.Context, orgID uuid.UUID, entity string, rows []fieldModel.RecordFieldModel) ([]fieldModel.RecordFieldModel, error) {
	log.Printf("[FieldService] Upsert called. org_id=%s entity=%s fields=%d", orgID, entity, len(rows))

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			row := rows[i]
			row.RecordFieldOrgID = orgID
			row.RecordFieldEntity = entity
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "record_field_org_id"},
					{Name: "record_field_entity"},
					{Name: "record_field_key"},
				},
				DoUpdates: clause.AssignmentColumns([]string{
					"record_field_label",
					"record_field_type",
					"record_field_required",
					"record_field_options",
					"record_field_position",
					"record_field_dependencies",
					"record_field_updated_at",
				}),
			}).Create(&row).Error; err != nil {
				return fmt.Errorf("upsert field %q: %w", row.RecordFieldKey, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[FieldService] ERROR upsert: %v", err)
		return nil, err
	}
	return s.List(ctx, orgID, entity)
}

func (s *FieldService) Delete(ctx context.Context, orgID uuid.UUID, entity, key string) error {
	res := s.DB.WithContext(ctx).
		Where("record_field_org_id = ? AND record_field_entity = ? AND record_field_key = ?", orgID, entity, strings.TrimSpace(key)).
		Delete(&fieldModel.RecordFieldModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFieldNotFound
	}
	return nil
}

// ResolveStates menurunkan state tiap field entity dari nilai record.
// keys kosong = semua field; key yang tidak dikenal → ErrFieldNotFound.
func (s *FieldService) ResolveStates(ctx context.Context, orgID uuid.UUID, entity string, values dependencies.Values, keys []string) (map[string]dependencies.FieldState, error) {
	rows, err := s.List(ctx, orgID, entity)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*fieldModel.RecordFieldModel, len(rows))
	for i := range rows {
		byKey[rows[i].RecordFieldKey] = &rows[i]
	}

	targets := rows
	if len(keys) > 0 {
		targets = make([]fieldModel.RecordFieldModel, 0, len(keys))
		for _, k := range keys {
			m, ok := byKey[strings.TrimSpace(k)]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, k)
			}
			targets = append(targets, *m)
		}
	}

	out := make(map[string]dependencies.FieldState, len(targets))
	for i := range targets {
		field, err := targets[i].Field()
		if err != nil {
			return nil, err
		}
		out[field.Key] = dependencies.ResolveFieldState(field, values)
	}
	return out, nil
}
