// file: internals/features/records/fields/model/record_field_model.go
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"auditku_backend/internals/features/records/dependencies"
	"auditku_backend/internals/helpers/dbtypes"
)

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDate     FieldType = "date"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeMulti    FieldType = "multiselect"
	FieldTypeFile     FieldType = "file"
)

// RecordFieldModel = definisi field custom per organisasi + entity (lead, deal, site, ...).
// Key unik per (org, entity); PUT melakukan upsert di atas index ini.
type RecordFieldModel struct {
	RecordFieldID     uuid.UUID `gorm:"type:uuid;primaryKey;column:record_field_id" json:"record_field_id"`
	RecordFieldOrgID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_record_fields_org_entity_key,priority:1;column:record_field_org_id" json:"record_field_org_id"`
	RecordFieldEntity string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_record_fields_org_entity_key,priority:2;column:record_field_entity" json:"record_field_entity"`
	RecordFieldKey    string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_record_fields_org_entity_key,priority:3;column:record_field_key" json:"record_field_key"`

	RecordFieldLabel    string            `gorm:"type:varchar(160);not null;column:record_field_label" json:"record_field_label"`
	RecordFieldType     FieldType         `gorm:"type:varchar(32);not null;default:'text';column:record_field_type" json:"record_field_type"`
	RecordFieldRequired bool              `gorm:"not null;default:false;column:record_field_required" json:"record_field_required"`
	RecordFieldOptions  dbtypes.TextArray `gorm:"column:record_field_options" json:"record_field_options"`
	RecordFieldPosition int               `gorm:"not null;default:0;column:record_field_position" json:"record_field_position"`

	// []dependencies.Dependency (jsonb)
	RecordFieldDependencies datatypes.JSON `gorm:"type:jsonb;not null;column:record_field_dependencies" json:"record_field_dependencies"`

	RecordFieldCreatedAt time.Time `gorm:"column:record_field_created_at;autoCreateTime" json:"record_field_created_at"`
	RecordFieldUpdatedAt time.Time `gorm:"column:record_field_updated_at;autoUpdateTime" json:"record_field_updated_at"`
}

func (RecordFieldModel) TableName() string { return "record_fields" }

func (m *RecordFieldModel) BeforeCreate(tx *gorm.DB) error {
	if m.RecordFieldID == uuid.Nil {
		m.RecordFieldID = uuid.New()
	}
	if len(m.RecordFieldDependencies) == 0 {
		m.RecordFieldDependencies = datatypes.JSON("[]")
	}
	return nil
}

func (m *RecordFieldModel) Dependencies() ([]dependencies.Dependency, error) {
	deps := []dependencies.Dependency{}
	if len(m.RecordFieldDependencies) == 0 || string(m.RecordFieldDependencies) == "null" {
		return deps, nil
	}
	if err := json.Unmarshal(m.RecordFieldDependencies, &deps); err != nil {
		return nil, fmt.Errorf("decode record_field_dependencies (%s): %w", m.RecordFieldKey, err)
	}
	return deps, nil
}

func (m *RecordFieldModel) SetDependencies(deps []dependencies.Dependency) error {
	if deps == nil {
		deps = []dependencies.Dependency{}
	}
	raw, err := json.Marshal(deps)
	if err != nil {
		return fmt.Errorf("encode record_field_dependencies: %w", err)
	}
	m.RecordFieldDependencies = datatypes.JSON(raw)
	return nil
}

// Field → bentuk minimal untuk dependencies.ResolveFieldState.
func (m *RecordFieldModel) Field() (dependencies.Field, error) {
	deps, err := m.Dependencies()
	if err != nil {
		return dependencies.Field{}, err
	}
	return dependencies.Field{
		Key:          m.RecordFieldKey,
		Required:     m.RecordFieldRequired,
		Dependencies: deps,
	}, nil
}
