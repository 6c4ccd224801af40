package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"auditku_backend/internals/features/records/dependencies"
	fieldModel "auditku_backend/internals/features/records/fields/model"
	"auditku_backend/internals/helpers/answer"
)

// UpsertFieldRequest = satu field pada PUT /records/:entity/fields
type UpsertFieldRequest struct {
	Key          string                    `json:"record_field_key" validate:"required,max=120"`
	Label        string                    `json:"record_field_label" validate:"required,max=160"`
	Type         string                    `json:"record_field_type" validate:"omitempty,oneof=text number boolean date dropdown multiselect file"`
	Required     bool                      `json:"record_field_required"`
	Options      []string                  `json:"record_field_options" validate:"omitempty,dive,max=160"`
	Position     *int                      `json:"record_field_position" validate:"omitempty,gte=0"`
	Dependencies []dependencies.Dependency `json:"record_field_dependencies"`
}

type UpsertFieldsRequest struct {
	Fields []UpsertFieldRequest `json:"fields" validate:"required,min=1,max=200,dive"`
}

// Normalize: trim + cek duplikat key + cek rule dependency.
// Hasil: map "fields[i].xxx" → pesan; kosong = valid.
func (r *UpsertFieldsRequest) Normalize() map[string][]string {
	errs := map[string][]string{}
	seen := map[string]int{}
	for i := range r.Fields {
		f := &r.Fields[i]
		f.Key = strings.TrimSpace(f.Key)
		f.Label = strings.TrimSpace(f.Label)
		f.Type = strings.ToLower(strings.TrimSpace(f.Type))
		if f.Type == "" {
			f.Type = string(fieldModel.FieldTypeText)
		}
		prefix := "fields[" + strconv.Itoa(i) + "]"
		if prev, dup := seen[f.Key]; dup && f.Key != "" {
			errs[prefix+".record_field_key"] = append(errs[prefix+".record_field_key"],
				"duplikat dengan fields["+strconv.Itoa(prev)+"]")
		}
		seen[f.Key] = i
		for j, dep := range f.Dependencies {
			for _, p := range dep.Problems() {
				k := prefix + ".record_field_dependencies[" + strconv.Itoa(j) + "]"
				errs[k] = append(errs[k], p)
			}
		}
	}
	return errs
}

func (f UpsertFieldRequest) ToModel(orgID uuid.UUID, entity string) (fieldModel.RecordFieldModel, error) {
	m := fieldModel.RecordFieldModel{
		RecordFieldOrgID:    orgID,
		RecordFieldEntity:   entity,
		RecordFieldKey:      f.Key,
		RecordFieldLabel:    f.Label,
		RecordFieldType:     fieldModel.FieldType(f.Type),
		RecordFieldRequired: f.Required,
		RecordFieldOptions:  trimAll(f.Options),
	}
	if f.Position != nil {
		m.RecordFieldPosition = *f.Position
	}
	if err := m.SetDependencies(f.Dependencies); err != nil {
		return m, err
	}
	return m, nil
}

type FieldResponse struct {
	RecordFieldID           uuid.UUID                 `json:"record_field_id"`
	RecordFieldEntity       string                    `json:"record_field_entity"`
	RecordFieldKey          string                    `json:"record_field_key"`
	RecordFieldLabel        string                    `json:"record_field_label"`
	RecordFieldType         fieldModel.FieldType      `json:"record_field_type"`
	RecordFieldRequired     bool                      `json:"record_field_required"`
	RecordFieldOptions      []string                  `json:"record_field_options"`
	RecordFieldPosition     int                       `json:"record_field_position"`
	RecordFieldDependencies []dependencies.Dependency `json:"record_field_dependencies"`
	RecordFieldUpdatedAt    time.Time                 `json:"record_field_updated_at"`
}

func FromModel(m *fieldModel.RecordFieldModel) (FieldResponse, error) {
	deps, err := m.Dependencies()
	if err != nil {
		return FieldResponse{}, err
	}
	return FieldResponse{
		RecordFieldID:           m.RecordFieldID,
		RecordFieldEntity:       m.RecordFieldEntity,
		RecordFieldKey:          m.RecordFieldKey,
		RecordFieldLabel:        m.RecordFieldLabel,
		RecordFieldType:         m.RecordFieldType,
		RecordFieldRequired:     m.RecordFieldRequired,
		RecordFieldOptions:      m.RecordFieldOptions.Strings(),
		RecordFieldPosition:     m.RecordFieldPosition,
		RecordFieldDependencies: deps,
		RecordFieldUpdatedAt:    m.RecordFieldUpdatedAt,
	}, nil
}

func FromModels(rows []fieldModel.RecordFieldModel) ([]FieldResponse, error) {
	out := make([]FieldResponse, 0, len(rows))
	for i := range rows {
		r, err := FromModel(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// FieldStatesRequest: values = nilai record saat ini (key = record_field_key).
// keys kosong = resolve semua field entity.
type FieldStatesRequest struct {
	Values map[string]answer.Value `json:"values"`
	Keys   []string                `json:"keys"`
}

func (r FieldStatesRequest) DependencyValues() dependencies.Values {
	out := make(dependencies.Values, len(r.Values))
	for k, v := range r.Values {
		out[strings.TrimSpace(k)] = v
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
