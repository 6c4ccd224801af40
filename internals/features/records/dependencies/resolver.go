// file: internals/features/records/dependencies/resolver.go
package dependencies

import (
	"strings"

	"auditku_backend/internals/helpers/answer"
)

type Type string

const (
	TypeVisibility Type = "visibility"
	TypeReadonly   Type = "readonly"
	TypeRequired   Type = "required"
	TypePicklist   Type = "picklist"
	TypePopup      Type = "popup"
)

type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Dependency = aturan bernama yang mengubah state field.
//
// Conditions nil (tidak dikirim) → pakai triple legacy FieldKey/Operator/Value.
// Conditions [] (dikirim kosong) → selalu false. Karena itu tag-nya tanpa omitempty.
type Dependency struct {
	Name       string      `json:"name"`
	Type       Type        `json:"type"`
	Logic      Logic       `json:"logic,omitempty"`
	Conditions []Condition `json:"conditions"`

	// legacy single-condition
	FieldKey string       `json:"field_key,omitempty"`
	Operator Operator     `json:"operator,omitempty"`
	Value    answer.Value `json:"value"`

	Options []string `json:"options,omitempty"` // picklist
	Fields  []string `json:"fields,omitempty"`  // popup
}

func (d Dependency) NormalizedType() Type {
	return Type(strings.ToLower(strings.TrimSpace(string(d.Type))))
}

func (d Dependency) NormalizedLogic() Logic {
	if Logic(strings.ToUpper(strings.TrimSpace(string(d.Logic)))) == LogicOr {
		return LogicOr
	}
	return LogicAnd
}

// Holds menilai seluruh kondisi dependency.
func (d Dependency) Holds(values Values) bool {
	if d.Conditions == nil {
		return Evaluate(Condition{FieldKey: d.FieldKey, Operator: d.Operator, Value: d.Value}, values)
	}
	if len(d.Conditions) == 0 {
		return false
	}

	if d.NormalizedLogic() == LogicOr {
		for _, c := range d.Conditions {
			if Evaluate(c, values) {
				return true
			}
		}
		return false
	}
	for _, c := range d.Conditions {
		if !Evaluate(c, values) {
			return false
		}
	}
	return true
}

// Field = definisi minimal yang dibutuhkan resolver.
type Field struct {
	Key          string
	Required     bool
	Dependencies []Dependency
}

type PopupTrigger struct {
	DependencyName string   `json:"dependency_name"`
	Fields         []string `json:"fields"`
}

type FieldState struct {
	Visible        bool          `json:"visible"`
	Readonly       bool          `json:"readonly"`
	Required       bool          `json:"required"`
	AllowedOptions []string      `json:"allowed_options"` // nil = tidak dibatasi
	PopupTrigger   *PopupTrigger `json:"popup_trigger,omitempty"`
}

// ResolveFieldState menurunkan state efektif field dari nilai record saat ini.
//
// Urutan deklarasi dependency penting:
//   - visibility : OR antar rule, default true kalau tidak ada rule visibility
//   - readonly/required : fold berurutan, rule yang match menimpa flag jadi true
//   - picklist : rule match TERAKHIR yang punya opsi menang
//   - popup : rule match PERTAMA menang, evaluasi berhenti di situ
func ResolveFieldState(field Field, values Values) FieldState {
	state := FieldState{
		Visible:  true,
		Readonly: false,
		Required: field.Required,
	}
	if len(field.Dependencies) == 0 {
		return state
	}

	hasVisibilityRule := false
	anyVisible := false
	popupDone := false

	for _, dep := range field.Dependencies {
		switch dep.NormalizedType() {
		case TypeVisibility:
			hasVisibilityRule = true
			if !anyVisible && dep.Holds(values) {
				anyVisible = true
			}
		case TypeReadonly:
			if dep.Holds(values) {
				state.Readonly = true
			}
		case TypeRequired:
			if dep.Holds(values) {
				state.Required = true
			}
		case TypePicklist:
			if len(dep.Options) == 0 {
				continue
			}
			if dep.Holds(values) {
				if opts := normalizeOptions(dep.Options); len(opts) > 0 {
					state.AllowedOptions = opts
				}
			}
		case TypePopup:
			if popupDone {
				continue
			}
			if dep.Holds(values) {
				fields := make([]string, len(dep.Fields))
				copy(fields, dep.Fields)
				state.PopupTrigger = &PopupTrigger{DependencyName: dep.Name, Fields: fields}
				popupDone = true
			}
		}
	}

	if hasVisibilityRule {
		state.Visible = anyVisible
	}
	return state
}

func normalizeOptions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
